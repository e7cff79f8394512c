package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/nexusai/console/internal/api"
	"github.com/nexusai/console/internal/config"
	"github.com/nexusai/console/internal/logging"
	"github.com/nexusai/console/internal/mcp"
	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/services"
	"github.com/nexusai/console/internal/store"
	"github.com/nexusai/console/internal/tlsutil"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console-server",
		Short: "Nexus orchestration console backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return fmt.Errorf("configuration loading failed: %w", err)
	}
	logger.Info("Configuration loaded: server_addr=%s transformer_model=%s service_key_len=%d config_file=%s",
		cfg.Server.Addr, cfg.Transformer.Model, len(cfg.DB.ServiceKey), viper.ConfigFileUsed())

	logger.Info("Starting Nexus Console Service")

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer dbPool.Close()

	logger.Info("Database connected")

	repo := repository.NewPostgres(dbPool)

	transformer := services.NewGeminiTransformer(cfg.Transformer.APIKey, cfg.Transformer.Model, cfg.Transformer.URL)
	tester := &services.SimulatedConnectionTester{}
	dispatcher := &services.SimulatedRouteDispatcher{}

	st := store.New(repo, tester, dispatcher, transformer, logger)

	logger.Info("Store initialized")

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("console-server"))

	apiHandler := api.NewServer(st)

	e.GET("/health", apiHandler.HandleHealth)
	e.POST("/login", apiHandler.HandleLogin)
	e.POST("/logout", apiHandler.HandleLogout)

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(st.Sessions().RequireAuth))
	api.RegisterRoutes(apiGroup, apiHandler)

	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(st)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	addr := cfg.Server.Addr
	if cfg.TLS.Enable && addr == ":8080" {
		addr = ":8443"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting on %s (tls=%v)", addr, cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			if len(cfg.TLS.Hostnames) > 0 {
				if err := tlsutil.EnsureCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
					logger.Error("Failed to ensure TLS certificate: %v", err)
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error: %v", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}

	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	poolConfig, err := pgxpool.ParseConfig(cfg.DB.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
