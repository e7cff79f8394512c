package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nexusai/console/internal/config"
	"github.com/nexusai/console/internal/logging"
	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/store"
	"github.com/nexusai/console/pkg/models"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console-seed",
		Short: "Apply the schema and load demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DB.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.ApplySchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("Schema applied")

	repo := repository.NewPostgres(pool)

	// Provider catalog. Upsert by id, safe to rerun.
	if err := repo.SeedIntegrations(ctx, store.BuiltinIntegrations()); err != nil {
		return err
	}
	logger.Info("Integration catalog seeded")

	// 1. Ensure the demo tenant exists.
	existing, err := repo.ListTenants(ctx)
	if err != nil {
		return err
	}
	for _, t := range existing {
		if t.Name == "Nexus Core" {
			logger.Info("Found existing tenant %s", t.ID)
			logger.Info("Seeding complete!")
			return nil
		}
	}

	logger.Info("Creating demo tenant %q", "Nexus Core")
	tenant, err := repo.CreateTenant(ctx, &models.Tenant{
		Name:    "Nexus Core",
		Color:   "bg-blue-600",
		CRMType: models.CRMSalesforce,
	})
	if err != nil {
		return err
	}

	// 2. Demo output routes.
	routes := []*models.OutputRoute{
		{
			TenantID: tenant.ID,
			Name:     "Primary Webhook",
			URL:      "https://api.nexus.io/v1/webhook",
			Method:   models.MethodPost,
			Headers: []*models.Header{
				{Key: "Authorization", Value: "Bearer demo_token"},
			},
			BodyTemplate: "{\n  \"event\": \"customer_resolved\",\n  \"data\": {{payload}}\n}",
			Group:        "General",
			IsActive:     true,
		},
		{
			TenantID:     tenant.ID,
			Name:         "Notify Billing Channel",
			URL:          "https://hooks.slack.com/services/...",
			Method:       models.MethodPost,
			Headers:      []*models.Header{},
			BodyTemplate: "{\n  \"text\": \"New billing inquiry resolved for {{customer.name}}\"\n}",
			Group:        "Slack Internal",
			IsActive:     true,
		},
		{
			TenantID:     tenant.ID,
			Name:         "Archive Case File",
			URL:          "https://www.googleapis.com/upload/drive/v3/files",
			Method:       models.MethodPost,
			Headers:      []*models.Header{},
			BodyTemplate: "{\n  \"name\": \"case-{{conversation.id}}.txt\",\n  \"parents\": [\"...\"],\n  \"mimeType\": \"text/plain\"\n}",
			Group:        "Google Drive Asset",
			IsActive:     true,
		},
	}
	for _, r := range routes {
		created, err := repo.CreateRoute(ctx, r)
		if err != nil {
			logger.Error("Failed to create route %s: %v", r.Name, err)
			continue
		}
		logger.Info("Seeded route %q (%s)", created.Name, created.ID)
	}

	// 3. Global variables and permissions.
	vars := []*models.EnvVar{
		{Key: "GEMINI_API_VERSION", Value: "v2-preview", IsSecret: false},
		{Key: "ENCRYPTION_KEY", Value: "AKIA_NEXUS_8829", IsSecret: true},
	}
	for _, v := range vars {
		if _, err := repo.CreateEnvVar(ctx, v); err != nil {
			logger.Error("Failed to create env var %s: %v", v.Key, err)
		}
	}

	perms := []*models.UserPermission{
		{UserEmail: "admin@nexus.ai", Role: "MASTER_ADMIN", Scope: "GLOBAL"},
		{UserEmail: "operator@nexus.ai", Role: "FLOW_DESIGNER", Scope: "TENANT_A"},
		{UserEmail: "viewer@nexus.ai", Role: "AUDITOR", Scope: "GLOBAL_LOGS"},
	}
	for _, p := range perms {
		if _, err := repo.CreatePermission(ctx, p); err != nil {
			logger.Error("Failed to create permission %s: %v", p.UserEmail, err)
		}
	}

	logger.Info("Seeding complete!")
	return nil
}
