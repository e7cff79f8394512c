// Package api contains the HTTP handlers for the console backend.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexusai/console/internal/store"
)

// Server holds the dependencies for the API server.
type Server struct {
	Store *store.Store
}

// NewServer creates a new Server.
func NewServer(st *store.Store) *Server {
	return &Server{Store: st}
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK).
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "nexus-console",
		Version:   "1.0.0",
	})
}

// RegisterRoutes mounts the authenticated API surface on the group.
func RegisterRoutes(g *echo.Group, s *Server) {
	g.GET("/tenants", s.ListTenants)
	g.POST("/tenants", s.CreateTenant)
	g.GET("/tenants/:id", s.GetTenant)
	g.PUT("/tenants/:id", s.UpdateTenant)
	g.DELETE("/tenants/:id", s.DeleteTenant)
	g.POST("/tenants/:id/activate", s.ActivateTenant)
	g.PUT("/tenants/:id/crm-config", s.UpdateCRMConfig)

	g.POST("/tenants/:id/credentials", s.CreateCredential)
	g.PUT("/credentials/:id", s.UpdateCredential)
	g.DELETE("/credentials/:id", s.DeleteCredential)
	g.POST("/credentials/:id/test", s.TestCredential)

	g.POST("/tenants/:id/routes", s.CreateRoute)
	g.PUT("/routes/:id", s.UpdateRoute)
	g.DELETE("/routes/:id", s.DeleteRoute)
	g.POST("/routes/:id/dispatch", s.DispatchRoute)

	g.GET("/env-vars", s.ListEnvVars)
	g.POST("/env-vars", s.CreateEnvVar)
	g.PUT("/env-vars/:id", s.UpdateEnvVar)
	g.DELETE("/env-vars/:id", s.DeleteEnvVar)

	g.GET("/permissions", s.ListPermissions)
	g.POST("/permissions", s.CreatePermission)
	g.PUT("/permissions/:id", s.UpdatePermission)
	g.DELETE("/permissions/:id", s.DeletePermission)

	g.GET("/integrations", s.ListIntegrations)
	g.GET("/logs", s.ListExecutionLogs)
	g.POST("/transform", s.TransformPreview)
}
