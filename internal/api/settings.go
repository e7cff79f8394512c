package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/secrets"
	"github.com/nexusai/console/pkg/models"
)

// ListEnvVars returns the global variables with secret values masked.
// The stored plaintext never crosses this surface.
// (GET /api/v1/env-vars)
func (s *Server) ListEnvVars(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.RenderedGlobalVars())
}

// EnvVarRequest is the payload for creating a global variable.
type EnvVarRequest struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsSecret bool   `json:"isSecret"`
}

// CreateEnvVar creates a global variable. The response masks the value
// when the variable is secret.
// (POST /api/v1/env-vars)
func (s *Server) CreateEnvVar(c echo.Context) error {
	var req EnvVarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}

	created, err := s.Store.AddGlobalVar(c.Request().Context(), &models.EnvVar{
		Key:      req.Key,
		Value:    req.Value,
		IsSecret: req.IsSecret,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create env var: "+err.Error())
	}
	return c.JSON(http.StatusCreated, renderEnvVar(created))
}

// EnvVarPatchRequest is the payload for a partial env var update.
type EnvVarPatchRequest struct {
	Key      *string `json:"key"`
	Value    *string `json:"value"`
	IsSecret *bool   `json:"isSecret"`
}

// UpdateEnvVar applies a partial update to a global variable.
// (PUT /api/v1/env-vars/:id)
func (s *Server) UpdateEnvVar(c echo.Context) error {
	var req EnvVarPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	updated, err := s.Store.UpdateGlobalVar(c.Request().Context(), c.Param("id"), repository.EnvVarPatch{
		Key:      req.Key,
		Value:    req.Value,
		IsSecret: req.IsSecret,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update env var: "+err.Error())
	}
	return c.JSON(http.StatusOK, renderEnvVar(updated))
}

// DeleteEnvVar removes a global variable.
// (DELETE /api/v1/env-vars/:id)
func (s *Server) DeleteEnvVar(c echo.Context) error {
	if err := s.Store.DeleteGlobalVar(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete env var: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func renderEnvVar(v *models.EnvVar) *models.EnvVar {
	if !v.IsSecret {
		return v
	}
	rendered := *v
	rendered.Value = secrets.ValueMask
	return &rendered
}

// ListPermissions returns the stored permission assignments.
// (GET /api/v1/permissions)
func (s *Server) ListPermissions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.Permissions())
}

// PermissionRequest is the payload for creating a permission.
type PermissionRequest struct {
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
	Scope     string `json:"scope"`
}

// CreatePermission creates a permission assignment.
// (POST /api/v1/permissions)
func (s *Server) CreatePermission(c echo.Context) error {
	var req PermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.UserEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userEmail is required")
	}

	created, err := s.Store.AddPermission(c.Request().Context(), &models.UserPermission{
		UserEmail: req.UserEmail,
		Role:      req.Role,
		Scope:     req.Scope,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create permission: "+err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// PermissionPatchRequest is the payload for a partial permission update.
type PermissionPatchRequest struct {
	UserEmail *string `json:"userEmail"`
	Role      *string `json:"role"`
	Scope     *string `json:"scope"`
}

// UpdatePermission applies a partial update to a permission.
// (PUT /api/v1/permissions/:id)
func (s *Server) UpdatePermission(c echo.Context) error {
	var req PermissionPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	updated, err := s.Store.UpdatePermission(c.Request().Context(), c.Param("id"), repository.PermissionPatch{
		UserEmail: req.UserEmail,
		Role:      req.Role,
		Scope:     req.Scope,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update permission: "+err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePermission removes a permission assignment.
// (DELETE /api/v1/permissions/:id)
func (s *Server) DeletePermission(c echo.Context) error {
	if err := s.Store.DeletePermission(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete permission: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ListIntegrations returns the provider catalog.
// (GET /api/v1/integrations)
func (s *Server) ListIntegrations(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.Integrations())
}

// ListExecutionLogs returns loaded execution logs with sensitive step
// output fields masked.
// (GET /api/v1/logs)
func (s *Server) ListExecutionLogs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.RenderedExecutionLogs())
}
