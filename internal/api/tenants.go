package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/store"
	"github.com/nexusai/console/pkg/models"
)

// ListTenants returns the tenant list the store currently holds.
// (GET /api/v1/tenants)
func (s *Server) ListTenants(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.Tenants())
}

// TenantRequest is the payload for creating a tenant.
type TenantRequest struct {
	Name           string         `json:"name"`
	Color          string         `json:"color"`
	CRMType        string         `json:"crmType"`
	InternalSchema map[string]any `json:"internalSchema"`
	OutputTemplate map[string]any `json:"outputTemplate"`
}

// CreateTenant creates a tenant and makes it active.
// (POST /api/v1/tenants)
func (s *Server) CreateTenant(c echo.Context) error {
	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant name is required")
	}

	created, err := s.Store.AddTenant(c.Request().Context(), &models.Tenant{
		Name:           req.Name,
		Color:          req.Color,
		CRMType:        models.ParseCRMType(req.CRMType),
		InternalSchema: req.InternalSchema,
		OutputTemplate: req.OutputTemplate,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create tenant: "+err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// GetTenant returns one tenant from the store, 404 when absent.
// (GET /api/v1/tenants/:id)
func (s *Server) GetTenant(c echo.Context) error {
	id := c.Param("id")
	for _, tenant := range s.Store.Tenants() {
		if tenant.ID == id {
			return c.JSON(http.StatusOK, tenant)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
}

// TenantPatchRequest is the payload for a partial tenant update. Absent
// fields leave the stored values untouched.
type TenantPatchRequest struct {
	Name           *string        `json:"name"`
	Color          *string        `json:"color"`
	CRMType        *string        `json:"crmType"`
	InternalSchema map[string]any `json:"internalSchema"`
	OutputTemplate map[string]any `json:"outputTemplate"`
}

// UpdateTenant applies a partial update.
// (PUT /api/v1/tenants/:id)
func (s *Server) UpdateTenant(c echo.Context) error {
	var req TenantPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	patch := repository.TenantPatch{
		Name:           req.Name,
		Color:          req.Color,
		InternalSchema: req.InternalSchema,
		OutputTemplate: req.OutputTemplate,
	}
	if req.CRMType != nil {
		crm := models.ParseCRMType(*req.CRMType)
		patch.CRMType = &crm
	}

	updated, err := s.Store.UpdateTenant(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update tenant: "+err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTenant removes a tenant and everything it owns.
// (DELETE /api/v1/tenants/:id)
func (s *Server) DeleteTenant(c echo.Context) error {
	if err := s.Store.DeleteTenant(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete tenant: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ActivateTenant switches the active tenant.
// (POST /api/v1/tenants/:id/activate)
func (s *Server) ActivateTenant(c echo.Context) error {
	if err := s.Store.SetActiveTenant(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateCRMConfig saves a tenant's transformer configuration.
// (PUT /api/v1/tenants/:id/crm-config)
func (s *Server) UpdateCRMConfig(c echo.Context) error {
	var cfg models.CRMConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.Store.UpdateCRMConfig(c.Request().Context(), c.Param("id"), cfg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save crm config: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// TransformPreview runs the generative transformer for the active tenant.
// (POST /api/v1/transform)
func (s *Server) TransformPreview(c echo.Context) error {
	preview, err := s.Store.TransformPreview(c.Request().Context())
	if err != nil {
		if err == store.ErrNoActiveTenant {
			return echo.NewHTTPError(http.StatusConflict, "no active tenant selected")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "transform failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"preview": preview})
}
