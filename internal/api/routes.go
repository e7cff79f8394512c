package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexusai/console/internal/repository"
	"github.com/nexusai/console/internal/store"
	"github.com/nexusai/console/pkg/models"
)

// CredentialRequest is the payload for creating a credential. There is no
// field for the credential reference: the backend mints it.
type CredentialRequest struct {
	ProviderID string `json:"providerId"`
	Alias      string `json:"alias"`
	ExpiresAt  string `json:"expiresAt"`
}

// CreateCredential creates a credential under a tenant.
// (POST /api/v1/tenants/:id/credentials)
func (s *Server) CreateCredential(c echo.Context) error {
	var req CredentialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.ProviderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "providerId is required")
	}

	created, err := s.Store.AddCredential(c.Request().Context(), &models.Credential{
		TenantID:   c.Param("id"),
		ProviderID: req.ProviderID,
		Alias:      req.Alias,
		Status:     models.StatusDisconnected,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create credential: "+err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// CredentialPatchRequest is the payload for a partial credential update.
type CredentialPatchRequest struct {
	Alias     *string `json:"alias"`
	Status    *string `json:"status"`
	ExpiresAt *string `json:"expiresAt"`
}

// UpdateCredential applies a partial credential update.
// (PUT /api/v1/credentials/:id)
func (s *Server) UpdateCredential(c echo.Context) error {
	var req CredentialPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	patch := repository.CredentialPatch{Alias: req.Alias, ExpiresAt: req.ExpiresAt}
	if req.Status != nil {
		status := models.ParseCredentialStatus(*req.Status)
		patch.Status = &status
	}

	updated, err := s.Store.UpdateCredential(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update credential: "+err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCredential removes a credential.
// (DELETE /api/v1/credentials/:id)
func (s *Server) DeleteCredential(c echo.Context) error {
	if err := s.Store.DeleteCredential(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete credential: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// TestCredential runs the connection tester and returns the credential
// with its post-test status and lastTested stamp.
// (POST /api/v1/credentials/:id/test)
func (s *Server) TestCredential(c echo.Context) error {
	updated, err := s.Store.TestCredential(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "credential not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "connection test failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// RouteRequest is the payload for creating an output route.
type RouteRequest struct {
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Method       string           `json:"method"`
	BodyTemplate string           `json:"bodyTemplate"`
	Group        string           `json:"group"`
	Headers      []*models.Header `json:"headers"`
}

// CreateRoute creates an output route under a tenant.
// (POST /api/v1/tenants/:id/routes)
func (s *Server) CreateRoute(c echo.Context) error {
	var req RouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Name == "" || req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "route name and url are required")
	}
	method := models.HTTPMethod(req.Method)
	if method == "" {
		method = models.MethodPost
	}

	created, err := s.Store.AddRoute(c.Request().Context(), &models.OutputRoute{
		TenantID:     c.Param("id"),
		Name:         req.Name,
		URL:          req.URL,
		Method:       method,
		BodyTemplate: req.BodyTemplate,
		Group:        req.Group,
		IsActive:     true,
		Headers:      req.Headers,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create route: "+err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// RoutePatchRequest is the payload for a partial route update. An absent
// headers field preserves the stored headers; a present one (even empty)
// fully replaces them.
type RoutePatchRequest struct {
	Name         *string          `json:"name"`
	URL          *string          `json:"url"`
	Method       *string          `json:"method"`
	BodyTemplate *string          `json:"bodyTemplate"`
	Group        *string          `json:"group"`
	IsActive     *bool            `json:"isActive"`
	Headers      []*models.Header `json:"headers"`
}

// UpdateRoute applies a partial route update.
// (PUT /api/v1/routes/:id)
func (s *Server) UpdateRoute(c echo.Context) error {
	var req RoutePatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	patch := repository.RoutePatch{
		Name:         req.Name,
		URL:          req.URL,
		BodyTemplate: req.BodyTemplate,
		Group:        req.Group,
		IsActive:     req.IsActive,
		Headers:      req.Headers,
	}
	if req.Method != nil {
		method := models.HTTPMethod(*req.Method)
		patch.Method = &method
	}

	updated, err := s.Store.UpdateRoute(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update route: "+err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteRoute removes an output route.
// (DELETE /api/v1/routes/:id)
func (s *Server) DeleteRoute(c echo.Context) error {
	if err := s.Store.DeleteRoute(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete route: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// DispatchRequest is the variable set used to render a route's body
// template at dispatch time.
type DispatchRequest struct {
	Variables map[string]string `json:"variables"`
}

// DispatchRoute sends a payload through a route and returns the recorded
// execution.
// (POST /api/v1/routes/:id/dispatch)
func (s *Server) DispatchRoute(c echo.Context) error {
	var req DispatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	exec, err := s.Store.DispatchRoute(c.Request().Context(), c.Param("id"), req.Variables)
	if err != nil {
		if err == store.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "route not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "dispatch failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, exec)
}
