package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nexusai/console/internal/auth"
)

// LoginRequest is the credential pair posted to /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent API calls.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// HandleLogin authenticates and hydrates the store. Invalid credentials
// come back as 401; a backend failure during hydration is a 502 so the
// client can tell the two apart.
func (s *Server) HandleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	session, err := s.Store.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "hydration failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: session.Token, Email: session.Email})
}

// HandleLogout revokes the caller's session and clears the local state.
// The store reset is shared across sessions, so only a live bearer token
// may trigger it; anonymous callers get 401 and the state is untouched.
func (s *Server) HandleLogout(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if s.Store.Sessions().Validate(token) == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
	}
	s.Store.Sessions().Logout(token)
	s.Store.Logout()
	return c.NoContent(http.StatusNoContent)
}
