package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/middleware/auth"
	"github.com/Skotchmaster/notes/internal/service"
	"github.com/Skotchmaster/notes/internal/transport"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, h.Auth.Register)
}

func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	return h.register(c, h.Auth.RegisterAdmin)
}

func (h *AuthHandler) register(c echo.Context, fn func(ctx context.Context, username, email, password string) (service.AuthResult, error)) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := fn(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return respond(c, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return respond(c, res)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.Auth.Refresh(c.Request().Context(), req.Presented(), req.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return respond(c, res)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", service.ErrValidation, err)
	}

	if err := h.Auth.LogOut(ctx, auth.UserID(c), req.RefreshToken); err != nil {
		return err
	}
	l.Debug("refresh token revoked")
	return c.NoContent(http.StatusNoContent)
}

func respond(c echo.Context, res service.AuthResult) error {
	if !res.Success {
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusOK, res)
}
