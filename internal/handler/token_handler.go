package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"identity-service/internal/autherr"
	"identity-service/internal/middleware"
	"identity-service/internal/token"
	"identity-service/pkg/logger"
	"identity-service/prometheus"
)

// TokenHandler exposes the login and refresh entry points.
type TokenHandler struct {
	tokens *token.Service
}

func NewTokenHandler(tokens *token.Service) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Login authenticates credentials within the resolved tenant context and
// returns a token pair.
func (h *TokenHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req token.LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusUnauthorized, echo.Map{"errors": []string{"Invalid login request."}})
	}

	tenant := middleware.TenantFromContext(c)
	resp, err := h.tokens.Login(c.Request().Context(), tenant, req)
	if err != nil {
		prometheus.RecordAuthError("login_failure")
		return identityError(c, err)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in", zap.String("username", req.Username))
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges an expired access token and its refresh token for a
// new pair.
func (h *TokenHandler) Refresh(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RefreshCounter.Inc()

	var req token.RefreshRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse refresh request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusUnauthorized, echo.Map{"errors": []string{"Invalid refresh token request."}})
	}

	tenant := middleware.TenantFromContext(c)
	resp, err := h.tokens.Refresh(c.Request().Context(), tenant, req)
	if err != nil {
		prometheus.RecordAuthError("refresh_failure")
		return identityError(c, err)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Token refreshed")
	return c.JSON(http.StatusOK, resp)
}

// identityError translates core errors into the wire response: the
// status and message list from the error itself, or a bare 500.
func identityError(c echo.Context, err error) error {
	var idErr *autherr.Error
	if errors.As(err, &idErr) {
		return c.JSON(idErr.Status, echo.Map{"errors": idErr.Messages})
	}

	logger.FromContext(c).Error("Unexpected identity error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"errors": []string{"Internal error."}})
}
