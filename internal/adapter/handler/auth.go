package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	authdto "github.com/acadease/backend/internal/adapter/dto/auth"
	"github.com/acadease/backend/internal/usecase/auth"
)

// Auth handles authentication HTTP requests
type Auth struct {
	authService auth.Service
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService auth.Service, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// SignIn handles password sign-in
// POST /v1/auth/signin
func (h *Auth) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req authdto.SignInRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	result, err := h.authService.SignIn(ctx, req.Identity, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// SignUp handles account registration
// POST /v1/auth/signup
func (h *Auth) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req authdto.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	user, err := h.authService.SignUp(ctx, req.Email, req.Password, req.PasswordConfirm, req.Name)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, user)
}

// SignOut discards the caller's session
// POST /v1/auth/signout
func (h *Auth) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	if err := h.authService.SignOut(ctx, token); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, nil)
}

// Me returns the token's owner
// GET /v1/auth/me
func (h *Auth) Me(c echo.Context) error {
	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	claims, err := h.authService.CurrentUser(token)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"user_id":    claims.RecordID,
		"expires_at": claims.ExpiresAt,
	})
}
