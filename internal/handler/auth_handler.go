// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"errors"
	"net/http"

	"ripple-chat/internal/auth"
	"ripple-chat/internal/presence"
	"ripple-chat/internal/transport/httpdto"
	ripple_errors "ripple-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	service  *auth.Service
	presence *presence.Store
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service, presence *presence.Store) *AuthHandler {
	return &AuthHandler{service: service, presence: presence}
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.AvatarURL)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.RegisterResponse{UserID: userID}))
}

// Login handles sign-in and marks the user online.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	session, token, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	if h.presence != nil {
		_ = h.presence.SetOnline(c.Request.Context(), session.User.ID)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.LoginResponse{
		UserID:      session.User.ID,
		Name:        session.User.Name,
		AccessToken: token,
	}))
}

// LoginGuest starts an anonymous session on the shared guest profile.
func (h *AuthHandler) LoginGuest(guestUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, token, err := h.service.SignInGuest(c.Request.Context(), guestUserID)
		if err != nil {
			writeAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.LoginResponse{
			UserID:      session.User.ID,
			Name:        session.User.Name,
			AccessToken: token,
			Guest:       true,
		}))
	}
}

// Logout marks the user offline. Tokens are not revoked; they simply expire.
func (h *AuthHandler) Logout(userID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := userID(c)
		if id != "" && h.presence != nil {
			_ = h.presence.SetOffline(c.Request.Context(), id)
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "signed out"}))
	}
}

func writeAuthError(c *gin.Context, err error) {
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, ripple_errors.ErrInvalidInput):
		code = "INVALID_REQUEST"
	case errors.Is(err, ripple_errors.ErrUnauthorized):
		code = "UNAUTHORIZED"
	case errors.Is(err, ripple_errors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
	case errors.Is(err, ripple_errors.ErrNotFound):
		code = "NOT_FOUND"
	}
	c.JSON(auth.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), code))
}
