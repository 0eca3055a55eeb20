package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/dto"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/pkg/observability"
)

// AuthHandler handles the session lifecycle endpoints.
type AuthHandler struct {
	sessions service.SessionService
	cookies  *SessionCookies
	metrics  *observability.SessionMetrics
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions service.SessionService, cookies *SessionCookies, metrics *observability.SessionMetrics) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cookies:  cookies,
		metrics:  metrics,
	}
}

// Register handles multipart user registration with an avatar (required) and
// cover image (optional).
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation))
		return
	}

	input := service.RegisterInput{
		FullName: form.FullName,
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
	}

	// Missing avatar is the service's validation concern, not a bind error.
	if fh, err := c.FormFile("avatar"); err == nil {
		input.Avatar = fh
	}
	if fh, err := c.FormFile("coverImage"); err == nil {
		input.Cover = fh
	}

	user, err := h.sessions.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.AssetUploads.Add(c.Request.Context(), 1)
	}

	respondOK(c, http.StatusCreated, user, "user registered successfully")
}

// Login authenticates by username or email and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation))
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if h.metrics != nil && statusFor(err) == http.StatusUnauthorized {
			h.metrics.LoginFailures.Add(c.Request.Context(), 1)
		}
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Logins.Add(c.Request.Context(), 1)
	}

	h.cookies.set(c, session.Tokens)
	respondOK(c, http.StatusOK, dto.SessionData{
		User:         session.User,
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "user logged in successfully")
}

// Refresh rotates the token pair. The refresh token comes from the cookie,
// with a JSON body fallback for non-browser clients.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshTokenCookie)
	if refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	session, err := h.sessions.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if h.metrics != nil && statusFor(err) == http.StatusUnauthorized {
			h.metrics.RefreshReplays.Add(c.Request.Context(), 1)
		}
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Refreshes.Add(c.Request.Context(), 1)
	}

	h.cookies.set(c, session.Tokens)
	respondOK(c, http.StatusOK, dto.SessionData{
		User:         session.User,
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "token refreshed successfully")
}

// Logout clears the persisted refresh token and both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	h.cookies.clear(c)
	respondOK(c, http.StatusOK, nil, "user logged out")
}

// ChangePassword updates the caller's password; all sessions are revoked.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation))
		return
	}

	if err := h.sessions.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	h.cookies.clear(c)
	respondOK(c, http.StatusOK, nil, "password changed successfully")
}
