package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/dto"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/pkg/observability"
)

// UserHandler handles the authenticated user's profile and history endpoints.
type UserHandler struct {
	profiles service.ProfileService
	metrics  *observability.SessionMetrics
}

// NewUserHandler creates a new user handler.
func NewUserHandler(profiles service.ProfileService, metrics *observability.SessionMetrics) *UserHandler {
	return &UserHandler{profiles: profiles, metrics: metrics}
}

// GetMe returns the caller's sanitized record.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.profiles.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user, "current user")
}

// UpdateProfile applies a partial update to full name and/or email.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation))
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user, "profile updated successfully")
}

// UpdateAvatar replaces the caller's avatar image.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.profiles.UpdateAvatar)
}

// UpdateCover replaces the caller's cover image.
func (h *UserHandler) UpdateCover(c *gin.Context) {
	h.updateImage(c, "coverImage", h.profiles.UpdateCover)
}

// WatchHistory returns the caller's watch history, most recent first.
func (h *UserHandler) WatchHistory(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.profiles.WatchHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	if entries == nil {
		entries = []domain.WatchEntry{}
	}

	respondOK(c, http.StatusOK, entries, "watch history")
}

// RecordWatch appends a video to the caller's history.
func (h *UserHandler) RecordWatch(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.profiles.RecordWatch(c.Request.Context(), userID, c.Param("videoId")); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "watch recorded")
}

func (h *UserHandler) updateImage(
	c *gin.Context,
	field string,
	update func(context.Context, string, *multipart.FileHeader) (*domain.PublicUser, error),
) {
	userID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	fh, err := c.FormFile(field)
	if err != nil {
		respondError(c, fmt.Errorf("%s file is required: %w", field, domain.ErrValidation))
		return
	}

	user, err := update(c.Request.Context(), userID, fh)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.AssetUploads.Add(c.Request.Context(), 1)
	}

	respondOK(c, http.StatusOK, user, "image updated successfully")
}
