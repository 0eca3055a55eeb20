package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/service"
)

// ChannelHandler handles the public channel profile and subscriptions.
type ChannelHandler struct {
	channels service.ChannelService
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(channels service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// GetChannel returns the channel profile for a username. When the caller is
// authenticated, is_subscribed reflects their subscription.
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	viewerID, _ := CurrentUserID(c)

	profile, err := h.channels.GetChannelProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, profile, "channel profile")
}

// Subscribe subscribes the caller to a channel.
func (h *ChannelHandler) Subscribe(c *gin.Context) {
	subscriberID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.channels.Subscribe(c.Request.Context(), subscriberID, c.Param("channelId")); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, nil, "subscribed")
}

// Unsubscribe removes the caller's subscription to a channel.
func (h *ChannelHandler) Unsubscribe(c *gin.Context) {
	subscriberID, ok := CurrentUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.channels.Unsubscribe(c.Request.Context(), subscriberID, c.Param("channelId")); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "unsubscribed")
}
