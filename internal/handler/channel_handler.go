package handler

import (
	"net/http"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/middleware"
	"ripple-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ChannelHandler handles the channel directory endpoints.
type ChannelHandler struct {
	channels *chat.ChannelService
}

func NewChannelHandler(channels *chat.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// Create handles POST /channels. The duplicate-name check runs inside the
// service; a collision maps to 409.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req httpdto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	id, err := h.channels.Create(c.Request.Context(), chat.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.UserID(c),
		Members:     req.Members,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.CreateChannelResponse{ChannelID: id}))
}

// NameExists handles GET /channels/name-exists?name=x. Always 200; the
// result is data, not an error.
func (h *ChannelHandler) NameExists(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("name is required", "INVALID_REQUEST"))
		return
	}

	check, err := h.channels.NameExists(c.Request.Context(), name, middleware.UserID(c))
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ChannelNameCheckResponse{
		Exists:   check.Exists,
		IsMember: check.IsMember,
	}))
}

// List handles GET /channels.
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(channels))
}

// Get handles GET /channels/:id.
func (h *ChannelHandler) Get(c *gin.Context) {
	ch, err := h.channels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ch))
}

// AddMembers handles POST /channels/:id/members.
func (h *ChannelHandler) AddMembers(c *gin.Context) {
	var req httpdto.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.channels.AddMembers(c.Request.Context(), c.Param("id"), req.UserIDs); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "ok"}))
}
