package handler

import (
	"net/http"

	"ripple-chat/internal/presence"
	"ripple-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// PresenceHandler serves the presence read surface. Presence writes happen
// on login/logout and on stream connect/disconnect, never through here.
type PresenceHandler struct {
	presence *presence.Store
}

func NewPresenceHandler(p *presence.Store) *PresenceHandler {
	return &PresenceHandler{presence: p}
}

// Online handles GET /presence/online, listing every online user's status.
func (h *PresenceHandler) Online(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.presence.OnlineUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("presence unavailable", "INTERNAL_ERROR"))
		return
	}

	statuses := make([]presence.Status, 0, len(ids))
	for _, id := range ids {
		status, err := h.presence.GetStatus(ctx, id)
		if err != nil {
			continue
		}
		statuses = append(statuses, status)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(statuses))
}

// Status handles GET /presence/:userId. Membership in the online set is
// checked alongside the status record: an expired record reads as offline
// even if the set has not been pruned yet.
func (h *PresenceHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userId")

	online, err := h.presence.IsOnline(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("presence unavailable", "INTERNAL_ERROR"))
		return
	}

	status, err := h.presence.GetStatus(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("presence unavailable", "INTERNAL_ERROR"))
		return
	}

	status.IsOnline = status.IsOnline && online
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
}
