package handler

import (
	"net/http"
	"strings"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the user directory and search.
type UserHandler struct {
	search *chat.Search
}

func NewUserHandler(search *chat.Search) *UserHandler {
	return &UserHandler{search: search}
}

// Search handles GET /users/search?q=x. A leading '@' switches to mention
// matching; a leading '#' searches channels instead.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	ctx := c.Request.Context()

	switch {
	case strings.HasPrefix(q, "#"):
		channels, err := h.search.Channels(ctx, strings.TrimPrefix(q, "#"))
		if err != nil {
			writeAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"channels": channels}))
	case strings.HasPrefix(q, "@"):
		users, err := h.search.UsersAt(ctx, q)
		if err != nil {
			writeAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
	default:
		users, err := h.search.Users(ctx, q)
		if err != nil {
			writeAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
	}
}
