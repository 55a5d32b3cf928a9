package handler

import (
	"net/http"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/middleware"
	"ripple-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles the compose endpoints. Reads are not served here:
// message content reaches clients through the live stream.
type MessageHandler struct {
	messages *chat.MessageService
}

func NewMessageHandler(messages *chat.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// SendToChannel handles POST /channels/:id/messages, creating a new thread
// root.
func (h *MessageHandler) SendToChannel(c *gin.Context) {
	req, ok := bindSend(c)
	if !ok {
		return
	}

	id, err := h.messages.SendChannelMessage(c.Request.Context(), c.Param("id"), chat.Outgoing{
		CreatedBy: middleware.UserID(c),
		Text:      req.Text,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{MessageID: id}))
}

// SendToThread handles POST /channels/:id/threads/:threadId/messages.
func (h *MessageHandler) SendToThread(c *gin.Context) {
	req, ok := bindSend(c)
	if !ok {
		return
	}

	id, err := h.messages.SendThreadReply(c.Request.Context(), c.Param("id"), c.Param("threadId"), chat.Outgoing{
		CreatedBy: middleware.UserID(c),
		Text:      req.Text,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{MessageID: id}))
}

// SendDirect handles POST /dm/:userId/messages. The message is written to
// both participants' collections under the same id.
func (h *MessageHandler) SendDirect(c *gin.Context) {
	req, ok := bindSend(c)
	if !ok {
		return
	}

	id, err := h.messages.SendDirectMessage(c.Request.Context(), middleware.UserID(c), c.Param("userId"), chat.Outgoing{
		CreatedBy: middleware.UserID(c),
		Text:      req.Text,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{MessageID: id}))
}

// EditThreadMessage handles PATCH /channels/:id/threads/:threadId.
func (h *MessageHandler) EditThreadMessage(c *gin.Context) {
	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	path := docstore.ThreadPath(c.Param("id"), c.Param("threadId"))
	if err := h.messages.Edit(c.Request.Context(), path, req.Text); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "ok"}))
}

// DeleteThreadMessage handles DELETE /channels/:id/threads/:threadId.
func (h *MessageHandler) DeleteThreadMessage(c *gin.Context) {
	path := docstore.ThreadPath(c.Param("id"), c.Param("threadId"))
	if err := h.messages.Delete(c.Request.Context(), path); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "deleted"}))
}

func bindSend(c *gin.Context) (httpdto.SendMessageRequest, bool) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return req, false
	}
	if req.Text == "" && req.ImageURL == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("text or imageUrl is required", "INVALID_REQUEST"))
		return req, false
	}
	return req, true
}
