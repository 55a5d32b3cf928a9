package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageRouter(store docstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMessageHandler(chat.NewMessageService(store, logger.NewNop()))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userId", "alice") })
	r.POST("/v1/channels/:id/messages", h.SendToChannel)
	r.DELETE("/v1/channels/:id/threads/:threadId", h.DeleteThreadMessage)
	return r
}

func TestSendThenDeleteThreadMessage(t *testing.T) {
	store := docstore.NewMemoryStore()
	r := newMessageRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/v1/channels/c1/messages", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			MessageID string `json:"messageId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.MessageID)

	path := docstore.ThreadPath("c1", resp.Data.MessageID)
	_, err := store.Get(context.Background(), path)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/channels/c1/threads/"+resp.Data.MessageID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	_, err = store.Get(context.Background(), path)
	assert.ErrorIs(t, err, ripple_errors.ErrNotFound)
}

func TestSendRejectsEmptyBody(t *testing.T) {
	r := newMessageRouter(docstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/v1/channels/c1/messages", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
