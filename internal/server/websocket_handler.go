package server

import (
	"context"
	"net/http"
	"strings"

	"ripple-chat/internal/auth"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/session"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler upgrades /v1/stream connections. Each accepted connection
// gets its own session engine started against the shared document store.
type StreamHandler struct {
	hub         *Hub
	authService *auth.Service
	store       docstore.Store
	limiter     *redis.RateLimiter
	log         *logger.Logger
	wsLogger    *WebSocketLogger
}

func NewStreamHandler(hub *Hub, authService *auth.Service, store docstore.Store, limiter *redis.RateLimiter, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		hub:         hub,
		authService: authService,
		store:       store,
		limiter:     limiter,
		log:         log,
		wsLogger:    NewWebSocketLogger(),
	}
}

// Handle authenticates, rate-limits, and upgrades the connection.
func (h *StreamHandler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := h.authService.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if h.limiter != nil {
		result, err := h.limiter.AllowSocket(c.Request.Context(), claims.UserID)
		if err == nil && !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "connection rate limit exceeded"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsLogger.Error("websocket upgrade failed", claims.UserID, "", err)
		return
	}

	engine := session.NewEngine(h.store, h.log, claims.UserID)
	// The request context dies when this handler returns; the engine lives
	// as long as the connection.
	if err := engine.Start(context.Background()); err != nil {
		h.wsLogger.Error("session start failed", claims.UserID, "", err)
		conn.Close()
		return
	}

	clientID := uuid.New().String()
	client := NewClient(h.hub, conn, engine, claims.UserID, clientID, h.wsLogger)

	h.hub.register <- client
	go client.writePump()
	go client.readPump()
}

func (h *StreamHandler) extractToken(c *gin.Context) string {
	token := c.Query("token")
	if token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
