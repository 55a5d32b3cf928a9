package server

import (
	"context"
	"sync"
	"sync/atomic"

	"ripple-chat/internal/presence"
)

// Hub tracks the active stream clients per user. Presence follows the
// connection count: the first connection marks the user online, the last
// disconnect marks them offline. Each client carries its own session
// engine; the hub never routes messages between clients.
type Hub struct {
	clients    map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	presence   *presence.Store
	logger     *WebSocketLogger
	mu         sync.RWMutex
	stopChan   chan struct{}
	wg         sync.WaitGroup
	isRunning  int32
}

func NewHub(presenceStore *presence.Store, logger *WebSocketLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presenceStore,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	if !atomic.CompareAndSwapInt32(&h.isRunning, 0, 1) {
		return
	}
	h.wg.Add(1)
	go h.loop()
}

func (h *Hub) Stop() {
	if !atomic.CompareAndSwapInt32(&h.isRunning, 1, 0) {
		return
	}
	close(h.stopChan)
	h.wg.Wait()

	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, byID := range h.clients {
		for _, client := range byID {
			clients = append(clients, client)
		}
	}
	h.clients = make(map[string]map[string]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

// drop hands a client back to the hub loop for removal. If the hub has
// already stopped, the loop is gone and Stop owns the cleanup instead.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

// heartbeat refreshes the presence TTL for a user with live traffic.
func (h *Hub) heartbeat(userID string) {
	if h.presence == nil {
		return
	}
	if err := h.presence.Heartbeat(context.Background(), userID); err != nil {
		h.logger.Warn("presence heartbeat failed", userID, "")
	}
}

func (h *Hub) loop() {
	defer h.wg.Done()
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	byID := h.clients[client.userID]
	first := len(byID) == 0
	if byID == nil {
		byID = make(map[string]*Client)
		h.clients[client.userID] = byID
	}
	byID[client.clientID] = client
	h.mu.Unlock()

	h.logger.Info("client connected", client.userID, client.clientID)

	if first && h.presence != nil {
		if err := h.presence.SetOnline(context.Background(), client.userID); err != nil {
			h.logger.Error("presence online failed", client.userID, client.clientID, err)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	byID := h.clients[client.userID]
	if byID != nil {
		delete(byID, client.clientID)
		if len(byID) == 0 {
			delete(h.clients, client.userID)
		}
	}
	last := len(byID) == 0
	h.mu.Unlock()

	client.close()
	h.logger.Info("client disconnected", client.userID, client.clientID)

	if last && h.presence != nil {
		if err := h.presence.SetOffline(context.Background(), client.userID); err != nil {
			h.logger.Error("presence offline failed", client.userID, client.clientID, err)
		}
	}
}

// ConnectionCount reports the number of open connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
