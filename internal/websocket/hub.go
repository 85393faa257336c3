package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/pkg/logger"
)

const sendBufferSize = 64

// Client is one websocket session. A user may hold several, one per device.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// NewClient builds a client with its outbound buffer
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

type userMessage struct {
	UserID  uint
	Message []byte
}

// Hub tracks connected clients per user and fans messages out to them
type Hub struct {
	// user id -> sessions
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	direct     chan *userMessage

	// done is closed when Run returns; stopped is set under stopMu after it
	done    chan struct{}
	stopMu  sync.RWMutex
	stopped bool

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		direct:     make(chan *userMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and deliveries until ctx is done. It must be
// called once.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.direct:
			h.mu.RLock()
			for _, client := range h.clients[message.UserID] {
				select {
				case client.Send <- message.Message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": message.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	found := false
	newList := make([]*Client, 0, len(clientList))
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		newList = append(newList, c)
	}
	if !found {
		return
	}

	if len(newList) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = newList
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(newList),
	})
}

// stop releases blocked callers, then closes every session including those
// still queued for registration.
func (h *Hub) stop() {
	close(h.done)

	h.stopMu.Lock()
	h.stopped = true
	h.stopMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clientList := range h.clients {
		for _, c := range clientList {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
	for {
		select {
		case c := <-h.register:
			close(c.Send)
		case <-h.unregister:
		default:
			logger.Info("WebSocket hub stopped")
			return
		}
	}
}

// Register adds a session. Once the hub has stopped the session's Send
// channel is closed instead, so its write pump exits.
func (h *Hub) Register(client *Client) {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	if h.stopped {
		close(client.Send)
		return
	}

	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a session. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	if h.stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser delivers payload as JSON to every session of the user.
// Messages are dropped when the hub is saturated.
func (h *Hub) SendToUser(userID uint, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.direct <- &userMessage{UserID: userID, Message: data}:
	default:
		logger.Warn("Direct channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}

// NotifyOrder pushes an order event to the order owner's sessions
func (h *Hub) NotifyOrder(event service.OrderEvent) {
	if err := h.SendToUser(event.UserID, event); err != nil {
		logger.Error("Failed to push order event", err, map[string]interface{}{
			"order_id": event.OrderID,
			"type":     event.Type,
		})
	}
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
