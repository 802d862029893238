package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/ticker"
)

// Client represents a single WebSocket client connection.
type Client struct {
	Conn *websocket.Conn
	Addr string
	Send chan []byte // Buffered channel for outbound messages
}

func NewClient(conn *websocket.Conn) *Client {
	addr := ""
	if conn != nil {
		addr = conn.RemoteAddr().String()
	}
	return &Client{Conn: conn, Addr: addr, Send: make(chan []byte, 16)}
}

// Hub manages WebSocket clients and broadcasts market snapshots.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	log        *zap.Logger
	done       chan struct{}

	mu   sync.RWMutex
	last []byte // latest message, sent to new clients
}

// NewHub creates and initializes a new Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		log:        log.Named("hub"),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's event loop. Clients are closed when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("starting websocket hub")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			last := h.last
			h.mu.Unlock()
			h.log.Debug("client registered", zap.String("addr", client.Addr))
			if last != nil {
				select {
				case client.Send <- last:
				default:
				}
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug("client unregistered", zap.String("addr", client.Addr))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			h.last = message
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Client's send buffer is full, drop it
					h.log.Warn("client send buffer full, closing connection", zap.String("addr", client.Addr))
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join registers client. It returns false when the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client unless the hub has already stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Listen marshals every snapshot from updates and broadcasts it.
func (h *Hub) Listen(ctx context.Context, updates <-chan ticker.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg, err := json.Marshal(update)
			if err != nil {
				h.log.Error("marshal market update", zap.Error(err))
				continue
			}
			select {
			case h.broadcast <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
