// Package websocket streams audit events to connected clients of the same organization.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Event is one change notification, e.g. RISK_CREATED or SWOT_DELETED.
type Event struct {
	Type       string      `json:"type"`
	EntityType string      `json:"entityType,omitempty"`
	EntityID   string      `json:"entityId,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	UserID     string      `json:"userId,omitempty"`
	UserName   string      `json:"userName,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type broadcastMessage struct {
	orgID   string
	message []byte
}

type Client struct {
	orgID  string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

type Hub struct {
	log        *zap.Logger
	upgrader   websocket.Upgrader
	clients    map[string]map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.Mutex
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan broadcastMessage, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns client registration and fan-out until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for orgID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, orgID)
			}
			h.mutex.Unlock()
			h.log.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[client.orgID]; !ok {
				h.clients[client.orgID] = make(map[*Client]bool)
			}
			h.clients[client.orgID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.clients[client.orgID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.orgID)
					}
				}
			}
			h.mutex.Unlock()

		case bm := <-h.broadcast:
			h.mutex.Lock()
			if clients, ok := h.clients[bm.orgID]; ok {
				for client := range clients {
					select {
					case client.send <- bm.message:
					default:
						// slow consumer
						close(client.send)
						delete(clients, client)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues an event for every client of the organization. It never
// blocks the caller; events are dropped when the hub is saturated.
func (h *Hub) Publish(orgID primitive.ObjectID, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("failed to marshal websocket event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcastMessage{orgID: orgID.Hex(), message: data}:
	default:
		h.log.Warn("websocket broadcast queue full, dropping event", zap.String("type", ev.Type))
	}
}

func (h *Hub) ClientCount(orgID primitive.ObjectID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[orgID.Hex()])
}

// ServeWS upgrades an authenticated request. It must run behind middleware.Auth.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication token required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		orgID:  id.OrgID.Hex(),
		userID: id.UserID.Hex(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}
	welcome, _ := json.Marshal(Event{
		Type:      "WELCOME",
		Data:      map[string]string{"message": "Connected to audit log stream", "role": id.Role},
		UserID:    client.userID,
		UserName:  id.Name,
		Timestamp: time.Now().UTC(),
	})
	client.send <- welcome

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
