// Package websocket delivers gamification events (overdue penalties,
// achievement unlocks, level-ups) to connected clients. Delivery is best
// effort: a failed write drops the client and the event is forgotten.
package websocket

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studyquest/models"
	"studyquest/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one connected notification listener.
type Client struct {
	conn    *websocket.Conn
	userID  string
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes to the underlying connection.
func (c *Client) SafeWriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans gamification events out to the clients of the event's user. It
// implements the store's Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	log.Printf("Notification client registered for %s. Total clients: %d", c.userID, len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.conn.Close()
	log.Printf("Notification client unregistered for %s. Total clients: %d", c.userID, len(h.clients))
}

// Notify sends an event to every connection belonging to the event's user.
// Failures never propagate to the caller.
func (h *Hub) Notify(event models.GamificationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	h.mu.RLock()
	var targets []*Client
	for c := range h.clients {
		if c.userID == event.UserID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.SafeWriteJSON(event); err != nil {
			log.Printf("Error delivering %s event to %s: %v", event.Type, event.UserID, err)
			go h.unregister(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades an authenticated request to a notification stream. The
// session token is taken from the Authorization header or, for browser
// WebSocket clients that cannot set headers, the "token" query parameter.
func (h *Hub) Handler(c *gin.Context) {
	var tokenString string
	if authz := c.GetHeader("Authorization"); authz != "" {
		parts := strings.Split(authz, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}

	claims, err := utils.ParseJWTToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{conn: conn, userID: claims.UID}
	h.register(client)

	// Drain control frames until the peer goes away.
	go func() {
		defer h.unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
