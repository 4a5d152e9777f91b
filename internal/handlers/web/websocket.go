// file: internal/handlers/web/websocket.go
package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"doclib/internal/contextutils"
	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/monitoring"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxInbound = 512
)

// Push message types
const (
	MessageNotification = "notification"
	MessageUnreadCount  = "unread_count"
)

// PushMessage is the JSON frame sent to connected clients
type PushMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// UnreadCounter supplies the initial badge count on connect
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan PushMessage
}

// NotificationHub fans persisted notifications out to the recipient's open
// websocket connections. Delivery is best effort: a client whose buffer is
// full misses the frame and catches up through the REST list.
type NotificationHub struct {
	upgrader websocket.Upgrader
	counter  UnreadCounter
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	buffer   int

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
}

// NewNotificationHub creates a hub. allowedOrigins restricts the Origin
// header of upgrade requests; empty allows any origin.
func NewNotificationHub(counter UnreadCounter, allowedOrigins []string, buffer int, metrics *monitoring.Metrics, logger *zap.Logger) *NotificationHub {
	if buffer <= 0 {
		buffer = 16
	}
	h := &NotificationHub{
		counter: counter,
		metrics: metrics,
		logger:  logger,
		buffer:  buffer,
		clients: make(map[int64]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.ToLower(origin)]
	}
}

// Subscribe attaches the hub to notification.created events
func (h *NotificationHub) Subscribe(bus events.EventBus) error {
	return bus.Subscribe(events.TypeNotificationCreated, events.NewTypedEventHandler(
		"websocket_push",
		func(ctx context.Context, e *events.NotificationCreatedEvent) error {
			h.Deliver(e.Notification)
			return nil
		},
	))
}

// Deliver pushes n to every connection of its recipient and returns how
// many connections accepted it.
func (h *NotificationHub) Deliver(n *models.Notification) int {
	if n == nil {
		return 0
	}
	msg := PushMessage{Type: MessageNotification, Data: n}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[n.UserID] {
		select {
		case c.send <- msg:
			delivered++
		default:
			h.logger.Warn("Dropping push for slow websocket client",
				zap.Int64("user_id", n.UserID),
				zap.Int64("notification_id", n.ID),
			)
		}
	}
	return delivered
}

// Connections returns the number of open connections for userID
func (h *NotificationHub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ServeHTTP upgrades an authenticated request. RequireAuth must run first.
func (h *NotificationHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := contextutils.GetUser(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{userID: user.ID, conn: conn, send: make(chan PushMessage, h.buffer)}

	// Queued before register so nothing else can touch the channel yet
	if h.counter != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		if count, err := h.counter.UnreadCount(ctx, user.ID); err == nil {
			c.send <- PushMessage{Type: MessageUnreadCount, Data: map[string]int64{"count": count}}
		} else {
			h.logger.Warn("Failed to load unread count", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		cancel()
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *NotificationHub) register(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.WebsocketConnected()
	h.logger.Debug("WebSocket client connected", zap.Int64("user_id", c.userID))
}

func (h *NotificationHub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
			h.metrics.WebsocketDisconnected()
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("WebSocket client disconnected", zap.Int64("user_id", c.userID))
}

// readPump discards inbound frames; it exists to process control frames
// and notice when the peer goes away.
func (h *NotificationHub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (h *NotificationHub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("WebSocket write failed", zap.Int64("user_id", c.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown closes every connection
func (h *NotificationHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			h.metrics.WebsocketDisconnected()
		}
		delete(h.clients, userID)
	}
}
