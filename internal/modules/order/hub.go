package order

import (
	"sync"

	"github.com/gorilla/websocket"

	"flashfix/internal/domain"
)

// Event is the wire format pushed over the order feed websocket.
type Event struct {
	Type         string             `json:"type"`
	OrderID      int64              `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	Status       domain.OrderStatus `json:"status"`
	Action       string             `json:"action,omitempty"`
	DeviceType   string             `json:"device_type,omitempty"`
	UrgencyLevel string             `json:"urgency_level,omitempty"`
}

type hubClient struct {
	mu   sync.Mutex // serializes writes; gorilla allows one writer at a time
	conn *websocket.Conn
	role domain.UserRole
}

func (c *hubClient) write(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// a write error means the reader loop will unregister shortly
	_ = c.conn.WriteJSON(v)
}

// Hub tracks connected feed clients by user ID. One connection per user;
// a new connection replaces the previous one.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*hubClient
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]*hubClient)}
}

func (h *Hub) Register(userID int64, role domain.UserRole, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[userID]; ok {
		old.conn.Close()
	}
	h.clients[userID] = &hubClient{conn: conn, role: role}
}

func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[userID]; ok && cur.conn == conn {
		delete(h.clients, userID)
		conn.Close()
	}
}

// IsOnline reports whether the user currently holds a feed connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) sendToUser(userID int64, v any) {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.write(v)
}

func (h *Hub) broadcastToRole(role domain.UserRole, v any) {
	h.mu.RLock()
	targets := make([]*hubClient, 0, len(h.clients))
	for _, c := range h.clients {
		if c.role == role {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.write(v)
	}
}

// NotifyOrderCreated announces a fresh pending order to every connected
// technician so the claim pool updates live.
func (h *Hub) NotifyOrderCreated(o *domain.Order) {
	h.broadcastToRole(domain.RoleTechnician, Event{
		Type:         "order_created",
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		Status:       o.Status,
		DeviceType:   o.DeviceType,
		UrgencyLevel: o.UrgencyLevel,
	})
}

// NotifyOrderUpdated pushes a status change to the order's customer and,
// when assigned, its technician.
func (h *Hub) NotifyOrderUpdated(o *domain.Order, action string) {
	ev := Event{
		Type:        "order_updated",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Action:      action,
	}
	h.sendToUser(o.UserID, ev)
	if o.TechnicianID != nil {
		h.sendToUser(*o.TechnicianID, ev)
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.conn.Close()
		delete(h.clients, id)
	}
}
