package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/socialcoffee/coffee-api/models"
)

// Hub pushes order lifecycle events to connected admin dashboards.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

type orderEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// Handler upgrades the connection and keeps it registered until it drops.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		h.mu.Lock()
		h.conns[conn] = true
		h.mu.Unlock()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.conns, conn)
				h.mu.Unlock()
				break
			}
		}
	}
}

// OrderCreated broadcasts a freshly submitted order.
func (h *Hub) OrderCreated(order models.Order) {
	h.broadcast(orderEvent{Type: "order_created", Order: order})
}

// OrderPaid broadcasts a payment confirmation; satisfies reconcile.Notifier.
func (h *Hub) OrderPaid(order models.Order) {
	h.broadcast(orderEvent{Type: "order_paid", Order: order})
}

func (h *Hub) broadcast(event orderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}
