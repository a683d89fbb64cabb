package controllers

import (
	"net/http"
	"sync"

	"github.com/Dimwest/iot-garden-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans ingested sensor readings out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}
}

// Handle upgrades the connection and keeps it registered until the client
// goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// BroadcastReading sends a newly ingested reading to all clients.
func (h *Hub) BroadcastReading(r models.SensorReading) {
	h.broadcast(r)
}

// BroadcastNotification alerts all clients about an abnormal reading.
func (h *Hub) BroadcastNotification(r models.SensorReading) {
	h.broadcast(map[string]interface{}{
		"message": "Abnormal reading detected",
		"data":    r,
	})
}

func (h *Hub) broadcast(msg interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debugf("Dropping websocket client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
