package realtime

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks live websocket connections per user and pushes notification
// payloads to them. Delivery is best-effort and unordered; a client that
// misses a push catches up from the notification list endpoint.
type Hub struct {
	mtx   sync.RWMutex
	conns map[uuid.UUID]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uuid.UUID]map[*websocket.Conn]bool)}
}

// Serve upgrades the request and parks the connection until the client
// closes it. Incoming frames are discarded; the channel is push-only.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Realtime: websocket upgrade failed", err)
		return
	}

	h.register(userID, ws)
	defer h.unregister(userID, ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(userID uuid.UUID, ws *websocket.Conn) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][ws] = true
	metrics.WebsocketConnections.Inc()
	logger.Info("Realtime: client connected", zap.String("user_id", userID.String()))
}

func (h *Hub) unregister(userID uuid.UUID, ws *websocket.Conn) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	delete(h.conns[userID], ws)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
	metrics.WebsocketConnections.Dec()
	ws.Close()
}

// Push sends the payload to every live connection of the user. Write
// failures only drop that connection's message; the row in the
// notifications table remains the source of truth.
func (h *Hub) Push(userID uuid.UUID, payload any) {
	h.mtx.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[userID]))
	for ws := range h.conns[userID] {
		conns = append(conns, ws)
	}
	h.mtx.RUnlock()

	for _, ws := range conns {
		if err := ws.WriteJSON(payload); err != nil {
			logger.Warn("Realtime: push failed", zap.Error(err))
			continue
		}
		metrics.NotificationsPushed.Inc()
	}
}

// Connections reports the number of live connections for the user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.conns[userID])
}
