package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dispatch-sim/internal/general/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is a broadcast-only websocket hub: every connected admin dashboard
// client receives the same tick snapshots, pushed as they finalize.
// Connections carry no per-connection routing key; the JWT auth happens
// once, at the HTTP upgrade, via the admin API's existing middleware.
type Hub struct {
	log *logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex
}

// NewHub constructs an empty broadcast hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{log: log, conns: make(map[*websocket.Conn]*sync.Mutex)}
}

// ServeHTTP upgrades the connection and keeps it alive with ping/pong until
// the client disconnects. The caller is expected to have already run the
// JWT auth middleware in front of this handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(r.Context(), "ws_upgrade_failed", "failed to upgrade admin stream connection", err, nil)
		return
	}

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.conns[conn] = writeMu
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.pingLoop(conn, writeMu)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) pingLoop(conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.PingMessage, nil)
		writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// Broadcast pushes snapshot, marshaled as JSON, to every connected client.
func (h *Hub) Broadcast(snapshot any) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, writeMu := range h.conns {
		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, body)
		writeMu.Unlock()
	}
	return nil
}
