package camerasync

import (
	"net/http"
	"sync"

	"geoview/internal/logging"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub relays every pose a peer sends to all other peers.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

// ServeHTTP upgrades the request and serves the peer until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("camera sync upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	logging.Logger().Info("camera sync peer joined", "remote", conn.RemoteAddr().String())

	defer h.drop(conn)
	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.broadcast(conn, kind, msg)
	}
}

func (h *Hub) broadcast(from *websocket.Conn, kind int, msg []byte) {
	type target struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}
	h.mu.Lock()
	targets := make([]target, 0, len(h.clients))
	for c, l := range h.clients {
		if c != from {
			targets = append(targets, target{c, l})
		}
	}
	h.mu.Unlock()

	for _, t := range targets {
		t.lock.Lock()
		err := t.conn.WriteMessage(kind, msg)
		t.lock.Unlock()
		if err != nil {
			logging.Logger().Warn("camera sync send failed", "remote", t.conn.RemoteAddr().String(), "err", err)
			h.drop(t.conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every peer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
