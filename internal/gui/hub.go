package gui

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syuuma-ito/whisper-app/internal/logging"
	"github.com/syuuma-ito/whisper-app/internal/session"
)

const writeTimeout = 10 * time.Second

// hub fans session events out to connected websocket clients
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *logging.Logger
}

func newHub(logger *logging.Logger) *hub {
	return &hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// add sends the client its initial snapshot and then registers it.
// The snapshot write happens under the hub lock so it cannot
// interleave with a broadcast writing the same connection.
func (h *hub) add(conn *websocket.Conn, snapshot session.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(snapshot); err != nil {
		_ = conn.Close()
		return err
	}
	h.clients[conn] = true
	return nil
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}

// broadcast sends the event to every client; clients that fail to
// accept the write are dropped.
func (h *hub) broadcast(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debugw("dropping websocket client", "error", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
