// Package observer streams progress events to websocket clients, such as a classroom
// dashboard or the menu overlay of a browser build.
package observer

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"toycar/internal/world"
)

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	sendBuffer = 64
)

type client struct {
	conn *websocket.Conn
	out  chan []byte
}

// Hub fans events out to connected clients. Publish never blocks: a client whose buffer
// is full misses the event.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	clients    map[*client]struct{}
	lastStatus []byte
}

// NewHub returns a hub with no clients.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log: log.Named("observer"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish implements world.Sink.
func (h *Hub) Publish(e world.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		h.log.Warn("cannot encode event", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if e.Kind == world.EventStatus {
		h.lastStatus = b
	}
	for c := range h.clients {
		select {
		case c.out <- b:
		default:
			h.log.Debug("observer lagging, event dropped", zap.String("kind", string(e.Kind)))
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades the request and streams events until the client goes away. New
// clients first receive the latest status line.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.log.Debug("upgrade failed", zap.Error(err))
			return
		}
		c := &client{conn: conn, out: make(chan []byte, sendBuffer)}

		h.mu.Lock()
		if h.lastStatus != nil {
			c.out <- h.lastStatus
		}
		h.clients[c] = struct{}{}
		h.mu.Unlock()
		h.log.Info("observer connected", zap.String("remote", r.RemoteAddr))

		done := make(chan struct{})
		go h.writeLoop(c, done)

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(done)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		_ = conn.Close()
		h.log.Info("observer disconnected", zap.String("remote", r.RemoteAddr))
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case b := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
