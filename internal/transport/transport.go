// Package transport exposes the session adapter over a websocket, mirroring
// the original server's accept-loop/per-connection-state shape with
// gorilla/websocket in place of tokio-tungstenite.
package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"shatranj/internal/session"
	"shatranj/internal/ttable"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server upgrades incoming HTTP connections to websockets and runs one
// session.Adapter per connection against a shared transposition table.
type Server struct {
	tt       *ttable.Table
	maxDepth int
}

// New returns a Server backed by tt, searching to at most maxDepth.
func New(tt *ttable.Table, maxDepth int) *Server {
	return &Server{tt: tt, maxDepth: maxDepth}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket handshake failed: %v", err)
		return
	}
	defer conn.Close()

	sink := &writeSink{conn: conn}

	adapter := session.New(s.tt, s.maxDepth, func(snap session.Snapshot) {
		sink.Send(snap)
	})
	defer adapter.Close()

	addr := r.RemoteAddr
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("connection %s closed: %v", addr, err)
			return
		}
		if msgType != websocket.TextMessage {
			log.Printf("connection %s closed: non-text frame", addr)
			return
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			log.Printf("connection %s closed: invalid message: %v", addr, err)
			return
		}

		switch {
		case hasKey(raw, "Reset"):
			adapter.Reset()
		case hasKey(raw, "Move"):
			var cmd session.MoveCmd
			if err := json.Unmarshal(raw["Move"], &cmd); err != nil {
				log.Printf("connection %s closed: invalid move payload: %v", addr, err)
				return
			}
			if !adapter.Move(cmd.From, cmd.To) {
				log.Printf("connection %s: invalid move %s-%s ignored", addr, cmd.From, cmd.To)
			}
		default:
			log.Printf("connection %s closed: unrecognized message", addr)
			return
		}
	}
}

func hasKey(raw map[string]json.RawMessage, key string) bool {
	_, ok := raw[key]
	return ok
}

// writeSink serialises concurrent writers onto a single websocket
// connection; gorilla/websocket forbids concurrent writes from multiple
// goroutines.
type writeSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *writeSink) Send(snap session.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(snap); err != nil {
		log.Printf("write failed: %v", err)
	}
}
