package ws

import (
	"encoding/json"

	"streamgate/internal/logging"
	"streamgate/internal/metrics"

	"github.com/sirupsen/logrus"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Session message types
const (
	MsgSessionSuperseded MessageType = "session_superseded"
	MsgSessionRevoked    MessageType = "session_revoked"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks session websockets per access code. It runs one goroutine
// that owns the connection index.
type Hub struct {
	// code -> connections, one per device that logged in with the code
	conns map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	notify     chan *notification

	log *logrus.Entry
}

// Connection is one subscriber device listening for session events
type Connection struct {
	Code   string
	Marker string
	Send   chan []byte
}

type notification struct {
	code       string
	keepMarker string
	message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *logrus.Entry) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		notify:     make(chan *notification, 256),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			if h.conns[conn.Code] == nil {
				h.conns[conn.Code] = make(map[*Connection]struct{})
			}
			h.conns[conn.Code][conn] = struct{}{}
			metrics.WSConnections.Inc()
			h.log.WithField("code", logging.RedactCode(conn.Code)).Debug("session socket connected")

		case conn := <-h.unregister:
			h.drop(conn)

		case n := <-h.notify:
			data, _ := json.Marshal(n.message)
			for conn := range h.conns[n.code] {
				if n.keepMarker != "" && conn.Marker == n.keepMarker {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full; the poller still catches it
				}
				h.drop(conn)
			}
		}
	}
}

// drop removes conn and closes its send channel once
func (h *Hub) drop(conn *Connection) {
	set, ok := h.conns[conn.Code]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, conn.Code)
	}
	close(conn.Send)
	metrics.WSConnections.Dec()
	h.log.WithField("code", logging.RedactCode(conn.Code)).Debug("session socket closed")
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// NotifyCode sends msgType to every connection of code whose marker is not
// keepMarker, then closes them (implements service.Broadcaster)
func (h *Hub) NotifyCode(code, keepMarker, msgType string) {
	h.notify <- &notification{
		code:       code,
		keepMarker: keepMarker,
		message:    &Message{Type: MessageType(msgType)},
	}
}
