package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"streamgate/internal/model"
	"streamgate/internal/service"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // clients are native apps and terminals, not browsers
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub       *Hub
	accessSvc *service.AccessService
	log       *logrus.Entry
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, accessSvc *service.AccessService, log *logrus.Entry) *Handler {
	return &Handler{
		hub:       hub,
		accessSvc: accessSvc,
		log:       log,
	}
}

// SessionWS handles GET /v1/ws/session?pin_code=&session_id=
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	code := service.NormalizeCode(r.URL.Query().Get("pin_code"))
	marker := r.URL.Query().Get("session_id")

	if err := h.accessSvc.CheckSession(r.Context(), code, marker); err != nil {
		reason := service.ErrorCode(err)
		status := http.StatusUnauthorized
		if reason == model.ErrCodeInternal {
			h.log.WithError(err).Error("session check failed")
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(model.ErrorResponse{Success: false, Error: reason})
		return
	}

	conn := &Connection{
		Code:   code,
		Marker: marker,
		Send:   make(chan []byte, 8),
	}

	// registered before the handshake completes so no notice sent after
	// the client sees the upgrade is missed
	h.hub.Register(conn)

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		h.hub.Unregister(conn)
		return
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("websocket read error")
			}
			break
		}
		// Clients only listen; anything they send is ignored
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
