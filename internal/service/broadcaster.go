package service

// Push message types sent to websocket holders of a code
const (
	MsgSessionSuperseded = "session_superseded"
	MsgSessionRevoked    = "session_revoked"
)

// Broadcaster pushes session events to connected clients (avoids import cycle).
// Every connection for code whose marker differs from keepMarker receives
// msgType and is then closed. An empty keepMarker reaches all of them.
type Broadcaster interface {
	NotifyCode(code, keepMarker, msgType string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) NotifyCode(string, string, string) {}
