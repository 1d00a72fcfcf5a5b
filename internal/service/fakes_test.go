package service

import (
	"sync"

	"streamgate/internal/logging"
)

var testLog = logging.Discard()

type notice struct {
	code, keep, msgType string
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []notice
}

func (b *fakeBroadcaster) NotifyCode(code, keepMarker, msgType string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, notice{code, keepMarker, msgType})
}

func (b *fakeBroadcaster) notices() []notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]notice(nil), b.sent...)
}

