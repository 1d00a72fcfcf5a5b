package client

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often a subscriber session is re-checked
const DefaultPollInterval = 30 * time.Second

// checkTimeout bounds a single liveness request
const checkTimeout = 10 * time.Second

// Poller re-checks a session on a fixed interval. The first rejected check
// calls onFail and ends the poller; transport errors are ignored and the
// check is retried on the next tick.
type Poller struct {
	interval time.Duration
	check    func(ctx context.Context) error
	onFail   func(err error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a stopped poller
func NewPoller(interval time.Duration, check func(ctx context.Context) error, onFail func(err error)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, check: check, onFail: onFail}
}

// Start begins polling until ctx is done or Stop is called. Starting a
// running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels the timer and waits for the polling goroutine to exit.
// It must not be called from onFail.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			err := p.check(cctx)
			cancel()

			if err == nil || ctx.Err() != nil {
				continue
			}
			if IsRejected(err) {
				p.onFail(err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
