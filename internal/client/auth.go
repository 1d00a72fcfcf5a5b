// Package client is the subscriber and admin side of streamgate: the login
// state machine, the session poller and the HTTP API client.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"streamgate/internal/client/session"
	"streamgate/internal/model"

	"github.com/sirupsen/logrus"
)

// State is the client login state
type State int

const (
	LoggedOut State = iota
	Authenticating
	LoggedInSubscriber
	LoggedInAdmin
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case LoggedInSubscriber:
		return "subscriber"
	case LoggedInAdmin:
		return "admin"
	}
	return "logged out"
}

var (
	// ErrAlreadyLoggedIn is returned when logging in without logging out first
	ErrAlreadyLoggedIn = errors.New("already logged in; log out first")
	// ErrSessionExpired is the local expiry check failing
	ErrSessionExpired = errors.New("session expired")
)

// NoticeKind tells the UI why a session ended
type NoticeKind int

const (
	NoticeExpired NoticeKind = iota
	NoticeSuperseded
)

// Notice is emitted when the client logs out on its own
type Notice struct {
	Kind    NoticeKind
	Message string
}

const (
	msgSuperseded = "This PIN was just used to sign in on another device, so this session has ended."
	msgExpired    = "Your session has expired. Please sign in again."
)

// Auth drives the client login state machine. Subscriber sessions are kept
// alive by a Poller; admin sessions only expire locally.
type Auth struct {
	backend  Backend
	store    session.Store
	clientID string
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	mu      sync.Mutex
	state   State
	current *model.LocalSession
	poller  *Poller
	ctx     context.Context

	notices chan Notice
}

// NewAuth creates a logged-out Auth. ctx bounds every poller it starts.
func NewAuth(ctx context.Context, backend Backend, store session.Store, clientID string, interval time.Duration, log *logrus.Entry) *Auth {
	return &Auth{
		backend:  backend,
		store:    store,
		clientID: clientID,
		interval: interval,
		now:      time.Now,
		log:      log,
		ctx:      ctx,
		notices:  make(chan Notice, 8),
	}
}

// Notices delivers forced-logout notices
func (a *Auth) Notices() <-chan Notice {
	return a.notices
}

// State returns the current state
func (a *Auth) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Session returns a copy of the current session, or nil when logged out
func (a *Auth) Session() *model.LocalSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	cp := *a.current
	return &cp
}

// Restore reloads a stored session at start-up. Expired sessions are
// dropped; a stored subscriber session is checked against the server once
// before polling resumes.
func (a *Auth) Restore(ctx context.Context) (State, error) {
	stored, err := a.store.Load()
	if err != nil {
		a.log.WithError(err).Warn("discarding unreadable session")
		_ = a.store.Clear()
		return LoggedOut, nil
	}
	if stored == nil {
		return LoggedOut, nil
	}
	if stored.Expired(a.now()) {
		return LoggedOut, a.store.Clear()
	}

	if !stored.IsAdmin() {
		err := a.backend.CheckSession(ctx, stored.Code, stored.SessionMarker)
		if IsRejected(err) {
			a.notify(err)
			return LoggedOut, a.store.Clear()
		}
		if err != nil {
			a.log.WithError(err).Warn("server unreachable; keeping stored session")
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.enter(stored)
	return a.state, nil
}

// LoginSubscriber exchanges an access code for a session
func (a *Auth) LoginSubscriber(ctx context.Context, code string) error {
	if err := a.begin(); err != nil {
		return err
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	grant, err := a.backend.ValidatePin(ctx, code, a.clientID)
	if err != nil {
		a.abort()
		return err
	}

	return a.finish(&model.LocalSession{
		Code:          code,
		SessionMarker: grant.Marker,
		ExpiryDate:    grant.ExpiryDate,
		OwnerName:     grant.OwnerName,
		Role:          model.RoleSubscriber,
	})
}

// LoginAdmin exchanges the admin password for an admin session
func (a *Auth) LoginAdmin(ctx context.Context, password string) error {
	if err := a.begin(); err != nil {
		return err
	}

	resp, err := a.backend.ValidateAdmin(ctx, password, a.clientID)
	if err != nil {
		a.abort()
		return err
	}
	if resp.ExpiresAt == nil || resp.Token == "" {
		a.abort()
		return fmt.Errorf("server returned no admin token")
	}

	return a.finish(&model.LocalSession{
		ExpiryDate: *resp.ExpiresAt,
		Role:       model.RoleAdministrator,
		AdminToken: resp.Token,
	})
}

// Logout ends the current session, if any
func (a *Auth) Logout() error {
	a.mu.Lock()
	p := a.leave()
	a.mu.Unlock()

	if p != nil {
		p.Stop()
	}
	return a.store.Clear()
}

// Close stops background polling without touching the stored session
func (a *Auth) Close() {
	a.mu.Lock()
	p := a.poller
	a.poller = nil
	a.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

func (a *Auth) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != LoggedOut {
		return ErrAlreadyLoggedIn
	}
	a.state = Authenticating
	return nil
}

func (a *Auth) abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = LoggedOut
}

func (a *Auth) finish(sess *model.LocalSession) error {
	if err := a.store.Save(sess); err != nil {
		a.abort()
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enter(sess)
	return nil
}

// enter switches to the logged-in state for sess. Caller holds a.mu.
func (a *Auth) enter(sess *model.LocalSession) {
	a.current = sess
	if sess.IsAdmin() {
		a.state = LoggedInAdmin
	} else {
		a.state = LoggedInSubscriber
	}

	var p *Poller
	p = NewPoller(a.interval, a.checker(sess), func(err error) { a.expire(p, err) })
	a.poller = p
	p.Start(a.ctx)
}

// checker returns the periodic check for sess: local expiry for both roles,
// plus the server liveness check for subscribers
func (a *Auth) checker(sess *model.LocalSession) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if sess.Expired(a.clock()) {
			return ErrSessionExpired
		}
		if sess.IsAdmin() {
			return nil
		}
		return a.backend.CheckSession(ctx, sess.Code, sess.SessionMarker)
	}
}

func (a *Auth) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now()
}

// leave resets to LoggedOut and returns the poller to stop. Caller holds a.mu.
func (a *Auth) leave() *Poller {
	p := a.poller
	a.poller = nil
	a.current = nil
	a.state = LoggedOut
	return p
}

// expire runs on the poller goroutine after a rejected check
func (a *Auth) expire(p *Poller, err error) {
	a.mu.Lock()
	if a.poller != p {
		// the session already ended another way
		a.mu.Unlock()
		return
	}
	a.leave()
	a.mu.Unlock()

	if clearErr := a.store.Clear(); clearErr != nil {
		a.log.WithError(clearErr).Warn("failed to clear stored session")
	}
	a.log.WithField("reason", ErrorCode(err)).Info("session ended")
	a.notify(err)
}

func (a *Auth) notify(err error) {
	n := Notice{Kind: NoticeExpired, Message: msgExpired}
	if ErrorCode(err) == model.ErrCodeSessionSuperseded {
		n = Notice{Kind: NoticeSuperseded, Message: msgSuperseded}
	}
	select {
	case a.notices <- n:
	default:
	}
}
