package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"streamgate/internal/cache"
	"streamgate/internal/logging"
	"streamgate/internal/metrics"
	"streamgate/internal/model"
	"streamgate/internal/ratelimit"
	"streamgate/internal/repository"

	"github.com/sirupsen/logrus"
)

// markerBytes is the entropy of a session marker before hex encoding
const markerBytes = 32

// AccessService issues session markers for access codes and answers
// liveness checks against the current marker
type AccessService struct {
	codes       repository.AccessCodeRepo
	markers     cache.SessionCache
	limiter     *ratelimit.Limiter
	broadcaster Broadcaster
	clock       ratelimit.Clock
	newMarker   func() (string, error)
	log         *logrus.Entry
}

// NewAccessService creates a new access service
func NewAccessService(
	codes repository.AccessCodeRepo,
	markers cache.SessionCache,
	limiter *ratelimit.Limiter,
	log *logrus.Entry,
) *AccessService {
	return &AccessService{
		codes:       codes,
		markers:     markers,
		limiter:     limiter,
		broadcaster: nopBroadcaster{},
		clock:       ratelimit.SystemClock,
		newMarker:   NewMarker,
		log:         log,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AccessService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the wall clock used for expiry decisions
func (s *AccessService) SetClock(c ratelimit.Clock) {
	s.clock = c
}

// NewMarker returns 32 random bytes, hex encoded
func NewMarker() (string, error) {
	b := make([]byte, markerBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate marker: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NormalizeCode trims and upper-cases user input
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks an access code and, when usable, issues a fresh
// session marker that replaces any previous one. A *ratelimit.LimitedError
// is returned while clientID is locked out, even for a valid code.
func (s *AccessService) ValidateCode(ctx context.Context, code, clientID string) (*model.SessionGrant, error) {
	code = NormalizeCode(code)
	clientID = strings.TrimSpace(clientID)
	if code == "" || clientID == "" {
		return nil, ErrMissingFields
	}

	if err := s.limiter.Check(ctx, clientID); err != nil {
		var limited *ratelimit.LimitedError
		if errors.As(err, &limited) {
			metrics.AuthEvents.WithLabelValues("pin", model.ErrCodeRateLimited).Inc()
			return nil, err
		}
		s.log.WithError(err).Warn("pin limiter unavailable")
	}

	now := s.clock.Now()
	rec, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get access code: %w", err)
	}
	if reason := rejection(rec, now); reason != nil {
		return nil, s.reject(ctx, clientID, code, reason)
	}

	marker, err := s.newMarker()
	if err != nil {
		return nil, err
	}

	prev, err := s.codes.RotateMarker(ctx, code, marker, now)
	if err != nil {
		return nil, fmt.Errorf("failed to store marker: %w", err)
	}
	if prev == nil {
		// deactivated or expired between the read and the update
		return nil, s.reject(ctx, clientID, code, ErrInactive)
	}

	if err := s.limiter.Reset(ctx, clientID); err != nil {
		s.log.WithError(err).Warn("failed to reset pin attempts")
	}

	state := model.StateOf(prev)
	state.Marker = marker
	state.Version = prev.SessionVersion + 1
	if err := s.markers.Set(ctx, code, state); err != nil {
		// a stale entry would reject the new marker, so drop it
		s.log.WithError(err).Warn("failed to cache marker")
		_ = s.markers.Delete(ctx, code)
	}

	if prev.SessionMarker != "" {
		s.broadcaster.NotifyCode(code, marker, MsgSessionSuperseded)
	}

	metrics.AuthEvents.WithLabelValues("pin", "success").Inc()
	s.log.WithFields(logrus.Fields{
		"code":    logging.RedactCode(code),
		"code_id": prev.ID,
		"marker":  logging.RedactToken(marker),
	}).Info("session issued")

	return &model.SessionGrant{
		ID:         prev.ID,
		OwnerName:  prev.OwnerName,
		ExpiryDate: prev.ExpiryDate,
		Marker:     marker,
	}, nil
}

// CheckSession reports whether marker is the current marker of an active,
// unexpired code. It never writes to the credential store.
func (s *AccessService) CheckSession(ctx context.Context, code, marker string) error {
	code = NormalizeCode(code)
	marker = strings.TrimSpace(marker)
	if code == "" || marker == "" {
		return ErrMissingFields
	}

	state, err := s.state(ctx, code)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	outcome := "ok"
	var result error
	switch {
	case state == nil:
		outcome, result = model.ErrCodeNotFound, ErrNotFound
	case now.After(state.ExpiryDate):
		outcome, result = model.ErrCodeExpired, ErrExpired
	case !state.IsActive:
		outcome, result = model.ErrCodeInactive, ErrInactive
	case state.Marker != marker:
		outcome, result = model.ErrCodeSessionSuperseded, ErrSessionSuperseded
	}
	metrics.SessionChecks.WithLabelValues(outcome).Inc()
	return result
}

// state reads the marker state from cache, falling back to Mongo
func (s *AccessService) state(ctx context.Context, code string) (*model.MarkerState, error) {
	state, err := s.markers.Get(ctx, code)
	if err != nil {
		s.log.WithError(err).Warn("marker cache read failed")
	}
	if state != nil {
		return state, nil
	}

	rec, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get access code: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	state = model.StateOf(rec)
	if err := s.markers.Set(ctx, code, state); err != nil {
		s.log.WithError(err).Warn("failed to cache marker")
	}
	return state, nil
}

// Revoke drops the cached marker and disconnects every holder of code.
// Called after a code is deactivated or deleted.
func (s *AccessService) Revoke(ctx context.Context, code string) {
	if err := s.markers.Delete(ctx, code); err != nil {
		s.log.WithError(err).Warn("failed to drop cached marker")
	}
	s.broadcaster.NotifyCode(code, "", MsgSessionRevoked)
}

func rejection(rec *model.AccessCode, now time.Time) error {
	switch {
	case rec == nil:
		return ErrNotFound
	case rec.IsExpired(now):
		return ErrExpired
	case !rec.IsActive:
		return ErrInactive
	}
	return nil
}

func (s *AccessService) reject(ctx context.Context, clientID, code string, reason error) error {
	if err := s.limiter.Fail(ctx, clientID); err != nil {
		s.log.WithError(err).Warn("failed to record pin attempt")
	}
	metrics.AuthEvents.WithLabelValues("pin", ErrorCode(reason)).Inc()
	s.log.WithFields(logrus.Fields{
		"code":   logging.RedactCode(code),
		"reason": ErrorCode(reason),
	}).Info("access code rejected")
	return reason
}
