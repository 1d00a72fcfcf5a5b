package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"streamgate/internal/logging"
	"streamgate/internal/model"
	"streamgate/internal/ratelimit"
	"streamgate/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	codeAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomCodeLen  = 8
	maxCodeRetries = 10
)

var customCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// Revoker drops live sessions of a code
type Revoker interface {
	Revoke(ctx context.Context, code string)
}

// PinService handles admin management of access codes
type PinService struct {
	codes   repository.AccessCodeRepo
	revoker Revoker
	clock   ratelimit.Clock
	log     *logrus.Entry
}

// NewPinService creates a new PIN service
func NewPinService(codes repository.AccessCodeRepo, revoker Revoker, log *logrus.Entry) *PinService {
	return &PinService{
		codes:   codes,
		revoker: revoker,
		clock:   ratelimit.SystemClock,
		log:     log,
	}
}

// SetClock replaces the wall clock used for creation and expiry dates
func (s *PinService) SetClock(c ratelimit.Clock) {
	s.clock = c
}

// RandomCode returns an 8 character code over [0-9A-Z]
func RandomCode() (string, error) {
	base := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, randomCodeLen)
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Create stores a new access code. With req.Custom set the supplied code is
// validated and used as is; otherwise a random one is generated.
func (s *PinService) Create(ctx context.Context, req *model.CreateCodeRequest, createdBy string) (*model.CreateCodeResponse, error) {
	owner := strings.TrimSpace(req.OwnerName)
	if owner == "" || req.DaysValid < 1 {
		return nil, ErrMissingFields
	}

	now := s.clock.Now()
	rec := &model.AccessCode{
		OwnerName:  owner,
		CreatedAt:  now,
		DaysValid:  req.DaysValid,
		ExpiryDate: model.ExpiryFrom(now, req.DaysValid),
		IsActive:   true,
		CreatedBy:  createdBy,
	}

	if req.Custom || req.Code != "" {
		rec.Code = NormalizeCode(req.Code)
		if !customCodePattern.MatchString(rec.Code) {
			return nil, ErrInvalidFormat
		}
		if _, err := s.codes.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrCodeExists
			}
			return nil, fmt.Errorf("failed to create access code: %w", err)
		}
		return s.created(rec), nil
	}

	for i := 0; i < maxCodeRetries; i++ {
		code, err := RandomCode()
		if err != nil {
			return nil, err
		}
		rec.Code = code
		_, err = s.codes.Create(ctx, rec)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create access code: %w", err)
		}
		return s.created(rec), nil
	}
	return nil, fmt.Errorf("no unique access code after %d attempts", maxCodeRetries)
}

func (s *PinService) created(rec *model.AccessCode) *model.CreateCodeResponse {
	s.log.WithFields(logrus.Fields{
		"code_id": rec.ID,
		"code":    logging.RedactCode(rec.Code),
		"days":    rec.DaysValid,
	}).Info("access code created")

	return &model.CreateCodeResponse{
		Success:    true,
		Code:       rec.Code,
		ID:         rec.ID,
		ExpiryDate: rec.ExpiryDate,
	}
}

// List returns every access code, newest first
func (s *PinService) List(ctx context.Context) ([]*model.AccessCode, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list access codes: %w", err)
	}
	return codes, nil
}

// Deactivate marks a code inactive and disconnects its live sessions
func (s *PinService) Deactivate(ctx context.Context, id string) (*model.AccessCode, error) {
	rec, err := s.codes.Deactivate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate access code: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	s.revoker.Revoke(ctx, rec.Code)
	s.log.WithField("code_id", id).Info("access code deactivated")
	return rec, nil
}

// Delete removes a code and disconnects its live sessions
func (s *PinService) Delete(ctx context.Context, id string) error {
	rec, err := s.codes.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete access code: %w", err)
	}
	if rec == nil {
		return ErrNotFound
	}
	s.revoker.Revoke(ctx, rec.Code)
	s.log.WithField("code_id", id).Info("access code deleted")
	return nil
}
