package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"streamgate/internal/config"
	"streamgate/internal/metrics"
	"streamgate/internal/model"
	"streamgate/internal/ratelimit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the admin gate. It checks the server-held admin secret
// and issues short-lived administrator tokens.
type AuthService struct {
	password     string
	passwordHash []byte
	jwtSecret    []byte
	sessionTTL   time.Duration
	limiter      *ratelimit.Limiter
	clock        ratelimit.Clock
	log          *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config, limiter *ratelimit.Limiter, log *logrus.Entry) *AuthService {
	ttl := cfg.AdminSessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		password:     cfg.AdminPassword,
		passwordHash: []byte(cfg.AdminPasswordHash),
		jwtSecret:    []byte(cfg.JWTSecret),
		sessionTTL:   ttl,
		limiter:      limiter,
		clock:        ratelimit.SystemClock,
		log:          log,
	}
}

// SetClock replaces the wall clock used for token timestamps
func (s *AuthService) SetClock(c ratelimit.Clock) {
	s.clock = c
}

// ValidateAdmin checks password for clientID and returns an admin token.
// After three failures the client is locked out and a *ratelimit.LimitedError
// is returned even for the right password.
func (s *AuthService) ValidateAdmin(ctx context.Context, password, clientID string) (*model.AdminLoginResponse, error) {
	clientID = strings.TrimSpace(clientID)
	if password == "" || clientID == "" {
		return nil, ErrMissingFields
	}
	if !s.configured() {
		s.log.Error("admin password not configured")
		return nil, ErrAdminNotConfigured
	}

	if err := s.limiter.Check(ctx, clientID); err != nil {
		var limited *ratelimit.LimitedError
		if errors.As(err, &limited) {
			metrics.AuthEvents.WithLabelValues("admin", model.ErrCodeRateLimited).Inc()
			s.log.WithField("remaining", limited.Remaining.String()).Warn("admin login blocked")
			return nil, err
		}
		s.log.WithError(err).Warn("admin limiter unavailable")
	}

	if !s.matches(password) {
		if err := s.limiter.Fail(ctx, clientID); err != nil {
			s.log.WithError(err).Warn("failed to record admin attempt")
		}
		metrics.AuthEvents.WithLabelValues("admin", model.ErrCodeInvalidPassword).Inc()
		s.log.Info("admin password rejected")
		return nil, ErrInvalidPassword
	}

	if err := s.limiter.Reset(ctx, clientID); err != nil {
		s.log.WithError(err).Warn("failed to reset admin attempts")
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.sessionTTL)
	claims := &model.AdminClaims{
		Role: model.RoleAdministrator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin token: %w", err)
	}

	metrics.AuthEvents.WithLabelValues("admin", "success").Inc()
	s.log.WithField("jti", claims.ID).Info("admin session issued")

	return &model.AdminLoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *AuthService) configured() bool {
	return len(s.passwordHash) > 0 || s.password != ""
}

func (s *AuthService) matches(password string) bool {
	if len(s.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// ValidateAdminToken validates an admin JWT and returns claims. With no
// admin secret configured no token is valid.
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	if !s.configured() {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid || claims.Role != model.RoleAdministrator {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
