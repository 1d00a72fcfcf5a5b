package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamgate/internal/model"
)

// Backend is the server surface the client state machine needs
type Backend interface {
	ValidatePin(ctx context.Context, code, clientID string) (*model.SessionGrant, error)
	ValidateAdmin(ctx context.Context, password, clientID string) (*model.AdminLoginResponse, error)
	CheckSession(ctx context.Context, code, marker string) error
}

// APIError is a failure answered by the server. Transport failures are
// returned as plain wrapped errors instead.
type APIError struct {
	Status        int
	Code          string
	BlockedUntil  *time.Time
	RemainingTime int
}

func (e *APIError) Error() string {
	if e.Code == model.ErrCodeRateLimited {
		return fmt.Sprintf("%s (try again in %d min)", e.Code, e.RemainingTime)
	}
	return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
}

// IsRejected reports whether err is the server refusing the credentials, as
// opposed to the server being unreachable or failing
func IsRejected(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

// ErrorCode extracts the server error code from err, if any
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	if errors.Is(err, ErrSessionExpired) {
		return model.ErrCodeExpired
	}
	return ""
}

// API talks JSON to the streamgate server
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates a client for the server at baseURL
func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (a *API) ValidatePin(ctx context.Context, code, clientID string) (*model.SessionGrant, error) {
	var resp model.PinLoginResponse
	err := a.do(ctx, http.MethodPost, "/v1/auth/pin", nil, model.PinLoginRequest{Code: code, ClientID: clientID}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Grant == nil {
		return nil, fmt.Errorf("server returned no session")
	}
	return resp.Grant, nil
}

func (a *API) ValidateAdmin(ctx context.Context, password, clientID string) (*model.AdminLoginResponse, error) {
	var resp model.AdminLoginResponse
	err := a.do(ctx, http.MethodPost, "/v1/auth/admin", nil, model.AdminLoginRequest{Password: password, ClientID: clientID}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) CheckSession(ctx context.Context, code, marker string) error {
	var resp model.SessionCheckResponse
	return a.do(ctx, http.MethodPost, "/v1/auth/session", nil, model.SessionCheckRequest{Code: code, Marker: marker}, &resp)
}

// Movies lists movies visible to sess, filtered by query
func (a *API) Movies(ctx context.Context, sess *model.LocalSession, query string) ([]model.Movie, error) {
	path := "/v1/catalog/movies"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var movies []model.Movie
	if err := a.do(ctx, http.MethodGet, path, credentials(sess), nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Welcome fetches the login screen message
func (a *API) Welcome(ctx context.Context) (*model.WelcomeMessage, error) {
	var msg model.WelcomeMessage
	if err := a.do(ctx, http.MethodGet, "/v1/settings/welcome", nil, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func credentials(sess *model.LocalSession) http.Header {
	h := http.Header{}
	if sess.IsAdmin() {
		h.Set("Authorization", "Bearer "+sess.AdminToken)
		return h
	}
	h.Set("X-Pin-Code", sess.Code)
	h.Set("X-Session-Id", sess.SessionMarker)
	return h
}

func (a *API) do(ctx context.Context, method, path string, header http.Header, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var failure model.ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&failure); err != nil || failure.Error == "" {
			failure.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{
			Status:        res.StatusCode,
			Code:          failure.Error,
			BlockedUntil:  failure.BlockedUntil,
			RemainingTime: failure.RemainingTime,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
