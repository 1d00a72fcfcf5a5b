package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"streamgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_ValidatePin(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/pin", r.URL.Path)
		var req model.PinLoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "TEST1234", req.Code)
		assert.Equal(t, "device-1", req.ClientID)

		_ = json.NewEncoder(w).Encode(model.PinLoginResponse{
			Success: true,
			Grant:   &model.SessionGrant{ID: "c1", OwnerName: "Alice", ExpiryDate: exp, Marker: "abc"},
		})
	}))
	defer srv.Close()

	grant, err := NewAPI(srv.URL+"/", time.Second).ValidatePin(context.Background(), "TEST1234", "device-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", grant.Marker)
	assert.True(t, exp.Equal(grant.ExpiryDate))
}

func TestAPI_RateLimited(t *testing.T) {
	until := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:         model.ErrCodeRateLimited,
			BlockedUntil:  &until,
			RemainingTime: 15,
		})
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, time.Second).ValidateAdmin(context.Background(), "x", "device-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, 15, apiErr.RemainingTime)
	assert.True(t, until.Equal(*apiErr.BlockedUntil))
	assert.Contains(t, err.Error(), "15 min")
}

func TestAPI_CheckSessionOutcomes(t *testing.T) {
	var mu sync.Mutex
	status, code := http.StatusOK, ""
	respond := func(s int, c string) {
		mu.Lock()
		defer mu.Unlock()
		status, code = s, c
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: code})
			return
		}
		_ = json.NewEncoder(w).Encode(model.SessionCheckResponse{Success: true})
	}))
	defer srv.Close()
	api := NewAPI(srv.URL, time.Second)

	require.NoError(t, api.CheckSession(context.Background(), "TEST1234", "m1"))

	respond(http.StatusUnauthorized, model.ErrCodeSessionSuperseded)
	err := api.CheckSession(context.Background(), "TEST1234", "m1")
	assert.True(t, IsRejected(err))
	assert.Equal(t, model.ErrCodeSessionSuperseded, ErrorCode(err))

	respond(http.StatusInternalServerError, model.ErrCodeInternal)
	err = api.CheckSession(context.Background(), "TEST1234", "m1")
	assert.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestAPI_UnreachableIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewAPI(url, time.Second).CheckSession(context.Background(), "TEST1234", "m1")
	require.Error(t, err)
	assert.False(t, IsRejected(err))
	assert.Empty(t, ErrorCode(err))
}

func TestAPI_MoviesSendsCredentials(t *testing.T) {
	var (
		mu  sync.Mutex
		got http.Header
	)
	header := func() http.Header {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Clone()
		mu.Unlock()
		assert.Equal(t, "space", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode([]model.Movie{{Title: "Space Drift"}})
	}))
	defer srv.Close()
	api := NewAPI(srv.URL, time.Second)

	movies, err := api.Movies(context.Background(), &model.LocalSession{
		Code: "TEST1234", SessionMarker: "m1", Role: model.RoleSubscriber,
	}, "space")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "TEST1234", header().Get("X-Pin-Code"))
	assert.Equal(t, "m1", header().Get("X-Session-Id"))

	_, err = api.Movies(context.Background(), &model.LocalSession{
		Role: model.RoleAdministrator, AdminToken: "jwt",
	}, "space")
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt", header().Get("Authorization"))
	assert.Empty(t, header().Get("X-Pin-Code"))
}

func TestIsRejected_LocalExpiry(t *testing.T) {
	assert.True(t, IsRejected(ErrSessionExpired))
	assert.Equal(t, model.ErrCodeExpired, ErrorCode(ErrSessionExpired))
	assert.False(t, IsRejected(nil))
}
