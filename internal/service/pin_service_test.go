package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"streamgate/internal/model"
	"streamgate/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRevoker struct {
	mu    sync.Mutex
	codes []string
}

func (r *recordingRevoker) Revoke(_ context.Context, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func newPinFixture(t *testing.T) (*PinService, *repotest.Codes, *recordingRevoker, *repotest.Clock) {
	t.Helper()
	codes := repotest.NewCodes()
	rev := &recordingRevoker{}
	clock := repotest.NewClock()
	svc := NewPinService(codes, rev, testLog)
	svc.SetClock(clock)
	return svc, codes, rev, clock
}

func TestPinCreate_Custom(t *testing.T) {
	svc, codes, _, clock := newPinFixture(t)

	resp, err := svc.Create(context.Background(), &model.CreateCodeRequest{
		Code: " test1234 ", OwnerName: "Maria", DaysValid: 1, Custom: true,
	}, "admin")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "TEST1234", resp.Code)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, clock.Now().Add(24*time.Hour), resp.ExpiryDate)

	stored, _ := codes.GetByCode(context.Background(), "TEST1234")
	require.NotNil(t, stored)
	assert.True(t, stored.IsActive)
	assert.Equal(t, "admin", stored.CreatedBy)
	assert.Empty(t, stored.SessionMarker)
}

func TestPinCreate_CustomValidation(t *testing.T) {
	svc, _, _, _ := newPinFixture(t)
	ctx := context.Background()

	for _, code := range []string{"ABC12", "ABCDEFGHIJKLM", "ABC-1234", "ÁBC1234"} {
		_, err := svc.Create(ctx, &model.CreateCodeRequest{Code: code, OwnerName: "x", DaysValid: 1, Custom: true}, "admin")
		assert.ErrorIs(t, err, ErrInvalidFormat, code)
	}

	_, err := svc.Create(ctx, &model.CreateCodeRequest{Code: "ABC123", OwnerName: "x", DaysValid: 1, Custom: true}, "admin")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.CreateCodeRequest{Code: "abc123", OwnerName: "y", DaysValid: 1, Custom: true}, "admin")
	assert.ErrorIs(t, err, ErrCodeExists)
}

func TestPinCreate_MissingFields(t *testing.T) {
	svc, _, _, _ := newPinFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateCodeRequest{OwnerName: " ", DaysValid: 1}, "admin")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Create(ctx, &model.CreateCodeRequest{OwnerName: "Maria", DaysValid: 0}, "admin")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestPinCreate_Random(t *testing.T) {
	svc, codes, _, _ := newPinFixture(t)
	pattern := regexp.MustCompile(`^[0-9A-Z]{8}$`)

	for i := 0; i < 20; i++ {
		resp, err := svc.Create(context.Background(), &model.CreateCodeRequest{OwnerName: "Maria", DaysValid: 30}, "admin")
		require.NoError(t, err)
		assert.Regexp(t, pattern, resp.Code)
	}
	total, active, _ := codes.Count(context.Background())
	assert.EqualValues(t, 20, total)
	assert.EqualValues(t, 20, active)
}

func TestPinDeactivateAndDelete(t *testing.T) {
	svc, codes, rev, _ := newPinFixture(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &model.CreateCodeRequest{Code: "TEST1234", OwnerName: "Maria", DaysValid: 1, Custom: true}, "admin")
	require.NoError(t, err)

	rec, err := svc.Deactivate(ctx, resp.ID)
	require.NoError(t, err)
	assert.False(t, rec.IsActive)

	require.NoError(t, svc.Delete(ctx, resp.ID))
	stored, _ := codes.GetByCode(ctx, "TEST1234")
	assert.Nil(t, stored)
	assert.Equal(t, []string{"TEST1234", "TEST1234"}, rev.codes)

	_, err = svc.Deactivate(ctx, resp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

func TestPinList_NewestFirst(t *testing.T) {
	svc, _, _, clock := newPinFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateCodeRequest{Code: "FIRST1", OwnerName: "a", DaysValid: 1, Custom: true}, "admin")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.Create(ctx, &model.CreateCodeRequest{Code: "SECOND", OwnerName: "b", DaysValid: 1, Custom: true}, "admin")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SECOND", list[0].Code)
}
