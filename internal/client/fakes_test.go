package client

import (
	"context"
	"sync"
	"time"

	"streamgate/internal/model"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

type fakeBackend struct {
	mu       sync.Mutex
	grant    *model.SessionGrant
	admin    *model.AdminLoginResponse
	loginErr error
	checkErr error
	checks   int
}

func (f *fakeBackend) ValidatePin(_ context.Context, code, _ string) (*model.SessionGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.grant, nil
}

func (f *fakeBackend) ValidateAdmin(context.Context, string, string) (*model.AdminLoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.admin, nil
}

func (f *fakeBackend) CheckSession(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.checkErr
}

func (f *fakeBackend) setCheck(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkErr = err
}

func (f *fakeBackend) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func grantFor(ttl time.Duration) *model.SessionGrant {
	return &model.SessionGrant{
		ID:         "code1",
		OwnerName:  "Alice",
		ExpiryDate: time.Now().Add(ttl),
		Marker:     "m1",
	}
}

var supersededErr = &APIError{Status: 401, Code: model.ErrCodeSessionSuperseded}
