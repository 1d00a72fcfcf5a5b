// Package telemetry reports server faults to Sentry. With an empty DSN every
// call is a no-op.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry initializes the Sentry SDK. An empty dsn disables reporting.
func InitSentry(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
		Tags:             map[string]string{"service": "streamgate"},
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	return nil
}

// CaptureError sends err with tags
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events
func Flush() {
	sentry.Flush(2 * time.Second)
}

// scrub drops credentials from request context before events leave the process
func scrub(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User.IPAddress = ""
	if event.Request != nil {
		for k := range event.Request.Headers {
			switch k {
			case "Authorization", "Cookie", "X-Pin-Code", "X-Session-Id":
				event.Request.Headers[k] = "[redacted]"
			}
		}
		event.Request.QueryString = ""
		event.Request.Data = ""
	}
	return event
}
