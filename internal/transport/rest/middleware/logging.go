package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"streamgate/internal/model"
	"streamgate/internal/telemetry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and logs one line per request
func RequestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := log.WithFields(logrus.Fields{
				"request_id":  id,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("request")
				return
			}
			entry.Debug("request")
		})
	}
}

// Recover turns a handler panic into a 500 and reports it
func Recover(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					err := fmt.Errorf("panic: %v", v)
					log.WithFields(logrus.Fields{
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}).Error(err)
					telemetry.CaptureError(err, map[string]string{"path": r.URL.Path})
					writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: model.ErrCodeInternal})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
