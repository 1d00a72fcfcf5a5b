// Package logging builds the logrus loggers used by the server and client.
//
// Usage:
//
//	log := logging.NewLogger("api", "info")
//	log.WithField("code_id", id).Info("session issued")
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a JSON logger for a named component writing to stdout.
// Unknown or empty levels fall back to info.
func NewLogger(service, level string) *logrus.Entry {
	return newLogger(os.Stdout, service, level)
}

func newLogger(out io.Writer, service, level string) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("service", service)
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// RedactToken keeps the first 8 characters of a marker or token so log
// lines can be correlated without exposing the credential.
func RedactToken(t string) string {
	if len(t) == 0 {
		return "[empty]"
	}
	if len(t) <= 8 {
		return t[:1] + "..."
	}
	return t[:8] + "..."
}

// RedactCode masks an access code down to its last two characters
func RedactCode(code string) string {
	if len(code) <= 2 {
		return "**"
	}
	return "******"[:min(6, len(code)-2)] + code[len(code)-2:]
}
