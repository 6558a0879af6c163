// Package logging configures the process-wide logrus logger and provides
// the HTTP request logging middleware.
package logging

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Config controls log output.
type Config struct {
	Level  string `yaml:"level" koanf:"level"`   // debug, info, warn, error
	Format string `yaml:"format" koanf:"format"` // text or json
}

// Common field names.
const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status_code"
	FieldLatency   = "latency"
	FieldBytes     = "bytes"
	FieldClientIP  = "client_ip"
	FieldError     = "error"
)

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return log, nil
}

// Setup configures the standard logrus logger from cfg and returns it.
// Logs go to stderr so stdout stays free for the MCP protocol.
func Setup(cfg Config) (*logrus.Logger, error) {
	configured, err := New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	std := logrus.StandardLogger()
	std.SetOutput(configured.Out)
	std.SetLevel(configured.GetLevel())
	std.SetFormatter(configured.Formatter)
	return std, nil
}

// Requests logs one entry per HTTP request. It expects chi's RequestID and
// RealIP middleware to run first.
func Requests(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				FieldRequestID: middleware.GetReqID(r.Context()),
				FieldMethod:    r.Method,
				FieldPath:      r.URL.Path,
				FieldStatus:    status,
				FieldLatency:   time.Since(start).String(),
				FieldBytes:     ww.BytesWritten(),
				FieldClientIP:  r.RemoteAddr,
			})
			switch {
			case status >= 500:
				entry.Error("HTTP request")
			case status >= 400:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}
