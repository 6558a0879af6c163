// Package server assembles the blog HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/auth"
	"github.com/scottfrazer/blog/internal/db"
	"github.com/scottfrazer/blog/internal/logging"
	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/render"
	"github.com/scottfrazer/blog/internal/stats"
	"github.com/scottfrazer/blog/internal/strava"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	RequestTimeout time.Duration // 0 disables the per-request timeout
}

// Deps are the feature components the server routes to. Strava and Audit
// are optional.
type Deps struct {
	DB       *db.DB
	Audit    *audit.Store
	Sessions *auth.Sessions
	Login    *auth.Handler
	Posts    *posts.Store
	Renderer *render.Renderer
	Stats    *stats.Stats
	Strava   *strava.Store
}

// Server is the blog API server.
type Server struct {
	cfg        Config
	deps       Deps
	log        logrus.FieldLogger
	router     chi.Router
	httpServer *http.Server
}

// New creates a new server with all dependencies.
func New(cfg Config, deps Deps, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.deps.Sessions != nil {
		r.Use(s.deps.Sessions.Session)
	}

	r.Get("/healthz", s.handleHealth)

	// Websockets are long-lived and stay outside the request timeout.
	if s.deps.Stats != nil {
		stats.RegisterWebSocket(r, s.deps.Stats, s.cfg.AllowedOrigins)
	}

	r.Group(func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		if s.deps.Stats != nil {
			stats.RegisterRoutes(r, s.deps.Stats)
		}
		if s.deps.Login != nil {
			auth.RegisterRoutes(r, s.deps.Login)
		}
		if s.deps.Posts != nil {
			posts.RegisterRoutes(r, s.deps.Posts, s.deps.Renderer, s.deps.Audit)
		}
		if s.deps.Strava != nil {
			strava.RegisterRoutes(r, s.deps.Strava)
		}
		if s.deps.Audit != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				audit.RegisterRoutes(r, s.deps.Audit)
			})
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(r.Context()); err != nil {
			s.log.WithError(err).Error("server: database ping failed")
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.WithField("addr", addr).Info("blog server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
