package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/scottfrazer/blog/internal/audit"
)

// maxLoginBody bounds the login request body.
const maxLoginBody = 4 << 10

// Handler serves the login endpoints.
type Handler struct {
	sessions     *Sessions
	passwordHash string
	limiter      *rate.Limiter
	trail        *audit.Store
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAudit records logins, failed logins and logouts in trail.
func WithAudit(trail *audit.Store) HandlerOption {
	return func(h *Handler) { h.trail = trail }
}

// NewHandler checks logins against passwordHash. Login attempts are
// throttled to one per second with a burst of five.
func NewHandler(sessions *Sessions, passwordHash string, opts ...HandlerOption) *Handler {
	h := &Handler{
		sessions:     sessions,
		passwordHash: passwordHash,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 5),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the login API routes.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Password string `json:"password"`
}

// loginPassword accepts either a JSON body {"password": "..."} or the raw
// password as the whole body.
func loginPassword(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var req loginRequest
		if err := json.Unmarshal(trimmed, &req); err == nil {
			return req.Password
		}
	}
	return string(body)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !h.limiter.Allow() {
		http.Error(w, `{"error":"too many login attempts"}`, http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
	if err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := CheckPassword(h.passwordHash, loginPassword(body)); err != nil {
		logrus.WithField("client_ip", r.RemoteAddr).Warn("auth: failed login")
		h.trail.Record(r, audit.ActionLoginFailed, 0, "wrong password")
		http.Error(w, `{"error":"invalid password"}`, http.StatusForbidden)
		return
	}

	token, err := h.sessions.Create()
	if err != nil {
		logrus.WithError(err).Error("auth: creating session")
		http.Error(w, `{"error":"could not create session"}`, http.StatusInternalServerError)
		return
	}

	h.trail.Record(r, audit.ActionLogin, 0, "admin logged in")
	json.NewEncoder(w).Encode(map[string]string{"session": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.sessions.Revoke(TokenFromHeader(r.Header.Get("Authorization"))); err != nil {
		http.Error(w, `{"error":"could not revoke session"}`, http.StatusInternalServerError)
		return
	}
	h.trail.Record(r, audit.ActionLogout, 0, "admin logged out")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}
