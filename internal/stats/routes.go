package stats

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/auth"
)

const writeWait = 10 * time.Second

type rootResponse struct {
	Counter  int64     `json:"counter"`
	Start    time.Time `json:"start"`
	GitHash  string    `json:"git_hash"`
	Version  string    `json:"version"`
	LoggedIn bool      `json:"logged_in"`
}

type counterMessage struct {
	Counter int64 `json:"counter"`
}

// RegisterRoutes mounts the root endpoint, which counts a visit.
func RegisterRoutes(r chi.Router, s *Stats) {
	r.Get("/", handleRoot(s))
}

// RegisterWebSocket mounts the counter websocket. Browser connections must
// come from one of allowedOrigins.
func RegisterWebSocket(r chi.Router, s *Stats, allowedOrigins []string) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
	r.Get("/ws/counter", handleCounter(s, upgrader))
}

func handleRoot(s *Stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := rootResponse{
			Counter:  s.Visit(),
			Start:    s.start,
			GitHash:  s.info.GitHash,
			Version:  s.info.Version,
			LoggedIn: auth.IsLoggedIn(r.Context()),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleCounter(s *Stats, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Warn("stats: websocket upgrade")
			return
		}
		defer conn.Close()

		updates, unsubscribe := s.Subscribe()
		defer unsubscribe()

		// The client never sends anything meaningful; reading detects close.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						logrus.WithError(err).Debug("stats: websocket read")
					}
					return
				}
			}
		}()

		if !send(conn, s.Count()) {
			return
		}
		for {
			select {
			case n := <-updates:
				if !send(conn, n) {
					return
				}
			case <-closed:
				return
			}
		}
	}
}

func send(conn *websocket.Conn, n int64) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(counterMessage{Counter: n}); err != nil {
		logrus.WithError(err).Debug("stats: websocket write")
		return false
	}
	return true
}
