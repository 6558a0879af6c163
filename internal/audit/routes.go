package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// RegisterRoutes mounts the audit endpoints under /audit. Callers are
// responsible for restricting them to admins.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/audit", func(r chi.Router) {
		r.Get("/", handleQuery(store))
		r.Get("/{id}", handleGet(store))
	})
}

func handleQuery(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := QueryFilter{
			Action: Action(q.Get("action")),
			Limit:  defaultLimit,
		}
		if v := q.Get("post_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid post_id")
				return
			}
			filter.PostID = id
		}
		for name, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
			v := q.Get(name)
			if v == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+name+": expected RFC 3339")
				return
			}
			*dst = &t
		}
		if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
			filter.Limit = min(n, maxLimit)
		}
		if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
			filter.Offset = n
		}

		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			logrus.WithError(err).Error("audit: query")
			writeError(w, http.StatusInternalServerError, "could not query audit trail")
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			logrus.WithError(err).Error("audit: get")
			writeError(w, http.StatusInternalServerError, "could not load audit entry")
			return
		}
		if entry == nil {
			writeError(w, http.StatusNotFound, "audit entry not found")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
