package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/auth"
	"github.com/scottfrazer/blog/internal/render"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRoutes mounts the post API. Write routes require an admin session
// and are recorded in trail when it is non-nil.
func RegisterRoutes(r chi.Router, store *Store, renderer *render.Renderer, trail *audit.Store) {
	r.Route("/blog", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/latest", handleLatest(store))
		r.Get("/latest/blocks", handleLatestBlocks(store))
		r.Get("/id/{id}", handleGet(store))
		r.Get("/id/{id}/blocks", handleBlocks(store))
		r.Get("/id/{id}/html", handleHTML(store, renderer))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", handleCreate(store, trail))
			r.Post("/id/{id}", handleUpdate(store, trail))
			r.Put("/id/{id}", handleUpdate(store, trail))
			r.Delete("/id/{id}", handleDelete(store, trail))
		})
	})
}

// postRequest is the body accepted by create and update.
type postRequest struct {
	Title   string    `json:"title" validate:"required,max=300"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

func decodePost(r *http.Request) (postRequest, string) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "invalid request body"
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return req, describe(verrs[0])
		}
		return req, err.Error()
	}
	return req, ""
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	}
	return field + " is invalid"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := intParam(r, "page", 1)
		perPage := min(intParam(r, "per_page", defaultPerPage), maxPerPage)

		summaries, err := store.List(r.Context(), ListFilter{Limit: perPage, Offset: (page - 1) * perPage})
		if err != nil {
			logrus.WithError(err).Error("posts: list")
			writeError(w, http.StatusInternalServerError, "could not list posts")
			return
		}
		if summaries == nil {
			summaries = []Summary{}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

// lookup loads the post addressed by the request, writing the error response
// itself when it returns nil.
type lookup func(w http.ResponseWriter, r *http.Request) *Post

func byID(store *Store) lookup {
	return func(w http.ResponseWriter, r *http.Request) *Post {
		id, ok := parseID(r)
		if !ok {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return nil
		}
		p, err := store.Get(r.Context(), id)
		return found(w, p, err)
	}
}

func latest(store *Store) lookup {
	return func(w http.ResponseWriter, r *http.Request) *Post {
		p, err := store.Latest(r.Context())
		return found(w, p, err)
	}
}

func found(w http.ResponseWriter, p *Post, err error) *Post {
	if err != nil {
		logrus.WithError(err).Error("posts: lookup")
		writeError(w, http.StatusInternalServerError, "could not load post")
		return nil
	}
	if p == nil {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return nil
	}
	return p
}

func servePost(find lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p := find(w, r); p != nil {
			writeJSON(w, http.StatusOK, p)
		}
	}
}

func serveBlocks(find lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p := find(w, r); p != nil {
			writeJSON(w, http.StatusOK, p.Blocks())
		}
	}
}

func handleGet(store *Store) http.HandlerFunc          { return servePost(byID(store)) }
func handleLatest(store *Store) http.HandlerFunc       { return servePost(latest(store)) }
func handleBlocks(store *Store) http.HandlerFunc       { return serveBlocks(byID(store)) }
func handleLatestBlocks(store *Store) http.HandlerFunc { return serveBlocks(latest(store)) }

func handleHTML(store *Store, renderer *render.Renderer) http.HandlerFunc {
	find := byID(store)
	return func(w http.ResponseWriter, r *http.Request) {
		p := find(w, r)
		if p == nil {
			return
		}
		out, err := renderer.Post(p.CacheKey(), p.Content)
		if err != nil {
			logrus.WithError(err).WithField("post_id", p.ID).Error("posts: render")
			writeError(w, http.StatusInternalServerError, "could not render post")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
	}
}

func handleCreate(store *Store, trail *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, msg := decodePost(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.Create(r.Context(), Post{Title: req.Title, Date: req.Date, Content: req.Content})
		if err != nil {
			logrus.WithError(err).Error("posts: create")
			writeError(w, http.StatusInternalServerError, "could not create post")
			return
		}
		logrus.WithField("post_id", created.ID).Info("posts: created")
		trail.Record(r, audit.ActionPostCreated, created.ID, fmt.Sprintf("created %q", created.Title))
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleUpdate(store *Store, trail *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		req, msg := decodePost(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		updated, err := store.Update(r.Context(), Post{ID: id, Title: req.Title, Date: req.Date, Content: req.Content})
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		if err != nil {
			logrus.WithError(err).Error("posts: update")
			writeError(w, http.StatusInternalServerError, "could not update post")
			return
		}
		trail.Record(r, audit.ActionPostUpdated, updated.ID, fmt.Sprintf("updated %q", updated.Title))
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDelete(store *Store, trail *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		err := store.Delete(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		if err != nil {
			logrus.WithError(err).Error("posts: delete")
			writeError(w, http.StatusInternalServerError, "could not delete post")
			return
		}
		trail.Record(r, audit.ActionPostDeleted, id, fmt.Sprintf("deleted post %d", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
