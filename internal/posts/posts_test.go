package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/auth"
	"github.com/scottfrazer/blog/internal/cache"
	"github.com/scottfrazer/blog/internal/content"
	"github.com/scottfrazer/blog/internal/db"
	"github.com/scottfrazer/blog/internal/render"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Post{Title: "Hello", Date: day(1), Content: "A\n\nB"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello", got.Title)
	assert.True(t, day(1).Equal(got.Date))
	assert.Equal(t, "A\n\nB", got.Content)
	assert.Len(t, got.Blocks(), 2)
}

func TestGetMissing(t *testing.T) {
	store := setupTestStore(t)
	got, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCreateDefaultsDate(t *testing.T) {
	store := setupTestStore(t)
	created, err := store.Create(context.Background(), Post{Title: "Undated"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created.Date, time.Minute)
}

func TestLatestAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	for i, title := range []string{"first", "third", "second"} {
		d := map[string]int{"first": 1, "second": 2, "third": 3}[title]
		_, err := store.Create(ctx, Post{Title: title, Date: day(d), Content: strings.Repeat("x", i+1)})
		require.NoError(t, err)
	}

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "third", latest.Title)

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Title, all[1].Title, all[2].Title})

	page, err := store.List(ctx, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Title)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	full, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, full, 3)
	assert.Equal(t, "xx", full[0].Content)
}

func TestUpdateAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Post{Title: "Draft", Date: day(1)})
	require.NoError(t, err)

	updated, err := store.Update(ctx, Post{ID: created.ID, Title: "Final", Date: day(2), Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = store.Update(ctx, Post{ID: 999, Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrNotFound)
}

// newRouter mounts the post routes; admin marks every request logged in.
func newRouter(t *testing.T, store *Store, admin bool) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	if admin {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithLoggedIn(req.Context())))
			})
		})
	}
	c := cache.NewMemoryCache(cache.DefaultConfig())
	RegisterRoutes(r, store, render.New(render.DefaultStyle, render.WithCache(c, time.Hour)), audit.NewStore(store.db))
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoute_GetMissing(t *testing.T) {
	r := newRouter(t, setupTestStore(t), false)

	for _, target := range []string{"/blog/id/7", "/blog/id/abc", "/blog/latest", "/blog/latest/blocks"} {
		w := serve(r, "GET", target, "")
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.JSONEq(t, `{"error":"post not found"}`, w.Body.String(), target)
	}
}

func TestRoute_ListPaging(t *testing.T) {
	store := setupTestStore(t)
	for d := 1; d <= 5; d++ {
		_, err := store.Create(context.Background(), Post{Title: "p", Date: day(d)})
		require.NoError(t, err)
	}
	r := newRouter(t, store, false)

	w := serve(r, "GET", "/blog?page=2&per_page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.True(t, day(3).Equal(got[0].Date))

	w = serve(r, "GET", "/blog?page=9", "")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestRoute_Blocks(t *testing.T) {
	store := setupTestStore(t)
	created, err := store.Create(context.Background(), Post{
		Title:   "Code",
		Date:    day(1),
		Content: "Intro\n\n{code language=\"go\"}x := 1{code}\n\nOutro",
	})
	require.NoError(t, err)
	r := newRouter(t, store, false)

	w := serve(r, "GET", "/blog/id/"+itoa(created.ID)+"/blocks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"type":"text","content":"Intro"},
		{"type":"code","content":"x := 1","language":"go"},
		{"type":"text","content":"Outro"}
	]`, w.Body.String())

	latest := serve(r, "GET", "/blog/latest/blocks", "")
	assert.JSONEq(t, w.Body.String(), latest.Body.String())

	var blocks []content.Block
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocks))
	assert.Equal(t, content.Segment(created.Content), blocks)
}

func TestRoute_HTML(t *testing.T) {
	store := setupTestStore(t)
	created, err := store.Create(context.Background(), Post{Title: "T", Date: day(1), Content: "a < b"})
	require.NoError(t, err)
	r := newRouter(t, store, false)

	w := serve(r, "GET", "/blog/id/"+itoa(created.ID)+"/html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<p>a &lt; b</p>")
}

func TestRoute_WritesRequireAdmin(t *testing.T) {
	r := newRouter(t, setupTestStore(t), false)

	w := serve(r, "POST", "/blog", `{"title":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = serve(r, "DELETE", "/blog/id/1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoute_CreateUpdateDelete(t *testing.T) {
	store := setupTestStore(t)
	r := newRouter(t, store, true)

	w := serve(r, "POST", "/blog", `{"title":"New","date":"2024-03-01T00:00:00Z","content":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "New", created.Title)

	id := itoa(created.ID)
	w = serve(r, "PUT", "/blog/id/"+id, `{"title":"Renamed","content":"bye"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(r, "GET", "/blog/id/"+id, "")
	var got Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "bye", got.Content)

	w = serve(r, "POST", "/blog/id/999", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, "DELETE", "/blog/id/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = serve(r, "DELETE", "/blog/id/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	entries, err := audit.NewStore(store.db).Query(context.Background(), audit.QueryFilter{PostID: created.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3, "failed writes are not recorded")
	assert.Equal(t, audit.ActionPostDeleted, entries[0].Action)
	assert.Equal(t, audit.ActionPostUpdated, entries[1].Action)
	assert.Equal(t, `updated "Renamed"`, entries[1].Summary)
	assert.Equal(t, audit.ActionPostCreated, entries[2].Action)
}

func TestRoute_Validation(t *testing.T) {
	r := newRouter(t, setupTestStore(t), true)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{`, "invalid request body"},
		{"missing title", `{"content":"x"}`, "title is required"},
		{"blank title", `{"title":"   "}`, "title is required"},
		{"long title", `{"title":"` + strings.Repeat("t", 301) + `"}`, "title must be at most 300 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, "POST", "/blog", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
