package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottfrazer/blog/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	logged, err := store.Log(ctx, Entry{Action: ActionPostCreated, PostID: 7, Summary: "created \"Hello\""})
	require.NoError(t, err)
	assert.NotEmpty(t, logged.ID)
	assert.False(t, logged.Timestamp.IsZero())

	got, err := store.Get(ctx, logged.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ActionPostCreated, got.Action)
	assert.Equal(t, int64(7), got.PostID)
	assert.Equal(t, "created \"Hello\"", got.Summary)
	assert.WithinDuration(t, logged.Timestamp, got.Timestamp, time.Microsecond)
}

func TestGetMissing(t *testing.T) {
	store := setupStore(t)
	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuery(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, e := range []Entry{
		{Action: ActionLogin},
		{Action: ActionPostCreated, PostID: 1},
		{Action: ActionPostUpdated, PostID: 1},
		{Action: ActionPostCreated, PostID: 2},
		{Action: ActionLogout},
	} {
		e.Timestamp = base.Add(time.Duration(i) * time.Hour)
		_, err := store.Log(ctx, e)
		require.NoError(t, err)
	}

	all, err := store.Query(ctx, QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ActionLogout, all[0].Action, "newest first")
	assert.Equal(t, ActionLogin, all[4].Action)

	created, err := store.Query(ctx, QueryFilter{Action: ActionPostCreated})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	post1, err := store.Query(ctx, QueryFilter{PostID: 1})
	require.NoError(t, err)
	assert.Len(t, post1, 2)

	since := base.Add(2 * time.Hour)
	until := base.Add(3 * time.Hour)
	window, err := store.Query(ctx, QueryFilter{Since: &since, Until: &until})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, ActionPostCreated, window[0].Action)
	assert.Equal(t, ActionPostUpdated, window[1].Action)

	page, err := store.Query(ctx, QueryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].PostID)
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	old := time.Now().Add(-100 * 24 * time.Hour)

	_, err := store.Log(ctx, Entry{Action: ActionLogin, Timestamp: old})
	require.NoError(t, err)
	_, err = store.Log(ctx, Entry{Action: ActionLogin})
	require.NoError(t, err)

	n, err := store.DeleteBefore(ctx, time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rest, err := store.Query(ctx, QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestRecord(t *testing.T) {
	store := setupStore(t)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store.Record(r, ActionPostDeleted, 3, "deleted post 3")
	})
	handler = middleware.RequestID(handler)

	req := httptest.NewRequest("DELETE", "/blog/id/3", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries, err := store.Query(context.Background(), QueryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionPostDeleted, entries[0].Action)
	assert.Equal(t, "203.0.113.9:1234", entries[0].ClientIP)
	assert.NotEmpty(t, entries[0].RequestID)
}

func TestRecordNilStore(t *testing.T) {
	var store *Store
	assert.NotPanics(t, func() {
		store.Record(httptest.NewRequest("POST", "/login", nil), ActionLogin, 0, "")
	})
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	first, err := store.Log(ctx, Entry{Action: ActionPostCreated, PostID: 1, Timestamp: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	_, err = store.Log(ctx, Entry{Action: ActionLogin})
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		return w
	}

	w := get("/audit")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, ActionLogin, entries[0].Action)

	w = get("/audit?action=post_created&post_id=1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, first.ID, entries[0].ID)

	w = get("/audit?action=logout")
	assert.JSONEq(t, "[]", w.Body.String())

	w = get("/audit/" + first.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"post_created"`)

	w = get("/audit/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"audit entry not found"}`, w.Body.String())

	w = get("/audit?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = get("/audit?post_id=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
