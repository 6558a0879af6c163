package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/scottfrazer/blog/internal/db"
	"github.com/scottfrazer/blog/internal/progress"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func activity(id int64, date string) Activity {
	return Activity{ID: id, Name: "Run " + strconv.FormatInt(id, 10), DateString: date, Distance: 16093.44, MovingTime: 4800, Type: "Run"}
}

func TestActivityDerivedFields(t *testing.T) {
	a := Activity{DateString: "2024-05-04T07:30:00Z", Distance: 16093.44, MovingTime: 4800, WorkoutType: 1}

	assert.Equal(t, time.Date(2024, 5, 4, 7, 30, 0, 0, time.UTC), a.Date())
	assert.True(t, a.IsRace())
	assert.InDelta(t, 10.0, a.Miles(), 1e-9)
	assert.Equal(t, "10.00 mi", a.DistanceString())
	assert.Equal(t, "01:20:00", a.MovingTimeString())
	assert.Equal(t, "08:00", a.PacePerMile())

	a.MovingTime = 3723
	assert.Equal(t, "01:02:03", a.MovingTimeString())
}

func TestActivityEdgeCases(t *testing.T) {
	a := Activity{DateString: "yesterday"}
	assert.True(t, a.Date().IsZero())
	assert.False(t, a.IsRace())
	assert.Equal(t, "--:--", a.PacePerMile())
	assert.Equal(t, "0.00 mi", a.DistanceString())
}

func TestStoreActivities(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	latest, err := store.MostRecentDate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	require.NoError(t, store.SaveActivities(ctx, []Activity{
		activity(1, "2024-01-01T08:00:00Z"),
		activity(2, "2024-02-01T08:00:00Z"),
		activity(3, "2024-03-01T08:00:00Z"),
	}))

	renamed := activity(1, "2024-01-01T08:00:00Z")
	renamed.Name = "changed"
	require.NoError(t, store.SaveActivities(ctx, []Activity{renamed}), "duplicates are ignored")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	latest, err = store.MostRecentDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), latest)

	page, err := store.LoadPage(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(2), page[1].ID)

	page, err = store.LoadPage(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Run 1", page[0].Name)

	filtered, err := store.Load(ctx, Filter{
		Start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(2), filtered[0].ID)

	all, err := store.Load(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreLaps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLaps(ctx, 7, []Lap{{ID: 71, LapIndex: 1}, {ID: 72, LapIndex: 2}}))
	require.NoError(t, store.SaveLaps(ctx, 7, []Lap{{ID: 71, LapIndex: 9}}))

	laps, err := store.Laps(ctx, 7)
	require.NoError(t, err)
	require.Len(t, laps, 2)
	assert.Equal(t, int32(1), laps[0].LapIndex)

	none, err := store.Laps(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok)

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, store.SaveToken(ctx, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: expiry}))
	require.NoError(t, store.SaveToken(ctx, &oauth2.Token{AccessToken: "a2", RefreshToken: "r2", Expiry: expiry}))

	tok, err = store.Token(ctx)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "a2", tok.AccessToken)
	assert.Equal(t, "r2", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}

func TestTokenSourceRequiresAuthorization(t *testing.T) {
	store := setupTestStore(t)
	_, err := TokenSource(context.Background(), OAuthConfig("id", "secret", ""), store)
	assert.ErrorContains(t, err, "not authorized")
}

// fakeStrava serves pages of activities and per-activity laps.
type fakeStrava struct {
	pages    [][]Activity
	requests atomic.Int32
	after    atomic.Value
}

func (f *fakeStrava) handler(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.requests.Add(1)
			if req.Header.Get("Authorization") != "Bearer test-token" {
				http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/athlete", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(Athlete{ID: 9, FirstName: "Scott"})
	})
	r.Get("/athlete/activities", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "200", req.URL.Query().Get("per_page"))
		f.after.Store(req.URL.Query().Get("after"))
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		if page < 1 || page > len(f.pages) {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode(f.pages[page-1])
	})
	r.Get("/activities/{id}/laps", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		json.NewEncoder(w).Encode([]Lap{{ID: id*10 + 1, LapIndex: 1}, {ID: id*10 + 2, LapIndex: 2}})
	})
	return r
}

func newTestClient(t *testing.T, f *fakeStrava, token string) *Client {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewClient(context.Background(), ts,
		WithBaseURL(server.URL),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
}

func TestClientAthlete(t *testing.T) {
	client := newTestClient(t, &fakeStrava{}, "test-token")
	athlete, err := client.Athlete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), athlete.ID)
	assert.Equal(t, "Scott", athlete.FirstName)
}

func TestClientAPIError(t *testing.T) {
	client := newTestClient(t, &fakeStrava{}, "wrong")
	_, err := client.Athlete(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSync(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	f := &fakeStrava{pages: [][]Activity{
		{activity(1, "2024-01-01T08:00:00Z"), activity(2, "2024-01-02T08:00:00Z")},
		{activity(3, "2024-01-03T08:00:00Z")},
	}}
	client := newTestClient(t, f, "test-token")

	result, err := Sync(ctx, client, store, progress.Discard{})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Pages: 2, Activities: 3, Laps: 6}, result)
	assert.Equal(t, "", f.after.Load(), "first sync fetches full history")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	laps, err := store.Laps(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, laps, 2)

	// A second sync asks only for activities after the newest stored one.
	f.pages = nil
	_, err = Sync(ctx, client, store, nil)
	require.NoError(t, err)
	want := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, fmt.Sprint(want), f.after.Load())
}

func TestSyncStopsOnError(t *testing.T) {
	store := setupTestStore(t)
	client := newTestClient(t, &fakeStrava{}, "wrong")
	_, err := Sync(context.Background(), client, store, nil)
	assert.ErrorContains(t, err, "fetching page 1")
}

func TestRoutes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveActivities(ctx, []Activity{
		activity(1, "2024-01-01T08:00:00Z"),
		activity(2, "2024-01-02T08:00:00Z"),
	}))
	require.NoError(t, store.SaveLaps(ctx, 2, []Lap{{ID: 21}}))

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/activities?page=1&per_page=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var views []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, float64(2), views[0]["id"])
	assert.Equal(t, "2024-01-02", views[0]["date"])
	assert.Equal(t, "10.00 mi", views[0]["distance_mi"])
	assert.Equal(t, "01:20:00", views[0]["moving_time_hms"])
	assert.Equal(t, "08:00", views[0]["pace_per_mile"])
	assert.Equal(t, false, views[0]["is_race"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/activities/2/laps", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":21`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/activities/abc/laps", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
