package strava

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

// activityView adds the display fields the front end renders.
type activityView struct {
	Activity
	Date       string  `json:"date"`
	IsRace     bool    `json:"is_race"`
	Miles      float64 `json:"miles"`
	DistanceMi string  `json:"distance_mi"`
	MovingTime string  `json:"moving_time_hms"`
	Pace       string  `json:"pace_per_mile"`
}

func newActivityView(a Activity) activityView {
	return activityView{
		Activity:   a,
		Date:       a.Date().Format("2006-01-02"),
		IsRace:     a.IsRace(),
		Miles:      a.Miles(),
		DistanceMi: a.DistanceString(),
		MovingTime: a.MovingTimeString(),
		Pace:       a.PacePerMile(),
	}
}

// RegisterRoutes mounts the activity API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/activities", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/{id}/laps", handleLaps(store))
	})
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

		activities, err := store.LoadPage(r.Context(), page, perPage)
		if err != nil {
			logrus.WithError(err).Error("strava: loading activities")
			http.Error(w, `{"error":"could not load activities"}`, http.StatusInternalServerError)
			return
		}

		views := make([]activityView, 0, len(activities))
		for _, a := range activities {
			views = append(views, newActivityView(a))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

func handleLaps(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid activity id"}`, http.StatusBadRequest)
			return
		}
		laps, err := store.Laps(r.Context(), id)
		if err != nil {
			logrus.WithError(err).Error("strava: loading laps")
			http.Error(w, `{"error":"could not load laps"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(laps)
	}
}
