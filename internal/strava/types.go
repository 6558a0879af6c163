// Package strava syncs running activities from the Strava API into the
// blog database and serves them to the front end.
package strava

import (
	"fmt"
	"time"
)

// dateLayout is the format of Strava's start_date_local field.
const dateLayout = "2006-01-02T15:04:05Z"

const metersPerMile = 1609.344

// Activity is Strava's SummaryActivity, trimmed to the fields the blog uses.
type Activity struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	DateString  string      `json:"start_date_local"`
	Distance    float64     `json:"distance"`    // meters
	MovingTime  float64     `json:"moving_time"` // seconds
	WorkoutType int         `json:"workout_type"`
	Type        string      `json:"type"`
	Map         ActivityMap `json:"map"`
}

// ActivityMap holds the route polyline.
type ActivityMap struct {
	ID            string `json:"id"`
	ResourceState int    `json:"resource_state"`
	Polyline      string `json:"summary_polyline"`
}

// Date parses the local start time. Unparseable dates yield the zero time.
func (a *Activity) Date() time.Time {
	t, _ := time.Parse(dateLayout, a.DateString)
	return t
}

// IsRace reports whether Strava tagged the run as a race.
func (a *Activity) IsRace() bool {
	return a.WorkoutType == 1
}

func (a *Activity) Miles() float64 {
	return a.Distance / metersPerMile
}

func (a *Activity) DistanceString() string {
	return fmt.Sprintf("%.2f mi", a.Miles())
}

// MovingTimeString formats the moving time as HH:MM:SS.
func (a *Activity) MovingTimeString() string {
	d := (time.Duration(a.MovingTime) * time.Second).Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

// PacePerMile formats the average pace as MM:SS per mile. Activities with
// no distance have no pace.
func (a *Activity) PacePerMile() string {
	miles := a.Miles()
	if miles <= 0 {
		return "--:--"
	}
	d := time.Duration(a.MovingTime / miles * float64(time.Second)).Round(time.Second)
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d", m, d/time.Second)
}

// Lap is one lap of an activity.
type Lap struct {
	ID                 int64     `json:"id"`
	ResourceState      int32     `json:"resource_state"`
	Name               string    `json:"name"`
	ElapsedTime        int32     `json:"elapsed_time"`
	MovingTime         int32     `json:"moving_time"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`
	StartIndex         int32     `json:"start_index"`
	EndIndex           int32     `json:"end_index"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	AverageCadence     float64   `json:"average_cadence"`
	DeviceWatts        bool      `json:"device_watts"`
	AverageWatts       float64   `json:"average_watts"`
	LapIndex           int32     `json:"lap_index"`
	Split              int32     `json:"split"`
}

// Athlete is the authenticated Strava user.
type Athlete struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Sex       string    `json:"sex"`
	Premium   bool      `json:"premium"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter selects activities by local start date. Zero bounds are open.
type Filter struct {
	Start time.Time // inclusive
	End   time.Time // exclusive
}
