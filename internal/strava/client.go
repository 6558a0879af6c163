package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Strava v3 API root.
const DefaultBaseURL = "https://www.strava.com/api/v3"

// PageSize is the largest page the activities endpoint returns.
const PageSize = 200

// Client calls the Strava API on behalf of one athlete. Requests share a
// limiter matching Strava's default quota of 100 requests per 15 minutes.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithLimiter replaces the default request limiter.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client authorizing requests with tokens from ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		http:    oauth2.NewClient(ctx, ts),
		baseURL: DefaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(100.0/(15*60)), 10),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Athlete returns the authenticated athlete.
func (c *Client) Athlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.get(ctx, "/athlete", nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// Activities returns one page of activities started after after. A zero
// after returns the full history.
func (c *Client) Activities(ctx context.Context, page int, after time.Time) ([]Activity, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(PageSize))
	if !after.IsZero() {
		q.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	var activities []Activity
	if err := c.get(ctx, "/athlete/activities", q, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Laps returns the laps of an activity.
func (c *Client) Laps(ctx context.Context, activityID int64) ([]Lap, error) {
	var laps []Lap
	if err := c.get(ctx, fmt.Sprintf("/activities/%d/laps", activityID), nil, &laps); err != nil {
		return nil, err
	}
	return laps, nil
}

// APIError is a non-2xx response from Strava.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava: unexpected status %d: %s", e.Status, e.Body)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond).String(),
		"size":     humanize.Bytes(uint64(len(body))),
	}).Debug("strava: request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
