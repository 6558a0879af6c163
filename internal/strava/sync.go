package strava

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/progress"
)

// SyncResult summarizes a sync run.
type SyncResult struct {
	Pages      int
	Activities int
	Laps       int
}

// Sync fetches every activity newer than the most recent stored one, page
// by page until Strava returns an empty page, and stores each activity with
// its laps. Activities of a page are saved only after all their laps are, so
// an interrupted sync resumes from the last complete page.
func Sync(ctx context.Context, client *Client, store *Store, reporter progress.Reporter) (SyncResult, error) {
	var result SyncResult
	if reporter == nil {
		reporter = progress.Discard{}
	}

	mostRecent, err := store.MostRecentDate(ctx)
	if err != nil {
		return result, err
	}
	logrus.WithField("after", mostRecent).Info("strava: sync starting")

	reporter.Start(-1)
	defer reporter.Finish()

	for page := 1; ; page++ {
		activities, err := client.Activities(ctx, page, mostRecent)
		if err != nil {
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}
		if len(activities) == 0 {
			break
		}
		result.Pages++

		for _, a := range activities {
			laps, err := client.Laps(ctx, a.ID)
			if err != nil {
				return result, fmt.Errorf("fetching laps for activity %d: %w", a.ID, err)
			}
			if err := store.SaveLaps(ctx, a.ID, laps); err != nil {
				return result, err
			}
			result.Laps += len(laps)
			reporter.Update(result.Activities+1, a.Name)
			result.Activities++
		}
		if err := store.SaveActivities(ctx, activities); err != nil {
			return result, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"pages":      result.Pages,
		"activities": result.Activities,
		"laps":       result.Laps,
	}).Info("strava: sync complete")
	return result, nil
}
