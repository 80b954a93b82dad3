package uploader

import (
	"context"
	"log/slog"
	"sort"

	"github.com/viscerous/runsync/lib/metrics"
	"github.com/viscerous/runsync/lib/strava"
)

// recentActivityLimit is how many activities are inspected for the latest run
const recentActivityLimit = 10

// LastActivityTime returns the end time of the most recent run on Strava as a Unix
// timestamp, in milliseconds when requested. Lookup failures and the absence of a
// run both yield 0; the cause is only logged.
func LastActivityTime(ctx context.Context, client strava.Client, milliseconds bool) int64 {
	activities, err := client.ListActivities(ctx, recentActivityLimit)
	if err != nil {
		slog.Warn("Failed to get last activity time", "error", err)
		return 0
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].StartDate.After(activities[j].StartDate)
	})

	for _, a := range activities {
		if a.Type != strava.ActivityTypeRun {
			continue
		}
		end := a.EndDate()
		metrics.RecordLastActivity(end)
		last := end.Unix()
		if milliseconds {
			last *= 1000
		}
		return last
	}

	slog.Info("No run found in recent Strava activities", "inspected", len(activities))
	return 0
}
