package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viscerous/runsync/lib/store"
	"github.com/viscerous/runsync/lib/strava"
)

// UploadPending uploads every indexed activity Strava has not accepted yet and records
// the upload id. It stops at the first failed upload and returns how many succeeded.
func UploadPending(ctx context.Context, client strava.Client, s store.Store, forceRun bool) (int, error) {
	activities, err := s.ListActivities()
	if err != nil {
		return 0, fmt.Errorf("failed to load activities: %w", err)
	}

	uploaded := 0
	for _, activity := range activities {
		if activity.IsUploaded() {
			continue
		}

		upload, err := UploadFile(ctx, client, activity.FileName, activity.DataType, forceRun)
		if err != nil {
			return uploaded, fmt.Errorf("failed to upload %s: %w", activity.FileName, err)
		}
		if err := activity.MarkUploaded(s, upload.ID, time.Now()); err != nil {
			return uploaded, err
		}
		uploaded++
	}

	slog.Info("Pending activities uploaded", "count", uploaded)
	return uploaded, nil
}
