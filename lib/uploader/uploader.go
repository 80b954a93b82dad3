package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/viscerous/runsync/lib/metrics"
	"github.com/viscerous/runsync/lib/strava"
)

// sleep blocks for a rate limit timeout. It deliberately ignores the context.
var sleep = time.Sleep

// UploadFile uploads a single activity file. A rate limited first attempt is retried
// exactly once after the signalled timeout; any error from the retry is returned as is.
func UploadFile(ctx context.Context, client strava.Client, fileName, dataType string, forceRun bool) (*strava.Upload, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity file: %w", err)
	}
	defer f.Close()

	req := strava.UploadRequest{
		File:     f,
		FileName: filepath.Base(fileName),
		DataType: dataType,
	}
	if forceRun {
		req.ActivityType = strava.UploadActivityTypeRun
	}

	upload, err := client.UploadActivity(ctx, req)

	var rle *strava.RateLimitExceeded
	if errors.As(err, &rle) {
		slog.Warn("Strava API rate limit exceeded, waiting before retry", "file", fileName, "timeout", rle.Timeout)
		sleep(rle.Timeout)

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind activity file: %w", err)
		}
		upload, err = client.UploadActivity(ctx, req)
	}

	metrics.RecordUpload(err)
	if err != nil {
		return nil, err
	}

	slog.Info("Uploaded activity file to Strava", "data_type", dataType, "file", fileName, "upload_id", upload.ID)
	return upload, nil
}
