package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viscerous/runsync/lib/store"
)

// DefaultSuffix is the activity file format indexed when none is given
const DefaultSuffix = "gpx"

// SyncFromDataDir registers every file in dir with the given suffix. Files already
// in the store keep their upload state. It returns the number of new activities.
func SyncFromDataDir(s store.Store, dir, suffix string) (int, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	suffix = strings.TrimPrefix(strings.ToLower(suffix), ".")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read data dir: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), ".")) != suffix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("Skipping unreadable activity file", "file", entry.Name(), "error", err)
			continue
		}

		activity := store.NewActivity(filepath.Join(dir, entry.Name()), suffix, info.Size(), info.ModTime())
		if existing := s.GetActivity(activity.ID); existing != nil {
			activity.UploadID = existing.UploadID
			activity.UploadedAt = existing.UploadedAt
		} else {
			added++
		}

		if err := store.Save(s, activity); err != nil {
			return added, fmt.Errorf("failed to index %s: %w", entry.Name(), err)
		}
	}

	slog.Info("Data directory synced", "dir", dir, "suffix", suffix, "new", added)
	return added, nil
}

// MakeActivitiesFile syncs the data directory into the store and dumps the
// resulting index as JSON to jsonFile.
func MakeActivitiesFile(s store.Store, dataDir, jsonFile, suffix string) error {
	if _, err := SyncFromDataDir(s, dataDir, suffix); err != nil {
		return err
	}

	activities, err := s.ListActivities()
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}

	data, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("failed to marshal activities: %w", err)
	}
	if err := store.WriteFileAtomic(jsonFile, data); err != nil {
		return fmt.Errorf("failed to write activities file: %w", err)
	}

	slog.Info("Activities file written", "file", jsonFile, "count", len(activities))
	return nil
}
