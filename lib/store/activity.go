package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Store is the interface for all activity index backends
type Store interface {
	WriteActivity(activity Activity) error
	GetActivity(id string) *Activity
	ListActivities() ([]Activity, error)
	DeleteActivity(id string) bool
	Ping() error
}

// activityNamespace scopes the name-based activity IDs
var activityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/viscerous/runsync/activity"))

// Activity is one local activity file and its Strava upload state
type Activity struct {
	ID         string     `json:"id"`
	FileName   string     `json:"file_name"`
	DataType   string     `json:"data_type"`
	Size       int64      `json:"size"`
	ModifiedAt time.Time  `json:"modified_at"`
	UploadID   int64      `json:"upload_id,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// ActivityID derives the stable ID for an activity file from its base name,
// so the same file keeps its ID when the data directory moves.
func ActivityID(fileName string) string {
	return uuid.NewSHA1(activityNamespace, []byte(filepath.Base(fileName))).String()
}

// NewActivity creates an index entry for a local activity file
func NewActivity(fileName, dataType string, size int64, modifiedAt time.Time) Activity {
	return Activity{
		ID:         ActivityID(fileName),
		FileName:   fileName,
		DataType:   dataType,
		Size:       size,
		ModifiedAt: modifiedAt.UTC(),
	}
}

// IsUploaded reports whether Strava accepted this file already
func (a Activity) IsUploaded() bool {
	return a.UploadID != 0
}

// MarkUploaded records the upload and saves the activity
func (a *Activity) MarkUploaded(s Store, uploadID int64, at time.Time) error {
	uploadedAt := at.UTC()
	a.UploadID = uploadID
	a.UploadedAt = &uploadedAt
	slog.Debug("Activity marked uploaded", "id", a.ID, "upload_id", uploadID)
	return Save(s, *a)
}

// Save writes the activity to the store
func Save(s Store, a Activity) error {
	if s == nil {
		return fmt.Errorf("store is nil in Save()")
	}
	if err := s.WriteActivity(a); err != nil {
		slog.Error("Error saving activity", "id", a.ID, "error", err)
		return err
	}
	return nil
}

// sortActivities orders by file name so index output is stable across backends
func sortActivities(activities []Activity) {
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].FileName < activities[j].FileName
	})
}
