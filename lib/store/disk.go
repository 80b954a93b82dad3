package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DiskStore is a storage backend using local filesystem with JSON files
type DiskStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewDiskStore creates a new disk-based storage rooted at basePath
func NewDiskStore(basePath string) *DiskStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		slog.Error("Failed to create index directory", "path", basePath, "error", err)
	}
	return &DiskStore{basePath: basePath}
}

// Ping verifies the storage is accessible
func (s *DiskStore) Ping() error {
	_, err := os.Stat(s.basePath)
	return err
}

// WriteActivity saves an activity to disk as a single JSON file
func (s *DiskStore) WriteActivity(activity Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(activity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	if err := WriteFileAtomic(s.path(activity.ID), data); err != nil {
		return fmt.Errorf("failed to write activity file: %w", err)
	}
	return nil
}

// GetActivity loads an activity by ID
func (s *DiskStore) GetActivity(id string) *Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(s.path(id))
}

// ListActivities loads every activity in the store
func (s *DiskStore) ListActivities() ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list index directory: %w", err)
	}

	activities := make([]Activity, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if a := s.read(filepath.Join(s.basePath, entry.Name())); a != nil {
			activities = append(activities, *a)
		}
	}
	sortActivities(activities)
	return activities, nil
}

// DeleteActivity removes an activity file
func (s *DiskStore) DeleteActivity(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to delete activity file", "id", id, "error", err)
		return false
	}
	return true
}

func (s *DiskStore) path(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

func (s *DiskStore) read(path string) *Activity {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("Failed to read activity file", "path", path, "error", err)
		}
		return nil
	}

	var activity Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		slog.Error("Failed to unmarshal activity", "path", path, "error", err)
		return nil
	}
	return &activity
}

// WriteFileAtomic writes data to a file atomically using a temp file
func WriteFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
