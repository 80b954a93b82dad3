package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	store := NewRedisStore(NewRedisClient(s.Addr(), ""))

	uploadedAt := time.Now().Truncate(time.Second).UTC()
	activity := Activity{
		ID:         "test-id",
		FileName:   "GPX_OUT/run.gpx",
		DataType:   "gpx",
		Size:       2048,
		ModifiedAt: time.Now().Add(-1 * time.Hour).Truncate(time.Second).UTC(),
		UploadID:   99,
		UploadedAt: &uploadedAt,
	}

	// Write activity
	err = store.WriteActivity(activity)
	assert.NoError(t, err)

	// Read activity
	actual := store.GetActivity("test-id")
	require.NotNil(t, actual)
	assert.Equal(t, activity.FileName, actual.FileName)
	assert.Equal(t, activity.UploadID, actual.UploadID)
	assert.True(t, actual.IsUploaded())

	// Test ListActivities
	assert.NoError(t, store.WriteActivity(Activity{ID: "other", FileName: "GPX_OUT/a.gpx", DataType: "gpx"}))
	activities, err := store.ListActivities()
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "other", activities[0].ID)

	// Test DeleteActivity
	deleted := store.DeleteActivity("test-id")
	assert.True(t, deleted)

	notFound := store.GetActivity("test-id")
	assert.Nil(t, notFound)

	activities, err = store.ListActivities()
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestRedisPing(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	store := NewRedisStore(NewRedisClient(s.Addr(), ""))
	assert.NoError(t, store.Ping())
}
