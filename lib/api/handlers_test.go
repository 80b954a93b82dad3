package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viscerous/runsync/lib/store"
)

type MockSuccessStore struct{}

func (s MockSuccessStore) Ping() error                           { return nil }
func (s MockSuccessStore) WriteActivity(a store.Activity) error  { return nil }
func (s MockSuccessStore) GetActivity(id string) *store.Activity { return nil }
func (s MockSuccessStore) DeleteActivity(id string) bool         { return true }
func (s MockSuccessStore) ListActivities() ([]store.Activity, error) {
	return []store.Activity{
		{ID: "a", FileName: "GPX_OUT/a.gpx", DataType: "gpx", UploadID: 1},
		{ID: "b", FileName: "GPX_OUT/b.gpx", DataType: "gpx"},
	}, nil
}

type MockFailStore struct{}

func (s MockFailStore) Ping() error                           { return errors.New("OH NO") }
func (s MockFailStore) WriteActivity(a store.Activity) error  { return errors.New("OH NO") }
func (s MockFailStore) GetActivity(id string) *store.Activity { return nil }
func (s MockFailStore) DeleteActivity(id string) bool         { return false }
func (s MockFailStore) ListActivities() ([]store.Activity, error) {
	return nil, errors.New("OH NO")
}

func TestHealthcheck(t *testing.T) {
	var rr *httptest.ResponseRecorder

	r, err := http.NewRequest("GET", "/healthcheck", nil)
	if err != nil {
		t.Fatal(err)
	}

	api := New(&MockSuccessStore{})
	rr = httptest.NewRecorder()
	api.Routes().ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.Equal(t, "{\"status\":\"OK\"}\n", rr.Body.String())

	apiFail := New(&MockFailStore{})
	rr = httptest.NewRecorder()
	apiFail.Routes().ServeHTTP(rr, r)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Result().StatusCode)
	assert.Equal(t, "{\"status\":\"Service Unavailable\",\"errors\":{\"storage\":\"OH NO\"}}\n", rr.Body.String())
}

func TestActivitiesHandler(t *testing.T) {
	api := New(&MockSuccessStore{})

	r, _ := http.NewRequest("GET", "/api/activities", nil)
	rr := httptest.NewRecorder()
	api.Routes().ServeHTTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.Equal(t, "application/json", rr.Result().Header.Get("Content-Type"))

	var activities []store.Activity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &activities))
	assert.Len(t, activities, 2)

	// Pending filter
	r, _ = http.NewRequest("GET", "/api/activities?pending=true", nil)
	rr = httptest.NewRecorder()
	api.Routes().ServeHTTP(rr, r)

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "b", activities[0].ID)
}

func TestActivitiesHandler_Error(t *testing.T) {
	api := New(&MockFailStore{})

	r, _ := http.NewRequest("GET", "/api/activities", nil)
	rr := httptest.NewRecorder()
	api.ActivitiesHandler(rr, r)
	assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	api := New(&MockSuccessStore{})

	r, _ := http.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	api.Routes().ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	api := New(&MockSuccessStore{})

	r, _ := http.NewRequest("POST", "/api/activities", nil)
	rr := httptest.NewRecorder()
	api.Routes().ServeHTTP(rr, r)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Result().StatusCode)
}
