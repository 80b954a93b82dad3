package strava

import "time"

// Activity types
const (
	ActivityTypeRun = "Run"

	// UploadActivityTypeRun is the lowercase form the uploads endpoint expects
	UploadActivityTypeRun = "run"
)

// Duration constants
const (
	// HTTPTimeout is the default timeout for HTTP requests
	HTTPTimeout = 60 * time.Second

	// MaxRetries is the number of retry attempts for failed requests
	MaxRetries = 3

	// rateLimitWindow is Strava's short-term rate limit window
	rateLimitWindow = 15 * time.Minute
)

// retryBackoff sleeps for an increasing duration based on attempt number.
// Attempt should be 0-indexed.
var retryBackoff = func(attempt int) {
	time.Sleep(time.Duration(attempt+1) * time.Second)
}
