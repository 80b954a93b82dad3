package strava

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitExceeded is returned when Strava rejects a request with 429.
// Timeout is how long the caller has to wait before trying again.
type RateLimitExceeded struct {
	Timeout time.Duration
	Limit   string
	Usage   string
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("strava rate limit exceeded, retry after %d seconds", int64(e.Timeout/time.Second))
}

// newRateLimitExceeded builds the error from a 429 response's headers
func newRateLimitExceeded(h http.Header, now time.Time) *RateLimitExceeded {
	return &RateLimitExceeded{
		Timeout: rateLimitTimeout(h, now),
		Limit:   h.Get("X-RateLimit-Limit"),
		Usage:   h.Get("X-RateLimit-Usage"),
	}
}

// rateLimitTimeout honours Retry-After when present. Strava itself does not send it,
// so otherwise the wait runs until the next 15 minute window, or until midnight UTC
// once the daily allowance is used up.
func rateLimitTimeout(h http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}

	now = now.UTC()
	if dailyLimitReached(h.Get("X-RateLimit-Limit"), h.Get("X-RateLimit-Usage")) {
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
		return midnight.Sub(now).Round(time.Second)
	}
	next := now.Truncate(rateLimitWindow).Add(rateLimitWindow)
	return next.Sub(now).Round(time.Second)
}

// dailyLimitReached compares the second entry of the "short,daily" header pairs
func dailyLimitReached(limit, usage string) bool {
	limits := strings.Split(limit, ",")
	usages := strings.Split(usage, ",")
	if len(limits) < 2 || len(usages) < 2 {
		return false
	}
	l, err := strconv.Atoi(strings.TrimSpace(limits[1]))
	if err != nil {
		return false
	}
	u, err := strconv.Atoi(strings.TrimSpace(usages[1]))
	if err != nil {
		return false
	}
	return u >= l
}
