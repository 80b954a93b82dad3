package metrics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name CLI runs report under
const PushJob = "runsync"

var (
	uploadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runsync",
		Subsystem: "strava",
		Name:      "uploads_total",
		Help:      "Number of activity uploads grouped by result.",
	}, []string{"result"})

	rateLimitedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runsync",
		Subsystem: "strava",
		Name:      "rate_limited_total",
		Help:      "Number of requests rejected by the Strava rate limit.",
	})

	lastActivityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runsync",
		Subsystem: "strava",
		Name:      "last_activity_timestamp_seconds",
		Help:      "End time of the most recent run found on Strava.",
	})

	captureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runsync",
		Subsystem: "capture",
		Name:      "writes_total",
		Help:      "Number of captured responses grouped by source and result.",
	}, []string{"source", "result"})

	lastActivitySet atomic.Bool
)

func init() {
	prometheus.MustRegister(uploadCounter, rateLimitedCounter, lastActivityGauge, captureCounter)
}

func RecordUpload(err error) {
	uploadCounter.WithLabelValues(result(err)).Inc()
}

func RecordRateLimited() {
	rateLimitedCounter.Inc()
}

// RecordLastActivity ignores the zero time so a failed lookup keeps the previous value
func RecordLastActivity(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastActivityGauge.Set(float64(ts.Unix()))
	lastActivitySet.Store(true)
}

func RecordCapture(source string, err error) {
	captureCounter.WithLabelValues(source, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Push sends the counters of a one-shot run to a Pushgateway. Series sharing a name
// are replaced, others in the group are kept, and the last activity gauge is only
// sent once a lookup has set it.
func Push(ctx context.Context, gatewayURL string) error {
	pusher := push.New(gatewayURL, PushJob).
		Collector(uploadCounter).
		Collector(rateLimitedCounter).
		Collector(captureCounter)
	if lastActivitySet.Load() {
		pusher = pusher.Collector(lastActivityGauge)
	}
	if err := pusher.AddContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
