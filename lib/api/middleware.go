package api

import (
	"context"
	"net/http"
	"time"

	"github.com/etherlabsio/healthcheck"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthcheckHandler returns a health check handler
func (a *API) HealthcheckHandler() http.Handler {
	return healthcheck.Handler(
		healthcheck.WithTimeout(5*time.Second),
		healthcheck.WithChecker("storage", healthcheck.CheckerFunc(func(ctx context.Context) error {
			return a.Storage.Ping()
		})),
	)
}

// Routes wires every endpoint behind the proxy header middleware
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/activities", a.ActivitiesHandler)
	mux.Handle("GET /healthcheck", a.HealthcheckHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	return handlers.ProxyHeaders(mux)
}
