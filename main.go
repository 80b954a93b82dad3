package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/viscerous/runsync/lib/api"
	"github.com/viscerous/runsync/lib/config"
	"github.com/viscerous/runsync/lib/index"
	"github.com/viscerous/runsync/lib/metrics"
	"github.com/viscerous/runsync/lib/store"
	"github.com/viscerous/runsync/lib/strava"
	"github.com/viscerous/runsync/lib/timeutil"
	"github.com/viscerous/runsync/lib/uploader"
)

func main() {
	serve := flag.Bool("serve", false, "Serve the activity index, healthcheck and metrics over HTTP")
	upload := flag.Bool("upload", false, "Upload indexed activities that are not on Strava yet")
	last := flag.Bool("last", false, "Print the end time of the latest Strava run in milliseconds")
	suffix := flag.String("suffix", index.DefaultSuffix, "Activity file suffix to index (gpx, tcx, fit)")
	forceRun := flag.Bool("force-run", true, "Tag every upload as a run")
	flag.Parse()

	setupLogging()
	slog.Info("Starting runsync...")

	storage := setupStorage()

	if *serve {
		listen := cmp.Or(os.Getenv("LISTEN"), "0.0.0.0:8000")
		slog.Info("Server listening", "address", listen)
		if err := http.ListenAndServe(listen, api.New(storage).Routes()); err != nil {
			slog.Error("Server crashed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	err := runSync(ctx, storage, *suffix, *upload, *last, *forceRun)
	if config.PushgatewayURL != "" {
		if pushErr := metrics.Push(ctx, config.PushgatewayURL); pushErr != nil {
			slog.Warn("Failed to push metrics", "gateway", config.PushgatewayURL, "error", pushErr)
		}
	}
	if err != nil {
		slog.Error("Sync failed", "error", err)
		os.Exit(1)
	}
}

// runSync rebuilds the index file, then optionally reports the latest run and uploads
// pending activities
func runSync(ctx context.Context, storage store.Store, suffix string, upload, last, forceRun bool) error {
	if err := index.MakeActivitiesFile(storage, config.DataDir, config.JSONFile, suffix); err != nil {
		return fmt.Errorf("failed to build activities index: %w", err)
	}

	if !upload && !last {
		return nil
	}

	client, err := strava.NewClient(ctx, config.StravaClientId, config.StravaClientSecret, config.StravaRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to authenticate with Strava: %w", err)
	}

	if last {
		ms := uploader.LastActivityTime(ctx, client, true)
		local, err := timeutil.AdjustTime(time.UnixMilli(ms).UTC(), config.BaseTimezone)
		if err != nil {
			slog.Warn("Failed to adjust time", "timezone", config.BaseTimezone, "error", err)
		}
		slog.Info("Latest Strava run", "end_time_ms", ms, "local", local.Format(timeutil.Layouts[0]))
	}

	if upload {
		count, err := uploader.UploadPending(ctx, client, storage, forceRun)
		if err != nil {
			return fmt.Errorf("upload aborted after %d activities: %w", count, err)
		}
	}
	return nil
}

func setupStorage() store.Store {
	var storage store.Store
	if os.Getenv("POSTGRESQL_URL") != "" {
		db, err := store.NewPostgresqlClient(os.Getenv("POSTGRESQL_URL"))
		if err != nil {
			slog.Error("PostgreSQL connection failed", "error", err)
			os.Exit(1)
		}
		storage = store.NewPostgresqlStore(db)
		slog.Info("Storage initialised", "type", "postgresql")
	} else if os.Getenv("REDIS_URI") != "" {
		storage = store.NewRedisStore(store.NewRedisClient(os.Getenv("REDIS_URI"), os.Getenv("REDIS_PASSWORD")))
		slog.Info("Storage initialised", "type", "redis", "uri", os.Getenv("REDIS_URI"))
	} else {
		path := cmp.Or(os.Getenv("INDEX_DIR"), "index")
		storage = store.NewDiskStore(path)
		slog.Info("Storage initialised", "type", "disk", "path", path)
	}
	return storage
}

func setupLogging() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time attribute to avoid redundancy with host/container logs
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}

	if strings.ToLower(os.Getenv("LOG_LEVEL")) == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("JSON_LOGS")) == "true" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))

	// Redirect standard log to slog as well
	log.SetOutput(&slogWriter{})
	log.SetFlags(0) // Remove standard log timestamps
}

type slogWriter struct{}

func (w *slogWriter) Write(p []byte) (n int, err error) {
	slog.Info(strings.TrimSpace(string(p)))
	return len(p), nil
}
