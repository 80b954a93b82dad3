package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:8001", "Address to listen on")
	rateLimitOnce := flag.Bool("ratelimit-once", false, "Reject the first upload with 429")
	retryAfter := flag.Int("retry-after", 2, "Retry-After seconds sent with the 429")
	activityType := flag.String("type", "Run", "Type of the single listed activity")
	elapsed := flag.Int("elapsed", 1800, "Elapsed time of the listed activity in seconds")
	flag.Parse()

	var uploads atomic.Int64
	start := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token_type":    "Bearer",
			"access_token":  "mock-access-token",
			"refresh_token": r.FormValue("refresh_token"),
			"expires_at":    time.Now().Add(6 * time.Hour).Unix(),
		})
	})

	mux.HandleFunc("GET /api/v3/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{{
			"id":           1,
			"name":         "Mock Activity",
			"type":         *activityType,
			"start_date":   start.Format(time.RFC3339),
			"elapsed_time": *elapsed,
		}})
	})

	mux.HandleFunc("POST /api/v3/uploads", func(w http.ResponseWriter, r *http.Request) {
		n := uploads.Add(1)
		if *rateLimitOnce && n == 1 {
			w.Header().Set("Retry-After", strconv.Itoa(*retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		log.Printf("Upload %d: %s data_type=%s activity_type=%s", n, header.Filename, r.FormValue("data_type"), r.FormValue("activity_type"))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":          n,
			"id_str":      strconv.FormatInt(n, 10),
			"external_id": header.Filename,
			"status":      "Your activity is still being processed.",
		})
	})

	fmt.Printf("Mock Strava listening on http://%s\n", *listen)
	log.Fatal(http.ListenAndServe(*listen, mux))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
