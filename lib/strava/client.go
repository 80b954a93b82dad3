package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/viscerous/runsync/lib/config"
	"github.com/viscerous/runsync/lib/metrics"
	"golang.org/x/time/rate"
)

var (
	BaseURL         = config.StravaBaseURL
	ErrInvalidToken = errors.New("invalid_token")
)

// StatusError is returned for 4xx responses other than 429
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("strava api returned bad status: %d", e.StatusCode)
}

// Package-level HTTP client for connection pooling and reuse
var httpClient = &http.Client{
	Timeout: HTTPTimeout,
}

// Strava allows 100 requests per 15 minutes, one every 9s on average.
// The burst keeps short CLI runs fast.
var rateLimiter = rate.NewLimiter(rate.Every(9*time.Second), 10)

var now = time.Now

type Client interface {
	ListActivities(ctx context.Context, limit int) ([]Activity, error)
	UploadActivity(ctx context.Context, req UploadRequest) (*Upload, error)
}

type RealStravaClient struct {
	AccessToken string
}

// NewClient exchanges the refresh token for an access token and returns a client using it
func NewClient(ctx context.Context, clientID, clientSecret, refreshToken string) (*RealStravaClient, error) {
	token, err := RefreshAccessToken(ctx, clientID, clientSecret, refreshToken)
	if err != nil {
		return nil, err
	}
	return &RealStravaClient{AccessToken: token.AccessToken}, nil
}

// RefreshAccessToken runs the refresh_token grant against Strava
func RefreshAccessToken(ctx context.Context, clientID, clientSecret, refreshToken string) (Token, error) {
	values := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	body, err := doRequest(ctx, http.MethodPost, apiURL("/oauth/token"), []byte(values.Encode()), "application/x-www-form-urlencoded", "")
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusUnauthorized) {
			return Token{}, ErrInvalidToken
		}
		return Token{}, err
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("token response has no access_token")
	}
	slog.Info("Strava access token refreshed", "expires_at", token.ExpiresAt)
	return token, nil
}

// ListActivities returns the athlete's most recent activities
func (c *RealStravaClient) ListActivities(ctx context.Context, limit int) ([]Activity, error) {
	q := url.Values{"per_page": {strconv.Itoa(limit)}, "page": {"1"}}
	body, err := doRequest(ctx, http.MethodGet, apiURL("/api/v3/athlete/activities")+"?"+q.Encode(), nil, "", c.AccessToken)
	if err != nil {
		return nil, err
	}

	var activities []Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// UploadActivity posts an activity file to the uploads endpoint
func (c *RealStravaClient) UploadActivity(ctx context.Context, req UploadRequest) (*Upload, error) {
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, err
	}

	respBody, err := doRequest(ctx, http.MethodPost, apiURL("/api/v3/uploads"), body, contentType, c.AccessToken)
	if err != nil {
		return nil, err
	}

	var upload Upload
	if err := json.Unmarshal(respBody, &upload); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &upload, nil
}

// encodeUpload buffers the multipart body so a 5xx retry can resend it
func encodeUpload(req UploadRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("data_type", req.DataType); err != nil {
		return nil, "", fmt.Errorf("failed to write data_type: %w", err)
	}
	if req.ActivityType != "" {
		if err := w.WriteField("activity_type", req.ActivityType); err != nil {
			return nil, "", fmt.Errorf("failed to write activity_type: %w", err)
		}
	}

	part, err := w.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", fmt.Errorf("failed to read activity file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func apiURL(path string) string {
	return fmt.Sprintf("%s/%s", BaseURL, strings.TrimPrefix(path, "/"))
}

func doRequest(ctx context.Context, method, url string, body []byte, contentType, accessToken string) ([]byte, error) {
	var lastErr error
	for i := 0; i < MaxRetries; i++ {
		if err := rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}

		var req *http.Request
		var err error

		if len(body) > 0 {
			req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		} else {
			req, err = http.NewRequestWithContext(ctx, method, url, nil)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if accessToken != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			slog.Warn("Strava request failed", "attempt", i+1, "method", method, "url", url, "error", err)
			retryBackoff(i)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			rle := newRateLimitExceeded(resp.Header, now())
			metrics.RecordRateLimited()
			slog.Warn("Strava rate limit hit", "url", url, "timeout", rle.Timeout, "limit", rle.Limit, "usage", rle.Usage)
			return nil, rle
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			slog.Warn("Strava server error", "status", resp.StatusCode, "attempt", i+1)
			retryBackoff(i)
			continue
		}

		if resp.StatusCode >= 400 {
			slog.Error("Strava client error", "status", resp.StatusCode, "url", url, "response", string(respBody))
			return nil, &StatusError{StatusCode: resp.StatusCode}
		}

		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", MaxRetries, lastErr)
}
