package strava

import (
	"io"
	"time"
)

// Activity is a summary activity as returned by the athlete activities endpoint
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	SportType   string    `json:"sport_type,omitempty"`
	StartDate   time.Time `json:"start_date"`
	ElapsedTime int       `json:"elapsed_time"`
}

// EndDate is the start date plus the elapsed time
func (a Activity) EndDate() time.Time {
	return a.StartDate.Add(time.Duration(a.ElapsedTime) * time.Second)
}

// Token represents the OAuth token pair returned by a refresh
type Token struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Upload represents an accepted upload
type Upload struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"id_str"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	ActivityID int64  `json:"activity_id"`
}

// UploadRequest describes a single activity file upload.
// ActivityType is optional; Strava infers the type from the file when empty.
type UploadRequest struct {
	File         io.Reader
	FileName     string
	DataType     string
	ActivityType string
}
