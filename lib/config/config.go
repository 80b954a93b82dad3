package config

import (
	"cmp"
	"log/slog"
	"os"
	"strings"
)

var StravaClientId string = getConfig("STRAVA_CLIENT_ID")
var StravaClientSecret string = getConfig("STRAVA_CLIENT_SECRET")
var StravaRefreshToken string = getConfig("STRAVA_REFRESH_TOKEN")
var StravaBaseURL string = cmp.Or(os.Getenv("STRAVA_BASE_URL"), "https://www.strava.com")

// ResponseOut is the root directory raw third-party responses are captured under
var ResponseOut string = cmp.Or(os.Getenv("RESPONSE_OUT"), "activities_response")

var BaseTimezone string = cmp.Or(os.Getenv("BASE_TIMEZONE"), "Asia/Shanghai")
var DataDir string = cmp.Or(os.Getenv("DATA_DIR"), "GPX_OUT")
var JSONFile string = cmp.Or(os.Getenv("JSON_FILE"), "activities.json")

// PushgatewayURL receives metrics at the end of a CLI run; pushing is off when empty
var PushgatewayURL string = os.Getenv("PUSHGATEWAY_URL")

func getConfig(name string) string {
	return cmp.Or(os.Getenv(name), readSecretFile(name+"_FILE"))
}

func readSecretFile(name string) string {
	path := os.Getenv(name)
	if path == "" {
		return ""
	}
	file, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Failed to read secret file", "env_var", name, "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(string(file))
}
