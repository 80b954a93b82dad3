package timeutil

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Layouts tried by ToDate, in order
var Layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000000",
}

// timestampShape bounds what Layouts accept. time.Parse would otherwise take any
// number of fractional digits, or a comma, after the seconds.
var timestampShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)

// now is replaced in tests
var now = time.Now

// ParseError is returned when a timestamp matches none of the layouts
type ParseError struct {
	Value   string
	Layouts []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp %s into date with layouts: [%s]", e.Value, strings.Join(e.Layouts, ", "))
}

// Offset returns the UTC offset of the named zone at the current instant, not at
// any particular timestamp, so results shift by an hour across DST transitions.
func Offset(tzName string) (time.Duration, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return 0, fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}
	_, offset := now().In(loc).Zone()
	return time.Duration(offset) * time.Second, nil
}

// AdjustTime shifts a UTC wall clock time into the named zone
func AdjustTime(t time.Time, tzName string) (time.Time, error) {
	offset, err := Offset(tzName)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(offset), nil
}

// AdjustTimeToUTC shifts a wall clock time in the named zone back to UTC
func AdjustTimeToUTC(t time.Time, tzName string) (time.Time, error) {
	offset, err := Offset(tzName)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(-offset), nil
}

// AdjustTimestampToUTC shifts a Unix timestamp in seconds recorded as local time in
// the named zone back to UTC
func AdjustTimestampToUTC(ts int64, tzName string) (int64, error) {
	offset, err := Offset(tzName)
	if err != nil {
		return 0, err
	}
	return ts - int64(offset/time.Second), nil
}

// ToDate parses a zone-less timestamp, trying each of Layouts in order.
// The result carries no zone information and is returned in UTC.
func ToDate(ts string) (time.Time, error) {
	if !timestampShape.MatchString(ts) {
		return time.Time{}, &ParseError{Value: ts, Layouts: Layouts}
	}
	for _, layout := range Layouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		slog.Debug("Timestamp does not match layout, trying next one", "timestamp", ts, "layout", layout)
	}
	return time.Time{}, &ParseError{Value: ts, Layouts: Layouts}
}
