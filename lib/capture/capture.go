package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/viscerous/runsync/lib/config"
	"github.com/viscerous/runsync/lib/metrics"
	"github.com/viscerous/runsync/lib/store"
)

// Source identifies the platform a raw response came from
type Source string

const (
	Keep   Source = "keep"
	Codoon Source = "codoon"
	Joyrun Source = "joyrun"
)

// Response is a decoded raw API response
type Response = map[string]interface{}

// FetchFunc retrieves one raw response
type FetchFunc func(ctx context.Context) (Response, error)

// filenameFields lists, per source, the dotted paths joined with "_" to name a capture
var filenameFields = map[Source][]string{
	Keep:   {"data.type", "data.subtype", "data.startTime"},
	Codoon: {"data.activity_type", "data.sports_type", "data.StartDateTime"},
	Joyrun: {"runrecord.type", "runrecord.starttime"},
}

// Writer captures raw responses below a root directory, one subdirectory per source
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Wrap captures under the configured response output root
func Wrap(source Source, fetch FetchFunc) FetchFunc {
	return NewWriter(config.ResponseOut).Wrap(source, fetch)
}

// Wrap returns a FetchFunc that saves each response fetched for source before handing
// it back unchanged. Sources without a filename rule pass straight through.
//
// The wrapped func never returns an error: a failed fetch or capture is logged and
// reported as a nil response so a sync loop keeps running.
func (w *Writer) Wrap(source Source, fetch FetchFunc) FetchFunc {
	fields, ok := filenameFields[source]

	return func(ctx context.Context) (Response, error) {
		response, err := fetch(ctx)
		if err != nil {
			slog.Error("Fetch failed", "source", source, "error", err)
			return nil, nil
		}
		if !ok {
			return response, nil
		}

		err = w.write(source, fields, response)
		metrics.RecordCapture(string(source), err)
		if err != nil {
			slog.Error("Failed to capture response", "source", source, "error", err)
			return nil, nil
		}
		return response, nil
	}
}

func (w *Writer) write(source Source, fields []string, response Response) error {
	name, err := Filename(fields, response)
	if err != nil {
		return err
	}

	dir := filepath.Join(w.root, string(source))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}

	data, err := marshalPretty(response)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	if err := store.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write capture file: %w", err)
	}
	slog.Debug("Response captured", "source", source, "file", path)
	return nil
}

// Filename joins the values found at fields with "_" and appends ".json".
// Values containing a path separator are rejected.
func Filename(fields []string, response Response) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		v, err := lookup(response, field)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	name := strings.Join(parts, "_") + ".json"
	if filepath.Base(name) != name {
		return "", fmt.Errorf("filename %q is not a plain file name", name)
	}
	return name, nil
}

// lookup walks a dotted path through nested maps and renders the leaf as text
func lookup(response Response, path string) (string, error) {
	var cur interface{} = response
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("field %s: %q is not an object", path, key)
		}
		if cur, ok = m[key]; !ok {
			return "", fmt.Errorf("field %s: missing %q", path, key)
		}
	}

	switch v := cur.(type) {
	case string:
		return v, nil
	case float64:
		// JSON numbers decode as float64; print timestamps without an exponent
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "null", nil
	default:
		return fmt.Sprint(v), nil
	}
}

// marshalPretty indents with four spaces and leaves <, > and & unescaped
func marshalPretty(response Response) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(response); err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
