package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes one JSON file per artifact under <dir>/<request_id>/<kind>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Save(ctx context.Context, requestID, kind string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !safeSegment(requestID) || !safeSegment(kind) {
		return fmt.Errorf("save artifact: invalid request id %q or kind %q", requestID, kind)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("save artifact: encode %s: %w", kind, err)
	}

	dir := filepath.Join(s.dir, requestID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save artifact: create dir: %w", err)
	}

	// Write to a temp file, then rename into place.
	tmp, err := os.CreateTemp(dir, kind+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save artifact: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save artifact: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save artifact: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, kind+".json")); err != nil {
		return fmt.Errorf("save artifact: rename: %w", err)
	}

	return nil
}

// Load reads a saved artifact into v.
func (s *FileStore) Load(requestID, kind string, v any) error {
	if !safeSegment(requestID) || !safeSegment(kind) {
		return fmt.Errorf("load artifact: invalid request id %q or kind %q", requestID, kind)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, requestID, kind+".json"))
	if err != nil {
		return fmt.Errorf("load artifact %s/%s: %w", requestID, kind, err)
	}

	return json.Unmarshal(data, v)
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
