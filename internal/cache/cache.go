// Package cache persists scan results as a JSON {timestamp, result}
// envelope so reports can be rendered without rescanning.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/example/codoc/internal/model"
)

var (
	// ErrNoCache is returned when no cache file exists.
	ErrNoCache = errors.New("no cached scan result")
	// ErrMalformed is returned when the envelope lacks a timestamp or result.
	ErrMalformed = errors.New("malformed cache file")
)

// Entry is a cached scan result.
type Entry struct {
	Timestamp time.Time
	Result    *model.Result
}

// Status describes the cache file without decoding the result.
type Status struct {
	Path      string    `json:"path"`
	Exists    bool      `json:"exists"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type envelope struct {
	Timestamp string          `json:"timestamp"`
	Result    json.RawMessage `json:"result"`
}

// Store reads and writes one cache file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore returns a store for path. A nil logger discards output.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes result stamped with ts, replacing any previous cache.
func (s *Store) Save(result *model.Result, ts time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out, err := json.MarshalIndent(envelope{
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
		Result:    data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".scan-cache-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	s.logger.Info("scan result cached", zap.String("path", s.path), zap.Time("timestamp", ts))
	return nil
}

// Load reads the cached result.
func (s *Store) Load() (*Entry, error) {
	env, err := s.read()
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, env.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}

	result := model.New()
	if err := json.Unmarshal(env.Result, result); err != nil {
		return nil, fmt.Errorf("%w: result: %v", ErrMalformed, err)
	}

	s.logger.Debug("loaded cached result", zap.String("path", s.path), zap.Time("timestamp", ts))
	return &Entry{Timestamp: ts, Result: result}, nil
}

// Status reports whether the cache exists and when it was written. A
// malformed file is reported as existing with a zero timestamp.
func (s *Store) Status() (Status, error) {
	st := Status{Path: s.path}
	env, err := s.read()
	switch {
	case errors.Is(err, ErrNoCache):
		return st, nil
	case errors.Is(err, ErrMalformed):
		st.Exists = true
		return st, nil
	case err != nil:
		return st, err
	}

	st.Exists = true
	if ts, err := time.Parse(time.RFC3339Nano, env.Timestamp); err == nil {
		st.Timestamp = ts
	}
	return st, nil
}

// Clear removes the cache file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	s.logger.Info("cache cleared", zap.String("path", s.path))
	return nil
}

func (s *Store) read() (*envelope, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCache
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Timestamp == "" || len(bytes.TrimSpace(env.Result)) == 0 || bytes.Equal(bytes.TrimSpace(env.Result), []byte("null")) {
		return nil, ErrMalformed
	}
	return &env, nil
}
