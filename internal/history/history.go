// Package history persists the ordered list of submitted URLs across runs.
// The list stays small: a handful of recent targets, deduplicated by
// normalized URL, stored as JSON under the user's home directory. A missing
// or corrupted file is never fatal; it is treated as empty and rewritten on
// the next record.
package history

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/authscope/authscope-cli/internal/config"
)

// defaultRelPath is the history location under the home directory when no
// explicit path is configured.
const defaultRelPath = ".authscope/history.json"

// Entry is one submitted URL with its generated identifier.
type Entry struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store reads and writes the history file. Safe for concurrent use within
// one process; last-writer-wins across processes, which is acceptable for a
// convenience list.
type Store struct {
	path  string
	limit int
	log   *zap.Logger

	mu sync.Mutex
}

// NewStore resolves the history path and returns a Store. A nil logger
// becomes a no-op.
func NewStore(cfg config.HistoryConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path := cfg.Path
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, defaultRelPath)
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}

	return &Store{path: path, limit: limit, log: logger.Named("history")}, nil
}

// Record inserts rawURL at the head of the list, removing any previous entry
// with the same normalized URL and truncating to the configured cap.
func (s *Store) Record(rawURL string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	normalized := Normalize(rawURL)

	kept := entries[:0]
	for _, e := range entries {
		if Normalize(e.URL) != normalized {
			kept = append(kept, e)
		}
	}

	entry := Entry{
		ID:          uuid.New().String(),
		URL:         rawURL,
		SubmittedAt: time.Now().UTC(),
	}
	entries = append([]Entry{entry}, kept...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	if err := s.save(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns the persisted entries, most recent first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// load reads the history file, tolerating absence and corruption.
func (s *Store) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("history file corrupted, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return nil
	}
	return entries
}

// save writes the entries atomically enough for a convenience list: temp
// file in the same directory, then rename.
func (s *Store) save(entries []Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("create history temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close history temp file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Normalize canonicalizes a URL string for deduplication: lower-cased scheme
// and host, default ports stripped, trailing slash and fragment dropped.
// Unparseable input falls back to the trimmed raw string.
func Normalize(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(raw), "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
