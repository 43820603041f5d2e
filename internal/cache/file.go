package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-edge/internal/models"
)

const rawTimestampFormat = "20060102T150405"

// FileStore keeps one JSON file per key. A snapshot's age is the file's mtime.
// Each Put also writes a timestamped raw copy for later diagnosis when RawDir is set.
type FileStore struct {
	dir    string
	rawDir string
	logger *logrus.Entry
	now    func() time.Time
}

// rawCopy is the layout of the diagnostic copies in RawDir
type rawCopy struct {
	SavedAt time.Time         `json:"saved_at"`
	Data    []json.RawMessage `json:"data"`
}

// NewFileStore creates the cache directories and returns a store rooted at dir
func NewFileStore(dir, rawDir string, logger *logrus.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	if rawDir != "" {
		if err := os.MkdirAll(rawDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create raw dir: %w", err)
		}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &FileStore{
		dir:    dir,
		rawDir: rawDir,
		logger: logger.WithField("component", "file_cache"),
		now:    time.Now,
	}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the cached events for key. An unreadable file is logged and reported as a miss.
func (s *FileStore) Get(ctx context.Context, key string) (*models.Snapshot, time.Duration, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, false, err
	}

	path := s.path(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to stat cache file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var events []json.RawMessage
	if err := json.Unmarshal(data, &events); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to load cache")
		return nil, 0, false, nil
	}

	modTime := info.ModTime()
	return &models.Snapshot{
		Key:       key,
		FetchedAt: modTime,
		Events:    events,
	}, s.now().Sub(modTime), true, nil
}

// Put writes the snapshot events to the cache file and, when configured, a raw copy
func (s *FileStore) Put(ctx context.Context, snapshot *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshot == nil || snapshot.Key == "" {
		return fmt.Errorf("snapshot with a key is required")
	}

	events := snapshot.Events
	if events == nil {
		events = []json.RawMessage{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeFileAtomic(s.path(snapshot.Key), data); err != nil {
		return err
	}

	if s.rawDir != "" {
		if err := s.writeRaw(snapshot, events); err != nil {
			s.logger.WithError(err).Warn("Failed to write raw odds copy")
		}
	}
	return nil
}

func (s *FileStore) writeRaw(snapshot *models.Snapshot, events []json.RawMessage) error {
	savedAt := s.now().UTC()
	data, err := json.MarshalIndent(rawCopy{SavedAt: savedAt, Data: events}, "", "  ")
	if err != nil {
		return err
	}
	sport := snapshot.SportKey
	if sport == "" {
		sport = snapshot.Key
	}
	name := fmt.Sprintf("%s_%s.json", sport, savedAt.Format(rawTimestampFormat))
	return os.WriteFile(filepath.Join(s.rawDir, name), data, 0o644)
}

// writeFileAtomic writes via a temp file and rename so readers never see a partial file
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
