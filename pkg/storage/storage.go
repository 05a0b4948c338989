package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// SeenStore remembers which lines an import has already emitted. Keys are the
// SHA-256 of the line; values are the KSUID of the first sighting.
type SeenStore struct {
	db        *pebble.DB
	logger    *slog.Logger
	dir       string
	ephemeral bool
}

// OpenSeenStore opens a seen-set in dir. An empty dir uses a temporary
// directory that is removed on Close; a named dir persists across runs so
// repeated imports skip lines emitted earlier.
func OpenSeenStore(dir string, logger *slog.Logger) (*SeenStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ephemeral := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "sq-seen-")
		if err != nil {
			return nil, fmt.Errorf("failed to create dedupe directory: %w", err)
		}
		dir = tmp
		ephemeral = true
	}

	db, err := pebble.Open(dir, &pebble.Options{Logger: pebbleLogger{logger: logger}})
	if err != nil {
		if ephemeral {
			os.RemoveAll(dir)
		}
		return nil, fmt.Errorf("failed to open dedupe store: %w", err)
	}

	logger.Debug("Opened dedupe store", "dir", dir, "ephemeral", ephemeral)
	return &SeenStore{db: db, logger: logger, dir: dir, ephemeral: ephemeral}, nil
}

// Seen reports whether line was recorded before and records it if not
func (s *SeenStore) Seen(line string) (bool, error) {
	key := sha256.Sum256([]byte(line))

	first, ok, err := s.firstSeen(key[:])
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Debug("Dropping duplicate line", "first_seen", first.String(), "first_seen_at", first.Time())
		return true, nil
	}

	if err := s.db.Set(key[:], ksuid.New().Bytes(), pebble.NoSync); err != nil {
		return false, fmt.Errorf("failed to record line: %w", err)
	}
	return false, nil
}

// firstSeen returns the id stored for key when the line was first recorded
func (s *SeenStore) firstSeen(key []byte) (ksuid.KSUID, bool, error) {
	data, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return ksuid.Nil, false, nil
	}
	if err != nil {
		return ksuid.Nil, false, fmt.Errorf("failed to look up line: %w", err)
	}
	defer closer.Close()

	id, err := ksuid.FromBytes(data)
	if err != nil {
		return ksuid.Nil, false, fmt.Errorf("corrupt dedupe entry: %w", err)
	}
	return id, true, nil
}

// Close flushes and closes the store. A temporary store is deleted.
func (s *SeenStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Flush()
	if closeErr := s.db.Close(); err == nil {
		err = closeErr
	}
	s.db = nil

	if s.ephemeral {
		if rmErr := os.RemoveAll(s.dir); err == nil {
			err = rmErr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to close dedupe store: %w", err)
	}
	return nil
}

// pebbleLogger routes pebble's internal logging through slog
type pebbleLogger struct {
	logger *slog.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
	os.Exit(1)
}
