package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// Output is a destination that becomes visible only once committed
type Output interface {
	io.Writer
	// Commit makes the written content visible at the destination
	Commit() error
	// Abort discards the written content where possible
	Abort() error
}

// AtomicFile writes to a temporary file next to the target and renames it over
// the target on Commit, so readers of the target see either the old or the new
// content and never a partial file.
type AtomicFile struct {
	target string
	file   *os.File
	closed bool
}

// CreateAtomic starts an atomic replacement of target. An existing target's
// permission bits are carried over to the new file.
func CreateAtomic(target string) (*AtomicFile, error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}

	perm := os.FileMode(0666)
	preserve := false
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
		preserve = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat output: %w", err)
	}

	// same directory as the target so the rename stays on one filesystem
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, ksuid.New().String()))
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary output: %w", err)
	}

	if preserve {
		if err := file.Chmod(perm); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return nil, fmt.Errorf("failed to set output permissions: %w", err)
		}
	}

	return &AtomicFile{target: target, file: file}, nil
}

// Write appends p to the temporary file
func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.closed {
		return 0, ErrAlreadyClosed
	}
	return a.file.Write(p)
}

// Commit syncs the temporary file and renames it over the target
func (a *AtomicFile) Commit() error {
	if a.closed {
		return ErrAlreadyClosed
	}
	a.closed = true

	tmpPath := a.file.Name()
	if err := a.file.Sync(); err != nil {
		a.file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err := a.file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, a.target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", a.target, err)
	}
	return nil
}

// Abort removes the temporary file and leaves the target untouched.
// Calling Abort after Commit is a no-op.
func (a *AtomicFile) Abort() error {
	if a.closed {
		return nil
	}
	a.closed = true

	closeErr := a.file.Close()
	if err := os.Remove(a.file.Name()); err != nil {
		return fmt.Errorf("failed to remove temporary output: %w", err)
	}
	return closeErr
}

// writerOutput passes writes through to a stream that needs no commit step
type writerOutput struct {
	io.Writer
	closer io.Closer
}

func (w *writerOutput) Commit() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *writerOutput) Abort() error {
	return w.Commit()
}

// OpenOutput resolves a destination path. StdinPath or "" selects stdout.
// Regular files (existing or new) are replaced atomically; other existing
// files such as devices or pipes are written in place.
func OpenOutput(path string, stdout io.Writer) (Output, error) {
	if path == "" || path == StdinPath {
		return &writerOutput{Writer: stdout}, nil
	}

	info, err := os.Stat(path)
	if err == nil && !info.Mode().IsRegular() {
		file, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to open output: %w", err)
		}
		return &writerOutput{Writer: file, closer: file}, nil
	}

	return CreateAtomic(path)
}
