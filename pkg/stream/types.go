package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Policy selects what readers do with a line they cannot interpret
type Policy string

const (
	// PolicyAbort stops the stream with a *MalformedLineError
	PolicyAbort Policy = "abort"

	// PolicySkip drops the line, counts it and logs a warning
	PolicySkip Policy = "skip"
)

// DefaultMaxLineBytes is the longest line a reader accepts by default
const DefaultMaxLineBytes = 64 << 20

// StdinPath names standard input (or standard output) on the command line
const StdinPath = "-"

// ReaderConfig holds configuration shared by line and record readers
type ReaderConfig struct {
	OnMalformed  Policy       // Malformed line policy, applied to every reader
	MaxLineBytes int          // Longest accepted line (0 = DefaultMaxLineBytes)
	Logger       *slog.Logger // Receives skipped-line warnings (nil = slog.Default())
}

// ParsePolicy parses a malformed-line policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAbort, PolicySkip:
		return p, nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown malformed-line policy %q (want %q or %q)", s, PolicyAbort, PolicySkip)
	}
}

// Errors
var (
	ErrInvalidUTF8   = errors.New("line is not valid UTF-8")
	ErrInPlaceStdin  = errors.New("cannot rewrite standard input in place")
	ErrAlreadyClosed = errors.New("output already committed or aborted")
)

// MalformedLineError reports a line rejected under PolicyAbort
type MalformedLineError struct {
	Source string
	Line   int
	Err    error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: malformed line: %v", e.Source, e.Line, e.Err)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}
