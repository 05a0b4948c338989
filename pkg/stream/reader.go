package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/ssargent/sq/pkg/codec"
	"github.com/ssargent/sq/pkg/record"
)

// lineScanner provides sequential access to the lines of one source and applies
// the malformed-line policy on behalf of the readers built on it
type lineScanner struct {
	closer  io.Closer
	scanner *bufio.Scanner
	source  string
	config  ReaderConfig
	lineNo  int
	skipped int
	err     error
}

func newLineScanner(r io.Reader, source string, config ReaderConfig) lineScanner {
	if config.MaxLineBytes <= 0 {
		config.MaxLineBytes = DefaultMaxLineBytes
	}
	if config.OnMalformed == "" {
		config.OnMalformed = PolicyAbort
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	// the scanner's limit is the larger of max and cap(buf)
	initial := 64 * 1024
	if initial > config.MaxLineBytes {
		initial = config.MaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initial), config.MaxLineBytes)

	return lineScanner{
		scanner: scanner,
		source:  source,
		config:  config,
	}
}

// openSource opens path for reading; StdinPath reads standard input
func openSource(path string) (io.Reader, io.Closer, string, error) {
	if path == StdinPath {
		return os.Stdin, nil, "<stdin>", nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	return file, file, path, nil
}

// scan returns the next raw line. The slice is only valid until the next call.
func (s *lineScanner) scan() ([]byte, bool) {
	if s.err != nil {
		return nil, false
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("failed to read %s at line %d: %w", s.source, s.lineNo+1, err)
		}
		return nil, false
	}
	s.lineNo++
	return s.scanner.Bytes(), true
}

// reject applies the malformed-line policy and reports whether reading may continue
func (s *lineScanner) reject(cause error) bool {
	if s.config.OnMalformed == PolicySkip {
		s.skipped++
		s.config.Logger.Warn("Skipping malformed line",
			"source", s.source, "line", s.lineNo, "error", cause)
		return true
	}
	s.err = &MalformedLineError{Source: s.source, Line: s.lineNo, Err: cause}
	return false
}

// Skipped returns how many malformed lines were dropped
func (s *lineScanner) Skipped() int {
	return s.skipped
}

// Err returns the error that stopped the stream, if any
func (s *lineScanner) Err() error {
	return s.err
}

// Close releases the underlying file. Standard input is left open.
func (s *lineScanner) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// LineReader yields the raw lines of a text source
type LineReader struct {
	lineScanner
	line string
}

// NewLineReader creates a line reader over r
func NewLineReader(r io.Reader, source string, config ReaderConfig) *LineReader {
	return &LineReader{lineScanner: newLineScanner(r, source, config)}
}

// OpenLines opens path (or standard input for "-") as a line reader
func OpenLines(path string, config ReaderConfig) (*LineReader, error) {
	r, closer, source, err := openSource(path)
	if err != nil {
		return nil, err
	}
	reader := NewLineReader(r, source, config)
	reader.closer = closer
	return reader, nil
}

// Next advances to the next line. Lines that are not valid UTF-8 are malformed.
func (r *LineReader) Next() bool {
	for {
		b, ok := r.scan()
		if !ok {
			return false
		}
		if !utf8.Valid(b) {
			if r.reject(ErrInvalidUTF8) {
				continue
			}
			return false
		}
		r.line = string(b)
		return true
	}
}

// Line returns the current line without its terminator
func (r *LineReader) Line() string {
	return r.line
}

// RecordReader yields records decoded from persisted NDJSON lines.
// Blank lines are ignored.
type RecordReader struct {
	lineScanner
	record *record.Record
}

// NewRecordReader creates a record reader over r
func NewRecordReader(r io.Reader, source string, config ReaderConfig) *RecordReader {
	return &RecordReader{lineScanner: newLineScanner(r, source, config)}
}

// OpenRecords opens path (or standard input for "-") as a record reader
func OpenRecords(path string, config ReaderConfig) (*RecordReader, error) {
	r, closer, source, err := openSource(path)
	if err != nil {
		return nil, err
	}
	reader := NewRecordReader(r, source, config)
	reader.closer = closer
	return reader, nil
}

// Next decodes the next record
func (r *RecordReader) Next() bool {
	r.record = nil
	for {
		b, ok := r.scan()
		if !ok {
			return false
		}
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}
		rec, err := codec.DecodeRecord(b)
		if err != nil {
			if r.reject(err) {
				continue
			}
			return false
		}
		r.record = rec
		return true
	}
}

// Record returns the current record. Each call to Next yields a new record
// owned by the caller.
func (r *RecordReader) Record() *record.Record {
	return r.record
}
