// Package pipeline runs the sq operations over record streams. Every operation
// pulls one item, fully processes it and writes its result before reading the
// next, so memory use is bounded by the longest line.
package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ssargent/sq/pkg/codec"
	"github.com/ssargent/sq/pkg/record"
	"github.com/ssargent/sq/pkg/span"
)

// LineIterator yields raw text lines
type LineIterator interface {
	Next() bool
	Line() string
	Err() error
	Skipped() int
}

// RecordIterator yields decoded records
type RecordIterator interface {
	Next() bool
	Record() *record.Record
	Err() error
	Skipped() int
}

// SeenSet remembers lines across an import. Seen reports whether line was
// already recorded and records it if not.
type SeenSet interface {
	Seen(line string) (bool, error)
}

// Stats summarizes one run
type Stats struct {
	Records    int // items read and processed
	Skipped    int // malformed lines dropped by the reader
	Duplicates int // lines dropped by import dedupe
	Matches    int // matches printed
	SpansAdded int // spans persisted by mark
	Written    int // output lines written
}

// ImportOptions configures Import
type ImportOptions struct {
	Seen SeenSet // nil disables dedupe
}

const writeBufferSize = 64 * 1024

// Import turns each raw line into a fresh record with no spans
func Import(lines LineIterator, out io.Writer, opts ImportOptions) (Stats, error) {
	var stats Stats
	w := bufio.NewWriterSize(out, writeBufferSize)
	enc := codec.NewEncoder(w)

	for lines.Next() {
		line := lines.Line()
		stats.Records++

		if opts.Seen != nil {
			seen, err := opts.Seen.Seen(line)
			if err != nil {
				return finish(stats, lines, w, fmt.Errorf("failed to check line %d: %w", stats.Records, err))
			}
			if seen {
				stats.Duplicates++
				continue
			}
		}

		if err := enc.Encode(record.New(line)); err != nil {
			return finish(stats, lines, w, err)
		}
		stats.Written++
	}

	return finish(stats, lines, w, lines.Err())
}

// Print writes every matched substring on its own line. With onlyNew set,
// matches that conflict with a persisted span are suppressed.
func Print(records RecordIterator, m record.Matcher, out io.Writer, onlyNew bool) (Stats, error) {
	var stats Stats
	w := bufio.NewWriterSize(out, writeBufferSize)

	for records.Next() {
		rec := records.Record()
		stats.Records++

		var conv *span.Converter
		if onlyNew {
			conv = span.NewConverter(rec.Text)
		}

		for _, loc := range m.FindAllStringIndex(rec.Text, -1) {
			if onlyNew && !rec.HasNoConflict(conv.Span(loc[0], loc[1])) {
				continue
			}
			stats.Matches++
			if _, err := w.WriteString(rec.Text[loc[0]:loc[1]]); err != nil {
				return finish(stats, records, w, fmt.Errorf("failed to write match: %w", err))
			}
			if err := w.WriteByte('\n'); err != nil {
				return finish(stats, records, w, fmt.Errorf("failed to write match: %w", err))
			}
			stats.Written++
		}
	}

	return finish(stats, records, w, records.Err())
}

// Mark adds every non-conflicting match as a span and re-serializes each record
func Mark(records RecordIterator, m record.Matcher, out io.Writer) (Stats, error) {
	var stats Stats
	w := bufio.NewWriterSize(out, writeBufferSize)
	enc := codec.NewEncoder(w)

	for records.Next() {
		rec := records.Record()
		stats.Records++

		stats.SpansAdded += rec.AddMatches(m)
		if err := enc.Encode(rec); err != nil {
			return finish(stats, records, w, err)
		}
		stats.Written++
	}

	return finish(stats, records, w, records.Err())
}

// Mask writes each record's masked text as a JSON string line
func Mask(records RecordIterator, label string, out io.Writer) (Stats, error) {
	var stats Stats
	w := bufio.NewWriterSize(out, writeBufferSize)
	enc := codec.NewEncoder(w)

	for records.Next() {
		rec := records.Record()
		stats.Records++

		masked, err := rec.Mask(label)
		if err != nil {
			return finish(stats, records, w, fmt.Errorf("record %d: %w", stats.Records, err))
		}
		if err := enc.Encode(masked); err != nil {
			return finish(stats, records, w, err)
		}
		stats.Written++
	}

	return finish(stats, records, w, records.Err())
}

// skipCounter is satisfied by both iterator kinds
type skipCounter interface {
	Skipped() int
}

// finish flushes buffered output and folds the reader's skip count into stats.
// A run error takes precedence over a flush error.
func finish(stats Stats, src skipCounter, w *bufio.Writer, runErr error) (Stats, error) {
	stats.Skipped = src.Skipped()
	if err := w.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to flush output: %w", err)
	}
	return stats, runErr
}
