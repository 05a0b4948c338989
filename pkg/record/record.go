package record

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ssargent/sq/pkg/span"
)

// Matcher finds non-overlapping matches in text, left to right, as byte offset pairs.
// *regexp.Regexp satisfies it.
type Matcher interface {
	FindAllStringIndex(s string, n int) [][]int
}

// Record is a line of text with an ordered set of non-overlapping annotated spans
type Record struct {
	Text  string      `json:"text"`
	Spans []span.Span `json:"spans"`
}

// Errors
var (
	ErrSpanOutOfBounds = errors.New("span exceeds text bounds")
	ErrSpanOrder       = errors.New("spans overlap or are out of order")
)

// InvariantError reports a span that violates the record invariants.
// It indicates corrupted input or a defect, never a recoverable condition.
type InvariantError struct {
	Span    span.Span
	TextLen uint
	Err     error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invalid span %s for text of %d characters: %v", e.Span, e.TextLen, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// New creates a record for text with no spans
func New(text string) *Record {
	return &Record{
		Text:  text,
		Spans: []span.Span{},
	}
}

// HasNoConflict reports whether s intersects none of the record's spans
func (r *Record) HasNoConflict(s span.Span) bool {
	for _, existing := range r.Spans {
		if span.Conflicts(existing, s) {
			return false
		}
	}
	return true
}

// Insert adds s in start order if it conflicts with no existing span.
// It returns false when s was rejected.
func (r *Record) Insert(s span.Span) bool {
	if !r.HasNoConflict(s) {
		return false
	}

	i := sort.Search(len(r.Spans), func(i int) bool {
		return r.Spans[i].Start > s.Start
	})
	r.Spans = append(r.Spans, span.Span{})
	copy(r.Spans[i+1:], r.Spans[i:])
	r.Spans[i] = s
	return true
}

// AddMatches runs m over the record text and inserts every match that does not
// conflict with an existing span. Zero-width matches are ignored. It returns the
// number of spans added.
func (r *Record) AddMatches(m Matcher) int {
	added := 0
	conv := span.NewConverter(r.Text)
	for _, loc := range m.FindAllStringIndex(r.Text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if r.Insert(conv.Span(loc[0], loc[1])) {
			added++
		}
	}
	return added
}

// SortSpans restores ascending start order, e.g. after decoding hand-edited input
func (r *Record) SortSpans() {
	sort.SliceStable(r.Spans, func(i, j int) bool {
		return r.Spans[i].Start < r.Spans[j].Start
	})
}

// Mask returns the record text with the contents of every span replaced by label.
// The record is not modified. A span outside the text or overlapping its
// predecessor yields an *InvariantError; offsets are never clamped.
func (r *Record) Mask(label string) (string, error) {
	textLen := uint(utf8.RuneCountInString(r.Text))

	var builder strings.Builder
	builder.Grow(len(r.Text))

	var (
		bytePos  int  // byte offset of charPos in r.Text
		charPos  uint // characters consumed so far
		copiedTo int  // byte offset up to which text has been copied
		prevEnd  uint
	)
	advance := func(target uint) {
		for charPos < target {
			_, size := utf8.DecodeRuneInString(r.Text[bytePos:])
			bytePos += size
			charPos++
		}
	}

	for _, s := range r.Spans {
		if s.Start > s.End || s.End > textLen {
			return "", &InvariantError{Span: s, TextLen: textLen, Err: ErrSpanOutOfBounds}
		}
		if s.Start < prevEnd {
			return "", &InvariantError{Span: s, TextLen: textLen, Err: ErrSpanOrder}
		}

		advance(s.Start)
		builder.WriteString(r.Text[copiedTo:bytePos])
		builder.WriteString(label)
		advance(s.End)
		copiedTo = bytePos
		prevEnd = s.End
	}
	builder.WriteString(r.Text[copiedTo:])

	return builder.String(), nil
}
