package span

import (
	"fmt"
	"unicode/utf8"
)

// Span is a half-open [Start, End) interval of character (codepoint) offsets
// into a record's text.
type Span struct {
	Start uint `json:"start"`
	End   uint `json:"end"`
}

// New creates a span from character offsets
func New(start, end uint) Span {
	return Span{Start: start, End: end}
}

// Len returns the number of characters covered by the span
func (s Span) Len() uint {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Valid reports whether the span is well-formed and fits in a text of charLen characters
func (s Span) Valid(charLen uint) bool {
	return s.Start <= s.End && s.End <= charLen
}

// Conflicts reports whether the span intersects other
func (s Span) Conflicts(other Span) bool {
	return Conflicts(s, other)
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Conflicts reports whether two spans intersect.
// Spans that merely touch (a.End == b.Start) do not conflict.
func Conflicts(a, b Span) bool {
	return !(a.End <= b.Start || b.End <= a.Start)
}

// FromByteRange converts a byte-offset range over text into a character span.
// Both offsets must fall on character boundaries; the regexp package guarantees
// this for every match it reports.
func FromByteRange(text string, byteStart, byteEnd int) Span {
	start := utf8.RuneCountInString(text[:byteStart])
	end := start + utf8.RuneCountInString(text[byteStart:byteEnd])
	return Span{Start: uint(start), End: uint(end)}
}

// Converter maps successive byte ranges over a single text to character spans.
// When ranges arrive in ascending order, as matches from a single regexp pass do,
// each call only counts the characters since the previous call.
type Converter struct {
	text    string
	bytePos int
	charPos uint
}

// NewConverter creates a converter positioned at the start of text
func NewConverter(text string) *Converter {
	return &Converter{text: text}
}

// Span converts the byte range [byteStart, byteEnd) into a character span
func (c *Converter) Span(byteStart, byteEnd int) Span {
	if byteStart < c.bytePos {
		c.bytePos, c.charPos = 0, 0
	}
	start := c.advance(byteStart)
	end := c.advance(byteEnd)
	return Span{Start: start, End: end}
}

func (c *Converter) advance(to int) uint {
	c.charPos += uint(utf8.RuneCountInString(c.text[c.bytePos:to]))
	c.bytePos = to
	return c.charPos
}
