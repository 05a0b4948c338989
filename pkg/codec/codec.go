package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ssargent/sq/pkg/record"
	"github.com/ssargent/sq/pkg/span"
)

// Errors
var (
	ErrNotObject   = errors.New("record must be a JSON object")
	ErrMissingText = errors.New("record has no text field")
)

// Encoder writes one JSON value per line
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode serializes v as compact JSON followed by a newline
func (e *Encoder) Encode(v any) error {
	if r, ok := v.(*record.Record); ok && r.Spans == nil {
		v = &record.Record{Text: r.Text, Spans: []span.Span{}}
	}
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return nil
}

// wireRecord mirrors record.Record with a pointer text so a missing field is detectable
type wireRecord struct {
	Text  *string     `json:"text"`
	Spans []span.Span `json:"spans"`
}

// DecodeRecord deserializes a persisted line into a record.
// Spans are returned in ascending start order.
func DecodeRecord(line []byte) (*record.Record, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var w wireRecord
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if w.Text == nil {
		return nil, ErrMissingText
	}

	r := &record.Record{Text: *w.Text, Spans: w.Spans}
	if r.Spans == nil {
		r.Spans = []span.Span{}
	}
	for _, s := range r.Spans {
		if s.Start > s.End {
			return nil, fmt.Errorf("invalid record: span %s starts after it ends", s)
		}
	}
	r.SortSpans()

	return r, nil
}
