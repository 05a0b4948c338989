// Package codec provides record serialization and deserialization for sq.
//
// The codec package implements the newline-delimited JSON (NDJSON) format used
// for every persisted record and every command output. One value is written per
// line.
//
// # Record Format
//
// A persisted record is a single JSON object on its own line:
//
//	{"text":"foo bar foo","spans":[{"start":0,"end":3},{"start":8,"end":11}]}
//
// Fields:
//   - text: the original line of text
//   - spans: half-open [start, end) intervals in CHARACTER (codepoint) offsets,
//     ascending by start and pairwise non-overlapping. Freshly imported records
//     carry an empty array, never null.
//
// Character offsets keep spans independent of how many bytes each character
// occupies in UTF-8.
//
// # Usage
//
//	enc := codec.NewEncoder(w)
//	if err := enc.Encode(record.New(line)); err != nil {
//	    return err
//	}
//
//	rec, err := codec.DecodeRecord(line)
//	if err != nil {
//	    return err // malformed line
//	}
//
// # Error Handling
//
// DecodeRecord rejects lines that are not a JSON object, carry a non-string text,
// negative or non-integer offsets, or a span whose start is after its end. It
// does not check spans against the text length; the masking engine treats that
// as an invariant violation when the record is used.
//
// Encoding disables HTML escaping so that text containing <, > or & round-trips
// byte-for-byte.
package codec
