package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/sq/pkg/record"
	"github.com/ssargent/sq/pkg/span"
)

func TestEncoder_FreshRecord(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain text",
			text: "foo bar foo",
			want: `{"text":"foo bar foo","spans":[]}` + "\n",
		},
		{
			name: "html characters stay literal",
			text: "a <b> & c",
			want: `{"text":"a <b> & c","spans":[]}` + "\n",
		},
		{
			name: "quotes and backslashes",
			text: `say "hi" \o/`,
			want: `{"text":"say \"hi\" \\o/","spans":[]}` + "\n",
		},
		{
			name: "unicode",
			text: "🔑 unicode with émojis",
			want: `{"text":"🔑 unicode with émojis","spans":[]}` + "\n",
		},
		{
			name: "empty line",
			text: "",
			want: `{"text":"","spans":[]}` + "\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewEncoder(&buf).Encode(record.New(tc.text)))
			assert.Equal(t, tc.want, buf.String())

			// the encoded line decodes back to the same record
			decoded, err := DecodeRecord(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, record.New(tc.text), decoded)
		})
	}
}

func TestEncoder_NilSpansEncodeAsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(&record.Record{Text: "x"}))
	assert.Equal(t, `{"text":"x","spans":[]}`+"\n", buf.String())
}

func TestEncoder_MarkedRecordAndString(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	r := &record.Record{
		Text:  "foo bar foo",
		Spans: []span.Span{span.New(0, 3), span.New(8, 11)},
	}
	require.NoError(t, enc.Encode(r))
	require.NoError(t, enc.Encode("REDACTED bar REDACTED"))

	assert.Equal(t,
		`{"text":"foo bar foo","spans":[{"start":0,"end":3},{"start":8,"end":11}]}`+"\n"+
			`"REDACTED bar REDACTED"`+"\n",
		buf.String())
}

func TestDecodeRecord(t *testing.T) {
	t.Run("spans are sorted", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"text":"foo bar foo","spans":[{"start":8,"end":11},{"start":0,"end":3}]}`))
		require.NoError(t, err)
		assert.Equal(t, []span.Span{span.New(0, 3), span.New(8, 11)}, r.Spans)
	})

	t.Run("missing spans", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"text":"abc"}`))
		require.NoError(t, err)
		assert.NotNil(t, r.Spans)
		assert.Empty(t, r.Spans)
	})

	t.Run("null spans", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"text":"abc","spans":null}`))
		require.NoError(t, err)
		assert.Empty(t, r.Spans)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"text":"abc","spans":[],"source":"x.txt"}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", r.Text)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		r, err := DecodeRecord([]byte("  {\"text\":\"abc\",\"spans\":[]}\r"))
		require.NoError(t, err)
		assert.Equal(t, "abc", r.Text)
	})

	t.Run("out of range spans are kept", func(t *testing.T) {
		r, err := DecodeRecord([]byte(`{"text":"abc","spans":[{"start":1,"end":99}]}`))
		require.NoError(t, err)
		assert.Equal(t, []span.Span{span.New(1, 99)}, r.Spans)
	})
}

func TestDecodeRecord_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "empty", line: "", wantErr: ErrNotObject},
		{name: "not json", line: "foo bar", wantErr: ErrNotObject},
		{name: "json string", line: `"foo"`, wantErr: ErrNotObject},
		{name: "json array", line: `[1,2]`, wantErr: ErrNotObject},
		{name: "missing text", line: `{"spans":[]}`, wantErr: ErrMissingText},
		{name: "null text", line: `{"text":null,"spans":[]}`, wantErr: ErrMissingText},
		{name: "numeric text", line: `{"text":5,"spans":[]}`},
		{name: "negative offset", line: `{"text":"abc","spans":[{"start":-1,"end":2}]}`},
		{name: "fractional offset", line: `{"text":"abc","spans":[{"start":0.5,"end":2}]}`},
		{name: "inverted span", line: `{"text":"abc","spans":[{"start":2,"end":1}]}`},
		{name: "truncated", line: `{"text":"abc","spans":[`},
		{name: "trailing garbage", line: `{"text":"abc"} {}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := DecodeRecord([]byte(tc.line))
			require.Error(t, err)
			assert.Nil(t, r)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestDecodeRecord_SyntaxErrorIsWrapped(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"text":"abc",}`))
	require.Error(t, err)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}
