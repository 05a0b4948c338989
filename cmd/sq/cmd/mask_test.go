package cmd

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/sq/pkg/config"
	"github.com/ssargent/sq/pkg/record"
	"github.com/ssargent/sq/pkg/stream"
)

func TestRunMask(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sq_mask_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	input := writeFile(t, tmpDir, "records.ndjson",
		`{"text":"foo bar foo","spans":[{"start":0,"end":3},{"start":8,"end":11}]}`+"\n")

	t.Run("label flag", func(t *testing.T) {
		newTestContainer(t, nil)
		var stdout bytes.Buffer
		_, err := runMask(maskOptions{input: input, label: "REDACTED", hasLabel: true}, &stdout)
		require.NoError(t, err)
		assert.Equal(t, `"REDACTED bar REDACTED"`+"\n", stdout.String())
	})

	t.Run("empty label flag deletes", func(t *testing.T) {
		newTestContainer(t, nil)
		var stdout bytes.Buffer
		_, err := runMask(maskOptions{input: input, label: "", hasLabel: true}, &stdout)
		require.NoError(t, err)
		assert.Equal(t, `" bar "`+"\n", stdout.String())
	})

	t.Run("configured default label", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Defaults.Label = "***"
		newTestContainer(t, cfg)

		var stdout bytes.Buffer
		_, err := runMask(maskOptions{input: input}, &stdout)
		require.NoError(t, err)
		assert.Equal(t, `"*** bar ***"`+"\n", stdout.String())
	})

	t.Run("no label", func(t *testing.T) {
		newTestContainer(t, nil)
		_, err := runMask(maskOptions{input: input}, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrNoLabel)
	})
}

func TestRunMask_Errors(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sq_mask_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	newTestContainer(t, nil)

	t.Run("span beyond text", func(t *testing.T) {
		input := writeFile(t, tmpDir, "bad.ndjson", `{"text":"abc","spans":[{"start":0,"end":9}]}`+"\n")
		_, err := runMask(maskOptions{input: input, label: "X", hasLabel: true}, &bytes.Buffer{})
		require.Error(t, err)

		var invariant *record.InvariantError
		assert.True(t, errors.As(err, &invariant))
	})

	t.Run("malformed line aborts", func(t *testing.T) {
		input := writeFile(t, tmpDir, "malformed.ndjson", `{"text":"a","spans":[]}`+"\n"+`{oops`+"\n")
		_, err := runMask(maskOptions{input: input, label: "X", hasLabel: true}, &bytes.Buffer{})

		var malformed *stream.MalformedLineError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 2, malformed.Line)
	})
}

func TestMaskCommand_LabelFlag(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sq_mask_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := writeFile(t, tmpDir, "config.yaml", "defaults:\n  label: '[CFG]'\n")
	input := writeFile(t, tmpDir, "records.ndjson", fooMarked)

	t.Run("configured label when flag is absent", func(t *testing.T) {
		newTestContainer(t, nil)
		stdout, err := executeCommand(t, "--config", configPath, "mask", input)
		require.NoError(t, err)
		assert.Equal(t, `"[CFG] bar [CFG]"`+"\n", stdout)
	})

	t.Run("explicit empty label deletes", func(t *testing.T) {
		newTestContainer(t, nil)
		stdout, err := executeCommand(t, "--config", configPath, "mask", "--label", "", input)
		require.NoError(t, err)
		assert.Equal(t, `" bar "`+"\n", stdout)
	})
}
