package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/stream"
)

// ErrNoLabel is returned when mask has neither --label nor a configured default
var ErrNoLabel = errors.New("a label is required (--label or defaults.label)")

type maskOptions struct {
	input    string
	label    string
	hasLabel bool
}

var maskOpts maskOptions

// maskCmd represents the mask command
var maskCmd = &cobra.Command{
	Use:   "mask [-l LABEL] INPUT",
	Short: "Replace every span with a label",
	Long: `Replace the text covered by each stored span with LABEL and print the
result as one JSON string per line.

Examples:
  sq mask -l REDACTED records.ndjson
  sq mask -l '[email]' - < marked.ndjson`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := maskOpts
		opts.input = args[0]
		opts.hasLabel = cmd.Flags().Changed("label")
		return recordRun("mask", func() (pipeline.Stats, error) {
			return runMask(opts, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(maskCmd)
	maskCmd.Flags().StringVarP(&maskOpts.label, "label", "l", "", "Replacement text for each span (default: defaults.label)")
}

func runMask(opts maskOptions, stdout io.Writer) (pipeline.Stats, error) {
	label := opts.label
	if !opts.hasLabel {
		label = container.GetConfig().Defaults.Label
		if label == "" {
			return pipeline.Stats{}, ErrNoLabel
		}
	}

	rc, err := readerConfig()
	if err != nil {
		return pipeline.Stats{}, err
	}

	records, err := stream.OpenRecords(opts.input, rc)
	if err != nil {
		return pipeline.Stats{}, err
	}
	defer records.Close()

	return pipeline.Mask(records, label, stdout)
}
