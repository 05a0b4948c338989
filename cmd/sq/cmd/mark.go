package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/stream"
)

type markOptions struct {
	input   string
	regex   string
	pattern string
	output  string
	inPlace bool
}

var markOpts markOptions

// markCmd represents the mark command
var markCmd = &cobra.Command{
	Use:   "mark (-r REGEX | -p NAME) [flags] INPUT",
	Short: "Add a span for every new match",
	Long: `Add a span for every match that does not overlap a span already stored in
the record, then write the records back out.

Without --output the input file is rewritten in place: the new content is
written to a temporary file in the same directory and renamed over the
input, so the file is never seen half-written. Use "-o -" to write to
standard output instead.

Examples:
  sq mark -r 'foo' records.ndjson
  sq mark -p secrets -o marked.ndjson records.ndjson
  cat records.ndjson | sq mark -p email -o - -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := markOpts
		opts.input = args[0]
		opts.inPlace = !cmd.Flags().Changed("output")
		return recordRun("mark", func() (pipeline.Stats, error) {
			return runMark(opts, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(markCmd)
	markCmd.Flags().StringVarP(&markOpts.regex, "regex", "r", "", "Regular expression to match")
	markCmd.Flags().StringVarP(&markOpts.pattern, "pattern", "p", "", "Named pattern or pattern group (see sq patterns)")
	markCmd.Flags().StringVarP(&markOpts.output, "output", "o", "", `Output file ("-" for standard output; default: rewrite INPUT)`)
}

func runMark(opts markOptions, stdout io.Writer) (pipeline.Stats, error) {
	re, err := container.GetPatternLibrary().Resolve(opts.regex, opts.pattern)
	if err != nil {
		return pipeline.Stats{}, err
	}

	output := opts.output
	if opts.inPlace {
		if opts.input == stream.StdinPath {
			return pipeline.Stats{}, stream.ErrInPlaceStdin
		}
		info, err := os.Stat(opts.input)
		if err != nil {
			return pipeline.Stats{}, fmt.Errorf("failed to open input: %w", err)
		}
		if !info.Mode().IsRegular() {
			return pipeline.Stats{}, fmt.Errorf("cannot rewrite %s in place: not a regular file", opts.input)
		}
		output = opts.input
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

	out, err := stream.OpenOutput(output, stdout)
	if err != nil {
		return pipeline.Stats{}, err
	}

	stats, err := pipeline.Mark(records, re, out)
	return stats, finishOutput(out, err)
}
