package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/stream"
)

type printOptions struct {
	input   string
	regex   string
	pattern string
	onlyNew bool
}

var printOpts printOptions

// printCmd represents the print command
var printCmd = &cobra.Command{
	Use:   "print (-r REGEX | -p NAME) [flags] INPUT",
	Short: "Print every match found in a record file",
	Long: `Print each substring matched by the pattern, one per line.

With --new, matches overlapping a span already stored in the record are
suppressed, showing only what mark would add.

Examples:
  sq print -r 'foo' records.ndjson
  sq print -p pii --new records.ndjson`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := printOpts
		opts.input = args[0]
		return recordRun("print", func() (pipeline.Stats, error) {
			return runPrint(opts, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().StringVarP(&printOpts.regex, "regex", "r", "", "Regular expression to match")
	printCmd.Flags().StringVarP(&printOpts.pattern, "pattern", "p", "", "Named pattern or pattern group (see sq patterns)")
	printCmd.Flags().BoolVarP(&printOpts.onlyNew, "new", "n", false, "Only print matches not covered by an existing span")
}

func runPrint(opts printOptions, stdout io.Writer) (pipeline.Stats, error) {
	// fail on a bad pattern before touching the input
	re, err := container.GetPatternLibrary().Resolve(opts.regex, opts.pattern)
	if err != nil {
		return pipeline.Stats{}, err
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

	return pipeline.Print(records, re, stdout, opts.onlyNew)
}
