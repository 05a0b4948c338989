package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/stream"
)

type importOptions struct {
	input     string
	output    string
	dedupe    bool
	dedupeDir string
}

var importOpts importOptions

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [flags] INPUT",
	Short: "Convert plain text lines into records",
	Long: `Convert every line of a plain text file into a record with no spans.

INPUT may be "-" to read standard input. Output goes to standard output
unless --output is given.

Examples:
  sq import notes.txt > notes.ndjson
  sq import --dedupe -o notes.ndjson notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := importOpts
		opts.input = args[0]
		return recordRun("import", func() (pipeline.Stats, error) {
			return runImport(opts, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOpts.output, "output", "o", "", `Output file ("-" for standard output)`)
	importCmd.Flags().BoolVar(&importOpts.dedupe, "dedupe", false, "Drop lines that were already imported")
	importCmd.Flags().StringVar(&importOpts.dedupeDir, "dedupe-dir", "", "Persistent directory for the dedupe store (default: temporary)")
}

func runImport(opts importOptions, stdout io.Writer) (pipeline.Stats, error) {
	rc, err := readerConfig()
	if err != nil {
		return pipeline.Stats{}, err
	}

	var pipeOpts pipeline.ImportOptions
	if opts.dedupe {
		dir := opts.dedupeDir
		if dir == "" {
			dir = container.GetConfig().Dedupe.Dir
		}
		seen, err := container.OpenSeenStore(dir)
		if err != nil {
			return pipeline.Stats{}, err
		}
		defer func() {
			if err := seen.Close(); err != nil {
				container.GetLogger().Error("Failed to close dedupe store", "error", err)
			}
		}()
		pipeOpts.Seen = seen
	}

	lines, err := stream.OpenLines(opts.input, rc)
	if err != nil {
		return pipeline.Stats{}, err
	}
	defer lines.Close()

	out, err := stream.OpenOutput(opts.output, stdout)
	if err != nil {
		return pipeline.Stats{}, err
	}

	stats, err := pipeline.Import(lines, out, pipeOpts)
	return stats, finishOutput(out, err)
}
