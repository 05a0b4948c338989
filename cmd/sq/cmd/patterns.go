package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/pattern"
)

var patternsFormat string

// patternsCmd represents the patterns command
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List named patterns and pattern groups",
	Long: `List the named patterns and groups accepted by --pattern.

Built-in entries can be overridden and new ones added under "patterns" and
"pattern_groups" in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return outputPatterns(container.GetPatternLibrary().List(), patternsFormat, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.Flags().StringVar(&patternsFormat, "format", "table", "Output format: table or json")
}

// outputPatterns displays library entries
func outputPatterns(entries []pattern.Entry, format string, w io.Writer) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "table":
		return outputPatternsTable(entries, w)
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

// outputPatternsTable displays library entries in table format
func outputPatternsTable(entries []pattern.Entry, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tKIND\tSOURCE\tDESCRIPTION")
	for _, e := range entries {
		description := e.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Source, description)
	}

	return w.Flush()
}
