/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/sq/pkg/config"
	"github.com/ssargent/sq/pkg/di"
	"github.com/ssargent/sq/pkg/logging"
	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/stream"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

type rootOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	onMalformed string
	metricsFile string
}

var rootOpts rootOptions

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sq",
	Short: "sq - streaming text annotation",
	Long: `sq annotates lines of text with character spans found by regular
expressions and redacts the annotated regions.

Records are stored one JSON object per line:
  {"text": "foo bar foo", "spans": [{"start": 0, "end": 3}]}

Span offsets count Unicode characters, not bytes.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// arguments are valid by now; further failures are not usage errors
		cmd.SilenceUsage = true
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if container == nil {
		container = di.NewContainer()
	}

	err := rootCmd.Execute()

	if path := container.GetConfig().Metrics.File; path != "" {
		if mErr := container.GetMetrics().WriteTextfile(path); mErr != nil {
			container.GetLogger().Error("Failed to write metrics", "path", path, "error", mErr)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", "", "Config file (default $SQ_CONFIG or ~/.config/sq/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&rootOpts.onMalformed, "on-malformed", "", "Malformed line policy: abort or skip")
	rootCmd.PersistentFlags().StringVar(&rootOpts.metricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")
}

// setup resolves configuration (flags > environment > file > defaults) and
// installs the logger
func setup(cmd *cobra.Command) error {
	if container == nil {
		container = di.NewContainer()
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := resolveConfig(rootOpts, os.Getenv)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	container.Configure(cfg, logger)
	return nil
}

// resolveConfig layers the configuration sources
func resolveConfig(opts rootOptions, getenv func(string) string) (*config.Config, error) {
	path, explicit := opts.configPath, true
	if path == "" {
		path = getenv(config.EnvConfig)
	}
	if path == "" {
		path, explicit = config.GetDefaultConfigPath(), false
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	if opts.onMalformed != "" {
		cfg.Defaults.OnMalformed = opts.onMalformed
	}
	if opts.metricsFile != "" {
		cfg.Metrics.File = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readerConfig builds stream settings from the active configuration
func readerConfig() (stream.ReaderConfig, error) {
	rc, err := container.GetConfig().ReaderConfig()
	if err != nil {
		return rc, err
	}
	rc.Logger = container.GetLogger()
	return rc, nil
}

// recordRun times a pipeline run, logs its summary and records metrics
func recordRun(command string, run func() (pipeline.Stats, error)) error {
	start := time.Now()
	stats, err := run()
	duration := time.Since(start)

	container.GetMetrics().RecordRun(command, stats, err, duration)

	logger := container.GetLogger()
	attrs := []any{
		"command", command,
		"records", stats.Records,
		"skipped", stats.Skipped,
		"written", stats.Written,
		"duration", duration,
	}
	switch command {
	case "import":
		attrs = append(attrs, "duplicates", stats.Duplicates)
	case "print":
		attrs = append(attrs, "matches", stats.Matches)
	case "mark":
		attrs = append(attrs, "spans_added", stats.SpansAdded)
	}
	if err != nil {
		logger.Debug("Run failed", append(attrs, "error", err)...)
		return err
	}
	logger.Info("Run complete", attrs...)
	return nil
}

// finishOutput commits out after a successful run and aborts it otherwise
func finishOutput(out stream.Output, runErr error) error {
	if runErr != nil {
		if err := out.Abort(); err != nil {
			container.GetLogger().Error("Failed to discard partial output", "error", err)
		}
		return runErr
	}
	return out.Commit()
}
