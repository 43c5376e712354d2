// Package main provides the interactive scientific calculator.
//
// The calculator reads menu selections and operands from stdin, writes the
// prompt protocol to stdout and keeps the last real-valued result available
// as "Ans" for the next computation. Diagnostics go to the log, never to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/comalice/calcx/internal/chart"
	"github.com/comalice/calcx/internal/repl"
)

// CLI configuration
type CLIConfig struct {
	logLevel  string
	logFile   string
	showChart bool
}

// parseCLIFlags parses command-line flags and returns the configuration.
func parseCLIFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	config := &CLIConfig{}

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.StringVar(&config.logFile, "log-file", "", "Log file path (default: stderr)")

	// Introspection
	fs.BoolVar(&config.showChart, "chart", false, "Print the calculator state chart as Graphviz DOT and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return config, nil
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", config.logLevel)
	}
	return nil
}

// newLogger builds the diagnostics logger. The returned close function
// releases the log file, if any.
func newLogger(config *CLIConfig, stderr io.Writer) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(config.logLevel)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if config.logFile == "" {
		logger.SetOutput(stderr)
		return logger, func() error { return nil }, nil
	}
	f, err := os.OpenFile(config.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f.Close, nil
}

// printChart writes the calculator chart as DOT.
func printChart(stdout io.Writer) error {
	cfg, err := repl.LoadChart()
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, chart.ExportDOT(cfg, ""))
	return err
}

// run executes the calculator and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cliConfig, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(stderr, "Use -help for usage information.\n")
		return 1
	}

	if cliConfig.showChart {
		if err := printChart(stdout); err != nil {
			fmt.Fprintf(stderr, "Failed to print chart: %v\n", err)
			return 1
		}
		return 0
	}

	logger, closeLog, err := newLogger(cliConfig, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLog()

	loop, err := repl.New(stdin, stdout, repl.WithLogger(logger))
	if err != nil {
		logger.WithFields(logrus.Fields{
			"function": "run",
			"error":    err.Error(),
		}).Error("Failed to create calculator")
		return 1
	}

	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Calculator stopped: %v\n", err)
		return 1
	}
	return 0
}

// main is the entry point for the calculator.
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
