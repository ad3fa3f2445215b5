package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/bakeconv/internal/convertcheck"
	"github.com/okian/bakeconv/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
	defaultRepeat     = 3
)

func main() {
	flags := pflag.NewFlagSet("convert-check", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: convert-check [options]

Runs conversion cases against a running baking conversion API and verifies
status codes, converted values, units and error messages.

Options:
%s
Examples:
  convert-check
  convert-check --url http://localhost:8080 --repeat 10
  convert-check --cases ./cases.yaml --verbose
`, flags.FlagUsages())
	}

	var (
		baseURL   = flags.StringP("url", "u", "http://localhost:5000", "Base URL of the service")
		casesFile = flags.StringP("cases", "c", "", "YAML case file (default: built-in scenarios)")
		workers   = flags.IntP("workers", "w", runtime.NumCPU(), "Number of concurrent workers")
		timeout   = flags.Duration("timeout", defaultTimeout, "HTTP request timeout")
		repeat    = flags.IntP("repeat", "r", defaultRepeat, "Requests per case; all responses must be identical")
		logFormat = flags.String("log-format", logger.FormatConsole, "Log format: text, json, console")
		verbose   = flags.BoolP("verbose", "v", false, "Log every case")
	)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.SetOutput(os.Stderr)
	if err := logger.SetFormatString(*logFormat); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &convertcheck.Config{
		BaseURL:   *baseURL,
		CasesFile: *casesFile,
		Workers:   *workers,
		Timeout:   *timeout,
		Repeat:    *repeat,
		Verbose:   *verbose,
		Out:       os.Stdout,
	}

	if _, err := convertcheck.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "conversion check failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
