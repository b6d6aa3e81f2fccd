package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/translocutor/internal/apierr"
	"github.com/alnah/translocutor/internal/cli"
	"github.com/alnah/translocutor/internal/config"
	"github.com/alnah/translocutor/internal/interrupt"
	"github.com/alnah/translocutor/internal/lang"
	"github.com/alnah/translocutor/internal/subtitle"
	"github.com/alnah/translocutor/internal/token"
	"github.com/alnah/translocutor/internal/translate"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitTranslation = 5
	ExitInterrupt   = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C stops after the current file, second cancels ctx.
	handler, ctx := interrupt.NewHandler(context.Background())

	// Create the CLI environment with production defaults.
	env := cli.NewEnv(cli.WithStopRequested(handler.StopRequested))

	// Translating is the root action; config is the only subcommand.
	rootCmd := cli.TranslateCmd(env)
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	// Silence Cobra's default error/usage printing; we handle it ourselves.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(cli.ConfigCmd(env))

	err := rootCmd.ExecuteContext(ctx)
	handler.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Setup errors (ExitSetup = 3): credentials, model, budget, settings.
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, translate.ErrEmptyAPIKey) ||
		errors.Is(err, token.ErrUnsupportedModel) || errors.Is(err, translate.ErrInvalidBudget) ||
		errors.Is(err, lang.ErrInvalid) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrInvalidKey) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4): input and output files.
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, subtitle.ErrUnsupportedFormat) || errors.Is(err, subtitle.ErrInvalidFile) {
		return ExitValidation
	}

	// Translation errors (ExitTranslation = 5): the service call or its answer.
	if apierr.IsAPIError(err) || errors.Is(err, translate.ErrRefused) ||
		errors.Is(err, translate.ErrCardinalityMismatch) || errors.Is(err, translate.ErrMalformedResponse) ||
		errors.Is(err, translate.ErrEmptyResponse) {
		return ExitTranslation
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	// This runs last: refusal text comes from the model and may contain any of them.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments or no input file
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
