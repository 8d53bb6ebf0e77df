// valuate: blended company valuation from three financial statements.
//
// Reads a ValuationInput document (strict or lenient JSON), runs DCF, precedent
// transaction comparables and asset-based estimators, and prints the blended report.
package main

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/logging"
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/core/valuation"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitProcessing = 3
)

// Environment fallbacks for the persistent flags.
const (
	envConfig   = "VALUATION_CONFIG"
	envLogLevel = "VALUATION_LOG_LEVEL"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to an exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var verr *validate.ValidationError
	var perr *valuation.ProcessingError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &verr):
		return exitValidation
	case errors.As(err, &perr):
		return exitProcessing
	}
	return exitFailure
}

// app carries state resolved by the root command for its subcommands.
type app struct {
	assumptions assumption.Assumptions
	logger      *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "valuate",
		Short:         "Blended company valuation from financial statements",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is not an error.
			_ = godotenv.Load()

			configFile, _ := cmd.Flags().GetString("config")
			if configFile == "" {
				configFile = os.Getenv(envConfig)
			}
			loaded, err := assumption.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load assumptions: %w", err)
			}
			a.assumptions = loaded

			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = os.Getenv(envLogLevel)
			}
			if level == "" {
				level = "warn"
			}
			a.logger = logging.NewLogger(level)
			if configFile != "" {
				a.logger.Debug().Str("path", configFile).Msg("assumptions loaded")
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "assumptions YAML file (env "+envConfig+")")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env "+envLogLevel+")")

	root.AddCommand(newEvaluateCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newAssumptionsCmd(a))
	return root
}
