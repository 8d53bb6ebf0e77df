package main

import (
	"blended_valuation/pkg/core/ingest"
	"blended_valuation/pkg/core/report"
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/core/valuation"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// --- Evaluate Command ---

func newEvaluateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Value a company and print the blended report",
		Long: `Validate the three financial statements, run the DCF, precedent transaction
comparables and asset-based estimators, and blend them with the configured weights.

Examples:
  valuate evaluate --input company.json
  valuate evaluate --input - --format markdown < company.json
  valuate evaluate --input company.json --format html --output report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			parsed, err := readInput(cmd)
			if err != nil {
				return err
			}

			engine := valuation.NewEngine(a.assumptions, a.logger)
			out, err := engine.EvaluateRaw(cmd.Context(), parsed.Raw)
			if err != nil {
				return err
			}

			rep, err := report.Assemble(out, report.OptionsFrom(a.assumptions.Report))
			if err != nil {
				return err
			}
			rep.Warnings = append(append([]string{}, parsed.Warnings...), rep.Warnings...)

			return writeOutput(cmd, func(w io.Writer) error { return report.Render(w, rep, format) })
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("format", "json", "report format: json, markdown or html")
	return cmd
}

// --- Validate Command ---

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and normalize input without valuing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := readInput(cmd)
			if err != nil {
				return err
			}
			in, err := validate.ValidateInput(parsed.Raw, validate.OptionsFrom(a.assumptions.Validation))
			if err != nil {
				return err
			}
			in.Warnings = append(append([]string{}, parsed.Warnings...), in.Warnings...)

			return writeOutput(cmd, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(in)
			})
		},
	}
	addInputFlags(cmd)
	return cmd
}

// --- Assumptions Command ---

func newAssumptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assumptions",
		Short: "Print the effective assumptions as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.assumptions.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// =============================================================================
// I/O HELPERS
// =============================================================================

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "input document path, or - for stdin")
	cmd.Flags().StringP("output", "o", "", "output path (default stdout)")
	_ = cmd.MarkFlagRequired("input")
}

func readInput(cmd *cobra.Command) (*ingest.Result, error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "-" {
		return ingest.ParseReader(cmd.InOrStdin(), ingest.DefaultMaxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return ingest.ParseReader(f, ingest.DefaultMaxBytes)
}

func writeOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
