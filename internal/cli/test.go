package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // worksheet filter (glob pattern)
}

// WorksheetResult holds the result of a single worksheet execution.
type WorksheetResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Worksheets []WorksheetResult `json:"worksheets"`
	Passed     int               `json:"passed"`
	Failed     int               `json:"failed"`
	Total      int               `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <worksheets-dir>",
		Short: "Run worksheets against their expectations and golden traces",
		Long: `Run every worksheet in a directory against a fresh in-memory journal.

A worksheet passes when each step completes with its expected case and
result, every assertion holds, and, if golden/<name>.golden exists beside
it, the trace matches the golden file byte for byte.

Exit codes:
  0 - All worksheets passed
  1 - One or more worksheets failed
  2 - Command error (invalid paths, etc.)

Examples:
  digilab test ./worksheets
  digilab test ./worksheets --filter "gray*"
  digilab test ./worksheets --update
  digilab test ./worksheets --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter worksheets by glob pattern on the file name")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("worksheets directory not found: %s", dir))
	}

	files, err := findWorksheetFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find worksheets", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(opts.formatter(cmd), TestResult{Worksheets: []WorksheetResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No worksheets found.")
		return nil
	}

	result := TestResult{
		Worksheets: make([]WorksheetResult, 0, len(files)),
		Total:      len(files),
	}
	for _, file := range files {
		wr := runWorksheetFile(file, opts, cmd)
		result.Worksheets = append(result.Worksheets, wr)
		if wr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(opts.formatter(cmd), result)
	}
	return outputTestText(cmd, result)
}

// findWorksheetFiles lists worksheet files under dir whose name without
// extension matches filter.
func findWorksheetFiles(dir, filter string) ([]string, error) {
	files, err := harness.FindWorksheets(dir)
	if err != nil || filter == "" {
		return files, err
	}
	if _, err := filepath.Match(filter, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}

	var matched []string
	for _, f := range files {
		base := filepath.Base(f)
		if ok, _ := filepath.Match(filter, strings.TrimSuffix(base, filepath.Ext(base))); ok {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// runWorksheetFile executes one worksheet and checks or updates its
// golden file.
func runWorksheetFile(file string, opts *TestOptions, cmd *cobra.Command) WorksheetResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"
	fail := func(name string, errs ...string) WorksheetResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return WorksheetResult{Name: name, File: file, Pass: false, Errors: errs}
	}

	ws, err := harness.LoadWorksheet(file)
	if err != nil {
		return fail(filepath.Base(file), fmt.Sprintf("load error: %v", err))
	}

	result, err := harness.RunWith(cmd.Context(), ws, harness.Options{
		Limits: opts.opsLimits(),
		Logger: opts.logger(),
	})
	if err != nil {
		return fail(ws.Name, fmt.Sprintf("execution error: %v", err))
	}

	if opts.Update {
		if err := harness.WriteGolden(file, ws, result); err != nil {
			return fail(ws.Name, fmt.Sprintf("golden update error: %v", err))
		}
		if text {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", ws.Name)
		}
		return WorksheetResult{Name: ws.Name, File: file, Pass: true}
	}

	errs := result.Errors
	match, err := harness.CompareGolden(file, ws, result)
	switch {
	case errors.Is(err, harness.ErrNoGolden):
		// Expectations and assertions only.
	case err != nil:
		errs = append(errs, fmt.Sprintf("golden comparison error: %v", err))
	case !match:
		errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
	}
	if len(errs) > 0 {
		return fail(ws.Name, errs...)
	}

	if text {
		fmt.Fprintf(w, "✓ %s\n", ws.Name)
	}
	return WorksheetResult{Name: ws.Name, File: file, Pass: true}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(out *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d worksheet(s) failed", result.Failed),
		}
	}

	if err := out.Respond(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return &ExitError{Code: ExitFailure, Message: response.Error.Message, Reported: true}
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d worksheet(s) failed", result.Failed), Reported: true}
	}

	fmt.Fprintln(w, "✓ All worksheets passed")
	return nil
}
