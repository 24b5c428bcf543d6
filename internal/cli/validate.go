package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/config"
	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/harness"
	"github.com/roach88/digilab/internal/ops"
)

// ErrCodeWorksheet marks a worksheet that fails to parse.
const ErrCodeWorksheet = "E_WORKSHEET"

// ValidationError is one problem found in a file.
type ValidationError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate config and worksheet files without running them",
		Long: `Validate CUE config files and YAML worksheets.

Config files are unified with the schema. Worksheets are parsed strictly,
and every step must name a registered operation with arguments that match
its signature, unless the step expects that refusal. Directories are
searched for .cue, .yaml and .yml files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := collectFiles(paths)
	if err != nil {
		return formatter.Fail(ExitCommandError, config.ErrCodeNotFound, err.Error(), nil)
	}
	formatter.VerboseLog("Found %d file(s)", len(files))

	registry := ops.NewRegistry(opts.opsLimits())
	var errs []ValidationError
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if filepath.Ext(file) == ".cue" {
			errs = append(errs, validateConfig(file)...)
		} else {
			errs = append(errs, validateWorksheet(file, registry)...)
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, len(files), errs)
	}
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Files: len(files)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", len(files))
	return nil
}

// collectFiles expands directories into the config and worksheet files
// they contain.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("path not found: %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			switch filepath.Ext(path) {
			case ".cue", ".yaml", ".yml":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", p, err)
		}
	}
	return files, nil
}

func validateConfig(file string) []ValidationError {
	_, err := config.Load(file)
	if err == nil {
		return nil
	}
	ve := ValidationError{File: file, Code: config.ErrCodeInvalid, Message: err.Error()}
	var le *config.LoadError
	if errors.As(err, &le) {
		ve.Code = le.Code
		ve.Message = le.Message
		if le.Pos.IsValid() {
			ve.Line = le.Pos.Line()
		}
	}
	return []ValidationError{ve}
}

func validateWorksheet(file string, registry *ops.Registry) []ValidationError {
	ws, err := harness.LoadWorksheet(file)
	if err != nil {
		return []ValidationError{{File: file, Code: ErrCodeWorksheet, Message: err.Error()}}
	}

	var errs []ValidationError
	for i, step := range ws.Steps {
		expected := ""
		if step.Expect != nil {
			expected = step.Expect.Case
		}

		op, ok := registry.Lookup(step.Invoke)
		if !ok {
			if expected != string(engine.ErrCodeUnknownOp) {
				errs = append(errs, ValidationError{
					File:    file,
					Code:    string(engine.ErrCodeUnknownOp),
					Message: fmt.Sprintf("steps[%d]: unknown operation %q", i, step.Invoke),
				})
			}
			continue
		}

		args, err := harness.ConvertArgs(step.Args)
		if err != nil {
			errs = append(errs, ValidationError{
				File:    file,
				Code:    string(engine.ErrCodeInvalidArgs),
				Message: fmt.Sprintf("steps[%d] %s: %v", i, step.Invoke, err),
			})
			continue
		}
		if expected == string(engine.ErrCodeInvalidArgs) {
			continue
		}
		for _, problem := range op.Sig.CheckArgs(args) {
			errs = append(errs, ValidationError{
				File:    file,
				Code:    string(engine.ErrCodeInvalidArgs),
				Message: fmt.Sprintf("steps[%d] %s: %s", i, step.Invoke, problem.Error()),
			})
		}
	}
	return errs
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, files int, errs []ValidationError) error {
	exit := &ExitError{
		Code:     ExitFailure,
		Message:  fmt.Sprintf("validation failed with %d error(s)", len(errs)),
		Reported: true,
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Files: files, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Respond(response); err != nil {
			return err
		}
		return exit
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}
	return exit
}
