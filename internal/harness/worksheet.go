package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Worksheet is a sequence of operations with expected outcomes.
type Worksheet struct {
	// Name identifies the worksheet and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the worksheet exercises.
	Description string `yaml:"description"`

	// Session is the fixed session token. Defaults to
	// testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the journal after all steps.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step invokes one operation.
type Step struct {
	Invoke string         `yaml:"invoke"`
	Args   map[string]any `yaml:"args"`

	// Expect, if set, is compared with the completion.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the completion a step should produce.
type Expect struct {
	// Case is the expected output case, e.g. "Success" or "WidthExceeded".
	Case string `yaml:"case"`

	// Result lists expected result fields. Subset match.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion is a check over the whole trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count and
	// outcome_count.
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count; optional
	// filter for outcome_count).
	Op string `yaml:"op,omitempty"`

	// Args are expected invocation args (trace_contains). Subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Ops is the expected order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Case is the output case to count (outcome_count).
	Case string `yaml:"case,omitempty"`

	// Count is the expected number of matches (trace_count, outcome_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertOutcomeCount  = "outcome_count"
)

// LoadWorksheet reads and validates a worksheet file. Unknown fields are
// rejected.
func LoadWorksheet(path string) (*Worksheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet file: %w", err)
	}
	ws, err := ParseWorksheet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

// ParseWorksheet decodes and validates worksheet YAML.
func ParseWorksheet(data []byte) (*Worksheet, error) {
	var ws Worksheet
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ws); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateWorksheet(&ws); err != nil {
		return nil, fmt.Errorf("invalid worksheet: %w", err)
	}
	return &ws, nil
}

// FindWorksheets returns every .yaml and .yml file under dir, sorted.
func FindWorksheets(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func validateWorksheet(ws *Worksheet) error {
	if ws.Name == "" {
		return fmt.Errorf("name is required")
	}
	if ws.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(ws.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range ws.Steps {
		if step.Invoke == "" {
			return fmt.Errorf("steps[%d]: invoke is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("steps[%d]: args is required (use {} if none)", i)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("steps[%d].expect: case is required", i)
		}
	}

	for i, a := range ws.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertOutcomeCount:
		if a.Case == "" {
			return fmt.Errorf("assertions[%d]: case is required for outcome_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
