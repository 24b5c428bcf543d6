package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/digilab/internal/ir"
)

// GoldenDir is where golden traces live, relative to the worksheets.
const GoldenDir = "golden"

// Snapshot renders a trace as canonical JSON for golden comparison.
func Snapshot(name string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, ev := range result.Trace {
		obj := ir.IRObject{
			"type": ir.IRString(ev.Type),
			"op":   ir.IRString(ev.Op),
			"seq":  ir.IRInt(ev.Seq),
		}
		if ev.Args != nil {
			obj["args"] = ev.Args
		}
		if ev.OutputCase != "" {
			obj["output_case"] = ir.IRString(ev.OutputCase)
		}
		if ev.Result != nil {
			obj["result"] = ev.Result
		}
		trace[i] = obj
	}
	return ir.MarshalCanonical(ir.IRObject{
		"worksheet": ir.IRString(name),
		"session":   ir.IRString(result.Session),
		"trace":     trace,
	})
}

// RunWithGolden runs ws and compares its trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, ws *Worksheet) error {
	t.Helper()
	result, err := Run(ws)
	if err != nil {
		return err
	}
	return AssertGolden(t, ws.Name, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()
	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", GoldenDir)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// GoldenPath returns the golden file for a worksheet file: a golden/
// directory beside it, named after the worksheet file.
func GoldenPath(worksheetFile string) string {
	base := filepath.Base(worksheetFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(worksheetFile), GoldenDir, name+".golden")
}

// WriteGolden writes the snapshot of result for worksheetFile.
func WriteGolden(worksheetFile string, ws *Worksheet, result *Result) error {
	data, err := Snapshot(ws.Name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}
	path := GoldenPath(worksheetFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// ErrNoGolden is returned by CompareGolden when no golden file exists.
var ErrNoGolden = errors.New("no golden file")

// CompareGolden reports whether result matches the golden file for
// worksheetFile.
func CompareGolden(worksheetFile string, ws *Worksheet, result *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(worksheetFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, ErrNoGolden
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	got, err := Snapshot(ws.Name, result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal trace: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(want), got), nil
}
