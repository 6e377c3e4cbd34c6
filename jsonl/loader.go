package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.ReportLoader = (*Loader)(nil)

// Loader loads Report records from JSONL files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// maxLineSize is the maximum size for a single JSONL line (4MB).
const maxLineSize = 4 * 1024 * 1024

// Load reads the single report stored at path.
func (l *Loader) Load(path string) (*cppguts.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reports, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch len(reports) {
	case 0:
		return &cppguts.Report{}, nil
	case 1:
		return reports[0], nil
	default:
		return nil, fmt.Errorf("%s: holds %d reports, want 1", path, len(reports))
	}
}

// Read rebuilds the reports written by Write. Consecutive records with
// the same old and new names belong to one report.
func Read(r io.Reader) ([]*cppguts.Report, error) {
	var reports []*cppguts.Report
	var stack []*[]cppguts.MatchResult // Result slice open at each depth

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		cur := len(reports) - 1
		if cur < 0 || reports[cur].OldName != rec.OldName || reports[cur].NewName != rec.NewName {
			reports = append(reports, &cppguts.Report{OldName: rec.OldName, NewName: rec.NewName})
			cur++
			stack = []*[]cppguts.MatchResult{&reports[cur].Results}
		}
		if rec.Depth < 0 || rec.Depth >= len(stack) {
			return nil, fmt.Errorf("line %d: depth %d without a parent", lineNum, rec.Depth)
		}

		stack = stack[:rec.Depth+1]
		parent := stack[rec.Depth]
		*parent = append(*parent, rec.MatchResult)
		added := &(*parent)[len(*parent)-1]
		stack = append(stack, &added.Members)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
