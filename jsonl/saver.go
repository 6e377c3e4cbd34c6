// Package jsonl stores reports as JSONL with one record per identity key.
package jsonl

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.ReportSaver = (*Saver)(nil)

// Record is one line of a report file: a match result without its
// members, placed in the tree by its depth in a preorder walk.
type Record struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Depth   int    `json:"depth"`
	cppguts.MatchResult
}

// Saver writes Report records to JSONL files.
type Saver struct{}

// NewSaver creates a new Saver.
func NewSaver() *Saver {
	return &Saver{}
}

// Save writes report to path, replacing any previous content and creating
// parent directories if needed.
func (s *Saver) Save(path string, report *cppguts.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return Write(f, report)
}

// Write writes one record per result of report to w, parents before
// their members.
func Write(w io.Writer, report *cppguts.Report) error {
	enc := json.NewEncoder(w)
	var write func(results []cppguts.MatchResult, depth int) error
	write = func(results []cppguts.MatchResult, depth int) error {
		for _, r := range results {
			rec := Record{OldName: report.OldName, NewName: report.NewName, Depth: depth, MatchResult: r}
			rec.Members = nil
			if err := enc.Encode(rec); err != nil {
				return err
			}
			if err := write(r.Members, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return write(report.Results, 0)
}
