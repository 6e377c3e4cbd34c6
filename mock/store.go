package mock

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var (
	_ cppguts.ReportSaver  = (*ReportSaver)(nil)
	_ cppguts.ReportLoader = (*ReportLoader)(nil)
	_ cppguts.Clipboard    = (*Clipboard)(nil)
)

// ReportSaver is a mock implementation of cppguts.ReportSaver.
type ReportSaver struct {
	SaveFn func(path string, report *cppguts.Report) error
}

func (s *ReportSaver) Save(path string, report *cppguts.Report) error {
	return s.SaveFn(path, report)
}

// ReportLoader is a mock implementation of cppguts.ReportLoader.
type ReportLoader struct {
	LoadFn func(path string) (*cppguts.Report, error)
}

func (l *ReportLoader) Load(path string) (*cppguts.Report, error) {
	return l.LoadFn(path)
}

// Clipboard is a mock implementation of cppguts.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
