package cppguts

import (
	"fmt"
	"strings"
)

// ReportFormatter renders a report as text.
type ReportFormatter interface {
	Format(report *Report) string
}

// DefaultFormatter implements ReportFormatter with an indented outline:
// one line per identity key, statement edits below modified functions,
// and a closing summary.
type DefaultFormatter struct {
	// ChangedOnly omits unchanged records.
	ChangedOnly bool
}

// Format renders the report.
func (f *DefaultFormatter) Format(report *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", report.OldName, report.NewName)
	f.formatResults(&sb, report.Results, 0)

	s := report.Summary()
	fmt.Fprintf(&sb, "%d unchanged, %d modified, %d added, %d removed\n",
		s.Unchanged, s.Modified, s.Added, s.Removed)
	return sb.String()
}

func (f *DefaultFormatter) formatResults(sb *strings.Builder, results []MatchResult, depth int) {
	for _, r := range results {
		if f.ChangedOnly && r.Status == Unchanged {
			continue
		}
		indent := strings.Repeat("  ", depth)

		fmt.Fprintf(sb, "%s%s %s %s%s", indent, StatusMarker(r.Status), r.Kind, r.Key, r.Location().Lines())
		if r.SignatureChanged {
			sb.WriteString(" (signature changed)")
		}
		sb.WriteByte('\n')

		for _, fc := range r.Fields {
			fmt.Fprintf(sb, "%s    %s field %s%s\n", indent, StatusMarker(fc.Status), fc.Name, fieldTypes(fc))
		}
		for _, e := range r.Edits {
			formatEdit(sb, indent+"    ", e)
		}
		f.formatResults(sb, r.Members, depth+1)
	}
}

// StatusMarker returns the one-character marker for a status.
func StatusMarker(s Status) string {
	switch s {
	case Modified:
		return "~"
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return "="
	}
}

func fieldTypes(fc FieldChange) string {
	switch fc.Status {
	case Added:
		return ": " + fc.NewType
	case Removed:
		return ": " + fc.OldType
	default:
		return ": " + fc.OldType + " -> " + fc.NewType
	}
}

func formatEdit(sb *strings.Builder, indent string, e StatementEdit) {
	switch e.Kind {
	case Insert:
		fmt.Fprintf(sb, "%s+ [%d] %s\n", indent, e.NewIndex, e.NewText)
	case Delete:
		fmt.Fprintf(sb, "%s- [%d] %s\n", indent, e.OldIndex, e.OldText)
	case Substitute:
		fmt.Fprintf(sb, "%s- [%d] %s\n", indent, e.OldIndex, e.OldText)
		fmt.Fprintf(sb, "%s+ [%d] %s\n", indent, e.NewIndex, e.NewText)
	}
}
