package cppguts

import "fmt"

// Status classifies an identity key after matching.
type Status int

// Match statuses. Unchanged is an explicit record, never an absent one.
const (
	Unchanged Status = iota
	Modified
	Added
	Removed
)

var statusNames = [...]string{
	Unchanged: "unchanged",
	Modified:  "modified",
	Added:     "added",
	Removed:   "removed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return &UnknownNameError{Type: "status", Name: string(b)}
}

// EditKind is the type of a statement-level edit.
type EditKind int

// Edit kinds.
const (
	Insert EditKind = iota
	Delete
	Substitute
)

var editKindNames = [...]string{
	Insert:     "insert",
	Delete:     "delete",
	Substitute: "substitute",
}

func (k EditKind) String() string {
	if int(k) < len(editKindNames) {
		return editKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k EditKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EditKind) UnmarshalText(b []byte) error {
	for i, name := range editKindNames {
		if name == string(b) {
			*k = EditKind(i)
			return nil
		}
	}
	return &UnknownNameError{Type: "edit kind", Name: string(b)}
}

// StatementEdit is one edit of a body statement sequence.
//
// For Insert, OldIndex is the position in the old sequence before which
// the new statement goes. For Delete, NewIndex is the position in the new
// sequence where the deleted statement would have been.
type StatementEdit struct {
	Kind     EditKind `json:"kind"`
	OldIndex int      `json:"old_index"`
	NewIndex int      `json:"new_index"`
	OldText  string   `json:"old_text,omitempty"` // Normalized; empty for Insert
	NewText  string   `json:"new_text,omitempty"` // Normalized; empty for Delete
}

// FieldChange records a member variable that differs between versions.
type FieldChange struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	OldType string `json:"old_type,omitempty"`
	NewType string `json:"new_type,omitempty"`
}

// MatchResult is the outcome for one identity key.
type MatchResult struct {
	Key    string   `json:"key"`
	Kind   DeclKind `json:"kind"`
	Status Status   `json:"status"`

	// SignatureChanged is set when return type, parameter names or
	// qualifiers differ while the identity key is the same.
	SignatureChanged bool `json:"signature_changed,omitempty"`

	Edits   []StatementEdit `json:"edits,omitempty"`
	Fields  []FieldChange   `json:"fields,omitempty"`
	Members []MatchResult   `json:"members,omitempty"`

	// OldSpan and NewSpan locate the defining text on each side; zero
	// when the key is absent from that side.
	OldSpan Span `json:"old_span"`
	NewSpan Span `json:"new_span"`
}

// Location returns the span on the new side, or on the old side when the
// key is absent from new.
func (r MatchResult) Location() Span {
	if r.NewSpan.IsZero() {
		return r.OldSpan
	}
	return r.NewSpan
}

// Report is the complete match output for one (old, new) pair.
type Report struct {
	OldName string        `json:"old_name"`
	NewName string        `json:"new_name"`
	Results []MatchResult `json:"results"`
}

// Flatten returns every result in the report, parents before their
// members, with member results keeping their own fully qualified keys.
// The returned results have their Members cleared; use Find to get a
// result with its members.
func (r *Report) Flatten() []MatchResult {
	var out []MatchResult
	var walk func(results []MatchResult)
	walk = func(results []MatchResult) {
		for _, res := range results {
			members := res.Members
			res.Members = nil
			out = append(out, res)
			walk(members)
		}
	}
	walk(r.Results)
	return out
}

// Find returns the result for key at any nesting depth, members
// included.
func (r *Report) Find(key string) (MatchResult, bool) {
	return find(r.Results, key)
}

func find(results []MatchResult, key string) (MatchResult, bool) {
	for _, res := range results {
		if res.Key == key {
			return res, true
		}
		if found, ok := find(res.Members, key); ok {
			return found, true
		}
	}
	return MatchResult{}, false
}

// Summary counts results per status.
type Summary struct {
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
}

// Changed reports whether anything differs between the two versions.
func (s Summary) Changed() bool {
	return s.Modified+s.Added+s.Removed > 0
}

// Summary counts function-like results per status. Namespace and class
// records are containers and are not counted.
func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Flatten() {
		if !res.Kind.IsFunction() {
			continue
		}
		switch res.Status {
		case Unchanged:
			s.Unchanged++
		case Modified:
			s.Modified++
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		}
	}
	return s
}

// ApplyEdits applies edits produced by a BodyDiffer to the normalized
// statements of an old body and returns the normalized new body.
func ApplyEdits(old []string, edits []StatementEdit) ([]string, error) {
	out := make([]string, 0, len(old))
	p := 0
	for i := 0; i <= len(old); i++ {
		for p < len(edits) && edits[p].Kind == Insert && edits[p].OldIndex == i {
			out = append(out, edits[p].NewText)
			p++
		}
		if i == len(old) {
			break
		}
		if p < len(edits) && edits[p].OldIndex == i {
			e := edits[p]
			if e.OldText != old[i] {
				return nil, fmt.Errorf("edit %d: old statement %d is %q, want %q", p, i, old[i], e.OldText)
			}
			if e.Kind == Substitute {
				out = append(out, e.NewText)
			}
			p++
			continue
		}
		out = append(out, old[i])
	}
	if p != len(edits) {
		return nil, fmt.Errorf("edit %d: old index %d out of order or out of range", p, edits[p].OldIndex)
	}
	return out, nil
}
