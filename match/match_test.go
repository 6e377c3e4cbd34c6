package match_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/extract"
	"github.com/fwojciec/cppguts/match"
	"github.com/fwojciec/cppguts/mock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func extractTU(t *testing.T, name, src string) *cppguts.TranslationUnit {
	t.Helper()
	tu, err := extract.NewExtractor().Extract(name, src)
	require.NoError(t, err)
	return tu
}

func matchSources(t *testing.T, old, new string) *cppguts.Report {
	t.Helper()
	report, err := match.NewMatcher().Match(extractTU(t, "old.h", old), extractTU(t, "new.h", new))
	require.NoError(t, err)
	return report
}

func result(t *testing.T, report *cppguts.Report, key string) cppguts.MatchResult {
	t.Helper()
	res, ok := report.Find(key)
	require.True(t, ok, "no result for %q", key)
	return res
}

// norms returns the normalized body of the declaration with key in tu.
func norms(t *testing.T, tu *cppguts.TranslationUnit, key string) []string {
	t.Helper()
	var found *cppguts.Declaration
	tu.Walk(func(d *cppguts.Declaration) bool {
		if !d.Attached && d.Key() == key {
			found = d
		}
		return true
	})
	require.NotNil(t, found, "no declaration with key %q", key)
	return found.Norms()
}

// topLevel returns the result for key straight from report.Results.
func topLevel(t *testing.T, report *cppguts.Report, key string) cppguts.MatchResult {
	t.Helper()
	for _, res := range report.Results {
		if res.Key == key {
			return res
		}
	}
	require.Fail(t, "no top-level result", "key %q", key)
	return cppguts.MatchResult{}
}

func TestMatcher_Match_Fixture(t *testing.T) {
	t.Parallel()

	report := matchSources(t, readFixture(t, "old.h"), readFixture(t, "new.h"))

	assert.Equal(t, "old.h", report.OldName)
	assert.Equal(t, "new.h", report.NewName)

	t.Run("untouched method is unchanged", func(t *testing.T) {
		t.Parallel()

		res := result(t, report, "Src::untouched_print(int)")
		assert.Equal(t, cppguts.Unchanged, res.Status)
		assert.Empty(t, res.Edits)
	})

	t.Run("in-class method change is one substitute", func(t *testing.T) {
		t.Parallel()

		res := result(t, report, "Src::add(SrcPrivate,int)")
		assert.Equal(t, cppguts.Modified, res.Status)
		assert.False(t, res.SignatureChanged)
		assert.Equal(t, []cppguts.StatementEdit{{
			Kind:    cppguts.Substitute,
			OldText: "p.add(v);",
			NewText: "p.add(v)+10;",
		}}, res.Edits)
	})

	t.Run("out-of-class change is attributed to the class member", func(t *testing.T) {
		t.Parallel()

		src := topLevel(t, report, "Src")
		assert.Equal(t, cppguts.Modified, src.Status)
		assert.Equal(t, src, result(t, report, "Src"), "find keeps members")

		var member *cppguts.MatchResult
		for i := range src.Members {
			if src.Members[i].Key == "Src::substract(SrcPrivate,int)" {
				member = &src.Members[i]
			}
		}
		require.NotNil(t, member)
		assert.Equal(t, cppguts.KindMethod, member.Kind)
		assert.Equal(t, cppguts.Modified, member.Status)
		assert.Equal(t, []cppguts.StatementEdit{{
			Kind:    cppguts.Substitute,
			OldText: "p.substract(v);",
			NewText: "p.substract(v)-10;",
		}}, member.Edits)

		for _, res := range report.Results {
			assert.NotEqual(t, cppguts.KindOutOfClassMethodDef, res.Kind)
		}
	})

	t.Run("free and namespaced functions are independent", func(t *testing.T) {
		t.Parallel()

		foo := result(t, report, "foo(int&)")
		assert.Equal(t, cppguts.Modified, foo.Status)
		assert.Equal(t, cppguts.KindFunction, foo.Kind)
		require.Len(t, foo.Edits, 1)
		assert.Equal(t, "v--;", foo.Edits[0].OldText)
		assert.Equal(t, "v-=10;", foo.Edits[0].NewText)

		bar := result(t, report, "ns::bar(int&)")
		assert.Equal(t, cppguts.Modified, bar.Status)
		require.Len(t, bar.Edits, 1)
		assert.Equal(t, "v++;", bar.Edits[0].OldText)
		assert.Equal(t, "v+=10;", bar.Edits[0].NewText)

		assert.Equal(t, cppguts.Modified, result(t, report, "ns").Status)
	})

	t.Run("helper class is unchanged", func(t *testing.T) {
		t.Parallel()

		res := topLevel(t, report, "SrcPrivate")
		assert.Equal(t, cppguts.Unchanged, res.Status)
		assert.Empty(t, res.Fields)
		require.Len(t, res.Members, 3)
		for _, m := range res.Members {
			assert.Equal(t, cppguts.Unchanged, m.Status, m.Key)
		}
	})

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, cppguts.Summary{Unchanged: 4, Modified: 4}, report.Summary())
	})

	t.Run("top-level order follows the old file", func(t *testing.T) {
		t.Parallel()

		var got []string
		for _, res := range report.Results {
			got = append(got, res.Key)
		}
		assert.Equal(t, []string{"SrcPrivate", "Src", "foo(int&)", "ns"}, got)
	})
}

func TestMatcher_Match_Idempotent(t *testing.T) {
	t.Parallel()

	src := readFixture(t, "old.h")
	report := matchSources(t, src, src)

	flat := report.Flatten()
	require.NotEmpty(t, flat)
	for _, res := range flat {
		assert.Equal(t, cppguts.Unchanged, res.Status, res.Key)
		assert.Empty(t, res.Edits, res.Key)
		assert.False(t, res.SignatureChanged, res.Key)
	}
	assert.False(t, report.Summary().Changed())
}

func TestMatcher_Match_RoundTrip(t *testing.T) {
	t.Parallel()

	old := extractTU(t, "old.h", readFixture(t, "old.h"))
	new := extractTU(t, "new.h", readFixture(t, "new.h"))
	report, err := match.NewMatcher().Match(old, new)
	require.NoError(t, err)

	for _, res := range report.Flatten() {
		if res.Status != cppguts.Modified || !res.Kind.IsFunction() {
			continue
		}
		got, err := cppguts.ApplyEdits(norms(t, old, res.Key), res.Edits)
		require.NoError(t, err, res.Key)
		if diff := cmp.Diff(norms(t, new, res.Key), got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s: applied edits mismatch (-want +got):\n%s", res.Key, diff)
		}
	}
}

func TestMatcher_Match_OrderIndependent(t *testing.T) {
	t.Parallel()

	old := readFixture(t, "old.h")
	new := readFixture(t, "new.h")

	// Move the free function below the namespace.
	fooStart := strings.Index(new, "// simple function")
	nsStart := strings.Index(new, "namespace ns")
	require.Positive(t, fooStart)
	require.Greater(t, nsStart, fooStart)
	reordered := new[:fooStart] + new[nsStart:] + "\n" + new[fooStart:nsStart]

	want := matchSources(t, old, new)
	got := matchSources(t, old, reordered)

	statuses := func(r *cppguts.Report) map[string]cppguts.Status {
		m := make(map[string]cppguts.Status)
		for _, res := range r.Flatten() {
			m[res.Key] = res.Status
		}
		return m
	}
	assert.Equal(t, statuses(want), statuses(got))
}

func TestMatcher_Match_AddedAndRemoved(t *testing.T) {
	t.Parallel()

	report := matchSources(t,
		"void keep() {}\nvoid gone(int) {}\nclass Old { void m() {} };",
		"void keep() {}\nvoid fresh() { run(); }\nclass Old { void m() {} void n() {} };\nstruct New { int f; void k() {} };",
	)

	assert.Equal(t, cppguts.Unchanged, result(t, report, "keep()").Status)
	assert.Equal(t, cppguts.Removed, result(t, report, "gone(int)").Status)
	assert.Equal(t, cppguts.Added, result(t, report, "fresh()").Status)
	assert.Equal(t, cppguts.Added, result(t, report, "Old::n()").Status)
	assert.Equal(t, cppguts.Unchanged, result(t, report, "Old::m()").Status)
	assert.Equal(t, cppguts.Modified, result(t, report, "Old").Status)

	added := result(t, report, "New")
	assert.Equal(t, cppguts.Added, added.Status)
	assert.Equal(t, []cppguts.FieldChange{{Name: "f", Status: cppguts.Added, NewType: "int"}}, added.Fields)
	assert.Equal(t, cppguts.Added, result(t, report, "New::k()").Status)

	assert.Equal(t, cppguts.Summary{Unchanged: 2, Added: 3, Removed: 1}, report.Summary())

	var keys []string
	for _, res := range report.Results {
		keys = append(keys, res.Key)
	}
	assert.Equal(t, []string{"keep()", "gone(int)", "Old", "fresh()", "New"}, keys)
}

func TestMatcher_Match_Overloads(t *testing.T) {
	t.Parallel()

	report := matchSources(t,
		"void f(int a) { a++; }\nvoid f(double a) { a++; }",
		"void f(int a) { a++; }\nvoid f(double a) { a--; }",
	)

	assert.Equal(t, cppguts.Unchanged, result(t, report, "f(int)").Status)
	assert.Equal(t, cppguts.Modified, result(t, report, "f(double)").Status)
}

func TestMatcher_Match_SignatureChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		old  string
		new  string
		key  string
	}{
		{"return type", "int f(int a) { return a; }", "long f(int a) { return a; }", "f(int)"},
		{"parameter name", "int f(int a) { return 0; }", "int f(int b) { return 0; }", "f(int)"},
		{"default value", "void f(int a = 1) {}", "void f(int a = 2) {}", "f(int)"},
		{"virtual", "struct S { void f() {} };", "struct S { virtual void f() {} };", "S::f()"},
		{"static", "struct S { void f() {} };", "struct S { static void f() {} };", "S::f()"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := result(t, matchSources(t, tt.old, tt.new), tt.key)

			assert.Equal(t, cppguts.Modified, res.Status)
			assert.True(t, res.SignatureChanged)
			assert.Empty(t, res.Edits)
		})
	}
}

func TestMatcher_Match_ConstIsPartOfTheKey(t *testing.T) {
	t.Parallel()

	report := matchSources(t,
		"struct S { int get() { return 1; } };",
		"struct S { int get() const { return 1; } };",
	)

	assert.Equal(t, cppguts.Removed, result(t, report, "S::get()").Status)
	assert.Equal(t, cppguts.Added, result(t, report, "S::get() const").Status)
}

func TestMatcher_Match_Prototypes(t *testing.T) {
	t.Parallel()

	t.Run("prototype on both sides is unchanged", func(t *testing.T) {
		t.Parallel()

		src := "class I { public: virtual void run() = 0; };"
		res := result(t, matchSources(t, src, src), "I::run()")
		assert.Equal(t, cppguts.Unchanged, res.Status)
	})

	t.Run("gaining a body is a modification", func(t *testing.T) {
		t.Parallel()

		res := result(t, matchSources(t,
			"class C { void f(); };",
			"class C { void f(); };\nvoid C::f() { go(); }",
		), "C::f()")
		assert.Equal(t, cppguts.Modified, res.Status)
		assert.Empty(t, res.Edits)
	})

	t.Run("moving a body out of the class is not a change", func(t *testing.T) {
		t.Parallel()

		res := result(t, matchSources(t,
			"class C { void f() { go(); } };",
			"class C { void f(); };\nvoid C::f() { go(); }",
		), "C::f()")
		assert.Equal(t, cppguts.Unchanged, res.Status)
	})
}

func TestMatcher_Match_Fields(t *testing.T) {
	t.Parallel()

	report := matchSources(t,
		"class A { int val; char* name; bool gone; };",
		"class A { long val; char* name; int extra; };",
	)

	res := result(t, report, "A")
	assert.Equal(t, cppguts.Modified, res.Status)
	assert.Equal(t, []cppguts.FieldChange{
		{Name: "val", Status: cppguts.Modified, OldType: "int", NewType: "long"},
		{Name: "gone", Status: cppguts.Removed, OldType: "bool"},
		{Name: "extra", Status: cppguts.Added, NewType: "int"},
	}, res.Fields)
}

func TestMatcher_Match_ReopenedNamespace(t *testing.T) {
	t.Parallel()

	report := matchSources(t,
		"namespace a { void f() {} }\nnamespace a { void g() { x(); } }",
		"namespace a { void f() {} void g() { y(); } }",
	)

	var namespaces int
	for _, res := range report.Results {
		if res.Key == "a" {
			namespaces++
		}
	}
	assert.Equal(t, 1, namespaces)
	assert.Equal(t, cppguts.Unchanged, result(t, report, "a::f()").Status)
	assert.Equal(t, cppguts.Modified, result(t, report, "a::g()").Status)
}

func TestMatcher_Match_KindChange(t *testing.T) {
	t.Parallel()

	report := matchSources(t, "namespace x { void f() {} }", "struct x { void f() {} };")

	require.Len(t, report.Results, 2)
	assert.Equal(t, cppguts.Removed, report.Results[0].Status)
	assert.Equal(t, cppguts.KindNamespace, report.Results[0].Kind)
	assert.Equal(t, cppguts.Added, report.Results[1].Status)
	assert.Equal(t, cppguts.KindClass, report.Results[1].Kind)
}

func TestMatcher_Match_UsesDiffer(t *testing.T) {
	t.Parallel()

	var calls int
	m := &match.Matcher{Differ: &mock.BodyDiffer{
		DiffFn: func(old, new []cppguts.Statement) []cppguts.StatementEdit {
			calls++
			return nil
		},
	}}

	old := extractTU(t, "a.h", "void f() { a(); }\nclass C { void p(); };")
	new := extractTU(t, "b.h", "void f() { b(); }\nclass C { void p(); };")
	report, err := m.Match(old, new)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, cppguts.Unchanged, result(t, report, "f()").Status)
}

func TestMatcher_Match_NilInput(t *testing.T) {
	t.Parallel()

	_, err := match.NewMatcher().Match(nil, &cppguts.TranslationUnit{})

	assert.ErrorIs(t, err, cppguts.ErrNoInput)
}

func TestMatcher_Match_ReportSurvivesJSON(t *testing.T) {
	t.Parallel()

	// Cached and streamed reports are decoded from JSON, so a report must
	// carry nothing that encoding drops.
	report := matchSources(t, readFixture(t, "old.h"), readFixture(t, "new.h"))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded cppguts.Report
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, report, &decoded)
}
