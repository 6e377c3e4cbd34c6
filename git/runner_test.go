package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fwojciec/cppguts/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository with two revisions of
// src/dest.h.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	writeFile(t, dir, "src/dest.h", "void foo(int &v){\n  v--;\n}\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	writeFile(t, dir, "src/dest.h", "void foo(int &v){\n  v -= 10;\n}\n")
	runGit(t, dir, "commit", "-am", "Decrement by ten")

	return dir
}

// runGit executes a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command git %v failed: %s", args, string(output))
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunner_ShowFile(t *testing.T) {
	t.Parallel()

	dir := setupTestRepo(t)
	runner := git.NewRunner()

	t.Run("returns contents at an older revision", func(t *testing.T) {
		t.Parallel()

		content, err := runner.ShowFile(context.Background(), dir, "HEAD~1", "src/dest.h")

		require.NoError(t, err)
		assert.Equal(t, "void foo(int &v){\n  v--;\n}\n", content)
	})

	t.Run("resolves paths relative to the given directory", func(t *testing.T) {
		t.Parallel()

		content, err := runner.ShowFile(context.Background(), filepath.Join(dir, "src"), "HEAD", "dest.h")

		require.NoError(t, err)
		assert.Contains(t, content, "v -= 10;")
	})

	t.Run("reports a missing path", func(t *testing.T) {
		t.Parallel()

		_, err := runner.ShowFile(context.Background(), dir, "HEAD", "missing.h")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "git show HEAD:./missing.h failed")
	})

	t.Run("reports an unknown revision", func(t *testing.T) {
		t.Parallel()

		_, err := runner.ShowFile(context.Background(), dir, "nope", "src/dest.h")

		assert.Error(t, err)
	})
}
