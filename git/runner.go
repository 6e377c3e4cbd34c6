// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.GitRunner = (*Runner)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// ShowFile returns the contents of path at revision rev. A relative path
// is resolved against repoPath, as "git show rev:./path" does from there.
func (r *Runner) ShowFile(ctx context.Context, repoPath, rev, path string) (string, error) {
	object := rev + ":" + path
	if !filepath.IsAbs(path) {
		object = rev + ":./" + filepath.ToSlash(path)
	}
	args := []string{"-C", repoPath, "show", object}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git show %s failed: %s", object, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git show %s failed: %w", object, err)
	}
	return string(output), nil
}
