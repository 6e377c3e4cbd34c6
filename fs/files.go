package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// UniquePath returns a path in dir for name that no existing file takes,
// comparing names case-insensitively. When name is taken it tries
// base_0.ext, base_1.ext and so on.
func UniquePath(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[strings.ToLower(e.Name())] = true
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 0; taken[strings.ToLower(candidate)]; i++ {
		candidate = base + "_" + strconv.Itoa(i) + ext
	}
	return filepath.Join(dir, candidate), nil
}

// BackupPath returns the unique base_OLD.ext path next to path.
func BackupPath(path string) (string, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(name)
	return UniquePath(dir, strings.TrimSuffix(name, ext)+"_OLD"+ext)
}

// ReplaceFile writes data over path without ever leaving path missing
// content: the data goes to a unique sibling first, the original is
// renamed to its backup path (or removed when keepOld is false), and the
// sibling is renamed into place. It returns the backup path, or "" when
// no backup was kept.
func ReplaceFile(path string, data []byte, keepOld bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)

	tmp, err := UniquePath(dir, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}

	var backup string
	if keepOld {
		backup, err = BackupPath(path)
		if err == nil {
			err = os.Rename(path, backup)
		}
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("move %s into place: %w", tmp, err)
	}
	return backup, nil
}
