// Package clipboard copies text to the system clipboard using
// atotto/clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/fwojciec/cppguts"
)

// Ensure System implements the Clipboard interface.
var _ cppguts.Clipboard = (*System)(nil)

// System implements Clipboard with the platform clipboard (pbcopy,
// xclip, xsel, wl-copy or the Windows API).
type System struct{}

// NewSystem returns a new System clipboard.
func NewSystem() *System {
	return &System{}
}

// Available reports whether a clipboard backend was found.
func (s *System) Available() bool {
	return !clipboard.Unsupported
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no clipboard utility available")
	}
	return clipboard.WriteAll(content)
}
