package mock

import (
	"context"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of cppguts.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, report *cppguts.Report) error
}

func (v *Viewer) View(ctx context.Context, report *cppguts.Report) error {
	return v.ViewFn(ctx, report)
}
