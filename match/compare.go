package match

import (
	"context"
	"fmt"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/extract"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ cppguts.Comparer = (*Comparer)(nil)

// Comparer runs extraction and matching for one (old, new) pair.
type Comparer struct {
	Extractor cppguts.Extractor
	Matcher   cppguts.Matcher
}

// NewComparer creates a Comparer using the default extractor and matcher.
func NewComparer() *Comparer {
	return &Comparer{
		Extractor: extract.NewExtractor(),
		Matcher:   NewMatcher(),
	}
}

// Compare extracts both buffers and matches them. Extraction errors are
// returned unwrapped so callers can inspect them with errors.As.
func (c *Comparer) Compare(ctx context.Context, pair cppguts.Pair) (*cppguts.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	old, err := c.Extractor.Extract(pair.Old.Name, pair.Old.Text)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	new, err := c.Extractor.Extract(pair.New.Name, pair.New.Text)
	if err != nil {
		return nil, err
	}
	return c.Matcher.Match(old, new)
}

// Outcome is the result of comparing one pair in a batch. Exactly one of
// Report and Err is set.
type Outcome struct {
	Pair   cppguts.Pair
	Report *cppguts.Report
	Err    error
}

// CompareAll compares pairs with at most workers running at once and
// returns one outcome per pair in input order. A failing pair does not
// stop the others; only cancellation of ctx aborts the batch.
func CompareAll(ctx context.Context, c cppguts.Comparer, pairs []cppguts.Pair, workers int) ([]Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range pairs {
		i := i
		pair := pairs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := c.Compare(gctx, pair)
			outcomes[i] = Outcome{Pair: pair, Report: report, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compare batch: %w", err)
	}
	return outcomes, nil
}
