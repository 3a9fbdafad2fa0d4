package hooks

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"

	"github.com/anivibe/anivibe/internal/media"
)

// Task is one constituent of a parallel load.
type Task func(ctx context.Context) error

// All runs tasks concurrently and waits for every one of them. It returns the
// first error. Tasks write into caller-owned variables, so the caller commits
// all results together once All returns nil.
func All(ctx context.Context, tasks ...Task) error {
	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error { return task(ctx) })
	}
	return g.Wait()
}

// Settle runs tasks concurrently, waits for all of them regardless of outcome
// and returns each task's error by position.
func Settle(ctx context.Context, tasks ...Task) []error {
	errs := make([]error, len(tasks))
	var wg conc.WaitGroup
	for i, task := range tasks {
		wg.Go(func() { errs[i] = task(ctx) })
	}
	wg.Wait()
	return errs
}

// OrEmpty wraps a list source for Settle. On failure it logs, leaves dst as an
// empty list and reports the error; the other sources are unaffected.
func OrEmpty[T any](dst *[]T, logger zerolog.Logger, source string, fetch func(ctx context.Context) ([]T, error)) Task {
	return func(ctx context.Context) error {
		items, err := fetch(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("source", source).Msg("source unavailable, showing empty section")
			*dst = []T{}
			return err
		}
		*dst = nonNil(items)
		return nil
	}
}

// Results adapts a paged call to a plain list fetch.
func Results[T any](fn func(ctx context.Context) (media.Page[T], error)) func(ctx context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		page, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return page.Results, nil
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Pager accumulates paginated results for load more.
type Pager[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasNext bool `json:"hasNext"`
}

// Apply folds a fetched page in. Page 1 replaces everything; later pages are
// appended in order without de-duplication. HasNext always comes from the
// latest page alone.
func (p Pager[T]) Apply(page int, items []T, hasNext bool) Pager[T] {
	if page <= 1 {
		return Pager[T]{Items: nonNil(slices.Clone(items)), Page: 1, HasNext: hasNext}
	}
	return Pager[T]{Items: nonNil(slices.Concat(p.Items, items)), Page: page, HasNext: hasNext}
}

// ApplyPage folds in a result envelope using its has_next_page flag.
func (p Pager[T]) ApplyPage(page int, res media.Page[T]) Pager[T] {
	return p.Apply(page, res.Results, res.HasNext())
}

// NextPage is the page number a load more should fetch.
func (p Pager[T]) NextPage() int {
	return p.Page + 1
}
