package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/circuit/pkg/sequence"
)

// Concurrent runs action for each element of the iterator in its own goroutine,
// at most limit at a time (limit <= 0 means unbounded). The context passed to
// action is cancelled as soon as one action fails; the first error is returned.
// A cancelled parent stops scheduling and its error is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			return action(gctx, value)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
