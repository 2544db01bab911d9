// Package supervisor runs the input, output, DS, and EGG tasks as peers
// sharing one store handle: if any peer returns (including with an error),
// every other peer is cancelled, and the first non-cancellation error is
// reported.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ddsearch/internal/ds"
	"ddsearch/internal/egg"
	"ddsearch/internal/input"
	"ddsearch/internal/logging"
	"ddsearch/internal/output"
	"ddsearch/internal/store"
)

// Task names recognized by the components selector.
const (
	TaskInput  = "input"
	TaskOutput = "output"
	TaskDS     = "ds"
	TaskEGG    = "egg"
)

// Run starts the requested components and blocks until one of them
// returns or ctx is cancelled. components controls which of input, output,
// ds, egg are started; an unrecognized name is an error. tick is the
// DS/EGG/output poll cadence (<= 0 uses each driver's own default). st is
// closed only after every started peer has returned, so in-flight writes
// are never cut off mid-transaction.
//
// A peer returning cleanly (e.g. input hitting EOF) is as much a reason to
// wind down as a peer returning an error: every sibling must be cancelled
// the moment any one of them terminates. errgroup's own
// derived context is only cancelled on a non-nil return, so Run cancels an
// explicit context itself the moment the first peer (of any outcome)
// returns, then lets errgroup collect whichever real error (if any)
// surfaces from the rest as they unwind.
func Run(ctx context.Context, st *store.Store, log *zap.Logger, components []string, tick time.Duration) error {
	cat := logging.Get(logging.CategorySupervisor)
	cat.Info(fmt.Sprintf("starting components %v", components))

	eg, egCtx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(egCtx)
	defer cancel()

	wrap := func(task func(context.Context) error) func() error {
		return func() error {
			defer cancel()
			err := task(runCtx)
			// Only a real failure reaches errgroup, so a sibling's
			// cancellation can never be recorded ahead of it.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}

	for _, c := range components {
		switch c {
		case TaskInput:
			eg.Go(wrap(func(ctx context.Context) error { return input.Run(ctx, st, log) }))
		case TaskOutput:
			eg.Go(wrap(func(ctx context.Context) error { return output.Run(ctx, st, log, tick) }))
		case TaskDS:
			eg.Go(wrap(func(ctx context.Context) error { return ds.Run(ctx, st, log, tick) }))
		case TaskEGG:
			eg.Go(wrap(func(ctx context.Context) error { return egg.Run(ctx, st, log, tick) }))
		default:
			cancel()
			_ = eg.Wait()
			return fmt.Errorf("supervisor: unrecognized component %q", c)
		}
	}

	err := eg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Named("supervisor").Error("peer task failed", zap.Error(err))
		cat.Error(fmt.Sprintf("peer task failed: %v", err))
		return err
	}
	cat.Info("all components stopped cleanly")
	return nil
}
