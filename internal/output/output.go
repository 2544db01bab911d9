// Package output implements the tailing printer task: it polls the facts
// and ideas tables by watermark and prints each new row in surface form.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"ddsearch/internal/logging"
	"ddsearch/internal/rule"
	"ddsearch/internal/store"
	"ddsearch/internal/surface"
)

// Tick is the default idle-poll cadence, matching the DS/EGG driver loops.
// Run falls back to this value when given a non-positive tick.
const Tick = 100 * time.Millisecond

// Run tails st's facts and ideas tables until ctx is cancelled, printing
// each new row to stdout. tick <= 0 uses Tick.
func Run(ctx context.Context, st *store.Store, log *zap.Logger, tick time.Duration) error {
	return RunTo(ctx, st, log, os.Stdout, tick)
}

// RunTo is Run parameterized over its output stream, for testing.
func RunTo(ctx context.Context, st *store.Store, log *zap.Logger, out io.Writer, tick time.Duration) error {
	if tick <= 0 {
		tick = Tick
	}
	log = log.Named("output")
	cat := logging.Get(logging.CategoryOutput)
	cat.Info("output driver starting")
	var factWatermark, ideaWatermark int64

	for {
		if ctx.Err() != nil {
			cat.Info("output driver stopping")
			return ctx.Err()
		}

		start := time.Now()
		work := 0

		facts, err := st.ReadNewFacts(ctx, factWatermark)
		if err != nil {
			cat.Error(fmt.Sprintf("reading new facts: %v", err))
			return err
		}
		for _, row := range facts {
			factWatermark = row.ID
			printRow(out, log, "fact", row.Data)
			work++
		}

		ideas, err := st.ReadNewIdeas(ctx, ideaWatermark)
		if err != nil {
			cat.Error(fmt.Sprintf("reading new ideas: %v", err))
			return err
		}
		for _, row := range ideas {
			ideaWatermark = row.ID
			printRow(out, log, "idea", row.Data)
			work++
		}

		if work == 0 {
			cat.Debug("idle tick")
			elapsed := time.Since(start)
			if elapsed < tick {
				select {
				case <-ctx.Done():
					cat.Info("output driver stopping")
					return ctx.Err()
				case <-time.After(tick - elapsed):
				}
			}
		}
	}
}

func printRow(out io.Writer, log *zap.Logger, label, data string) {
	r, err := rule.ParseRule(data)
	if err != nil {
		log.Warn("skipping unparseable row", zap.String("label", label), zap.Error(err))
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, surface.Pretty(r))
}
