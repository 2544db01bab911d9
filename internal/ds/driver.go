package ds

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ddsearch/internal/logging"
	"ddsearch/internal/rule"
	"ddsearch/internal/store"
)

// Tick is the driver loop's default idle-poll cadence. Run falls back
// to this value when given a non-positive tick.
const Tick = 100 * time.Millisecond

// Run drives the forward-chaining engine against st until ctx is
// cancelled: on each iteration it reads facts newer than its watermark,
// adds them to the pool, executes one resolution pass, persists every
// newly derived rule as a fact (and, when the derivation still has
// premises of its own, its idea as well), and sleeps out the remainder of
// tick when nothing was read or derived. tick <= 0 uses Tick.
func Run(ctx context.Context, st *store.Store, log *zap.Logger, tick time.Duration) error {
	if tick <= 0 {
		tick = Tick
	}
	log = log.Named("ds")
	cat := logging.Get(logging.CategoryDS)
	cat.Info("ds driver starting")
	search := NewSearch()
	var watermark int64

	for {
		if ctx.Err() != nil {
			cat.Info("ds driver stopping")
			return ctx.Err()
		}

		start := time.Now()
		rows, err := st.ReadNewFacts(ctx, watermark)
		if err != nil {
			cat.Error(fmt.Sprintf("reading new facts: %v", err))
			return err
		}

		work := len(rows)
		for _, row := range rows {
			watermark = row.ID
			r, err := rule.ParseRule(row.Data)
			if err != nil {
				log.Warn("skipping unparseable fact row", zap.Int64("id", row.ID), zap.Error(err))
				continue
			}
			search.Add(r)
		}

		derived, err := search.Execute(func(d rule.Rule) error {
			if _, err := st.InsertOrIgnore(ctx, "facts", d.String()); err != nil {
				log.Error("persisting derived fact", zap.Error(err))
				return err
			}
			if idea, ok := d.Idea(); ok {
				if _, err := st.InsertOrIgnore(ctx, "ideas", idea.String()); err != nil {
					log.Error("persisting derived idea", zap.Error(err))
					return err
				}
			}
			return nil
		})
		if err != nil {
			cat.Error(fmt.Sprintf("resolution pass aborted: %v", err))
			return err
		}
		work += derived
		if derived > 0 {
			cat.Info(fmt.Sprintf("tick derived %d new rule(s)", derived))
		}

		if work == 0 {
			log.Debug("idle tick")
			cat.Debug("idle tick")
			elapsed := time.Since(start)
			if elapsed < tick {
				select {
				case <-ctx.Done():
					cat.Info("ds driver stopping")
					return ctx.Err()
				case <-time.After(tick - elapsed):
				}
			}
		}
	}
}
