package egg

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ddsearch/internal/logging"
	"ddsearch/internal/rule"
	"ddsearch/internal/store"
)

// Tick is the default poll cadence; both engines share the same store and
// should observe each other's output within one tick of each other. Run
// falls back to this value when given a non-positive tick.
const Tick = 100 * time.Millisecond

// Run drives the EGG engine against st until ctx is cancelled. Each
// iteration: ingest new facts, rebuild the congruence closure, then
// attempt to discharge every idea row not yet discharged. Every witness
// yielded is persisted as a fact; an idea proven outright is dropped from
// the pending pool, while a still-variable-bearing idea that only
// produced grounded instances stays outstanding for later ticks.
// tick <= 0 uses Tick.
func Run(ctx context.Context, st *store.Store, log *zap.Logger, tick time.Duration) error {
	if tick <= 0 {
		tick = Tick
	}
	log = log.Named("egg")
	cat := logging.Get(logging.CategoryEGG)
	cat.Info("egg driver starting")
	search := NewSearch()

	var factWatermark, ideaWatermark int64
	pending := make(map[string]rule.Rule)

	for {
		if ctx.Err() != nil {
			cat.Info("egg driver stopping")
			return ctx.Err()
		}

		start := time.Now()
		work := 0

		factRows, err := st.ReadNewFacts(ctx, factWatermark)
		if err != nil {
			cat.Error(fmt.Sprintf("reading new facts: %v", err))
			return err
		}
		for _, row := range factRows {
			factWatermark = row.ID
			r, err := rule.ParseRule(row.Data)
			if err != nil {
				log.Warn("skipping unparseable fact row", zap.Int64("id", row.ID), zap.Error(err))
				continue
			}
			search.Add(r)
			work++
		}
		if len(factRows) > 0 {
			search.Rebuild()
		}

		ideaRows, err := st.ReadNewIdeas(ctx, ideaWatermark)
		if err != nil {
			cat.Error(fmt.Sprintf("reading new ideas: %v", err))
			return err
		}
		for _, row := range ideaRows {
			ideaWatermark = row.ID
			r, err := rule.ParseRule(row.Data)
			if err != nil {
				log.Warn("skipping unparseable idea row", zap.Int64("id", row.ID), zap.Error(err))
				continue
			}
			pending[r.String()] = r
			work++
		}

		discharged := 0
		for key, goal := range pending {
			witnesses, proved := search.Execute(goal)
			for _, w := range witnesses {
				inserted, err := st.InsertOrIgnore(ctx, "facts", w.String())
				if err != nil {
					log.Error("persisting discharge witness", zap.Error(err))
					cat.Error(fmt.Sprintf("persisting discharge witness: %v", err))
					return err
				}
				if inserted {
					work++
				}
			}
			if proved {
				delete(pending, key)
				work++
				discharged++
			}
		}
		if discharged > 0 {
			cat.Info(fmt.Sprintf("tick discharged %d idea(s), %d pending", discharged, len(pending)))
		}

		if work == 0 {
			log.Debug("idle tick")
			cat.Debug("idle tick")
			elapsed := time.Since(start)
			if elapsed < tick {
				select {
				case <-ctx.Done():
					cat.Info("egg driver stopping")
					return ctx.Err()
				case <-time.After(tick - elapsed):
				}
			}
		}
	}
}
