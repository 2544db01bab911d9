// Package input implements the interactive stdin reader task: each line
// is parsed as a rule in surface form, stored as a fact, and (when it has
// premises) its idea is stored too. A parse error prints to stderr and the
// reader continues; end of input ends the task silently.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"ddsearch/internal/logging"
	"ddsearch/internal/store"
	"ddsearch/internal/surface"
)

// Run reads rule.Rule lines from stdin until EOF or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, log *zap.Logger) error {
	return RunFrom(ctx, st, log, os.Stdin, os.Stderr)
}

// RunFrom is Run parameterized over its input/error streams, for testing.
func RunFrom(ctx context.Context, st *store.Store, log *zap.Logger, in io.Reader, errOut io.Writer) error {
	log = log.Named("input")
	cat := logging.Get(logging.CategoryInput)
	cat.Info("input task starting")
	lines := make(chan string)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			cat.Info("input task stopping")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				cat.Info("input task reached EOF")
				return nil
			}
			if line == "" {
				continue
			}
			r, err := surface.ParsePretty(line)
			if err != nil {
				io.WriteString(errOut, "error: "+err.Error()+"\n")
				cat.Debug(fmt.Sprintf("rejected line %q: %v", line, err))
				continue
			}
			if _, err := st.InsertOrIgnore(ctx, "facts", r.String()); err != nil {
				log.Error("persisting fact", zap.Error(err))
				cat.Error(fmt.Sprintf("persisting fact: %v", err))
				continue
			}
			if idea, ok := r.Idea(); ok {
				if _, err := st.InsertOrIgnore(ctx, "ideas", idea.String()); err != nil {
					log.Error("persisting idea", zap.Error(err))
					cat.Error(fmt.Sprintf("persisting idea: %v", err))
				}
			}
		}
	}
}
