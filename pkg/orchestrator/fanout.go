package orchestrator

import (
	"context"
	"log"
	"time"

	"orquix-backend/pkg/llm"

	"golang.org/x/sync/errgroup"
)

// Outcome is one provider's result within a fan-out. A failed provider is
// an Outcome with Err set, never a missing entry.
type Outcome struct {
	Provider  string
	Text      string
	LatencyMs int64
	Err       *llm.ProviderError
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Text != ""
}

// FanOut dispatches one prompt to every adapter in parallel and collects
// all outcomes. Provider failures are captured, not propagated.
type FanOut struct {
	timeout time.Duration
	slack   time.Duration
	logger  *log.Logger
}

func NewFanOut(timeout time.Duration, logger *log.Logger) *FanOut {
	return &FanOut{
		timeout: timeout,
		slack:   2 * time.Second,
		logger:  logger,
	}
}

// Run executes the parallel dispatch. The group carries a global deadline of
// the per-adapter timeout plus slack; cancelling ctx cancels every in-flight
// call. The returned slice has one entry per adapter, in adapter order.
func (f *FanOut) Run(ctx context.Context, adapters []llm.Adapter, prompt string, params llm.Params) []Outcome {
	outcomes := make([]Outcome, len(adapters))

	groupCtx, cancel := context.WithTimeout(ctx, f.timeout+f.slack)
	defer cancel()

	g, groupCtx := errgroup.WithContext(groupCtx)
	for i, adapter := range adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			start := time.Now()
			result, err := adapter.Generate(groupCtx, prompt, params)
			if err != nil {
				pe := llm.Classify(adapter.Name(), err)
				f.logger.Printf("[FANOUT] %s failed after %dms: %s", adapter.Name(), time.Since(start).Milliseconds(), pe.Kind)
				outcomes[i] = Outcome{
					Provider:  adapter.Name(),
					LatencyMs: time.Since(start).Milliseconds(),
					Err:       pe,
				}
				return nil // captured, never fails the group
			}

			f.logger.Printf("[FANOUT] %s ok in %dms", adapter.Name(), result.LatencyMs)
			outcomes[i] = Outcome{
				Provider:  adapter.Name(),
				Text:      result.Text,
				LatencyMs: result.LatencyMs,
			}
			return nil
		})
	}

	// Workers never return errors; Wait only blocks until all are done.
	_ = g.Wait()

	return outcomes
}
