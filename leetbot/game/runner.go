package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrent = 8

// BatchItemResult is the settled result of one batch item. Err is set only
// for hard failures (precondition, uniqueness read, persistence); rejected
// and duplicate outcomes are normal terminal states, not errors.
type BatchItemResult struct {
	MessageID string
	Results   []Result
	Err       error
}

// Runner processes a delivered batch of messages. Items are independent: each
// settles on its own and one item's failure never touches its siblings.
type Runner struct {
	resolver *Resolver
	sem      *semaphore.Weighted
}

func NewRunner(resolver *Resolver, maxConcurrent int64) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Runner{
		resolver: resolver,
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

// Run settles every item and returns one result per input, order preserved.
func (r *Runner) Run(ctx context.Context, batch []InboundMessage) []BatchItemResult {
	start := time.Now()
	results := make([]BatchItemResult, len(batch))

	var wg sync.WaitGroup
	for i, msg := range batch {
		wg.Add(1)
		go func(i int, msg InboundMessage) {
			defer wg.Done()
			// A panicking item settles as a failure instead of taking the
			// whole batch down.
			defer func() {
				if rec := recover(); rec != nil {
					results[i] = BatchItemResult{
						MessageID: msg.ID,
						Err:       fmt.Errorf("panic while processing message: %v", rec),
					}
				}
			}()

			if err := r.sem.Acquire(ctx, 1); err != nil {
				results[i] = BatchItemResult{MessageID: msg.ID, Err: fmt.Errorf("acquire slot: %w", err)}
				return
			}
			defer r.sem.Release(1)

			evaluated := r.resolver.Resolve(ctx, msg)
			results[i] = BatchItemResult{
				MessageID: msg.ID,
				Results:   evaluated,
				Err:       firstHardError(evaluated),
			}
		}(i, msg)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	slog.Info("Batch processed",
		slog.String("type", "game"),
		slog.Int("items", len(batch)),
		slog.Int("failed", failed),
		slog.Duration("took", time.Since(start)),
	)
	return results
}

func firstHardError(results []Result) error {
	for _, res := range results {
		if res.Outcome == OutcomeError && res.Err != nil {
			return res.Err
		}
	}
	return nil
}
