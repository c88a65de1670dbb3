package fetch

import (
	"context"
	"fmt"

	"github.com/v0xg/resultfetch/internal/result"
	"github.com/v0xg/resultfetch/internal/roster"
	"go.uber.org/zap"
)

// Run fetches every entry in order and returns one record per entry. A roll
// that fails, or panics, becomes an error record and the batch moves on.
// Entries left when ctx is cancelled are recorded with the context error.
func (f *Fetcher) Run(ctx context.Context, entries []roster.Entry) result.Run {
	run := make(result.Run, 0, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			run = append(run, result.Failed(entry.Identifier, err))
			continue
		}
		if f.pacer != nil {
			if err := f.pacer.Wait(ctx); err != nil {
				run = append(run, result.Failed(entry.Identifier, err))
				continue
			}
		}

		fmt.Fprintf(f.progress, "→ Fetching %s (%d/%d)...", entry.Identifier, i+1, len(entries))
		rec, err := f.safeFetch(ctx, entry)
		if err != nil {
			f.logger.Error("fetch failed", zap.String("roll", entry.Identifier), zap.Error(err))
			fmt.Fprintln(f.progress, " failed")
			run = append(run, result.Failed(entry.Identifier, err))
			continue
		}
		if score, ok := rec.Get(result.KeyAggregateScore); ok {
			fmt.Fprintf(f.progress, " GPA %s\n", score)
		} else {
			fmt.Fprintln(f.progress, " no result")
		}
		run = append(run, rec)
	}
	return run
}

func (f *Fetcher) safeFetch(ctx context.Context, entry roster.Entry) (rec result.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic after %s: %v", f.state, r)
		}
	}()
	return f.Fetch(ctx, entry)
}
