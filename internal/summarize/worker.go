package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loorthu/dna/internal/review"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options tunes the summarization worker.
type Options struct {
	MaxConcurrent   int
	MaxRetries      int
	RateLimitPerMin int
	NoAsync         bool
}

// Summaries holds generated summaries keyed by output row index, then by
// provider name. Rows with empty conversations are absent.
type Summaries map[int]map[string]string

// Run summarizes every non-empty conversation with every registered provider.
// Individual failures degrade to an empty summary with a warning; only
// cancellation aborts the batch.
func Run(ctx context.Context, rows []review.OutputRow, reg *Registry, opts Options) (Summaries, error) {
	if reg.Empty() {
		return Summaries{}, nil
	}

	type job struct {
		rowIndex int
		provider Summarizer
	}

	var jobs []job
	for i, row := range rows {
		if row.Conversation == "" {
			continue
		}
		for _, p := range reg.Providers() {
			jobs = append(jobs, job{rowIndex: i, provider: p})
		}
	}

	if len(jobs) == 0 {
		return Summaries{}, nil
	}

	slog.Info("starting summarization",
		"jobs", len(jobs),
		"providers", reg.Names(),
		"max_concurrent", opts.MaxConcurrent,
		"rate_limit_rpm", opts.RateLimitPerMin)

	// Rate limiter: tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(opts.RateLimitPerMin)/60.0), 1)

	var (
		mu        sync.Mutex
		summaries = Summaries{}
	)
	record := func(rowIndex int, provider, summary string) {
		mu.Lock()
		defer mu.Unlock()
		if summaries[rowIndex] == nil {
			summaries[rowIndex] = make(map[string]string)
		}
		summaries[rowIndex][provider] = summary
	}

	runJob := func(ctx context.Context, j job) error {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		summary, err := summarizeWithRetry(ctx, j.provider, rows[j.rowIndex].Conversation, opts.MaxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("summarization failed, leaving blank",
				"version", rows[j.rowIndex].VersionID,
				"provider", j.provider.Name(),
				"err", err)
			record(j.rowIndex, j.provider.Name(), "")
			return nil
		}

		record(j.rowIndex, j.provider.Name(), summary)
		return nil
	}

	if opts.NoAsync || len(jobs) == 1 {
		for _, j := range jobs {
			if err := runJob(ctx, j); err != nil {
				return nil, err
			}
		}
		return summaries, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			return runJob(gctx, j)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// summarizeWithRetry retries with exponential backoff: 1s, 2s, 4s...
func summarizeWithRetry(ctx context.Context, p Summarizer, conversation string, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		summary, err := p.Summarize(ctx, conversation)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			slog.Warn("summarize attempt failed, retrying",
				"provider", p.Name(),
				"attempt", attempt+1,
				"backoff", backoff,
				"err", err)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
