package convertcheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bakeconv/pkg/logger"
)

// Run executes every case against the service and reports the results.
// It returns ErrChecksFailed when any case fails.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cases := DefaultCases()
	if cfg.CasesFile != "" {
		loaded, err := LoadCases(cfg.CasesFile)
		if err != nil {
			return nil, err
		}
		cases = loaded
	}

	workers := max(cfg.Workers, 1)
	repeat := max(cfg.Repeat, 1)
	log := logger.Named("convertcheck")

	stats := &Stats{
		RunID:     uuid.NewString(),
		Cases:     len(cases),
		StartTime: time.Now(),
	}

	log.Info(ctx, "starting conversion check",
		logger.String("run_id", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("cases", len(cases)),
		logger.Int("workers", workers),
		logger.Int("repeat", repeat),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	stats.Results = make([]Result, len(cases))
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				stats.Results[i] = runCase(ctx, client, cases[i], fmt.Sprintf("%s-%d", stats.RunID, i), repeat)
				if cfg.Verbose {
					r := stats.Results[i]
					log.Info(ctx, "case finished",
						logger.String("case", r.Case.Name),
						logger.Any("passed", r.Passed),
						logger.String("reason", r.Reason),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()

	for i, r := range stats.Results {
		if r.Case.Name == "" {
			// Not dispatched because ctx was cancelled.
			reason := "not run"
			if cause := context.Cause(ctx); cause != nil {
				reason += ": " + cause.Error()
			}
			stats.Results[i] = Result{Case: cases[i], Reason: reason}
			r = stats.Results[i]
		}
		stats.Requests += r.Requests
		if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	writeSummary(out, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrChecksFailed, stats.Failed, stats.Cases)
	}
	return stats, nil
}

// runCase issues the case repeat times and requires every response to match
// the expectation and each other.
func runCase(ctx context.Context, client *HTTPClient, tc Case, requestID string, repeat int) Result {
	res := Result{Case: tc}
	var first response

	for n := 0; n < repeat; n++ {
		resp, err := client.convert(ctx, tc, fmt.Sprintf("%s-%d", requestID, n))
		res.Requests++
		if err != nil {
			res.Reason = err.Error()
			return res
		}
		if reason := verify(tc.Expect, resp); reason != "" {
			res.Reason = reason
			return res
		}
		if n == 0 {
			first = resp
			continue
		}
		if resp.Status != first.Status || !bytes.Equal(resp.Body, first.Body) {
			res.Reason = fmt.Sprintf("response %d differs from the first: %s vs %s", n, resp.Body, first.Body)
			return res
		}
	}

	res.Passed = true
	return res
}

func writeSummary(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Conversion check %s\n", stats.RunID)
	for _, r := range stats.Results {
		if r.Passed {
			fmt.Fprintf(w, "  PASS  %s\n", r.Case.Name)
			continue
		}
		fmt.Fprintf(w, "  FAIL  %s: %s\n", r.Case.Name, r.Reason)
	}
	fmt.Fprintf(w, "%d passed, %d failed, %d requests in %s\n",
		stats.Passed, stats.Failed, stats.Requests, stats.Duration.Round(time.Millisecond))
}
