package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tools.zach/dev/sigrace"
	"tools.zach/dev/sigrace/internal/config"
	"tools.zach/dev/sigrace/internal/task"
)

// ///////////////////////////////////////////////
// Steps
// ///////////////////////////////////////////////

// step is one unit of work in a run. Run already carries the interrupt
// racing: it resolves with a human-readable summary, the step's own error,
// or [sigrace.ErrInterrupted].
type step struct {
	Name string
	Run  sigrace.Op[string]
}

// buildSteps translates the configured step names into executable steps.
// Every step is wrapped with [sigrace.WithInterruptAsError] individually:
// interrupt awareness does not forward across step boundaries, so each
// segment of the run is raced on its own.
func buildSteps(cfg *config.Config) ([]step, error) {
	steps := make([]step, 0, len(cfg.Run.Steps))
	for _, name := range cfg.Run.Steps {
		switch name {
		case "fetch":
			if cfg.Fetch.URL == "" {
				return nil, errors.New(`step "fetch" requires fetch.url`)
			}
			op := task.Fetch(cfg.Fetch.URL, cfg.Fetch.RetryMax, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)
			steps = append(steps, step{
				Name: "fetch",
				Run: sigrace.WithInterruptAsError(sigrace.Map(op, func(body []byte) string {
					return fmt.Sprintf("fetched %d bytes", len(body))
				})),
			})

		case "watch":
			op := task.WatchChange(cfg.Watch.Dir, cfg.Watch.Ignore, time.Duration(cfg.Watch.SettleMS)*time.Millisecond)
			steps = append(steps, step{
				Name: "watch",
				Run: sigrace.WithInterruptAsError(sigrace.Map(op, func(path string) string {
					return "changed: " + path
				})),
			})

		case "sleep":
			d := time.Duration(cfg.Run.SleepSeconds) * time.Second
			steps = append(steps, step{
				Name: "sleep",
				Run: sigrace.WithInterruptAsError(sigrace.Map(sigrace.Sleep(d), func(struct{}) string {
					return "slept " + d.String()
				})),
			})

		default:
			return nil, fmt.Errorf("unknown step %q", name)
		}
	}
	return steps, nil
}

// runSteps executes steps in order, stopping at the first interrupt. It
// returns the per-step results and the process exit code: 130 when
// interrupted, 1 when any step failed, 0 otherwise.
func runSteps(ctx context.Context, steps []step) ([]stepResult, int) {
	results := make([]stepResult, 0, len(steps))
	code := exitOK

	for _, s := range steps {
		start := time.Now()
		summary, err := s.Run(ctx)
		r := stepResult{
			Name:       s.Name,
			Summary:    summary,
			DurationMS: time.Since(start).Milliseconds(),
		}

		switch {
		case errors.Is(err, sigrace.ErrInterrupted):
			r.Interrupted = true
			results = append(results, r)
			slog.Info("step interrupted", "step", s.Name)
			// An interrupt ends the whole run; later steps never start.
			return results, exitInterrupted

		case err != nil:
			r.Error = err.Error()
			code = exitFailed
			slog.Error("step failed", "step", s.Name, "error", err)

		default:
			slog.Info("step finished", "step", s.Name, "summary", summary)
		}
		results = append(results, r)
	}
	return results, code
}
