// Package scheduler — cron wiring
//
// The poller runs on a cron schedule. Overlap is prevented with
// cron.SkipIfStillRunning: if a cycle outlasts the interval the next
// tick is dropped, never queued, so slow borough sites degrade into a
// lower effective poll rate instead of a backlog.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runner owns the cron instance and the poller it drives.
type Runner struct {
	cron   *cron.Cron
	poller *Poller
	// cycleTimeout caps one cycle's wall time end to end.
	cycleTimeout time.Duration
}

// NewRunner schedules p under spec (standard 5-field cron syntax, or
// descriptors like "@every 10m"). cycleTimeout bounds each cycle; zero
// means one hour.
func NewRunner(p *Poller, spec string, cycleTimeout time.Duration) (*Runner, error) {
	if cycleTimeout <= 0 {
		cycleTimeout = time.Hour
	}

	clog := cronLogger{}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(
			cron.SkipIfStillRunning(clog),
			cron.Recover(clog),
		),
	)

	r := &Runner{cron: c, poller: p, cycleTimeout: cycleTimeout}
	if _, err := c.AddFunc(spec, r.runOnce); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start begins scheduling in its own goroutine.
func (r *Runner) Start() {
	r.cron.Start()
	log.Info().Msg("poll scheduler started")
}

// Stop halts scheduling and waits for an in-flight cycle to finish.
func (r *Runner) Stop(ctx context.Context) {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
		log.Info().Msg("poll scheduler stopped")
	case <-ctx.Done():
		log.Warn().Msg("poll scheduler stop timed out")
	}
}

// TriggerNow runs one cycle immediately, outside the schedule. Used at
// startup and by the admin endpoint.
func (r *Runner) TriggerNow(ctx context.Context) (*CycleReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cycleTimeout)
	defer cancel()
	return r.poller.RunCycle(ctx)
}

func (r *Runner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cycleTimeout)
	defer cancel()
	if _, err := r.poller.RunCycle(ctx); err != nil {
		log.Error().Err(err).Msg("poll cycle failed")
	}
}

// cronLogger adapts the cron library's logging onto zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	cronEvent(log.Debug(), kv).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	cronEvent(log.Error().Err(err), kv).Msg("cron: " + msg)
}

func cronEvent(ev *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return ev
}
