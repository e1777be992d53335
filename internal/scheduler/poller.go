// Package scheduler drives the periodic change-detection cycle over
// planning watches.
//
// A cycle walks every active watch sequentially: resolve the borough's
// source, fetch the current result set, diff it against the stored
// baseline, notify about unseen items, and commit the new baseline.
// Each watch fails or succeeds on its own; one broken borough site
// never stops the rest of the cycle.
//
// Baseline semantics:
//   - The baseline is only replaced after a successful fetch, so a
//     transient outage can never flush it and cause a re-notification
//     storm when the site recovers.
//   - The committed set is the full current key set, not a union with
//     the previous one. Applications that expire off the register drop
//     out of the baseline and would be re-notified if republished.
//   - A watch with no baseline and no prior check is on its first run:
//     everything it sees is "new to us", so notification is suppressed
//     and the cycle only establishes the baseline. NotifyFirstRun flips
//     that for deployments that want the initial flood.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/notify"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
	"github.com/bridgepark/go-alerts-backend/internal/sources"
)

// WatchStatus classifies the outcome of one watch within a cycle.
type WatchStatus string

const (
	// StatusUnsupported means no source exists for the watch's borough.
	StatusUnsupported WatchStatus = "unsupported"
	// StatusBlocked means the borough's site denies automated access.
	StatusBlocked WatchStatus = "blocked"
	// StatusFetchFailed means a transient fetch error; baseline kept.
	StatusFetchFailed WatchStatus = "fetch_failed"
	// StatusFirstRun means the baseline was established without alerts.
	StatusFirstRun WatchStatus = "first_run"
	// StatusNoChange means the fetch succeeded and nothing was new.
	StatusNoChange WatchStatus = "no_change"
	// StatusNotified means new items were found and an alert went out.
	StatusNotified WatchStatus = "notified"
)

// WatchResult records one watch's outcome within a cycle.
type WatchResult struct {
	WatchID  string
	Query    string
	Borough  string
	Status   WatchStatus
	NewItems int
	Err      error
}

// CycleReport summarizes a completed cycle.
type CycleReport struct {
	Started  time.Time
	Finished time.Time
	Results  []WatchResult
}

// Notified returns how many watches produced an alert this cycle.
func (r *CycleReport) Notified() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusNotified {
			n++
		}
	}
	return n
}

// Failed returns how many watches could not complete this cycle.
func (r *CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFetchFailed {
			n++
		}
	}
	return n
}

// Poller executes poll cycles. Construct with NewPoller; the zero value
// is not usable.
type Poller struct {
	db       *gorm.DB
	registry sources.Registry
	mailer   notify.Mailer

	// maxPages bounds the per-fetch pagination walk.
	maxPages int
	// notifyFirstRun disables first-run suppression when true.
	notifyFirstRun bool
}

// NewPoller builds a Poller. mailer may be nil, which turns the cycle
// into a dry run that still maintains baselines.
func NewPoller(db *gorm.DB, registry sources.Registry, mailer notify.Mailer, maxPages int, notifyFirstRun bool) *Poller {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Poller{
		db:             db,
		registry:       registry,
		mailer:         mailer,
		maxPages:       maxPages,
		notifyFirstRun: notifyFirstRun,
	}
}

// RunCycle checks every active watch once, sequentially, and returns a
// report. The returned error covers only cycle-level failures (listing
// the watches); per-watch failures live in the report.
func (p *Poller) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{Started: time.Now().UTC()}
	cyclesTotal.Inc()

	watches, err := repo.ListActiveWatches(ctx, p.db)
	if err != nil {
		return nil, err
	}

	for i := range watches {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := p.checkWatch(ctx, &watches[i])
		watchChecks.WithLabelValues(string(res.Status)).Inc()
		report.Results = append(report.Results, res)

		ev := log.Info()
		if res.Status == StatusFetchFailed {
			ev = log.Warn().Err(res.Err)
		}
		ev.
			Str("watch_id", res.WatchID).
			Str("borough", res.Borough).
			Str("status", string(res.Status)).
			Int("new_items", res.NewItems).
			Msg("watch checked")
	}

	report.Finished = time.Now().UTC()
	cycleDuration.Observe(report.Finished.Sub(report.Started).Seconds())
	log.Info().
		Int("watches", len(report.Results)).
		Int("notified", report.Notified()).
		Int("failed", report.Failed()).
		Dur("took", report.Finished.Sub(report.Started)).
		Msg("poll cycle complete")
	return report, nil
}

// checkWatch runs the full state machine for one watch. Every branch
// stamps last_checked; only the success branch touches the baseline.
func (p *Poller) checkWatch(ctx context.Context, w *domain.PlanningWatch) WatchResult {
	res := WatchResult{WatchID: w.ID, Query: w.Query, Borough: w.BoroughCode}
	now := time.Now().UTC()

	src := p.registry.Lookup(w.BoroughCode)
	if src == nil {
		res.Status = StatusUnsupported
		p.touch(ctx, w.ID, now)
		return res
	}

	items, err := src.Fetch(ctx, w.Query, p.maxPages)
	if err != nil {
		if errors.Is(err, sources.ErrBlocked) {
			res.Status = StatusBlocked
		} else {
			res.Status = StatusFetchFailed
			res.Err = err
		}
		p.touch(ctx, w.ID, now)
		return res
	}

	current := make([]string, 0, len(items))
	var fresh []sources.ResultItem
	for _, it := range items {
		current = append(current, it.URL)
		if !w.SeenURLs.Contains(it.URL) {
			fresh = append(fresh, it)
		}
	}

	firstRun := len(w.SeenURLs) == 0 && w.LastChecked == nil
	suppress := firstRun && !p.notifyFirstRun

	switch {
	case suppress:
		res.Status = StatusFirstRun
	case len(fresh) == 0:
		res.Status = StatusNoChange
	default:
		res.Status = StatusNotified
		res.NewItems = len(fresh)
		p.sendAlert(ctx, w, fresh)
	}

	// Commit after notify: a lost email is an acceptable failure mode,
	// a lost baseline is not, but a committed-then-crashed send would
	// silently swallow those items forever.
	if err := repo.CommitSeen(ctx, p.db, w.ID, domain.NewStringSet(current...), now); err != nil {
		res.Status = StatusFetchFailed
		res.Err = err
	}
	return res
}

// sendAlert delivers one alert email best-effort.
func (p *Poller) sendAlert(ctx context.Context, w *domain.PlanningWatch, fresh []sources.ResultItem) {
	if p.mailer == nil {
		return
	}
	subject := notify.WatchAlertSubject(w.Query)
	body := notify.WatchAlertBody(w.Query, fresh)
	if err := p.mailer.Send(ctx, w.Email, subject, body); err != nil {
		log.Warn().Err(err).Str("watch_id", w.ID).Msg("alert email failed")
		return
	}
	alertsSent.Inc()
}

// touch stamps last_checked, logging rather than failing on error so a
// bookkeeping hiccup never changes a watch's reported status.
func (p *Poller) touch(ctx context.Context, id string, at time.Time) {
	if err := repo.TouchChecked(ctx, p.db, id, at); err != nil {
		log.Warn().Err(err).Str("watch_id", id).Msg("last_checked stamp failed")
	}
}
