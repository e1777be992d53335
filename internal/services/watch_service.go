// Package services – WatchService
//
// This file implements the WatchService, which manages planning-watch
// subscriptions. It resolves free-text queries to a borough before
// anything is persisted, rejects unsupported boroughs at the boundary,
// reuses existing identical watches instead of multiplying them, and
// sends a best-effort confirmation email that can never fail the
// creation itself.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/notify"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
	"github.com/bridgepark/go-alerts-backend/internal/sources"
)

// WatchService provides watch lifecycle operations: creation with
// borough resolution, listing, and deactivation.
type WatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Mailer delivers the confirmation email. May be nil in tests; a
	// nil mailer simply skips confirmation.
	Mailer notify.Mailer
}

// NewWatchService constructs a WatchService.
func NewWatchService(db *gorm.DB, mailer notify.Mailer) *WatchService {
	return &WatchService{DB: db, Mailer: mailer}
}

// Create resolves query to a borough and persists a watch for email.
//
// Failure modes, all surfaced before any row exists:
//   - ErrEmptyEmail / ErrEmptyQuery on blank input
//   - ErrUnknownBorough when resolution fails
//   - ErrUnsupportedBorough when the borough cannot be scraped
//
// An identical (email, query, borough) watch is reused rather than
// duplicated. On success a confirmation email goes out best-effort:
// a delivery failure is logged and the created watch is still returned.
func (s *WatchService) Create(ctx context.Context, email, query string) (*domain.PlanningWatch, error) {
	email = strings.TrimSpace(email)
	query = strings.TrimSpace(query)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}

	code, label, ok := sources.Resolve(query)
	if !ok {
		return nil, ErrUnknownBorough
	}
	if !sources.SupportsAlerts(code) {
		return nil, ErrUnsupportedBorough
	}

	w, created, err := repo.GetOrCreateWatch(ctx, s.DB, email, query, code)
	if err != nil {
		return nil, err
	}

	if created && s.Mailer != nil {
		subject := notify.WatchConfirmationSubject()
		body := notify.WatchConfirmationBody(query, label)
		if err := s.Mailer.Send(ctx, email, subject, body); err != nil {
			// Soft failure: the alert exists, only the courtesy email
			// went missing.
			log.Warn().Err(err).Str("watch_id", w.ID).Msg("confirmation email failed")
		}
	}

	return w, nil
}

// List returns all watches, newest first.
func (s *WatchService) List(ctx context.Context) ([]domain.PlanningWatch, error) {
	return repo.ListWatches(ctx, s.DB)
}

// Deactivate clears a watch's active flag so the scheduler skips it.
// The row is retained.
func (s *WatchService) Deactivate(ctx context.Context, id string) error {
	if err := repo.DeactivateWatch(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWatchNotFound
		}
		return err
	}
	return nil
}
