// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PlanningWatch model.
//
// All functions are context-aware and accept a *gorm.DB handle, making
// them safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// CRUD persistence and query composition.
//
// Error semantics:
//   - When a watch is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateWatch inserts a new PlanningWatch with an empty baseline. The
// watch ID is a randomly generated UUID and CreatedAt is set to UTC.
func CreateWatch(ctx context.Context, db *gorm.DB, email, query, boroughCode string) (*domain.PlanningWatch, error) {
	w := &domain.PlanningWatch{
		ID:          uuid.NewString(),
		Email:       email,
		Query:       query,
		BoroughCode: boroughCode,
		Active:      true,
		SeenURLs:    domain.StringSet{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// GetOrCreateWatch returns the existing active watch for the exact
// (email, query, borough) triple, or creates one. Re-submitting the
// same form must not multiply watches.
func GetOrCreateWatch(ctx context.Context, db *gorm.DB, email, query, boroughCode string) (w *domain.PlanningWatch, created bool, err error) {
	var existing domain.PlanningWatch
	err = db.WithContext(ctx).
		Where("email = ? AND query = ? AND borough_code = ?", email, query, boroughCode).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}
	w, err = CreateWatch(ctx, db, email, query, boroughCode)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// GetWatch fetches a single watch by ID, or ErrNotFound if missing.
func GetWatch(ctx context.Context, db *gorm.DB, id string) (*domain.PlanningWatch, error) {
	var w domain.PlanningWatch
	if err := db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWatches returns all watches, newest first.
func ListWatches(ctx context.Context, db *gorm.DB) ([]domain.PlanningWatch, error) {
	var out []domain.PlanningWatch
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// ListActiveWatches returns all active watches in creation order. The
// scheduler iterates this set once per poll cycle.
func ListActiveWatches(ctx context.Context, db *gorm.DB) ([]domain.PlanningWatch, error) {
	var out []domain.PlanningWatch
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CommitSeen replaces the watch's seen-URL baseline wholesale with keys
// and stamps the last-checked time in a single UPDATE. It is called
// after every successful fetch, whether or not anything was notified, so
// a later delivery failure can never lose the baseline.
//
// Returns ErrNotFound when the watch does not exist.
func CommitSeen(ctx context.Context, db *gorm.DB, id string, keys domain.StringSet, checkedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.PlanningWatch{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"seen_urls":    keys,
			"last_checked": checkedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchChecked stamps last_checked without touching the baseline. Used
// for cycles that attempted a watch but could not produce a key set
// (blocked or unsupported borough, fetch failure).
func TouchChecked(ctx context.Context, db *gorm.DB, id string, checkedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.PlanningWatch{}).
		Where("id = ?", id).
		Update("last_checked", checkedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateWatch clears the active flag. The pipeline never deletes
// watch rows.
func DeactivateWatch(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.PlanningWatch{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
