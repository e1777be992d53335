// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries
// used for conditional responses (ETag generation) in the HTTP layer and
// for the scheduler's cycle report.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// ListingsStats returns aggregate metadata for the listings inbox: the
// total row count under the filter and the greatest UpdatedAt among
// those rows. When no rows match, count is 0 and maxUpdatedAt is nil.
func ListingsStats(ctx context.Context, db *gorm.DB, f ListingFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// WatchStats summarizes the watch table for the admin listing and the
// scheduler's log line: how many watches exist, how many are active,
// and the most recent completed check.
func WatchStats(ctx context.Context, db *gorm.DB) (total, active int64, lastChecked *time.Time, err error) {
	m := db.WithContext(ctx).Model(&domain.PlanningWatch{})

	if err = m.Count(&total).Error; err != nil {
		return 0, 0, nil, err
	}
	if err = db.WithContext(ctx).
		Model(&domain.PlanningWatch{}).
		Where("active = ?", true).
		Count(&active).Error; err != nil {
		return 0, 0, nil, err
	}
	if total == 0 {
		return total, active, nil, nil
	}

	var row struct {
		LastChecked *time.Time
	}
	if err = db.WithContext(ctx).
		Model(&domain.PlanningWatch{}).
		Select("last_checked").
		Where("last_checked IS NOT NULL").
		Order("last_checked DESC").
		Limit(1).
		Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return total, active, row.LastChecked, nil
}
