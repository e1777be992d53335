// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SearchMatch model — the at-most-once guard for alert delivery.
//
// Error semantics:
//   - Duplicate matches (same saved_search_id, listing_id) rely on the
//     database unique constraint and are reported as created=false, not
//     as an error: re-recording an existing match is a safe no-op so
//     retries after a crash between "send" and "record" cannot double
//     deliver indefinitely.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// RecordMatch inserts the (search, listing) pair unless it already
// exists. The boolean reports whether a new row was created — i.e.
// whether the caller holds the one-and-only permission to notify this
// pair.
func RecordMatch(ctx context.Context, db *gorm.DB, searchID, listingID string) (bool, error) {
	m := &domain.SearchMatch{
		ID:            uuid.NewString(),
		SavedSearchID: searchID,
		ListingID:     listingID,
		MatchedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasMatch reports whether the pair has already been recorded.
func HasMatch(ctx context.Context, db *gorm.DB, searchID, listingID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SearchMatch{}).
		Where("saved_search_id = ? AND listing_id = ?", searchID, listingID).
		Count(&n).Error
	return n > 0, err
}

// CountMatches returns the number of match rows for a saved search.
func CountMatches(ctx context.Context, db *gorm.DB, searchID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SearchMatch{}).
		Where("saved_search_id = ?", searchID).
		Count(&n).Error
	return n, err
}
