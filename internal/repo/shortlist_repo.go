// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ShortlistItem model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// AddShortlistItem pins listingID for userID. Re-adding an existing
// item is a no-op (created=false), enforced by the unique index.
func AddShortlistItem(ctx context.Context, db *gorm.DB, userID, listingID string) (bool, error) {
	item := &domain.ShortlistItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveShortlistItem unpins listingID for userID. Removing an absent
// item is not an error.
func RemoveShortlistItem(ctx context.Context, db *gorm.DB, userID, listingID string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&domain.ShortlistItem{}).Error
}

// ListShortlist returns the user's shortlist with listings preloaded,
// newest first.
func ListShortlist(ctx context.Context, db *gorm.DB, userID string) ([]domain.ShortlistItem, error) {
	var out []domain.ShortlistItem
	err := db.WithContext(ctx).
		Preload("Listing").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ShortlistIDs returns the set of listing IDs on the user's shortlist,
// used by the inbox to mark already-pinned rows.
func ShortlistIDs(ctx context.Context, db *gorm.DB, userID string) (map[string]struct{}, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.ShortlistItem{}).
		Where("user_id = ?", userID).
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
