// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SavedSearch model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// CreateSavedSearch inserts a saved search owned by userID. Criteria is
// the already-normalized JSON document produced by the service layer.
func CreateSavedSearch(ctx context.Context, db *gorm.DB, s *domain.SavedSearch) (*domain.SavedSearch, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	if s.AlertFrequency == "" {
		s.AlertFrequency = domain.FrequencyInstant
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSavedSearches returns all searches owned by userID, newest first.
func ListSavedSearches(ctx context.Context, db *gorm.DB, userID string) ([]domain.SavedSearch, error) {
	var out []domain.SavedSearch
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetSavedSearch fetches a search by ID, enforcing ownership. Returns
// ErrNotFound when missing or owned by someone else.
func GetSavedSearch(ctx context.Context, db *gorm.DB, id, userID string) (*domain.SavedSearch, error) {
	var s domain.SavedSearch
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSavedSearch overwrites the mutable fields of a search owned by
// userID. Returns ErrNotFound when no row matches.
func UpdateSavedSearch(ctx context.Context, db *gorm.DB, id, userID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.SavedSearch{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSavedSearch soft-deletes a search owned by userID.
func DeleteSavedSearch(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.SavedSearch{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListInstantSearches returns every search with instant alert frequency,
// across all users. The ingestion path walks this set for each new
// listing.
func ListInstantSearches(ctx context.Context, db *gorm.DB) ([]domain.SavedSearch, error) {
	var out []domain.SavedSearch
	err := db.WithContext(ctx).
		Where("alert_frequency = ?", domain.FrequencyInstant).
		Find(&out).Error
	return out, err
}
