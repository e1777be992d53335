// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Listing
// model.
//
// Listings are shared, source-wide deduplicated rows keyed by canonical
// URL. Concurrent ingestion of the same URL (webhook + poll racing) is
// resolved by the unique index: the loser of the insert race re-reads
// the winner's row.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// ListingFilter narrows inbox queries. Zero values impose no constraint,
// mirroring the open-filter semantics of saved-search criteria.
type ListingFilter struct {
	Portal   string
	BedsMin  int
	BathsMin int
	PriceMax int
}

// GetOrCreateListing returns the listing for canonicalURL, creating it
// when unseen. The boolean reports whether a row was created.
//
// The insert relies on ux_listing_canonical_url: when two ingestion
// paths race on the same URL, exactly one insert succeeds and the other
// falls through to a re-read, so duplicate listings cannot exist.
func GetOrCreateListing(ctx context.Context, db *gorm.DB, proto *domain.Listing) (*domain.Listing, bool, error) {
	var existing domain.Listing
	err := db.WithContext(ctx).
		Where("canonical_url = ?", proto.CanonicalURL).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	l := *proto
	l.ID = uuid.NewString()
	if l.FirstSeen.IsZero() {
		l.FirstSeen = now
	}
	if l.LastSeen.IsZero() {
		l.LastSeen = now
	}
	l.IsActive = true

	if err := db.WithContext(ctx).Create(&l).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the row exists now.
			if err2 := db.WithContext(ctx).
				Where("canonical_url = ?", proto.CanonicalURL).
				First(&existing).Error; err2 != nil {
				return nil, false, err2
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &l, true, nil
}

// TouchListing bumps last_seen on an already-known listing.
func TouchListing(ctx context.Context, db *gorm.DB, id string, seenAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ?", id).
		Update("last_seen", seenAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetListing fetches a listing by ID, or ErrNotFound.
func GetListing(ctx context.Context, db *gorm.DB, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CountListings returns the number of listings satisfying the filter.
func CountListings(ctx context.Context, db *gorm.DB, f ListingFilter) (int64, error) {
	var total int64
	err := applyListingFilter(db.WithContext(ctx).Model(&domain.Listing{}), f).
		Count(&total).Error
	return total, err
}

// ListListingsPage returns a page of listings satisfying the filter,
// newest first by first_seen.
func ListListingsPage(ctx context.Context, db *gorm.DB, f ListingFilter, offset, limit int) ([]domain.Listing, error) {
	var out []domain.Listing
	err := applyListingFilter(db.WithContext(ctx), f).
		Order("first_seen desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// applyListingFilter composes WHERE clauses for non-zero filter fields.
func applyListingFilter(q *gorm.DB, f ListingFilter) *gorm.DB {
	if f.Portal != "" {
		q = q.Where("portal = ?", f.Portal)
	}
	if f.BedsMin > 0 {
		q = q.Where("bedrooms >= ?", f.BedsMin)
	}
	if f.BathsMin > 0 {
		q = q.Where("bathrooms >= ?", f.BathsMin)
	}
	if f.PriceMax > 0 {
		q = q.Where("price <= ?", f.PriceMax)
	}
	return q
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
