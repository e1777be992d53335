// Package services – ListingService
//
// This file implements the ListingService, which serves the listings
// inbox (filtered, paginated, newest first) and the per-user shortlist.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
)

// ListingPage is one inbox page plus the metadata the handler needs for
// pagination headers and conditional responses.
type ListingPage struct {
	Items      []domain.Listing
	Total      int64
	Page       int
	PageSize   int
	Shortlist  map[string]struct{}
	MaxUpdated *time.Time
}

// ListingService provides inbox and shortlist operations.
type ListingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewListingService constructs a ListingService.
func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{DB: db}
}

// Inbox returns one page of listings under the filter, newest first,
// annotated with the user's shortlist membership. Page numbers are
// 1-based; out-of-range inputs are clamped.
func (s *ListingService) Inbox(ctx context.Context, userID string, f repo.ListingFilter, page, pageSize int) (*ListingPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, maxUpdated, err := repo.ListingsStats(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}

	items, err := repo.ListListingsPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	shortlist := map[string]struct{}{}
	if userID != "" {
		shortlist, err = repo.ShortlistIDs(ctx, s.DB, userID)
		if err != nil {
			return nil, err
		}
	}

	return &ListingPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		Shortlist:  shortlist,
		MaxUpdated: maxUpdated,
	}, nil
}

// Get fetches one listing.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := repo.GetListing(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// Shortlist pins a listing for the user. The boolean reports whether a
// new pin was created; re-pinning is a no-op. The listing must exist.
func (s *ListingService) Shortlist(ctx context.Context, userID, listingID string) (bool, error) {
	if _, err := repo.GetListing(ctx, s.DB, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrListingNotFound
		}
		return false, err
	}
	return repo.AddShortlistItem(ctx, s.DB, userID, listingID)
}

// Unshortlist unpins a listing. Unpinning an absent item is not an
// error.
func (s *ListingService) Unshortlist(ctx context.Context, userID, listingID string) error {
	return repo.RemoveShortlistItem(ctx, s.DB, userID, listingID)
}

// ShortlistItems returns the user's pinned listings, newest pin first.
func (s *ListingService) ShortlistItems(ctx context.Context, userID string) ([]domain.ShortlistItem, error) {
	return repo.ListShortlist(ctx, s.DB, userID)
}
