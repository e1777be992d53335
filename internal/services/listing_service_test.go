package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
	"gorm.io/gorm"
)

func seedListings(t *testing.T, db *gorm.DB, n int) []*domain.Listing {
	t.Helper()
	out := make([]*domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		l, _, err := repo.GetOrCreateListing(context.Background(), db, &domain.Listing{
			CanonicalURL: fmt.Sprintf("https://www.rightmove.co.uk/properties/%d", 1000+i),
			Portal:       domain.PortalRightmove,
			Title:        fmt.Sprintf("Listing %d", i),
			Bedrooms:     intp(i + 1),
			Price:        intp((i + 1) * 100_000),
		})
		if err != nil {
			t.Fatalf("seed listing %d: %v", i, err)
		}
		out = append(out, l)
		time.Sleep(2 * time.Millisecond) // first_seen orders the inbox
	}
	return out
}

func TestInbox_PaginationAndClamping(t *testing.T) {
	db := newTestDB(t)
	seedListings(t, db, 5)
	svc := NewListingService(db)
	ctx := context.Background()

	page, err := svc.Inbox(ctx, "u1", repo.ListingFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Fatalf("page: total=%d items=%d", page.Total, len(page.Items))
	}
	// Newest first.
	if page.Items[0].Title != "Listing 4" {
		t.Fatalf("order: %+v", page.Items[0])
	}
	if page.MaxUpdated == nil {
		t.Fatalf("MaxUpdated missing")
	}

	// Out-of-range inputs are clamped to defaults.
	page, err = svc.Inbox(ctx, "u1", repo.ListingFilter{}, -3, 0)
	if err != nil {
		t.Fatalf("Inbox clamped: %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("clamp: page=%d size=%d", page.Page, page.PageSize)
	}
	if len(page.Items) != 5 {
		t.Fatalf("clamped page items = %d", len(page.Items))
	}
}

func TestInbox_FilterAndShortlistAnnotation(t *testing.T) {
	db := newTestDB(t)
	listings := seedListings(t, db, 4)
	svc := NewListingService(db)
	ctx := context.Background()

	if _, err := svc.Shortlist(ctx, "u1", listings[2].ID); err != nil {
		t.Fatalf("Shortlist: %v", err)
	}

	page, err := svc.Inbox(ctx, "u1", repo.ListingFilter{BedsMin: 3}, 1, 20)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("filtered total = %d; want 2", page.Total)
	}
	if _, ok := page.Shortlist[listings[2].ID]; !ok {
		t.Fatalf("shortlist membership missing: %v", page.Shortlist)
	}
	if _, ok := page.Shortlist[listings[0].ID]; ok {
		t.Fatalf("unpinned listing marked shortlisted")
	}
}

func TestShortlistLifecycle(t *testing.T) {
	db := newTestDB(t)
	listings := seedListings(t, db, 2)
	svc := NewListingService(db)
	ctx := context.Background()

	created, err := svc.Shortlist(ctx, "u1", listings[0].ID)
	if err != nil || !created {
		t.Fatalf("first pin: (%v, %v)", created, err)
	}
	created, err = svc.Shortlist(ctx, "u1", listings[0].ID)
	if err != nil || created {
		t.Fatalf("re-pin must be a no-op: (%v, %v)", created, err)
	}

	if _, err := svc.Shortlist(ctx, "u1", "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("pinning a missing listing: %v", err)
	}

	items, err := svc.ShortlistItems(ctx, "u1")
	if err != nil {
		t.Fatalf("ShortlistItems: %v", err)
	}
	if len(items) != 1 || items[0].Listing.ID != listings[0].ID {
		t.Fatalf("shortlist: %+v", items)
	}

	if err := svc.Unshortlist(ctx, "u1", listings[0].ID); err != nil {
		t.Fatalf("Unshortlist: %v", err)
	}
	// Unpinning again is still fine.
	if err := svc.Unshortlist(ctx, "u1", listings[0].ID); err != nil {
		t.Fatalf("repeat Unshortlist: %v", err)
	}
	items, _ = svc.ShortlistItems(ctx, "u1")
	if len(items) != 0 {
		t.Fatalf("shortlist not emptied: %+v", items)
	}
}

func TestListingGet(t *testing.T) {
	db := newTestDB(t)
	listings := seedListings(t, db, 1)
	svc := NewListingService(db)
	ctx := context.Background()

	got, err := svc.Get(ctx, listings[0].ID)
	if err != nil || got.CanonicalURL != listings[0].CanonicalURL {
		t.Fatalf("Get: (%+v, %v)", got, err)
	}
	if _, err := svc.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("missing listing: %v", err)
	}
}
