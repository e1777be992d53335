package services

import (
	"context"
	"strings"
	"testing"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
)

func TestExtractListingURLs(t *testing.T) {
	text := `Dear subscriber,
New homes: https://www.rightmove.co.uk/properties/123456 and
<a href="https://www.zoopla.co.uk/for-sale/details/98765">this one</a>.
Repeated: https://www.rightmove.co.uk/properties/123456
Not a listing: https://www.rightmove.co.uk/house-prices/`

	urls := extractListingURLs(text)
	if len(urls) != 2 {
		t.Fatalf("urls = %v; want 2", urls)
	}
	if urls[0] != "https://www.rightmove.co.uk/properties/123456" {
		t.Fatalf("urls[0] = %q", urls[0])
	}
	if urls[1] != "https://www.zoopla.co.uk/for-sale/details/98765" {
		t.Fatalf("urls[1] = %q", urls[1])
	}
}

func TestIngest_CreatesListingsFromBothBodies(t *testing.T) {
	db := newTestDB(t)
	svc := NewIngestService(db, nil)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "3 bed semi in W5",
		"Plain text: https://www.rightmove.co.uk/properties/111",
		`HTML: <a href="https://www.zoopla.co.uk/for-sale/details/222">view</a>`)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.FoundURLs) != 2 || res.New != 2 {
		t.Fatalf("result: %+v", res)
	}

	l, _, err := repo.GetOrCreateListing(ctx, db, &domain.Listing{
		CanonicalURL: "https://www.rightmove.co.uk/properties/111",
		Portal:       domain.PortalRightmove,
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if l.Portal != domain.PortalRightmove || l.Title != "3 bed semi in W5" || l.RawSource != "inbound-email" {
		t.Fatalf("listing: %+v", l)
	}
}

func TestIngest_RedeliveryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIngestService(db, mailer)
	ctx := context.Background()

	// An instant search that matches any rightmove listing.
	search, err := NewSearchService(db).Create(ctx, "u1", SavedSearchInput{
		Name:   "Anything",
		Portal: domain.PortalRightmove,
		Email:  "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("create search: %v", err)
	}

	body := "https://www.rightmove.co.uk/properties/333"
	first, err := svc.Ingest(ctx, "subject", body, "")
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := svc.Ingest(ctx, "subject", body, "")
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if first.New != 1 || second.New != 0 {
		t.Fatalf("new counts: first=%d second=%d", first.New, second.New)
	}
	if len(second.FoundURLs) != 1 {
		t.Fatalf("redelivery should still report the URL: %+v", second)
	}

	// One listing row, one match row, one email.
	var listings int64
	if err := db.Model(&domain.Listing{}).Count(&listings).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if listings != 1 {
		t.Fatalf("listings = %d; want 1", listings)
	}
	matches, err := repo.CountMatches(ctx, db, search.ID)
	if err != nil {
		t.Fatalf("CountMatches: %v", err)
	}
	if matches != 1 {
		t.Fatalf("matches = %d; want 1", matches)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("emails = %d; want 1", len(mailer.sent))
	}
	if mailer.sent[0].to != "buyer@example.com" || !strings.Contains(mailer.sent[0].body, "properties/333") {
		t.Fatalf("email: %+v", mailer.sent[0])
	}
}

func TestIngest_PortalMismatchDoesNotNotify(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIngestService(db, mailer)
	ctx := context.Background()

	if _, err := NewSearchService(db).Create(ctx, "u1", SavedSearchInput{
		Name:   "Zoopla only",
		Portal: domain.PortalZoopla,
		Email:  "buyer@example.com",
	}); err != nil {
		t.Fatalf("create search: %v", err)
	}

	res, err := svc.Ingest(ctx, "s", "https://www.rightmove.co.uk/properties/444", "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.New != 1 {
		t.Fatalf("listing should still be created: %+v", res)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("cross-portal notification: %+v", mailer.sent)
	}
}

func TestIngest_CriteriaFilterAppliesToTitle(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIngestService(db, mailer)
	ctx := context.Background()

	if _, err := NewSearchService(db).Create(ctx, "u1", SavedSearchInput{
		Name:     "Gardens",
		Portal:   domain.PortalRightmove,
		Email:    "buyer@example.com",
		Keywords: []string{"garden"},
	}); err != nil {
		t.Fatalf("create search: %v", err)
	}

	// The subject becomes the listing title and feeds keyword matching.
	if _, err := svc.Ingest(ctx, "Modern flat, no outdoor space",
		"https://www.rightmove.co.uk/properties/555", ""); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("keyword miss should not notify: %+v", mailer.sent)
	}

	if _, err := svc.Ingest(ctx, "Victorian terrace with GARDEN",
		"https://www.rightmove.co.uk/properties/556", ""); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("keyword hit should notify once: %+v", mailer.sent)
	}
}

func TestIngest_NoURLsIsANoOp(t *testing.T) {
	svc := NewIngestService(newTestDB(t), nil)
	res, err := svc.Ingest(context.Background(), "newsletter", "no links here", "<p>none</p>")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.FoundURLs) != 0 || res.New != 0 {
		t.Fatalf("result: %+v", res)
	}
}
