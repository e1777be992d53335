package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// newTestDB opens a uniquely named shared in-memory SQLite database and
// migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedListing(t *testing.T, db *gorm.DB, url string) *domain.Listing {
	t.Helper()
	l, created, err := GetOrCreateListing(context.Background(), db, &domain.Listing{
		CanonicalURL: url,
		Portal:       domain.PortalRightmove,
		Title:        "Test listing",
	})
	if err != nil || !created {
		t.Fatalf("seed listing: created=%v err=%v", created, err)
	}
	return l
}

func seedSearch(t *testing.T, db *gorm.DB, userID string) *domain.SavedSearch {
	t.Helper()
	s, err := CreateSavedSearch(context.Background(), db, &domain.SavedSearch{
		UserID:   userID,
		Name:     "test search",
		Portal:   domain.PortalRightmove,
		Criteria: "{}",
		Email:    "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("seed search: %v", err)
	}
	return s
}

// --- watches ---

func TestGetOrCreateWatch_ReusesExactTriple(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	w1, created, err := GetOrCreateWatch(ctx, db, "a@example.com", "UB6 8JF", "ealing")
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	w2, created, err := GetOrCreateWatch(ctx, db, "a@example.com", "UB6 8JF", "ealing")
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}
	if w1.ID != w2.ID {
		t.Fatalf("identical triple must reuse the row: %s vs %s", w1.ID, w2.ID)
	}

	// Different query produces a distinct watch.
	w3, created, err := GetOrCreateWatch(ctx, db, "a@example.com", "W5 2DA", "ealing")
	if err != nil || !created {
		t.Fatalf("third create: created=%v err=%v", created, err)
	}
	if w3.ID == w1.ID {
		t.Fatalf("different query must create a new watch")
	}
}

func TestCommitSeen_ReplacesBaselineWholesale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	w, err := CreateWatch(ctx, db, "a@example.com", "UB6", "ealing")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t1 := time.Now().UTC().Truncate(time.Second)
	if err := CommitSeen(ctx, db, w.ID, domain.NewStringSet("u1", "u2"), t1); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Second commit replaces, not unions: u1 drops out.
	t2 := t1.Add(time.Hour)
	if err := CommitSeen(ctx, db, w.ID, domain.NewStringSet("u2", "u3"), t2); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	got, err := GetWatch(ctx, db, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SeenURLs.Contains("u1") {
		t.Fatalf("baseline must be replaced wholesale, still has u1: %v", got.SeenURLs)
	}
	if !got.SeenURLs.Contains("u2") || !got.SeenURLs.Contains("u3") {
		t.Fatalf("baseline missing current keys: %v", got.SeenURLs)
	}
	if got.LastChecked == nil || !got.LastChecked.Equal(t2) {
		t.Fatalf("last_checked = %v; want %v", got.LastChecked, t2)
	}
}

func TestCommitSeen_MissingWatch(t *testing.T) {
	db := newTestDB(t)
	err := CommitSeen(context.Background(), db, uuid.NewString(), domain.NewStringSet("u"), time.Now())
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestTouchChecked_And_Deactivate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	w, _ := CreateWatch(ctx, db, "a@example.com", "UB6", "ealing")

	ts := time.Now().UTC().Truncate(time.Second)
	if err := TouchChecked(ctx, db, w.ID, ts); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _ := GetWatch(ctx, db, w.ID)
	if got.LastChecked == nil || !got.LastChecked.Equal(ts) {
		t.Fatalf("last_checked = %v; want %v", got.LastChecked, ts)
	}
	if len(got.SeenURLs) != 0 {
		t.Fatalf("touch must not grow the baseline: %v", got.SeenURLs)
	}

	if err := DeactivateWatch(ctx, db, w.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err := ListActiveWatches(ctx, db)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated watch still listed: %+v", active)
	}

	if err := DeactivateWatch(ctx, db, uuid.NewString()); err != gorm.ErrRecordNotFound {
		t.Fatalf("deactivate missing: want ErrRecordNotFound, got %v", err)
	}
}

// --- listings ---

func TestGetOrCreateListing_DeduplicatesByCanonicalURL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const url = "https://www.rightmove.co.uk/properties/123456"
	l1, created, err := GetOrCreateListing(ctx, db, &domain.Listing{CanonicalURL: url, Portal: domain.PortalRightmove})
	if err != nil || !created {
		t.Fatalf("first: created=%v err=%v", created, err)
	}
	l2, created, err := GetOrCreateListing(ctx, db, &domain.Listing{CanonicalURL: url, Portal: domain.PortalRightmove})
	if err != nil || created {
		t.Fatalf("second: created=%v err=%v", created, err)
	}
	if l1.ID != l2.ID {
		t.Fatalf("same URL must dedupe: %s vs %s", l1.ID, l2.ID)
	}

	var n int64
	db.Model(&domain.Listing{}).Count(&n)
	if n != 1 {
		t.Fatalf("listings = %d; want 1", n)
	}
}

func TestTouchListing_BumpsLastSeen(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "https://www.zoopla.co.uk/for-sale/details/111")

	ts := l.LastSeen.Add(2 * time.Hour).Truncate(time.Second)
	if err := TouchListing(ctx, db, l.ID, ts); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _ := GetListing(ctx, db, l.ID)
	if !got.LastSeen.Equal(ts) {
		t.Fatalf("last_seen = %v; want %v", got.LastSeen, ts)
	}

	if err := TouchListing(ctx, db, uuid.NewString(), ts); err != gorm.ErrRecordNotFound {
		t.Fatalf("touch missing: want ErrRecordNotFound, got %v", err)
	}
}

func TestListListingsPage_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mk := func(url, portal string, beds, price int) {
		_, _, err := GetOrCreateListing(ctx, db, &domain.Listing{
			CanonicalURL: url,
			Portal:       portal,
			Bedrooms:     &beds,
			Price:        &price,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	mk("https://www.rightmove.co.uk/properties/1", domain.PortalRightmove, 2, 400_000)
	mk("https://www.rightmove.co.uk/properties/2", domain.PortalRightmove, 3, 600_000)
	mk("https://www.zoopla.co.uk/for-sale/details/3", domain.PortalZoopla, 4, 350_000)

	total, err := CountListings(ctx, db, ListingFilter{})
	if err != nil || total != 3 {
		t.Fatalf("unfiltered count = %d, %v", total, err)
	}

	got, err := ListListingsPage(ctx, db, ListingFilter{Portal: domain.PortalRightmove, BedsMin: 3}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CanonicalURL != "https://www.rightmove.co.uk/properties/2" {
		t.Fatalf("filter result unexpected: %+v", got)
	}

	got, err = ListListingsPage(ctx, db, ListingFilter{PriceMax: 400_000}, 0, 10)
	if err != nil || len(got) != 2 {
		t.Fatalf("price_max filter: %d items, %v", len(got), err)
	}
}

// --- matches ---

func TestRecordMatch_DuplicateIsNoOp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := seedSearch(t, db, "u1")
	l := seedListing(t, db, "https://www.rightmove.co.uk/properties/42")

	created, err := RecordMatch(ctx, db, s.ID, l.ID)
	if err != nil || !created {
		t.Fatalf("first record: created=%v err=%v", created, err)
	}
	created, err = RecordMatch(ctx, db, s.ID, l.ID)
	if err != nil {
		t.Fatalf("duplicate record errored: %v", err)
	}
	if created {
		t.Fatalf("duplicate must not create")
	}

	n, err := CountMatches(ctx, db, s.ID)
	if err != nil || n != 1 {
		t.Fatalf("matches = %d, %v; want 1", n, err)
	}
	has, err := HasMatch(ctx, db, s.ID, l.ID)
	if err != nil || !has {
		t.Fatalf("HasMatch = %v, %v", has, err)
	}
}

// --- shortlist ---

func TestShortlist_AddRemoveList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	l := seedListing(t, db, "https://www.rightmove.co.uk/properties/7")

	created, err := AddShortlistItem(ctx, db, "u1", l.ID)
	if err != nil || !created {
		t.Fatalf("add: created=%v err=%v", created, err)
	}
	created, err = AddShortlistItem(ctx, db, "u1", l.ID)
	if err != nil || created {
		t.Fatalf("re-add must be a no-op: created=%v err=%v", created, err)
	}

	items, err := ListShortlist(ctx, db, "u1")
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %d items, %v", len(items), err)
	}
	if items[0].Listing.CanonicalURL != l.CanonicalURL {
		t.Fatalf("listing not preloaded: %+v", items[0])
	}

	ids, err := ShortlistIDs(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if _, ok := ids[l.ID]; !ok {
		t.Fatalf("ShortlistIDs missing %s", l.ID)
	}

	// Another user's shortlist is empty.
	other, _ := ListShortlist(ctx, db, "u2")
	if len(other) != 0 {
		t.Fatalf("shortlists must be per-user: %+v", other)
	}

	if err := RemoveShortlistItem(ctx, db, "u1", l.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing again is not an error.
	if err := RemoveShortlistItem(ctx, db, "u1", l.ID); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

// --- stats ---

func TestListingsStats_And_WatchStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, maxTS, err := ListingsStats(ctx, db, ListingFilter{})
	if err != nil || count != 0 || maxTS != nil {
		t.Fatalf("empty stats: %d, %v, %v", count, maxTS, err)
	}

	seedListing(t, db, "https://www.rightmove.co.uk/properties/9")
	count, maxTS, err = ListingsStats(ctx, db, ListingFilter{})
	if err != nil || count != 1 || maxTS == nil {
		t.Fatalf("stats after seed: %d, %v, %v", count, maxTS, err)
	}

	w, _ := CreateWatch(ctx, db, "a@example.com", "UB6", "ealing")
	_ = TouchChecked(ctx, db, w.ID, time.Now().UTC())
	total, active, last, err := WatchStats(ctx, db)
	if err != nil || total != 1 || active != 1 || last == nil {
		t.Fatalf("watch stats: %d/%d/%v/%v", total, active, last, err)
	}
}
