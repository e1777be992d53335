// Package services – IngestService
//
// This file implements webhook ingestion of forwarded portal-alert
// emails. The raw text and HTML bodies are scanned for Rightmove and
// Zoopla listing URLs; each URL is upserted as a listing keyed by its
// canonical form, and every listing created this way is run through the
// instant saved searches for at-most-once notification.
package services

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/match"
	"github.com/bridgepark/go-alerts-backend/internal/notify"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
)

// Listing URL shapes as they appear in portal alert emails. The match
// is the canonical form stored on the listing row.
var (
	rightmoveURLRE = regexp.MustCompile(`https?://www\.rightmove\.co\.uk/properties/\d+`)
	zooplaURLRE    = regexp.MustCompile(`https?://www\.zoopla\.co\.uk/for-sale/details/\d+`)
)

// IngestResult summarizes one webhook delivery: every portal URL found
// in the payload and how many of them were new listings.
type IngestResult struct {
	FoundURLs []string
	New       int
}

// IngestService turns inbound email payloads into listings and instant
// notifications.
type IngestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Mailer delivers instant-match emails best-effort. May be nil.
	Mailer notify.Mailer
}

// NewIngestService constructs an IngestService.
func NewIngestService(db *gorm.DB, mailer notify.Mailer) *IngestService {
	return &IngestService{DB: db, Mailer: mailer}
}

// Ingest processes one inbound email. Both bodies are scanned because
// forwarding services populate either or both. Duplicate URLs within a
// payload collapse to one listing; redelivery of the same email is
// harmless: known URLs only get their last_seen bumped and can never
// re-notify, since the (search, listing) match row already exists.
func (s *IngestService) Ingest(ctx context.Context, subject, textBody, htmlBody string) (*IngestResult, error) {
	combined := textBody + "\n" + htmlBody
	urls := extractListingURLs(combined)

	res := &IngestResult{FoundURLs: urls}
	now := time.Now().UTC()

	for _, u := range urls {
		portal := domain.PortalRightmove
		if zooplaURLRE.MatchString(u) {
			portal = domain.PortalZoopla
		}

		l, created, err := repo.GetOrCreateListing(ctx, s.DB, &domain.Listing{
			CanonicalURL: u,
			Portal:       portal,
			Title:        subject,
			RawSource:    "inbound-email",
		})
		if err != nil {
			return nil, err
		}
		if !created {
			if err := repo.TouchListing(ctx, s.DB, l.ID, now); err != nil {
				return nil, err
			}
			continue
		}

		res.New++
		s.notifyInstantMatches(ctx, l)
	}

	return res, nil
}

// notifyInstantMatches runs one new listing through every instant saved
// search. The match row is recorded before the email goes out, so a
// crash mid-loop can at worst lose a notification, never duplicate one.
func (s *IngestService) notifyInstantMatches(ctx context.Context, l *domain.Listing) {
	searches, err := repo.ListInstantSearches(ctx, s.DB)
	if err != nil {
		log.Error().Err(err).Str("listing_id", l.ID).Msg("instant search lookup failed")
		return
	}

	for i := range searches {
		sr := &searches[i]
		if sr.Portal != l.Portal {
			continue
		}
		crit, err := match.ParseCriteria(sr.Criteria)
		if err != nil {
			log.Warn().Err(err).Str("search_id", sr.ID).Msg("unreadable criteria, skipping")
			continue
		}
		if !crit.Listing(l) {
			continue
		}

		created, err := repo.RecordMatch(ctx, s.DB, sr.ID, l.ID)
		if err != nil {
			log.Error().Err(err).Str("search_id", sr.ID).Str("listing_id", l.ID).Msg("match record failed")
			continue
		}
		if !created {
			continue
		}

		if s.Mailer != nil && sr.Email != "" {
			subject := notify.ListingMatchSubject(sr.Name)
			body := notify.ListingMatchBody(l)
			if err := s.Mailer.Send(ctx, sr.Email, subject, body); err != nil {
				log.Warn().Err(err).Str("search_id", sr.ID).Str("listing_id", l.ID).Msg("match email failed")
			}
		}
	}
}

// extractListingURLs returns the portal listing URLs present in text,
// deduplicated, in order of first appearance.
func extractListingURLs(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{rightmoveURLRE, zooplaURLRE} {
		for _, u := range re.FindAllString(text, -1) {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
