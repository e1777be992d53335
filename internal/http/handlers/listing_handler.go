// Listing inbox and shortlist HTTP handlers.
//
// This file exposes REST endpoints for the shared listing inbox:
//   - GET    /listings                    (filtered, paginated, ETag support)
//   - GET    /listings/{id}               (fetch one)
//   - POST   /listings/{id}/shortlist     (pin for the current user)
//   - DELETE /listings/{id}/shortlist     (unpin)
//   - GET    /shortlist                   (the user's pinned listings)
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
	"github.com/bridgepark/go-alerts-backend/internal/services"
	"github.com/bridgepark/go-alerts-backend/internal/utils"
)

// ListingService defines inbox and shortlist operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ListingService interface {
	Inbox(ctx context.Context, userID string, f repo.ListingFilter, page, pageSize int) (*services.ListingPage, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Shortlist(ctx context.Context, userID, listingID string) (bool, error)
	Unshortlist(ctx context.Context, userID, listingID string) error
	ShortlistItems(ctx context.Context, userID string) ([]domain.ShortlistItem, error)
}

// ListingView is one inbox row: the listing plus the caller's shortlist
// membership.
type ListingView struct {
	domain.Listing
	Shortlisted bool `json:"shortlisted"`
}

// ListListingsResponse wraps a page of listings and pagination information.
type ListListingsResponse struct {
	Listings   []ListingView `json:"listings"`
	Pagination Pagination    `json:"pagination"`
}

// listingFilter parses the inbox filter query params. Absent params impose
// no constraint.
func listingFilter(c *gin.Context) repo.ListingFilter {
	return repo.ListingFilter{
		Portal:   strings.TrimSpace(c.Query("portal")),
		BedsMin:  utils.AtoiDefault(c.Query("beds_min"), 0),
		BathsMin: utils.AtoiDefault(c.Query("baths_min"), 0),
		PriceMax: utils.AtoiDefault(c.Query("price_max"), 0),
	}
}

// ListListings handles GET /listings.
//
// Supports a weak ETag derived from the filtered row count and the latest
// update time; a matching If-None-Match returns 304 without touching the
// page query.
func (h *Handlers) ListListings(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	f := listingFilter(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.ListingsStats(ctx, h.db, f)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"listings:%s:%d:%d:%d:%d:%d"`,
				f.Portal, f.BedsMin, f.BathsMin, f.PriceMax, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	pageData, err := h.listingSvc.Inbox(ctx, uid, f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	views := make([]ListingView, 0, len(pageData.Items))
	for _, l := range pageData.Items {
		_, pinned := pageData.Shortlist[l.ID]
		views = append(views, ListingView{Listing: l, Shortlisted: pinned})
	}

	totalPages := int((pageData.Total + int64(pageData.PageSize) - 1) / int64(pageData.PageSize))
	ok(c, http.StatusOK, ListListingsResponse{
		Listings: views,
		Pagination: Pagination{
			Page:       pageData.Page,
			PageSize:   pageData.PageSize,
			Total:      pageData.Total,
			TotalPages: totalPages,
			HasNext:    pageData.Page < totalPages,
		},
	})
}

// GetListing handles GET /listings/:id.
func (h *Handlers) GetListing(c *gin.Context) {
	id, okID := listingID(c)
	if !okID {
		return
	}

	l, err := h.listingSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, l)
}

// ShortlistListing handles POST /listings/:id/shortlist. Re-pinning an
// already-pinned listing returns 200 instead of 201.
func (h *Handlers) ShortlistListing(c *gin.Context) {
	id, okID := listingID(c)
	if !okID {
		return
	}

	created, err := h.listingSvc.Shortlist(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "listing not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, gin.H{"listing_id": id, "shortlisted": true, "created": created})
}

// UnshortlistListing handles DELETE /listings/:id/shortlist.
func (h *Handlers) UnshortlistListing(c *gin.Context) {
	id, okID := listingID(c)
	if !okID {
		return
	}

	if err := h.listingSvc.Unshortlist(c.Request.Context(), userID(c), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ShortlistItemView is one shortlist row with its listing inlined.
type ShortlistItemView struct {
	ID        string         `json:"id"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Listing   domain.Listing `json:"listing"`
}

// ListShortlist handles GET /shortlist.
func (h *Handlers) ListShortlist(c *gin.Context) {
	items, err := h.listingSvc.ShortlistItems(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	views := make([]ShortlistItemView, 0, len(items))
	for _, it := range items {
		views = append(views, ShortlistItemView{
			ID:        it.ID,
			Notes:     it.Notes,
			CreatedAt: it.CreatedAt,
			Listing:   it.Listing,
		})
	}
	ok(c, http.StatusOK, gin.H{"shortlist": views})
}

// listingID validates the :id path param; on failure it writes the error
// response and returns ok=false.
func listingID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "listing id must be a UUID")
		return "", false
	}
	return id, true
}
