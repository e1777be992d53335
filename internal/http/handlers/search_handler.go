// Saved search HTTP handlers.
//
// This file exposes REST endpoints for saved-search resources:
//   - POST   /searches          (create)
//   - GET    /searches          (list, newest first)
//   - GET    /searches/{id}     (fetch one)
//   - PUT    /searches/{id}     (replace fields and criteria)
//   - DELETE /searches/{id}     (delete)
//
// Ownership is enforced by the service layer: every operation is scoped to
// the current user, and someone else's search behaves as not found.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/services"
)

// SearchService defines saved-search operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SearchService interface {
	Create(ctx context.Context, userID string, in services.SavedSearchInput) (*domain.SavedSearch, error)
	List(ctx context.Context, userID string) ([]domain.SavedSearch, error)
	Get(ctx context.Context, userID, id string) (*domain.SavedSearch, error)
	Update(ctx context.Context, userID, id string, in services.SavedSearchInput) error
	Delete(ctx context.Context, userID, id string) error
}

// SavedSearchRequest is the JSON payload for creating or replacing a saved
// search. Absent numeric fields impose no constraint.
type SavedSearchRequest struct {
	Name            string   `json:"name"`
	Portal          string   `json:"portal" binding:"required"`
	PortalSearchURL string   `json:"portal_search_url"`
	AlertFrequency  string   `json:"alert_frequency"`
	Email           string   `json:"email"`
	BedsMin         *int     `json:"beds_min,omitempty"`
	BathsMin        *int     `json:"baths_min,omitempty"`
	PriceMin        *int     `json:"price_min,omitempty"`
	PriceMax        *int     `json:"price_max,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Postcode        string   `json:"postcode"`
}

func (r SavedSearchRequest) toInput() services.SavedSearchInput {
	return services.SavedSearchInput{
		Name:            r.Name,
		Portal:          r.Portal,
		PortalSearchURL: r.PortalSearchURL,
		AlertFrequency:  r.AlertFrequency,
		Email:           r.Email,
		BedsMin:         r.BedsMin,
		BathsMin:        r.BathsMin,
		PriceMin:        r.PriceMin,
		PriceMax:        r.PriceMax,
		Keywords:        r.Keywords,
		Postcode:        r.Postcode,
	}
}

// CreateSearch handles POST /searches.
func (h *Handlers) CreateSearch(c *gin.Context) {
	var req SavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	s, err := h.searchSvc.Create(c.Request.Context(), userID(c), req.toInput())
	switch {
	case err == nil:
		ok(c, http.StatusCreated, s)
	case errors.Is(err, services.ErrInvalidPortal), errors.Is(err, services.ErrInvalidFrequency):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// ListSearches handles GET /searches.
func (h *Handlers) ListSearches(c *gin.Context) {
	items, err := h.searchSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"searches": items})
}

// GetSearch handles GET /searches/:id.
func (h *Handlers) GetSearch(c *gin.Context) {
	id, okID := searchID(c)
	if !okID {
		return
	}

	s, err := h.searchSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrSearchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "saved search not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, s)
}

// UpdateSearch handles PUT /searches/:id.
func (h *Handlers) UpdateSearch(c *gin.Context) {
	id, okID := searchID(c)
	if !okID {
		return
	}

	var req SavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.searchSvc.Update(c.Request.Context(), userID(c), id, req.toInput())
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrInvalidPortal), errors.Is(err, services.ErrInvalidFrequency):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrSearchNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "saved search not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// DeleteSearch handles DELETE /searches/:id.
func (h *Handlers) DeleteSearch(c *gin.Context) {
	id, okID := searchID(c)
	if !okID {
		return
	}

	if err := h.searchSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, services.ErrSearchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "saved search not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// searchID validates the :id path param; on failure it writes the error
// response and returns ok=false.
func searchID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "search id must be a UUID")
		return "", false
	}
	return id, true
}
