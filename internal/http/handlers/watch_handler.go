// Planning watch HTTP handlers.
//
// This file exposes REST endpoints for planning-watch resources:
//   - POST   /watches          (create; resolves the query to a borough)
//   - GET    /watches          (list, newest first)
//   - DELETE /watches/{id}     (deactivate; the row is kept)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
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
	"github.com/bridgepark/go-alerts-backend/internal/sources"
)

// WatchService defines watch lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WatchService interface {
	// Create resolves query to a borough and persists a watch for email.
	Create(ctx context.Context, email, query string) (*domain.PlanningWatch, error)
	// List returns all watches, newest first.
	List(ctx context.Context) ([]domain.PlanningWatch, error)
	// Deactivate clears a watch's active flag.
	Deactivate(ctx context.Context, id string) error
}

// CreateWatchRequest is the JSON payload for creating a planning watch.
type CreateWatchRequest struct {
	// Email receives the confirmation and subsequent alerts.
	Email string `json:"email" binding:"required"`
	// Query is a postcode or address fragment, e.g. "UB6 8JF".
	Query string `json:"query" binding:"required"`
}

// CreateWatch handles POST /watches.
//
// Resolution failures are user-correctable and return 422 with a message
// naming the supported coverage, so the caller can fix the query.
func (h *Handlers) CreateWatch(c *gin.Context) {
	var req CreateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and query are required")
		return
	}

	w, err := h.watchSvc.Create(c.Request.Context(), req.Email, req.Query)
	switch {
	case err == nil:
		ok(c, http.StatusCreated, w)
	case errors.Is(err, services.ErrEmptyEmail), errors.Is(err, services.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUnknownBorough):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnknownBorough,
			"could not determine a borough; covered areas: "+sources.SupportedOutwards())
	case errors.Is(err, services.ErrUnsupportedBorough):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnsupportedBorough, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// ListWatches handles GET /watches.
func (h *Handlers) ListWatches(c *gin.Context) {
	watches, err := h.watchSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"watches": watches})
}

// DeactivateWatch handles DELETE /watches/:id.
func (h *Handlers) DeactivateWatch(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "watch id must be a UUID")
		return
	}

	if err := h.watchSvc.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrWatchNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "watch not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
