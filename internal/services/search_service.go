// Package services – SearchService
//
// This file implements the SearchService, which manages saved property
// searches. It validates portal and frequency values, normalizes
// criteria (empty values are dropped so they impose no constraint), and
// coordinates repository operations for CRUD with ownership enforcement.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/match"
	"github.com/bridgepark/go-alerts-backend/internal/repo"
)

// SavedSearchInput carries the user-submitted fields of a saved search.
// Numeric pointers follow criteria semantics: nil means "no bound".
type SavedSearchInput struct {
	Name            string
	Portal          string
	PortalSearchURL string
	AlertFrequency  string
	Email           string
	BedsMin         *int
	BathsMin        *int
	PriceMin        *int
	PriceMax        *int
	Keywords        []string
	Postcode        string
}

// SearchService provides saved-search operations.
type SearchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewSearchService constructs a SearchService.
func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{DB: db}
}

// Create validates and persists a saved search for userID.
func (s *SearchService) Create(ctx context.Context, userID string, in SavedSearchInput) (*domain.SavedSearch, error) {
	if err := validateSearchInput(&in); err != nil {
		return nil, err
	}

	criteria, err := buildCriteria(in).Encode()
	if err != nil {
		return nil, err
	}

	return repo.CreateSavedSearch(ctx, s.DB, &domain.SavedSearch{
		UserID:          userID,
		Name:            in.Name,
		Portal:          in.Portal,
		Criteria:        criteria,
		PortalSearchURL: in.PortalSearchURL,
		AlertFrequency:  in.AlertFrequency,
		Email:           strings.TrimSpace(in.Email),
	})
}

// List returns the user's saved searches, newest first.
func (s *SearchService) List(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	return repo.ListSavedSearches(ctx, s.DB, userID)
}

// Get fetches one saved search, enforcing ownership.
func (s *SearchService) Get(ctx context.Context, userID, id string) (*domain.SavedSearch, error) {
	sr, err := repo.GetSavedSearch(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}
	return sr, nil
}

// Update overwrites a saved search's fields and criteria, enforcing
// ownership.
func (s *SearchService) Update(ctx context.Context, userID, id string, in SavedSearchInput) error {
	if err := validateSearchInput(&in); err != nil {
		return err
	}
	criteria, err := buildCriteria(in).Encode()
	if err != nil {
		return err
	}

	err = repo.UpdateSavedSearch(ctx, s.DB, id, userID, map[string]any{
		"name":              in.Name,
		"portal":            in.Portal,
		"criteria":          criteria,
		"portal_search_url": in.PortalSearchURL,
		"alert_frequency":   in.AlertFrequency,
		"email":             strings.TrimSpace(in.Email),
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSearchNotFound
	}
	return err
}

// Delete removes a saved search, enforcing ownership.
func (s *SearchService) Delete(ctx context.Context, userID, id string) error {
	err := repo.DeleteSavedSearch(ctx, s.DB, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSearchNotFound
	}
	return err
}

// validateSearchInput normalizes and validates user input in place.
func validateSearchInput(in *SavedSearchInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		in.Name = "Untitled search"
	}

	switch in.Portal {
	case domain.PortalRightmove, domain.PortalZoopla:
	default:
		return ErrInvalidPortal
	}

	if in.AlertFrequency == "" {
		in.AlertFrequency = domain.FrequencyInstant
	}
	switch in.AlertFrequency {
	case domain.FrequencyInstant, domain.FrequencyDaily, domain.FrequencyOff:
	default:
		return ErrInvalidFrequency
	}
	return nil
}

// buildCriteria maps input to the criteria document, dropping empty
// keywords so absent values impose no constraint.
func buildCriteria(in SavedSearchInput) match.Criteria {
	var kws []string
	for _, kw := range in.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	return match.Criteria{
		BedsMin:  in.BedsMin,
		BathsMin: in.BathsMin,
		PriceMin: in.PriceMin,
		PriceMax: in.PriceMax,
		Keywords: kws,
		Postcode: strings.TrimSpace(in.Postcode),
	}
}
