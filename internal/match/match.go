// Package match implements the saved-search criteria predicate.
//
// The predicate is deliberately total and deterministic — no store or
// network access — so it can be unit-tested in isolation and applied to
// any listing-shaped value. All clauses combine with logical AND under
// open-filter semantics: a missing bound or a missing listing field
// never excludes.
package match

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

// Criteria is the declared filter of a saved search. Nil numeric bounds
// and an empty keyword set impose no constraint. It round-trips through
// the SavedSearch.Criteria JSON column.
type Criteria struct {
	BedsMin  *int     `json:"beds_min,omitempty"`
	BathsMin *int     `json:"baths_min,omitempty"`
	PriceMin *int     `json:"price_min,omitempty"`
	PriceMax *int     `json:"price_max,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Postcode string   `json:"postcode,omitempty"`
}

// ParseCriteria decodes the JSON criteria document of a saved search.
// An empty document yields the zero Criteria (matches everything).
func ParseCriteria(raw string) (Criteria, error) {
	var c Criteria
	if strings.TrimSpace(raw) == "" {
		return c, nil
	}
	err := json.Unmarshal([]byte(raw), &c)
	return c, err
}

// Encode serializes the criteria back to its JSON column form.
func (c Criteria) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsOpen reports whether the criteria constrains nothing at all.
func (c Criteria) IsOpen() bool {
	return c.BedsMin == nil && c.BathsMin == nil &&
		c.PriceMin == nil && c.PriceMax == nil &&
		len(c.Keywords) == 0
}

// Listing evaluates the criteria against a listing.
//
// Each numeric clause excludes only when both the listing field and the
// bound are present and the bound is violated. Every keyword must appear
// (case-folded) as a substring of the listing's title plus address.
func (c Criteria) Listing(l *domain.Listing) bool {
	if violatesMin(l.Bedrooms, c.BedsMin) {
		return false
	}
	if violatesMin(l.Bathrooms, c.BathsMin) {
		return false
	}
	if violatesMin(l.Price, c.PriceMin) {
		return false
	}
	if violatesMax(l.Price, c.PriceMax) {
		return false
	}

	if len(c.Keywords) > 0 {
		// Casers are stateful; build one per call rather than sharing.
		folder := cases.Fold()
		hay := folder.String(l.Title + " " + l.Address)
		for _, kw := range c.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if !strings.Contains(hay, folder.String(kw)) {
				return false
			}
		}
	}

	return true
}

// violatesMin reports whether field is present, bound is present, and
// field < bound.
func violatesMin(field, bound *int) bool {
	return field != nil && bound != nil && *field < *bound
}

// violatesMax reports whether field is present, bound is present, and
// field > bound.
func violatesMax(field, bound *int) bool {
	return field != nil && bound != nil && *field > *bound
}
