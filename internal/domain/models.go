// Package domain defines the persistence models for planning watches,
// property listings, saved searches, and the match records that guard
// at-most-once alert delivery. These types are mapped with GORM and form
// the core data layer of the alerts backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Portal identifiers for the supported property portals.
const (
	PortalRightmove = "rightmove"
	PortalZoopla    = "zoopla"
)

// Alert frequencies for saved searches.
const (
	FrequencyInstant = "instant"
	FrequencyDaily   = "daily"
	FrequencyOff     = "off"
)

// PlanningWatch is a standing subscription: poll one borough's planning
// register for a query and email the subscriber about applications that
// were not seen on a previous poll.
//
// SeenURLs is the watch's baseline — the canonical application URLs
// observed on the last successful poll, stored as a JSON string array.
// The scheduler replaces it wholesale after every successful fetch, so
// expired applications silently drop out of future diffs.
type PlanningWatch struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Email       string         `json:"email"        gorm:"type:varchar(255);not null;index"`
	Query       string         `json:"query"        gorm:"type:varchar(255);not null"`
	BoroughCode string         `json:"borough_code" gorm:"type:varchar(32);not null;index"`
	Active      bool           `json:"active"       gorm:"not null;default:true;index"`
	SeenURLs    StringSet      `json:"-"            gorm:"type:text"`
	LastChecked *time.Time     `json:"last_checked,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for PlanningWatch.
func (PlanningWatch) TableName() string { return "planning_watches" }

// Listing is a property advertisement deduplicated across all subscribers
// by its canonical URL. Numeric fields are pointers: a nil value means the
// portal did not expose that attribute, which by open-filter semantics can
// never exclude the listing from a match.
type Listing struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Portal       string         `json:"portal"        gorm:"type:varchar(20);not null;index;check:portal IN ('rightmove','zoopla')"`
	CanonicalURL string         `json:"canonical_url" gorm:"type:varchar(512);not null;uniqueIndex:ux_listing_canonical_url"`
	Title        string         `json:"title"         gorm:"type:varchar(255)"`
	Address      string         `json:"address"       gorm:"type:varchar(255)"`
	Postcode     string         `json:"postcode"      gorm:"type:varchar(16)"`
	Price        *int           `json:"price,omitempty"`
	Bedrooms     *int           `json:"bedrooms,omitempty"`
	Bathrooms    *int           `json:"bathrooms,omitempty"`
	FirstSeen    time.Time      `json:"first_seen"    gorm:"not null;index"`
	LastSeen     time.Time      `json:"last_seen"     gorm:"not null"`
	RawSource    string         `json:"-"             gorm:"type:text"`
	IsActive     bool           `json:"is_active"     gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// SavedSearch is a persistent filter over property listings owned by one
// user. Criteria is a JSON document (see match.Criteria); absent or empty
// values impose no constraint.
type SavedSearch struct {
	ID              string         `json:"id"                gorm:"type:char(36);primaryKey"`
	UserID          string         `json:"user_id"           gorm:"type:varchar(64);not null;index:idx_user_searches"`
	Name            string         `json:"name"              gorm:"type:varchar(120);not null"`
	Portal          string         `json:"portal"            gorm:"type:varchar(20);not null;check:portal IN ('rightmove','zoopla')"`
	Criteria        string         `json:"criteria"          gorm:"type:text;not null;default:'{}'"`
	PortalSearchURL string         `json:"portal_search_url" gorm:"type:varchar(512)"`
	AlertFrequency  string         `json:"alert_frequency"   gorm:"type:varchar(20);not null;default:'instant';check:alert_frequency IN ('instant','daily','off')"`
	Email           string         `json:"email"             gorm:"type:varchar(255)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                 gorm:"index"`
}

// TableName returns the database table name for SavedSearch.
func (SavedSearch) TableName() string { return "saved_searches" }

// SearchMatch records that a saved search has already been notified about
// a listing. The (saved_search_id, listing_id) unique index is what makes
// alert delivery at-most-once: re-observing the listing on a later cycle
// hits the constraint and is treated as "already sent".
type SearchMatch struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	SavedSearchID string    `json:"saved_search_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_match_search_listing"`
	ListingID     string    `json:"listing_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_match_search_listing"`
	MatchedAt     time.Time `json:"matched_at"      gorm:"not null"`

	// FK associations keep match rows consistent with their pair.
	SavedSearch SavedSearch `json:"-" gorm:"foreignKey:SavedSearchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Listing     Listing     `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SearchMatch.
func (SearchMatch) TableName() string { return "search_matches" }

// ShortlistItem pins a listing to a user's shortlist. One row per
// (user, listing) pair, enforced by unique index.
type ShortlistItem struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index;uniqueIndex:ux_shortlist_user_listing"`
	ListingID string    `json:"listing_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_shortlist_user_listing"`
	Notes     string    `json:"notes"      gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShortlistItem.
func (ShortlistItem) TableName() string { return "shortlist_items" }
