// Package handlers provides HTTP handler implementations for the public API.
//
// This file wires the handler set: the Handlers struct groups all endpoint
// methods and their service dependencies, plus the shared helpers for user
// identity and pagination.
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bridgepark/go-alerts-backend/internal/utils"
)

// Handlers groups HTTP endpoints for watches, saved searches, listings,
// and webhook ingestion. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	watchSvc   WatchService
	searchSvc  SearchService
	listingSvc ListingService
	ingestSvc  IngestService

	// db backs the best-effort ETag pre-checks on list endpoints.
	db *gorm.DB
	// inboundSecret guards the inbound email webhook. Empty disables it.
	inboundSecret string
}

// New constructs a Handlers instance bound to the given services.
func New(watchSvc WatchService, searchSvc SearchService, listingSvc ListingService, ingestSvc IngestService, db *gorm.DB, inboundSecret string) *Handlers {
	return &Handlers{
		watchSvc:      watchSvc,
		searchSvc:     searchSvc,
		listingSvc:    listingSvc,
		ingestSvc:     ingestSvc,
		db:            db,
		inboundSecret: inboundSecret,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
