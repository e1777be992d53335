// Package sources implements the per-borough planning register adapters.
//
// Each supported borough exposes its applications through a paginated
// public-access site. A Source knows how to establish whatever session
// state the site needs, fetch one query's result pages, and normalize
// rows into ResultItems carrying a canonical absolute URL that later
// stages use as the deduplication identity key.
//
// Error semantics:
//   - ErrUnavailable: network failure or a non-success status. Transient;
//     the scheduler retries on the next cycle.
//   - ErrBlocked: the site actively denies automated access. Permanent
//     for that source; never retried, surfaced as a standing notice.
package sources

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrUnavailable indicates a transient fetch failure (network error or
// non-200 response). Callers should keep their previous baseline and
// retry on the next scheduled cycle.
var ErrUnavailable = errors.New("source unavailable")

// ErrBlocked indicates the source denies automated access. This is a
// permanent per-source condition, not a retryable failure.
var ErrBlocked = errors.New("source blocks automated access")

// ResultItem is one normalized planning application row from a result
// page. URL is the canonical absolute application URL and serves as the
// item's identity key; rows without an extractable URL are dropped by
// the adapters before they reach here.
type ResultItem struct {
	Title   string
	Address string
	URL     string
	Source  string
}

// Source is the capability interface implemented once per borough.
// Adding a borough means adding one implementation and one registry
// entry, not new branching logic.
type Source interface {
	// Code returns the stable borough identifier, e.g. "ealing".
	Code() string
	// Label returns the human-readable borough name.
	Label() string
	// Fetch returns all result items for query, following the site's
	// "next page" link up to maxPages. It must honor ctx for timeouts.
	Fetch(ctx context.Context, query string, maxPages int) ([]ResultItem, error)
}

// Registry maps borough codes to their Source implementations.
type Registry map[string]Source

// NewRegistry returns the production registry backed by the given HTTP
// client. A nil client gets a conservative default timeout so one
// unresponsive site cannot stall a poll cycle.
func NewRegistry(client *http.Client) Registry {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return Registry{
		"ealing":  NewEaling(client, ""),
		"croydon": NewCroydon(),
	}
}

// Lookup returns the Source for code, or nil if the borough is unknown.
func (r Registry) Lookup(code string) Source {
	return r[code]
}
