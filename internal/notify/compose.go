// Package notify — message composition
//
// Alert bodies are plain text: one block per item (title / address /
// canonical URL) separated by blank lines, with the original query in
// the subject line.
package notify

import (
	"fmt"
	"strings"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
	"github.com/bridgepark/go-alerts-backend/internal/sources"
)

// WatchAlertSubject builds the subject line for a planning alert.
func WatchAlertSubject(query string) string {
	return fmt.Sprintf("New planning application(s) for %s", query)
}

// WatchAlertBody enumerates the newly observed applications for one
// watch, one block per item.
func WatchAlertBody(query string, items []sources.ResultItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following new planning applications were found for %s:\n\n", query)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it.Title)
		fmt.Fprintf(&b, "  %s\n", it.Address)
		fmt.Fprintf(&b, "  %s\n\n", it.URL)
	}
	return b.String()
}

// WatchConfirmationSubject is the subject of the set-up confirmation.
func WatchConfirmationSubject() string { return "Planning alert set up" }

// WatchConfirmationBody confirms a newly created watch.
func WatchConfirmationBody(query, boroughLabel string) string {
	return fmt.Sprintf("A planning alert has been set up for '%s' (%s).\n", query, boroughLabel)
}

// ListingMatchSubject builds the subject for an instant saved-search hit.
func ListingMatchSubject(searchName string) string {
	return fmt.Sprintf("New property match: %s", searchName)
}

// ListingMatchBody describes one matched listing.
func ListingMatchBody(l *domain.Listing) string {
	var b strings.Builder
	b.WriteString("New listing matched:\n\n")
	if l.Title != "" {
		fmt.Fprintf(&b, "- %s\n", l.Title)
	}
	if l.Address != "" {
		fmt.Fprintf(&b, "  %s\n", l.Address)
	}
	fmt.Fprintf(&b, "  %s\n", l.CanonicalURL)
	return b.String()
}
