// Package services defines the business logic for planning watches,
// saved searches, listings, and webhook ingestion. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrUnknownBorough is returned when a query resolves to no known
	// borough. User-correctable; surfaced immediately at the boundary,
	// before any watch is created.
	ErrUnknownBorough = errors.New("could not determine a supported borough from that query")

	// ErrUnsupportedBorough is returned when the query resolves to a
	// borough whose register cannot be watched (currently anything
	// other than Ealing).
	ErrUnsupportedBorough = errors.New("alerts are not supported for this borough")

	// ErrWatchNotFound indicates the requested watch does not exist.
	ErrWatchNotFound = errors.New("watch not found")

	// ErrSearchNotFound indicates the requested saved search does not
	// exist or is not accessible to the current user.
	ErrSearchNotFound = errors.New("saved search not found")

	// ErrListingNotFound indicates the requested listing does not exist.
	ErrListingNotFound = errors.New("listing not found")

	// ErrInvalidPortal is returned when a portal value is outside the
	// supported set.
	ErrInvalidPortal = errors.New("portal must be rightmove or zoopla")

	// ErrInvalidFrequency is returned when an alert frequency is outside
	// the supported set.
	ErrInvalidFrequency = errors.New("alert frequency must be instant, daily or off")

	// ErrEmptyQuery is returned when a watch request carries no query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmptyEmail is returned when a watch request carries no
	// recipient address.
	ErrEmptyEmail = errors.New("email is empty")
)
