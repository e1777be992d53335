// Package sources — Croydon adapter
//
// Croydon's public-access site rejects automated clients outright, so
// this adapter exists only to classify the borough as permanently
// blocked. Subscribers are pointed at the manual search URL instead.
package sources

import "context"

// CroydonManualURL is the public-access site users must search by hand.
const CroydonManualURL = "https://publicaccess3.croydon.gov.uk/online-applications/"

// Croydon is a registered but non-fetchable source.
type Croydon struct{}

// NewCroydon returns the Croydon source.
func NewCroydon() *Croydon { return &Croydon{} }

// Code implements Source.
func (c *Croydon) Code() string { return "croydon" }

// Label implements Source.
func (c *Croydon) Label() string { return "London Borough of Croydon" }

// Fetch always returns ErrBlocked. No request is made: the block is a
// known, standing condition of the site, not something to probe per
// cycle.
func (c *Croydon) Fetch(ctx context.Context, query string, maxPages int) ([]ResultItem, error) {
	return nil, ErrBlocked
}
