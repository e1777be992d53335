// Package sources — borough resolution
//
// Maps free-text queries ("UB6 8JF", "249 Conway Crescent, Ealing") to a
// supported borough code. Postcode detection runs first because an
// outward-code hit is unambiguous; keyword containment is the noisy
// fallback. Coverage is extended by adding table rows, not code.
package sources

import (
	"regexp"
	"strings"
)

// postcodeRE matches a full UK postcode and captures its outward code,
// e.g. "UB6 8JF" -> "UB6", "CR0 6YL" -> "CR0". Input is upper-cased
// before matching.
var postcodeRE = regexp.MustCompile(`\b([A-Z]{1,2}\d[A-Z\d]?)\s*\d[A-Z]{2}\b`)

// outwardToBorough maps postcode outward codes to borough codes.
var outwardToBorough = map[string]string{
	// Ealing
	"UB1": "ealing",
	"UB2": "ealing",
	"UB5": "ealing",
	"UB6": "ealing",
	"W3":  "ealing",
	"W5":  "ealing",
	"W7":  "ealing",
	"W13": "ealing",
	// Croydon
	"CR0": "croydon",
	"CR2": "croydon",
	"CR4": "croydon",
	"CR7": "croydon",
	"CR8": "croydon",
}

// boroughLabels maps borough codes to display names.
var boroughLabels = map[string]string{
	"ealing":  "London Borough of Ealing",
	"croydon": "London Borough of Croydon",
}

// alertCapable lists the boroughs watches may be created for. Croydon
// resolves (so searches can explain the block) but cannot be watched.
var alertCapable = map[string]bool{
	"ealing": true,
}

// Resolve classifies free text into a borough code and label.
//
// Order: (1) extract a postcode-shaped token and look up its outward
// code; (2) fall back to case-insensitive containment of a borough
// name. ok is false when neither matches.
func Resolve(text string) (code, label string, ok bool) {
	t := strings.ToUpper(text)

	if m := postcodeRE.FindStringSubmatch(t); m != nil {
		code = outwardToBorough[m[1]]
	}

	if code == "" {
		for c := range boroughLabels {
			if strings.Contains(t, strings.ToUpper(c)) {
				code = c
				break
			}
		}
	}

	if code == "" {
		return "", "", false
	}
	return code, boroughLabels[code], true
}

// SupportsAlerts reports whether watches may target the borough.
func SupportsAlerts(code string) bool { return alertCapable[code] }

// SupportedOutwards returns a human-readable summary of covered outward
// codes per borough, for user-facing resolution errors.
func SupportedOutwards() string {
	return "Ealing (UB1, UB2, UB5, UB6, W3, W5, W7, W13) and Croydon (CR0, CR2, CR4, CR7, CR8)"
}
