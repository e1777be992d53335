package match

import (
	"testing"

	"github.com/bridgepark/go-alerts-backend/internal/domain"
)

func intp(v int) *int { return &v }

func TestOpenCriteriaMatchesEverything(t *testing.T) {
	var c Criteria
	if !c.IsOpen() {
		t.Fatalf("zero criteria must be open")
	}
	listings := []*domain.Listing{
		{},
		{Title: "Anything", Price: intp(1_000_000)},
		{Bedrooms: intp(0), Bathrooms: intp(0)},
	}
	for i, l := range listings {
		if !c.Listing(l) {
			t.Fatalf("open criteria rejected listing %d: %+v", i, l)
		}
	}
}

func TestNumericBounds_OpenFilterSemantics(t *testing.T) {
	cases := []struct {
		name    string
		c       Criteria
		l       domain.Listing
		matches bool
	}{
		{"beds below min", Criteria{BedsMin: intp(3)}, domain.Listing{Bedrooms: intp(2)}, false},
		{"beds at min", Criteria{BedsMin: intp(3)}, domain.Listing{Bedrooms: intp(3)}, true},
		{"beds unknown never excludes", Criteria{BedsMin: intp(3)}, domain.Listing{}, true},
		{"baths below min", Criteria{BathsMin: intp(2)}, domain.Listing{Bathrooms: intp(1)}, false},
		{"price above max", Criteria{PriceMax: intp(500_000)}, domain.Listing{Price: intp(500_001)}, false},
		{"price at max", Criteria{PriceMax: intp(500_000)}, domain.Listing{Price: intp(500_000)}, true},
		{"price unknown never excludes", Criteria{PriceMax: intp(500_000)}, domain.Listing{}, true},
		{"price below min", Criteria{PriceMin: intp(200_000)}, domain.Listing{Price: intp(150_000)}, false},
		{"all bounds satisfied", Criteria{BedsMin: intp(2), BathsMin: intp(1), PriceMin: intp(100), PriceMax: intp(200)},
			domain.Listing{Bedrooms: intp(3), Bathrooms: intp(2), Price: intp(150)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Listing(&tc.l); got != tc.matches {
				t.Fatalf("match = %v; want %v", got, tc.matches)
			}
		})
	}
}

func TestKeywords_CaseFoldedSubstring(t *testing.T) {
	l := &domain.Listing{
		Title:   "Stunning VICTORIAN terrace with Garden",
		Address: "12 Elm Road, W5",
	}

	if !(Criteria{Keywords: []string{"victorian", "garden"}}).Listing(l) {
		t.Fatalf("case-folded keywords should match")
	}
	if (Criteria{Keywords: []string{"garage"}}).Listing(l) {
		t.Fatalf("absent keyword must exclude")
	}
	// One missing keyword fails the whole conjunction.
	if (Criteria{Keywords: []string{"garden", "garage"}}).Listing(l) {
		t.Fatalf("all keywords must be present")
	}
	// Keywords can span the address too.
	if !(Criteria{Keywords: []string{"elm road"}}).Listing(l) {
		t.Fatalf("keywords should search the address")
	}
	// Blank keywords are ignored.
	if !(Criteria{Keywords: []string{"  ", ""}}).Listing(l) {
		t.Fatalf("blank keywords must not exclude")
	}
}

func TestParseCriteria_RoundTripAndEmpty(t *testing.T) {
	c, err := ParseCriteria("")
	if err != nil || !c.IsOpen() {
		t.Fatalf("empty document: (%+v, %v)", c, err)
	}

	in := Criteria{BedsMin: intp(2), PriceMax: intp(450_000), Keywords: []string{"garden"}, Postcode: "W5"}
	raw, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := ParseCriteria(raw)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if *out.BedsMin != 2 || *out.PriceMax != 450_000 || len(out.Keywords) != 1 || out.Postcode != "W5" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.BathsMin != nil || out.PriceMin != nil {
		t.Fatalf("absent bounds must stay nil: %+v", out)
	}
}

func TestParseCriteria_Invalid(t *testing.T) {
	if _, err := ParseCriteria("{not json"); err == nil {
		t.Fatalf("expected parse error")
	}
}
