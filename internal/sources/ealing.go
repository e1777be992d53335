// Package sources — Ealing adapter
//
// Scrapes the Ealing public-access planning register. The site serves a
// plain HTML result list (li.searchresult) with a "next" anchor for
// pagination, and keys sessions off cookies issued on the first request.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ealingBase is the production public-access host.
const ealingBase = "https://pam.ealing.gov.uk"

const ealingUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0 Safari/537.36"

// Ealing fetches planning applications from the Ealing register.
type Ealing struct {
	client *http.Client
	base   string
}

// NewEaling returns an Ealing source using client for all requests.
// baseURL overrides the production host; pass "" outside tests.
func NewEaling(client *http.Client, baseURL string) *Ealing {
	if baseURL == "" {
		baseURL = ealingBase
	}
	return &Ealing{client: client, base: baseURL}
}

// Code implements Source.
func (e *Ealing) Code() string { return "ealing" }

// Label implements Source.
func (e *Ealing) Label() string { return "London Borough of Ealing" }

// Fetch runs a simple search for query and walks result pages until no
// "next" link remains or maxPages is reached. The page bound protects
// against adversarial or broken pagination.
//
// Items whose anchor has no extractable href are skipped silently; a
// malformed row is not a fetch failure. Any network error or non-200
// status wraps ErrUnavailable.
func (e *Ealing) Fetch(ctx context.Context, query string, maxPages int) ([]ResultItem, error) {
	if maxPages <= 0 {
		maxPages = 10
	}

	// Fresh cookie jar per fetch: the register issues a session cookie
	// on the first response and expects it back on pagination requests.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %v", ErrUnavailable, err)
	}
	client := *e.client
	client.Jar = jar

	firstURL := e.base + "/online-applications/simpleSearchResults.do?" + url.Values{
		"action":                            {"firstPage"},
		"searchType":                        {"Application"},
		"searchCriteria.caseStatus":         {""},
		"searchCriteria.simpleSearchString": {query},
		"searchCriteria.simpleSearch":       {"true"},
	}.Encode()

	var items []ResultItem
	currentURL := firstURL

	for page := 0; page < maxPages && currentURL != ""; page++ {
		doc, err := e.get(ctx, &client, currentURL)
		if err != nil {
			return nil, err
		}

		pageItems, next := e.parsePage(doc)
		items = append(items, pageItems...)

		currentURL = ""
		if next != "" {
			currentURL = e.absolute(next)
		}
	}

	return items, nil
}

// get issues one GET and parses the body. Non-200 responses and
// transport errors both classify as ErrUnavailable.
func (e *Ealing) get(ctx context.Context, client *http.Client, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", ealingUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ealing returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse body: %v", ErrUnavailable, err)
	}
	return doc, nil
}

// parsePage extracts the result rows and the href of the "next" link
// (empty when the last page has been reached).
func (e *Ealing) parsePage(doc *goquery.Document) ([]ResultItem, string) {
	var items []ResultItem

	doc.Find("li.searchresult").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			// No identity key, not a usable row.
			return
		}
		items = append(items, ResultItem{
			Title:   strings.TrimSpace(a.Text()),
			Address: strings.TrimSpace(li.Find(".address").First().Text()),
			URL:     e.absolute(href),
			Source:  e.Code(),
		})
	})

	next, _ := doc.Find("a.next").First().Attr("href")
	return items, strings.TrimSpace(next)
}

// absolute resolves href against the register base, mirroring urljoin.
func (e *Ealing) absolute(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(e.base)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
