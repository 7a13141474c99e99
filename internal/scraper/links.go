package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Links fetches a listing page and returns the absolute URLs of the links
// whose href contains substr, sorted and de-duplicated. A missing listing
// page yields no links.
func (s *Scraper) Links(ctx context.Context, listing, substr string) ([]string, error) {
	doc, err := s.Fetch(ctx, listing)
	if err != nil {
		return nil, err
	}
	if doc.Missing {
		return nil, nil
	}
	return ExtractLinks(doc.Body, listing, substr)
}

// ExtractLinks resolves matching anchors of an HTML page against its location
func ExtractLinks(body []byte, listing, substr string) ([]string, error) {
	base, err := url.Parse(listing)
	if err != nil {
		return nil, fmt.Errorf("parsing listing URL: %w", err)
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	page.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !strings.Contains(href, substr) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})

	sort.Strings(links)
	return links, nil
}
