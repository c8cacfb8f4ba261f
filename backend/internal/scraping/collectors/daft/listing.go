// backend/internal/scraping/collectors/daft/listing.go
package daft

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/extract"
)

// ErrForeignURL is returned for listing URLs outside the configured site.
var ErrForeignURL = errors.New("not a listing on the configured site")

// Report records which extraction tier produced each field of a listing.
type Report []extract.Outcome

// Fallbacks lists the fields that did not come from their primary selector.
func (r Report) Fallbacks() []string {
	var out []string
	for _, o := range r {
		if o.Status != extract.Primary {
			out = append(out, fmt.Sprintf("%s=%s", o.Field, o.Status))
		}
	}
	return out
}

// Outcome returns the outcome for field.
func (r Report) Outcome(field string) (extract.Outcome, bool) {
	for _, o := range r {
		if o.Field == field {
			return o, true
		}
	}
	return extract.Outcome{}, false
}

// ParseListing pulls every field out of a listing page. Fields are
// independent: a missing one stays empty and never fails the page.
func ParseListing(doc *goquery.Document, pageURL string) (*domain.Listing, Report) {
	l := domain.NewListing(pageURL)
	report := make(Report, 0, 6)

	var o extract.Outcome
	l.Title, o = extract.Run(titleStrategy, doc)
	report = append(report, o)
	l.Price, o = extract.Run(priceStrategy, doc)
	report = append(report, o)
	l.Description, o = extract.Run(descriptionStrategy, doc)
	report = append(report, o)
	l.BER, o = extract.Run(berStrategy, doc)
	report = append(report, o)
	l.PropertyType, o = extract.Run(propertyTypeStrategy, doc)
	report = append(report, o)

	features, o := extract.Run(featuresStrategy, doc)
	report = append(report, o)
	if features != nil {
		l.Features = features
	}

	return l, report
}

// ExtractListing fetches and parses one listing page and tags it. On any
// failure the listing is dropped: the result is nil and the error says why.
func (p *DaftCollector) ExtractListing(ctx context.Context, pageURL string) (*domain.Listing, error) {
	if !p.sameSite(pageURL) {
		p.logger.Warnf("[daft] Skipping %s: not a %s page", pageURL, p.origin.Host)
		return nil, fmt.Errorf("scrape listing %s: %w", pageURL, ErrForeignURL)
	}
	if err := p.detailLimiter.Wait(ctx); err != nil {
		p.logger.Warnf("[daft] Skipping %s: %v", pageURL, err)
		return nil, fmt.Errorf("scrape listing %s: %w", pageURL, err)
	}

	p.logger.Infof("[daft] Scraping details from: %s", pageURL)
	doc, err := p.details.Fetch(ctx, pageURL)
	if err != nil {
		p.logger.Errorf("[daft] Error scraping %s: %v", pageURL, err)
		return nil, fmt.Errorf("scrape listing %s: %w", pageURL, err)
	}

	listing, report := ParseListing(doc, pageURL)
	if fb := report.Fallbacks(); len(fb) > 0 {
		p.logger.Debugf("[daft] %s fell back on %v", pageURL, fb)
	}

	listing = p.classifier.Classify(listing)
	p.logger.Infof("[daft] Successfully scraped: %s %v", truncate(listing.Title, 50), listing.Tags)
	return listing, nil
}

// sameSite accepts URLs on the origin host, with or without "www.".
func (p *DaftCollector) sameSite(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	bare := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return bare(u.Host) == bare(p.origin.Host)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
