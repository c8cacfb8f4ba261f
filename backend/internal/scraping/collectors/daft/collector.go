// backend/internal/scraping/collectors/daft/collector.go
package daft

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/daft-analyzer/backend/internal/config"
	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/fetch"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/throttle"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

// Classifier tags a freshly scraped listing.
type Classifier interface {
	Classify(l *domain.Listing) *domain.Listing
}

// StopReason says why a search stopped walking result pages.
type StopReason string

const (
	StopMaxPages   StopReason = "max_pages"
	StopNoNextPage StopReason = "no_next_page"
	StopNoCards    StopReason = "no_cards"
	StopPageError  StopReason = "page_error"
	StopCanceled   StopReason = "canceled"
)

// SkippedURL is a listing that was found but could not be scraped.
type SkippedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// SearchResult is everything one search produced, including partial work.
type SearchResult struct {
	SearchURL    string            `json:"search_url"`
	Listings     []*domain.Listing `json:"listings"`
	Skipped      []SkippedURL      `json:"skipped,omitempty"`
	Duplicates   int               `json:"duplicates"`
	PagesVisited int               `json:"pages_visited"`
	Stop         StopReason        `json:"stop"`
}

// DaftCollector runs searches against daft.ie. One search is strictly
// sequential; concurrent searches share nothing but the fetchers and limiters.
type DaftCollector struct {
	query  QueryBuilder
	origin *url.URL

	pages   fetch.Fetcher
	details fetch.Fetcher

	pageLimiter   throttle.Limiter
	detailLimiter throttle.Limiter

	classifier Classifier
	logger     *logger.Logger
}

// Option adjusts a DaftCollector after its config defaults are applied.
type Option func(*DaftCollector)

// WithFetchers replaces the search-page and listing-page fetchers.
func WithFetchers(pages, details fetch.Fetcher) Option {
	return func(p *DaftCollector) {
		p.pages = pages
		p.details = details
	}
}

// WithLimiters replaces the throttles applied before page and listing fetches.
func WithLimiters(pages, details throttle.Limiter) Option {
	return func(p *DaftCollector) {
		p.pageLimiter = pages
		p.detailLimiter = details
	}
}

// NewDaftCollector builds a collector from cfg. By default every request is
// preceded by the configured fixed delay.
func NewDaftCollector(cfg config.DaftConfig, classifier Classifier, log *logger.Logger, opts ...Option) (*DaftCollector, error) {
	if classifier == nil {
		return nil, errors.New("daft: classifier is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("daft: invalid base URL %q", base)
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}

	p := &DaftCollector{
		query:         QueryBuilder{BaseURL: origin.String()},
		origin:        origin,
		pageLimiter:   throttle.Delay(cfg.RateLimit.SearchDelay),
		detailLimiter: throttle.Delay(cfg.RateLimit.DetailDelay),
		classifier:    classifier,
		logger:        log,
	}
	for _, opt := range opts {
		opt(p)
	}

	hosts := siteHosts(u.Hostname())
	if p.pages == nil {
		if p.pages, err = fetch.New(cfg.Engine, cfg.Timeouts.Search, cfg.UserAgent, hosts...); err != nil {
			return nil, err
		}
	}
	if p.details == nil {
		if p.details, err = fetch.New(cfg.Engine, cfg.Timeouts.Detail, cfg.UserAgent, hosts...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// siteHosts returns host both with and without the "www." prefix.
func siteHosts(host string) []string {
	host = strings.ToLower(host)
	if bare := strings.TrimPrefix(host, "www."); bare != host {
		return []string{host, bare}
	}
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return []string{host}
	}
	return []string{host, "www." + host}
}

// SearchURL returns the first result page URL for filter.
func (p *DaftCollector) SearchURL(filter domain.SearchFilter) string {
	return p.query.Build(filter)
}

// SearchListings returns the listings of a search. On a mid-search failure
// the listings gathered so far are returned together with the error.
func (p *DaftCollector) SearchListings(ctx context.Context, filter domain.SearchFilter) ([]*domain.Listing, error) {
	res, err := p.Search(ctx, filter)
	return res.Listings, err
}

// Search walks at most filter.Pages() result pages. It always returns a
// non-nil result; the error is set when a page fetch failed or ctx ended.
func (p *DaftCollector) Search(ctx context.Context, filter domain.SearchFilter) (*SearchResult, error) {
	res := &SearchResult{
		SearchURL: p.query.Build(filter),
		Listings:  []*domain.Listing{},
	}
	p.logger.Infof("[daft] Constructed search URL: %s", res.SearchURL)

	maxPages := filter.Pages()
	seen := make(map[string]struct{})
	current := res.SearchURL

	for page := 1; ; page++ {
		if err := p.pageLimiter.Wait(ctx); err != nil {
			res.Stop = StopCanceled
			return res, err
		}

		p.logger.Infof("[daft] Scraping search results page %d from %s", page, current)
		doc, err := p.pages.Fetch(ctx, current)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.Stop = StopCanceled
				return res, ctxErr
			}
			p.logger.Errorf("[daft] Error fetching search results page %d: %v", page, err)
			res.Stop = StopPageError
			return res, fmt.Errorf("search page %d: %w", page, err)
		}
		res.PagesVisited = page

		cards := cardsStrategy.Extract(doc)
		if !cards.Found() {
			p.logger.Warnf("[daft] No listing cards found on page %d. Page structure may have changed.", page)
			res.Stop = StopNoCards
			return res, nil
		}
		p.logger.Infof("[daft] Found %d listings on page %d (%s).", cards.Value.Length(), page, cards.Attempt)

		if err := p.collect(ctx, cards.Value, seen, res); err != nil {
			res.Stop = StopCanceled
			return res, err
		}

		if page >= maxPages {
			res.Stop = StopMaxPages
			break
		}

		next := nextPageStrategy.Extract(doc)
		nextURL, ok := p.resolve(next.Value)
		if !ok {
			p.logger.Infof("[daft] No 'next page' link found or end of results.")
			res.Stop = StopNoNextPage
			break
		}
		current = nextURL
	}

	p.logger.Infof("[daft] Search finished (%s): %d listings, %d skipped, %d duplicates over %d page(s)",
		res.Stop, len(res.Listings), len(res.Skipped), res.Duplicates, res.PagesVisited)
	return res, nil
}

// collect scrapes every card of one result page that this search has not
// tried yet. Only cancellation is returned as an error.
func (p *DaftCollector) collect(ctx context.Context, cards *goquery.Selection, seen map[string]struct{}, res *SearchResult) error {
	for i := range cards.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		link, ok := p.resolve(cardLink(cards.Eq(i)))
		if !ok {
			p.logger.Debugf("[daft] Card %d has no usable link", i)
			continue
		}

		if _, dup := seen[link]; dup {
			p.logger.Infof("[daft] Skipping already processed URL: %s", link)
			res.Duplicates++
			continue
		}
		seen[link] = struct{}{}

		listing, err := p.ExtractListing(ctx, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Skipped = append(res.Skipped, SkippedURL{URL: link, Reason: err.Error()})
			continue
		}
		res.Listings = append(res.Listings, listing)
	}
	return nil
}

// cardLink prefers a link inside the card and falls back to one wrapping it.
func cardLink(card *goquery.Selection) string {
	if href, ok := card.Find(cardLinkSelector).First().Attr("href"); ok {
		return href
	}
	href, _ := card.Closest(cardLinkSelector).Attr("href")
	return href
}

// resolve makes href absolute against the site origin. Only http(s) links
// are usable; fragments are dropped so one page has one URL.
func (p *DaftCollector) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := p.origin.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
