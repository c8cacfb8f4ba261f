// backend/internal/services/analysis_service.go
package services

import (
	"context"
	"fmt"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/collectors/daft"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

// Searcher is what the service needs from a site collector.
type Searcher interface {
	Search(ctx context.Context, filter domain.SearchFilter) (*daft.SearchResult, error)
	ExtractListing(ctx context.Context, pageURL string) (*domain.Listing, error)
	SearchURL(filter domain.SearchFilter) string
}

// Report is the answer to one analysis request.
type Report struct {
	Message      string            `json:"message"`
	SearchURL    string            `json:"search_url"`
	Results      []*domain.Listing `json:"results"`
	Skipped      []daft.SkippedURL `json:"skipped,omitempty"`
	TagCounts    map[string]int    `json:"tag_counts"`
	PagesVisited int               `json:"pages_visited"`
	Stop         daft.StopReason   `json:"stop"`
	// Partial is set when the search ended on an error after producing results.
	Partial bool   `json:"partial"`
	Error   string `json:"error,omitempty"`
}

type AnalysisService struct {
	searcher Searcher
	maxPages int
	logger   *logger.Logger
}

// NewAnalysisService caps every search at maxPages result pages.
func NewAnalysisService(searcher Searcher, maxPages int, log *logger.Logger) *AnalysisService {
	if maxPages < 1 {
		maxPages = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AnalysisService{searcher: searcher, maxPages: maxPages, logger: log}
}

// Analyze runs one search and summarises it. A search that fails before
// producing any listing is an error; one that fails later yields a partial
// report.
func (s *AnalysisService) Analyze(ctx context.Context, filter domain.SearchFilter) (*Report, error) {
	filter = s.clamp(filter)

	res, err := s.searcher.Search(ctx, filter)
	if res == nil || (err != nil && len(res.Listings) == 0) {
		if err == nil {
			err = fmt.Errorf("search returned no result")
		}
		return nil, fmt.Errorf("analyze %q: %w", filter.Location, err)
	}

	report := &Report{
		SearchURL:    res.SearchURL,
		Results:      res.Listings,
		Skipped:      res.Skipped,
		TagCounts:    CountTags(res.Listings),
		PagesVisited: res.PagesVisited,
		Stop:         res.Stop,
	}
	if err != nil {
		s.logger.Warnf("[analysis] Search for %q ended early: %v", filter.Location, err)
		report.Partial = true
		report.Error = err.Error()
	}
	report.Message = summary(report)
	return report, nil
}

// Extract scrapes and tags a single listing page.
func (s *AnalysisService) Extract(ctx context.Context, pageURL string) (*domain.Listing, error) {
	return s.searcher.ExtractListing(ctx, pageURL)
}

// SearchURL returns the URL a search with filter would start from.
func (s *AnalysisService) SearchURL(filter domain.SearchFilter) string {
	return s.searcher.SearchURL(s.clamp(filter))
}

// MaxPages is the most result pages one request may walk.
func (s *AnalysisService) MaxPages() int {
	return s.maxPages
}

func (s *AnalysisService) clamp(filter domain.SearchFilter) domain.SearchFilter {
	if filter.MaxPages > s.maxPages {
		s.logger.Debugf("[analysis] Clamping max pages %d to %d", filter.MaxPages, s.maxPages)
		filter.MaxPages = s.maxPages
	}
	return filter
}

// CountTags counts how many listings carry each tag.
func CountTags(listings []*domain.Listing) map[string]int {
	counts := make(map[string]int)
	for _, l := range listings {
		for _, tag := range l.Tags {
			counts[tag]++
		}
	}
	return counts
}

func summary(r *Report) string {
	msg := fmt.Sprintf("Analysis complete! Found %d listing(s) across %d page(s).", len(r.Results), r.PagesVisited)
	if n := len(r.Skipped); n > 0 {
		msg += fmt.Sprintf(" %d listing(s) could not be scraped.", n)
	}
	if r.Partial {
		msg += " The search stopped early; results are partial."
	}
	return msg
}
