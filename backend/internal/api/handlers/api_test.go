package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/collectors/daft"
	"github.com/ps-vitor/daft-analyzer/backend/internal/services"
)

type fakeAnalyzer struct {
	report  *services.Report
	listing *domain.Listing
	err     error
	filter  domain.SearchFilter
	url     string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, filter domain.SearchFilter) (*services.Report, error) {
	f.filter = filter
	return f.report, f.err
}

func (f *fakeAnalyzer) Extract(ctx context.Context, pageURL string) (*domain.Listing, error) {
	f.url = pageURL
	return f.listing, f.err
}

func (f *fakeAnalyzer) SearchURL(filter domain.SearchFilter) string {
	f.filter = filter
	return "https://www.daft.ie/property-for-sale/" + strings.ToLower(filter.Location)
}

func newServer(t *testing.T, fa *fakeAnalyzer) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(NewAPIHandler(fa, nil)))
	t.Cleanup(server.Close)
	return server
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyze(t *testing.T) {
	l := domain.NewListing("https://www.daft.ie/for-sale/x/1")
	l.Tags = []string{"Tag: Standard Listing"}
	fa := &fakeAnalyzer{report: &services.Report{
		Message:   "Analysis complete! Found 1 listing(s) across 1 page(s).",
		SearchURL: "https://www.daft.ie/property-for-sale/wexford",
		Results:   []*domain.Listing{l},
		TagCounts: map[string]int{"Tag: Standard Listing": 1},
	}}
	server := newServer(t, fa)

	resp, err := http.Post(server.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"location":"Wexford","minPrice":"100000","maxPrice":500000,"email":"me@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message   string            `json:"message"`
		SearchURL string            `json:"search_url"`
		Results   []*domain.Listing `json:"results"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "https://www.daft.ie/property-for-sale/wexford", body.SearchURL)
	require.Len(t, body.Results, 1)
	assert.Equal(t, []string{"Tag: Standard Listing"}, body.Results[0].Tags)
	assert.Contains(t, body.Message, "Email notifications are not enabled")

	assert.Equal(t, "Wexford", fa.filter.Location)
	assert.Equal(t, domain.Int(100000), fa.filter.MinPrice)
	assert.Equal(t, domain.Int(500000), fa.filter.MaxPrice)
}

func TestAnalyzeBadRequest(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{})

	for _, body := range []string{`{not json`, `{"minPrice":"cheap"}`, `{"minPrice":10,"maxPrice":5}`} {
		resp, err := http.Post(server.URL+"/api/analyze", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		var e map[string]string
		decode(t, resp, &e)
		assert.NotEmpty(t, e["error"])
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{err: errors.New("search page 1: unexpected status 503")})

	resp, err := http.Post(server.URL+"/api/analyze", "application/json", strings.NewReader(`{"location":"Cork"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var e map[string]string
	decode(t, resp, &e)
	assert.Contains(t, e["error"], "503")
}

func TestAnalyzeRequiresPost(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{})

	resp, err := http.Get(server.URL + "/api/analyze")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSearchURL(t *testing.T) {
	fa := &fakeAnalyzer{}
	server := newServer(t, fa)

	resp, err := http.Get(server.URL + "/api/search-url?location=Mayo&maxBeds=3")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "https://www.daft.ie/property-for-sale/mayo", body["search_url"])
	assert.Equal(t, domain.Int(3), fa.filter.MaxBeds)

	resp, err = http.Get(server.URL + "/api/search-url?maxBeds=lots")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListing(t *testing.T) {
	l := domain.NewListing("https://www.daft.ie/for-sale/x/1")
	l.Title = "Cottage"
	fa := &fakeAnalyzer{listing: l}
	server := newServer(t, fa)

	resp, err := http.Get(server.URL + "/api/listing?url=" + url.QueryEscape("https://www.daft.ie/for-sale/x/1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Listing
	decode(t, resp, &got)
	assert.Equal(t, "Cottage", got.Title)
	assert.Equal(t, "https://www.daft.ie/for-sale/x/1", fa.url)
}

func TestListingErrors(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{err: errors.New("scrape listing: unexpected status 404")})

	for _, q := range []string{"", "?url=", "?url=" + url.QueryEscape("/for-sale/x/1"), "?url=" + url.QueryEscape("ftp://daft.ie/x")} {
		resp, err := http.Get(server.URL + "/api/listing" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}

	resp, err := http.Get(server.URL + "/api/listing?url=" + url.QueryEscape("https://www.daft.ie/for-sale/x/1"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListingOnAnotherSiteIsBadRequest(t *testing.T) {
	err := fmt.Errorf("scrape listing https://example.com/x: %w", daft.ErrForeignURL)
	server := newServer(t, &fakeAnalyzer{err: err})

	resp, err := http.Get(server.URL + "/api/listing?url=" + url.QueryEscape("https://example.com/x"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e map[string]string
	decode(t, resp, &e)
	assert.Contains(t, e["error"], "example.com")
}

func TestWrongMethodIsNotAllowed(t *testing.T) {
	server := newServer(t, &fakeAnalyzer{})

	for _, path := range []string{"/api/search-url", "/api/listing"} {
		resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
}
