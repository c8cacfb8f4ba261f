package daft

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/daft-analyzer/backend/internal/config"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/extract"
	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/throttle"
	"github.com/ps-vitor/daft-analyzer/backend/pkg/logger"
)

const listingURL = "https://www.daft.ie/for-sale/detached-house-14-main-street-wexford/1234"

const primaryListingHTML = `<html><head><meta name="description" content="Meta blurb"></head><body>
<h1 data-testid="title-block">  14 Main Street,
   Wexford </h1>
<strong data-testid="price">€250,000</strong>
<div data-testid="description"><p>Charming cottage. Needs renovation.</p><p>Close to town.</p></div>
<span data-testid="ber-rating">C2</span>
<p data-testid="property-type">Detached House</p>
<div data-testid="features"><ul><li>Garage</li><li> Large   garden </li><li> </li></ul></div>
</body></html>`

const fallbackListingHTML = `<html><head><meta name="description" content="Sold as seen. Priced to sell."></head><body>
<h1>Old Farmhouse</h1>
<span class="TitleBlock__Price-sc-1">€95,000</span>
<div><span>BER Details</span><div>E1
BER No. 104857</div></div>
<div data-testid="property-type-label">Farm</div>
<section class="PropertyFeatures__Wrapper"><ul><li>Outbuildings</li><li>Stream</li></ul></section>
</body></html>`

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestParseListingPrimarySelectors(t *testing.T) {
	l, report := ParseListing(mustDoc(t, primaryListingHTML), listingURL)

	assert.Equal(t, listingURL, l.URL)
	assert.Equal(t, "14 Main Street, Wexford", l.Title)
	assert.Equal(t, "€250,000", l.Price)
	assert.Equal(t, "Charming cottage. Needs renovation.\nClose to town.", l.Description)
	assert.Equal(t, "C2", l.BER)
	assert.Equal(t, "Detached House", l.PropertyType)
	assert.Equal(t, []string{"Garage", "Large garden"}, l.Features)
	assert.Empty(t, l.Tags, "parsing does not tag")

	assert.Len(t, report, 6)
	assert.Empty(t, report.Fallbacks())
}

func TestParseListingFallbackSelectors(t *testing.T) {
	l, report := ParseListing(mustDoc(t, fallbackListingHTML), listingURL)

	assert.Equal(t, "Old Farmhouse", l.Title)
	assert.Equal(t, "€95,000", l.Price)
	assert.Equal(t, "Sold as seen. Priced to sell.", l.Description)
	assert.Equal(t, "E1", l.BER)
	assert.Equal(t, "Farm", l.PropertyType)
	assert.Equal(t, []string{"Outbuildings", "Stream"}, l.Features)

	tiers := map[string]int{}
	for _, o := range report {
		tiers[o.Field] = o.Tier
		assert.Equal(t, extract.Fallback, o.Status, o.Field)
	}
	assert.Equal(t, map[string]int{
		"title": 2, "price": 2, "description": 3, "ber": 2, "property_type": 2, "features": 2,
	}, tiers)
}

func TestParseListingBERFromPageText(t *testing.T) {
	l, report := ParseListing(mustDoc(t, `<html><body><p>Energy rating BER: B3 with heat pump</p></body></html>`), listingURL)
	assert.Equal(t, "B3", l.BER)

	o, ok := report.Outcome("ber")
	require.True(t, ok)
	assert.Equal(t, 3, o.Tier)
	assert.Equal(t, "ber-page-text", o.Attempt)
}

func TestParseListingBERExempt(t *testing.T) {
	l, _ := ParseListing(mustDoc(t, `<html><body><div>BER Exempt</div></body></html>`), listingURL)
	assert.Equal(t, "Exempt", l.BER)
}

func TestParseListingMissingFieldsStayEmpty(t *testing.T) {
	l, report := ParseListing(mustDoc(t, `<html><body><p>Nothing to see</p></body></html>`), listingURL)

	assert.Equal(t, listingURL, l.URL)
	assert.Empty(t, l.Title)
	assert.Empty(t, l.Price)
	assert.Empty(t, l.Description)
	assert.Empty(t, l.BER)
	assert.Empty(t, l.PropertyType)
	assert.NotNil(t, l.Features)
	assert.Empty(t, l.Features)

	for _, o := range report {
		assert.Equal(t, extract.Absent, o.Status, o.Field)
	}
	assert.Len(t, report.Fallbacks(), 6)
}

func TestParseListingIgnoresBERLikeProse(t *testing.T) {
	l, _ := ParseListing(mustDoc(t, `<html><body><p>BER: a lovely home</p></body></html>`), listingURL)
	assert.Empty(t, l.BER)
}

func TestExtractListingTagsResult(t *testing.T) {
	site := newFakeSite()
	site.pages[listingURL] = primaryListingHTML
	p := newTestCollector(t, site)

	l, err := p.ExtractListing(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tag: Fixer-Upper"}, l.Tags)
}

func TestExtractListingFailureDropsListing(t *testing.T) {
	p := newTestCollector(t, newFakeSite())

	l, err := p.ExtractListing(context.Background(), listingURL)
	assert.Nil(t, l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), listingURL)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	assert.Equal(t, "Cót...", truncate("Cóttage", 3))
}

func TestExtractListingRejectsOtherSites(t *testing.T) {
	site := newFakeSite()
	p := newTestCollector(t, site)

	for _, u := range []string{"https://example.com/for-sale/x/1", "ftp://www.daft.ie/x", "https://daft.ie.evil.com/x"} {
		_, err := p.ExtractListing(context.Background(), u)
		assert.ErrorIs(t, err, ErrForeignURL, u)
	}
	assert.Empty(t, site.calls)

	site.pages["https://daft.ie/for-sale/x/1"] = primaryListingHTML
	_, err := p.ExtractListing(context.Background(), "https://daft.ie/for-sale/x/1")
	assert.NoError(t, err)
}

func TestExtractListingLogsAndWrapsDrops(t *testing.T) {
	var buf bytes.Buffer
	site := newFakeSite()
	p, err := NewDaftCollector(config.Default().Scraping.Daft, defaultTagger(t), logger.NewWithWriter(&buf, ""),
		WithFetchers(site, site), WithLimiters(throttle.Noop, throttle.Noop))
	require.NoError(t, err)

	_, err = p.ExtractListing(context.Background(), "https://example.com/for-sale/x/1")
	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Contains(t, buf.String(), "WARN: [daft] Skipping https://example.com/for-sale/x/1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ExtractListing(ctx, listingURL)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), listingURL)
	assert.Contains(t, buf.String(), "Skipping "+listingURL)
	assert.Empty(t, site.calls)
}
