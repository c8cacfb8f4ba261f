// backend/internal/scraping/collectors/daft/selectors.go
package daft

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/daft-analyzer/backend/internal/scraping/extract"
)

// Every selector the collector depends on lives here. daft.ie markup is not
// a contract; when it drifts, this is the file to change.

var (
	priceClassRe    = regexp.MustCompile(`(?i)price`)
	featuresClassRe = regexp.MustCompile(`(?i)features`)
	cardClassRe     = regexp.MustCompile(`Card__Content`)
	berLabelRe      = regexp.MustCompile(`(?i)BER Details`)
	berTextRe       = regexp.MustCompile(`\bBER\b[:\s]*\b([A-E][1-3]|[FG]|Exempt)\b`)
)

var titleStrategy = extract.Strategy[string]{
	Field: "title",
	Attempts: []extract.Attempt[string]{
		{Name: "title-block", Find: extract.Text(`h1[data-testid="title-block"]`)},
		{Name: "h1", Find: extract.Text("h1")},
	},
}

var priceStrategy = extract.Strategy[string]{
	Field: "price",
	Attempts: []extract.Attempt[string]{
		{Name: "price-testid", Find: extract.Text(`strong[data-testid="price"]`)},
		{Name: "price-class", Find: extract.TagClass("span", priceClassRe)},
	},
}

var descriptionStrategy = extract.Strategy[string]{
	Field: "description",
	Attempts: []extract.Attempt[string]{
		{Name: "description-testid", Find: extract.Lines(`div[data-testid="description"]`)},
		{Name: "description-testid-partial", Find: extract.Lines(`[data-testid*="description"]`)},
		{Name: "meta-description", Find: extract.Attr(`meta[name="description"]`, "content")},
	},
}

var berStrategy = extract.Strategy[string]{
	Field: "ber",
	Attempts: []extract.Attempt[string]{
		{Name: "ber-testid", Find: extract.Text(`span[data-testid="ber-rating"]`)},
		{Name: "ber-label-sibling", Find: extract.SiblingOfLabel(berLabelRe)},
		{Name: "ber-page-text", Find: extract.PageMatch(berTextRe)},
	},
}

var propertyTypeStrategy = extract.Strategy[string]{
	Field: "property_type",
	Attempts: []extract.Attempt[string]{
		{Name: "property-type-testid", Find: extract.Text(`p[data-testid="property-type"]`)},
		{Name: "property-type-testid-partial", Find: extract.Text(`[data-testid*="property-type"]`)},
	},
}

var featuresStrategy = extract.Strategy[[]string]{
	Field: "features",
	Attempts: []extract.Attempt[[]string]{
		{Name: "features-testid", Find: extract.ListItems(`div[data-testid="features"]`, "li")},
		{Name: "features-class", Find: extract.ClassListItems(featuresClassRe, "li")},
	},
}

// Search result pages.

var cardsStrategy = extract.Strategy[*goquery.Selection]{
	Field: "cards",
	Attempts: []extract.Attempt[*goquery.Selection]{
		{Name: "search-result-card", Find: extract.Select(`li[data-testid*="search-result-card_"]`)},
		{Name: "card-content-class", Find: extract.SelectTagClass("div", cardClassRe)},
	},
}

var nextPageStrategy = extract.Strategy[string]{
	Field: "next_page",
	Attempts: []extract.Attempt[string]{
		{Name: "next-button", Find: extract.Attr(`a[data-testid="next-button"][aria-label="Next page"]`, "href")},
		{Name: "li-next", Find: extract.Attr(`li.next a[href]`, "href")},
	},
}

const cardLinkSelector = "a[href]"
