// backend/internal/scraping/collectors/daft/query.go
package daft

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
)

const (
	DefaultBaseURL = "https://www.daft.ie"
	searchPrefix   = "/property-for-sale/"
	nationwidePath = searchPrefix + domain.NationwideLocation
)

// QueryBuilder turns a SearchFilter into a daft.ie search URL.
type QueryBuilder struct {
	BaseURL string
}

// BuildSearchURL builds the search URL against the public site.
func BuildSearchURL(filter domain.SearchFilter) string {
	return QueryBuilder{BaseURL: DefaultBaseURL}.Build(filter)
}

// Build is pure: equal filters give equal URLs. Parameters appear in a fixed
// order and only when set.
func (q QueryBuilder) Build(filter domain.SearchFilter) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(q.BaseURL, "/"))
	b.WriteString(searchPath(filter.Location))

	var params []string
	if kw := strings.TrimSpace(filter.Keywords); kw != "" {
		params = append(params, "keywords="+url.QueryEscape(kw))
	}
	params = appendInt(params, "salePrice_from", filter.MinPrice)
	params = appendInt(params, "salePrice_to", filter.MaxPrice)
	params = appendInt(params, "numBeds_from", filter.MinBeds)
	params = appendInt(params, "numBeds_to", filter.MaxBeds)
	if pt := strings.TrimSpace(filter.PropertyType); pt != "" {
		params = append(params, "propertyType="+url.QueryEscape(strings.ToLower(pt)))
	}

	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

// searchPath maps "Dublin, Dublin 4" to /property-for-sale/dublin/dublin-4.
func searchPath(location string) string {
	var segments []string
	for _, part := range strings.Split(strings.ToLower(location), ",") {
		words := strings.Fields(part)
		if len(words) == 0 {
			continue
		}
		segments = append(segments, url.PathEscape(strings.Join(words, "-")))
	}

	if len(segments) == 0 || (len(segments) == 1 && segments[0] == domain.NationwideLocation) {
		return nationwidePath
	}
	return searchPrefix + strings.Join(segments, "/")
}

func appendInt(params []string, name string, v *int) []string {
	if v == nil {
		return params
	}
	return append(params, name+"="+strconv.Itoa(*v))
}
