// backend/internal/domain/property.go
package domain

// Listing is one scraped property page. The JSON layout is what the front end
// consumes, key order included.
type Listing struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Description  string   `json:"description"`
	BER          string   `json:"ber"`
	Features     []string `json:"features"`
	PropertyType string   `json:"property_type"`
	Tags         []string `json:"analysis_tags"`
}

// NewListing returns an empty listing for url with non-nil slices.
func NewListing(url string) *Listing {
	return &Listing{
		URL:      url,
		Features: []string{},
		Tags:     []string{},
	}
}

// HasTag reports whether tag is already attached.
func (l *Listing) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag attaches tag once, keeping insertion order.
func (l *Listing) AddTag(tag string) {
	if l.HasTag(tag) {
		return
	}
	l.Tags = append(l.Tags, tag)
}
