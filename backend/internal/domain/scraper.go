// backend/internal/domain/scraper.go
package domain

// NationwideLocation is the location used when a filter names none.
const NationwideLocation = "ireland"

// SearchFilter carries the caller's search criteria. Nil pointers and empty
// strings mean "not set" and never reach the portal query.
type SearchFilter struct {
	Location     string
	Keywords     string
	MinPrice     *int
	MaxPrice     *int
	MaxPages     int
	PropertyType string
	MinBeds      *int
	MaxBeds      *int
}

// Pages is the effective page cap; anything below one means one.
func (f SearchFilter) Pages() int {
	if f.MaxPages < 1 {
		return 1
	}
	return f.MaxPages
}

// Int returns a pointer to v, for filling optional filter fields.
func Int(v int) *int {
	return &v
}
