// backend/internal/api/models/analyze.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
)

// ErrInvalidRequest is wrapped by every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// OptionalInt is a non-negative number sent either as a JSON number or as a
// numeric string. null, "" and a missing field all mean absent.
type OptionalInt struct {
	Value int
	Set   bool
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*o = OptionalInt{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseOptionalInt(s)
		if err != nil {
			return err
		}
		*o = v
		return nil
	}
	v, err := ParseOptionalInt(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// Ptr returns nil when the value is absent.
func (o OptionalInt) Ptr() *int {
	if !o.Set {
		return nil
	}
	return domain.Int(o.Value)
}

// ParseOptionalInt parses s as a whole non-negative number. Blank is absent.
func ParseOptionalInt(s string) (OptionalInt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionalInt{}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return OptionalInt{}, fmt.Errorf("%w: %q is not a whole non-negative number", ErrInvalidRequest, s)
	}
	return OptionalInt{Value: n, Set: true}, nil
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Location     string      `json:"location"`
	Keywords     string      `json:"keywords"`
	PropertyType string      `json:"propertyType"`
	MinPrice     OptionalInt `json:"minPrice"`
	MaxPrice     OptionalInt `json:"maxPrice"`
	MinBeds      OptionalInt `json:"minBeds"`
	MaxBeds      OptionalInt `json:"maxBeds"`
	MaxPages     OptionalInt `json:"maxPages"`
	// Email is accepted for compatibility with the web form; nothing is sent.
	Email string `json:"email,omitempty"`
}

// ToFilter validates the request and converts it to a search filter.
func (r AnalyzeRequest) ToFilter() (domain.SearchFilter, error) {
	if err := checkRange("price", r.MinPrice, r.MaxPrice); err != nil {
		return domain.SearchFilter{}, err
	}
	if err := checkRange("beds", r.MinBeds, r.MaxBeds); err != nil {
		return domain.SearchFilter{}, err
	}

	f := domain.SearchFilter{
		Location:     strings.TrimSpace(r.Location),
		Keywords:     strings.TrimSpace(r.Keywords),
		PropertyType: strings.TrimSpace(r.PropertyType),
		MinPrice:     r.MinPrice.Ptr(),
		MaxPrice:     r.MaxPrice.Ptr(),
		MinBeds:      r.MinBeds.Ptr(),
		MaxBeds:      r.MaxBeds.Ptr(),
	}
	if r.MaxPages.Set {
		if r.MaxPages.Value < 1 {
			return domain.SearchFilter{}, fmt.Errorf("%w: maxPages must be at least 1", ErrInvalidRequest)
		}
		f.MaxPages = r.MaxPages.Value
	}
	if f.Location == "" {
		f.Location = domain.NationwideLocation
	}
	return f, nil
}

// FilterFromQuery reads the AnalyzeRequest fields from URL query parameters.
func FilterFromQuery(q url.Values) (domain.SearchFilter, error) {
	r := AnalyzeRequest{
		Location:     q.Get("location"),
		Keywords:     q.Get("keywords"),
		PropertyType: q.Get("propertyType"),
	}
	fields := []struct {
		name string
		dst  *OptionalInt
	}{
		{"minPrice", &r.MinPrice},
		{"maxPrice", &r.MaxPrice},
		{"minBeds", &r.MinBeds},
		{"maxBeds", &r.MaxBeds},
		{"maxPages", &r.MaxPages},
	}
	for _, f := range fields {
		v, err := ParseOptionalInt(q.Get(f.name))
		if err != nil {
			return domain.SearchFilter{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return r.ToFilter()
}

func checkRange(name string, min, max OptionalInt) error {
	if min.Set && max.Set && min.Value > max.Value {
		return fmt.Errorf("%w: min %s %d is above max %s %d", ErrInvalidRequest, name, min.Value, name, max.Value)
	}
	return nil
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
