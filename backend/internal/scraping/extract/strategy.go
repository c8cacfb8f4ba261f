// Package extract holds the ordered-fallback machinery used to pull fields out
// of pages whose markup is not under our control.
package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// Status says which kind of attempt produced a field.
type Status string

const (
	Absent   Status = "absent"
	Primary  Status = "primary"
	Fallback Status = "fallback"
)

// Attempt is one way of locating a value in a page.
type Attempt[T any] struct {
	Name string
	Find func(doc *goquery.Document) (T, bool)
}

// Strategy is an ordered list of attempts for one field; the first attempt
// that succeeds wins.
type Strategy[T any] struct {
	Field    string
	Attempts []Attempt[T]
}

// Result is the outcome of running a Strategy.
type Result[T any] struct {
	Value T
	// Tier is the 1-based position of the winning attempt, 0 when none won.
	Tier    int
	Attempt string
}

func (r Result[T]) Found() bool { return r.Tier > 0 }

func (r Result[T]) Status() Status {
	switch {
	case r.Tier == 0:
		return Absent
	case r.Tier == 1:
		return Primary
	default:
		return Fallback
	}
}

// Extract runs the attempts in order. A missing field yields the zero value.
func (s Strategy[T]) Extract(doc *goquery.Document) Result[T] {
	for i, a := range s.Attempts {
		if v, ok := a.Find(doc); ok {
			return Result[T]{Value: v, Tier: i + 1, Attempt: a.Name}
		}
	}
	return Result[T]{}
}

// Outcome is the type-erased summary of a Result, for reports and logs.
type Outcome struct {
	Field   string `json:"field"`
	Status  Status `json:"status"`
	Tier    int    `json:"tier"`
	Attempt string `json:"attempt,omitempty"`
}

func (r Result[T]) Outcome(field string) Outcome {
	return Outcome{Field: field, Status: r.Status(), Tier: r.Tier, Attempt: r.Attempt}
}

// Run extracts with s and returns the value together with its Outcome.
func Run[T any](s Strategy[T], doc *goquery.Document) (T, Outcome) {
	r := s.Extract(doc)
	return r.Value, r.Outcome(s.Field)
}
