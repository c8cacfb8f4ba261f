package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ps-vitor/daft-analyzer/backend/internal/domain"
)

// A phrase must sit between the text edges or runes that cannot be part of a
// word. Go's \b is ASCII-only, so the boundary is spelled out.
const (
	leftBoundary  = `(?:^|[^\p{L}\p{N}_])`
	rightBoundary = `(?:[^\p{L}\p{N}_]|$)`
)

type categoryMatcher struct {
	name     string
	tag      string
	patterns []*regexp.Regexp
	// lower-cased property type substrings that force this tag
	overrides []string
}

func (m categoryMatcher) matches(text, propertyType string) bool {
	for _, re := range m.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	for _, sub := range m.overrides {
		if strings.Contains(propertyType, sub) {
			return true
		}
	}
	return false
}

// Tagger classifies listings against a Taxonomy.
type Tagger struct {
	matchers   []categoryMatcher
	defaultTag string
}

// NewTagger compiles the taxonomy phrases.
func NewTagger(t *Taxonomy) (*Tagger, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	tg := &Tagger{defaultTag: t.DefaultTag}
	for _, c := range t.Categories {
		m := categoryMatcher{name: c.Name, tag: c.Tag}
		for _, p := range c.Phrases {
			re, err := phrasePattern(p)
			if err != nil {
				return nil, fmt.Errorf("%w: phrase %q: %v", ErrInvalidTaxonomy, p, err)
			}
			m.patterns = append(m.patterns, re)
		}
		for _, o := range t.Overrides {
			if o.Category == c.Name {
				m.overrides = append(m.overrides, strings.ToLower(o.PropertyTypeContains))
			}
		}
		tg.matchers = append(tg.matchers, m)
	}
	return tg, nil
}

// phrasePattern turns "fixer upper" into a boundary-anchored pattern where
// the inner space matches any whitespace run.
func phrasePattern(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(strings.ToLower(phrase))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.Compile(leftBoundary + strings.Join(words, `\s+`) + rightBoundary)
}

// Tags returns the tags earned by the given text fields.
func (tg *Tagger) Tags(title, description, propertyType string) []string {
	text := strings.ToLower(description) + " " + strings.ToLower(title)
	ptype := strings.ToLower(propertyType)

	tags := make([]string, 0, len(tg.matchers))
	for _, m := range tg.matchers {
		if m.matches(text, ptype) && !contains(tags, m.tag) {
			tags = append(tags, m.tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, tg.defaultTag)
	}
	return tags
}

// Classify replaces l's tags with the ones earned by its current fields.
// Running it twice gives the same result.
func (tg *Tagger) Classify(l *domain.Listing) *domain.Listing {
	if l == nil {
		return nil
	}
	tags := tg.Tags(l.Title, l.Description, l.PropertyType)
	l.Tags = make([]string, 0, len(tags))
	for _, tag := range tags {
		l.AddTag(tag)
	}
	return l
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
