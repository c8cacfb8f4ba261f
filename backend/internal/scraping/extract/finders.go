package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Clean trims s and collapses internal whitespace runs to one space.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text finds the first element matching selector with non-empty text.
func Text(selector string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		return firstText(doc.Find(selector))
	}
}

// TagClass finds the first tag element whose class attribute matches re.
func TagClass(tag string, re *regexp.Regexp) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		return firstText(withClass(doc.Find(tag), re))
	}
}

// Lines returns the text nodes of the first match, trimmed and joined by
// newlines, so paragraph breaks survive.
func Lines(selector string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		lines := textLines(sel.Nodes[0])
		if len(lines) == 0 {
			return "", false
		}
		return strings.Join(lines, "\n"), true
	}
}

// Attr returns the trimmed attribute of the first match that carries it.
func Attr(selector, attr string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		var value string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				value = strings.TrimSpace(v)
				return false
			}
			return true
		})
		return value, value != ""
	}
}

// SiblingOfLabel finds a text node matching label and returns the first line
// of the next element after it. When the label is the only content of its
// element, the element's next sibling is used instead.
func SiblingOfLabel(label *regexp.Regexp) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		for _, root := range doc.Nodes {
			if v, ok := siblingOfLabel(root, label); ok {
				return v, true
			}
		}
		return "", false
	}
}

func siblingOfLabel(root *html.Node, label *regexp.Regexp) (string, bool) {
	var (
		value string
		found bool
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.TextNode && label.MatchString(n.Data) {
			sib := nextElement(n)
			if sib == nil && n.Parent != nil {
				sib = nextElement(n.Parent)
			}
			if sib != nil {
				if lines := textLines(sib); len(lines) > 0 {
					first, _, _ := strings.Cut(lines[0], "\n")
					value, found = strings.TrimSpace(first), true
				}
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return value, found
}

// PageMatch runs re over the page text and returns the first capture group,
// or the whole match when re has no groups.
func PageMatch(re *regexp.Regexp) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		m := re.FindStringSubmatch(doc.Text())
		if m == nil {
			return "", false
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = Clean(v)
		return v, v != ""
	}
}

// ListItems collects the items of the first container matching selector.
func ListItems(container, item string) func(*goquery.Document) ([]string, bool) {
	return func(doc *goquery.Document) ([]string, bool) {
		return items(doc.Find(container).First(), item)
	}
}

// ClassListItems is ListItems for a container found by class pattern.
func ClassListItems(re *regexp.Regexp, item string) func(*goquery.Document) ([]string, bool) {
	return func(doc *goquery.Document) ([]string, bool) {
		return items(withClass(doc.Find("[class]"), re).First(), item)
	}
}

// Select matches selector and succeeds when at least one element matched.
func Select(selector string) func(*goquery.Document) (*goquery.Selection, bool) {
	return func(doc *goquery.Document) (*goquery.Selection, bool) {
		sel := doc.Find(selector)
		return sel, sel.Length() > 0
	}
}

// SelectTagClass matches tag elements whose class attribute matches re.
func SelectTagClass(tag string, re *regexp.Regexp) func(*goquery.Document) (*goquery.Selection, bool) {
	return func(doc *goquery.Document) (*goquery.Selection, bool) {
		sel := withClass(doc.Find(tag), re)
		return sel, sel.Length() > 0
	}
}

func items(container *goquery.Selection, item string) ([]string, bool) {
	if container.Length() == 0 {
		return nil, false
	}
	var out []string
	container.Find(item).Each(func(_ int, s *goquery.Selection) {
		if t := Clean(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out, len(out) > 0
}

// withClass keeps elements where any single class token, or the whole class
// attribute, matches re.
func withClass(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		if !ok {
			return false
		}
		for _, token := range strings.Fields(class) {
			if re.MatchString(token) {
				return true
			}
		}
		return re.MatchString(class)
	})
}

func firstText(sel *goquery.Selection) (string, bool) {
	var value string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value = Clean(s.Text())
		return value == ""
	})
	return value, value != ""
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func textLines(n *html.Node) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return lines
}
