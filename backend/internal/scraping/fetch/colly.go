package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches pages through a colly collector. Each Fetch works on
// a clone, so callbacks never leak between calls.
type CollyFetcher struct {
	collector *colly.Collector
	headers   http.Header
}

func NewCollyFetcher(timeout time.Duration, userAgent string, allowedDomains ...string) *CollyFetcher {
	headers := BrowserHeaders(userAgent)

	opts := []colly.CollectorOption{
		colly.UserAgent(headers.Get("User-Agent")),
		// deduplication belongs to the traverser
		colly.AllowURLRevisit(),
	}
	if len(allowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(allowedDomains...))
	}

	c := colly.NewCollector(opts...)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	return &CollyFetcher{collector: c, headers: headers}
}

func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()

	var (
		body   []byte
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k := range f.headers {
			r.Headers.Set(k, f.headers.Get(k))
		}
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	c.OnError(func(r *colly.Response, e error) {
		status = r.StatusCode
	})

	if err := c.Visit(rawURL); err != nil {
		if status != 0 && !isSuccess(status) {
			return nil, &StatusError{URL: rawURL, StatusCode: status}
		}
		return nil, fmt.Errorf("request URL %v failed: %w", rawURL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &StatusError{URL: rawURL, StatusCode: status}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}
