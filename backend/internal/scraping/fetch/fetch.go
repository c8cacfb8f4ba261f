// Package fetch retrieves pages from the origin site and parses them into
// goquery documents.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	EngineColly = "colly"
	EngineHTTP  = "http"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Fetcher fetches one page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// BrowserHeaders is sent with every request so the origin sees an ordinary
// browser. Accept-Encoding is left to the transport so bodies are decoded
// transparently.
func BrowserHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// New builds the fetcher for engine. Unknown engines are an error.
func New(engine string, timeout time.Duration, userAgent string, allowedDomains ...string) (Fetcher, error) {
	switch engine {
	case "", EngineColly:
		return NewCollyFetcher(timeout, userAgent, allowedDomains...), nil
	case EngineHTTP:
		return NewHTTPFetcher(timeout, userAgent), nil
	default:
		return nil, fmt.Errorf("unknown fetch engine %q", engine)
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}
