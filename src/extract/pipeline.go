// Package extract turns public profile pages into structured reviewer
// profiles. A pipeline fetches the page, dispatches to a site-specific or
// generic extractor, caches results by URL, and optionally enriches the
// profile through a model backend. Extraction never returns an error to
// callers: failures degrade to an error-tagged profile.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quorumlabs/peerpanel/src/webclient"
)

const (
	// Browser-like agent; several academic sites serve bots a stub page.
	defaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	defaultFetchTimeout = 30 * time.Second
)

// FetchFunc downloads the raw bytes of a profile page.
type FetchFunc func(ctx context.Context, pageURL string) ([]byte, error)

// Pipeline is the profile extraction entry point.
type Pipeline struct {
	fetch    FetchFunc
	cache    ProfileCache
	enhancer *Enhancer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetchFunc replaces the HTTP fetcher.
func WithFetchFunc(fn FetchFunc) Option {
	return func(p *Pipeline) { p.fetch = fn }
}

// WithCache replaces the process-local cache.
func WithCache(c ProfileCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithFetchTimeout rebuilds the default fetcher with the given timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.fetch = defaultFetch(d, defaultUserAgent) }
}

// WithEnhancer enables model enrichment of extracted profiles.
func WithEnhancer(e *Enhancer) Option {
	return func(p *Pipeline) { p.enhancer = e }
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		fetch: defaultFetch(defaultFetchTimeout, defaultUserAgent),
		cache: NewMemoryCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract resolves a URL to a profile. Cached URLs skip the network and
// the model. Fetch and parse failures yield an error profile, which is
// never cached so a later attempt can succeed.
func (p *Pipeline) Extract(ctx context.Context, pageURL string) *Profile {
	if prof, ok := p.cache.Get(ctx, pageURL); ok {
		return prof
	}

	body, err := p.fetch(ctx, pageURL)
	if err != nil {
		return ErrorProfile(pageURL, fmt.Errorf("fetch %s: %w", pageURL, err))
	}
	doc, err := Parse(body)
	if err != nil {
		return ErrorProfile(pageURL, fmt.Errorf("parse %s: %w", pageURL, err))
	}

	prof := extractByHost(doc, pageURL)
	if p.enhancer != nil {
		prof = p.enhancer.Enhance(ctx, prof)
	}
	if prof.Error == "" {
		p.cache.Set(ctx, pageURL, prof)
	}
	return prof
}

// extractByHost picks the extractor from the URL itself, not response
// headers, so tests and offline fixtures behave like live pages.
func extractByHost(doc *Document, pageURL string) *Profile {
	switch {
	case strings.Contains(pageURL, "scholar.google"):
		return scholarProfile(doc, pageURL)
	case strings.Contains(pageURL, "linkedin.com"):
		return linkedinProfile(doc, pageURL)
	default:
		return genericProfile(doc, pageURL)
	}
}

func defaultFetch(timeout time.Duration, userAgent string) FetchFunc {
	client := webclient.NewDefault(timeout)
	return func(ctx context.Context, pageURL string) ([]byte, error) {
		return webclient.FetchPage(ctx, client, pageURL, userAgent)
	}
}
