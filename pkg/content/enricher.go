package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"
)

// DefaultContentLimit is the number of runes kept from an article body.
const DefaultContentLimit = 1500

// ErrNoContent is returned when no strategy finds article text.
var ErrNoContent = errors.New("no article content")

// PageFetcher retrieves a page body. httpclient.HTTPClient satisfies it.
type PageFetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

// ArticleCache stores extracted text per article URL.
type ArticleCache interface {
	Get(ctx context.Context, articleURL string) (string, bool, error)
	Set(ctx context.Context, articleURL, text string) error
}

// Strategy pulls article text out of a parsed page. An empty result means
// the strategy did not apply.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, raw string, pageURL *url.URL) string
}

// SelectorStrategy takes the text of the first element matching a CSS selector.
type SelectorStrategy struct {
	Selector string
}

// Name returns the selector
func (s SelectorStrategy) Name() string { return s.Selector }

// Extract returns the cleaned text of the first match, or "".
func (s SelectorStrategy) Extract(doc *goquery.Document, _ string, _ *url.URL) string {
	return SelectionText(doc.Find(s.Selector).First())
}

// ReadabilityStrategy runs Mozilla's readability algorithm over the raw page.
type ReadabilityStrategy struct{}

// Name returns "readability"
func (ReadabilityStrategy) Name() string { return "readability" }

// Extract returns readability's text content, or "" when it fails.
func (ReadabilityStrategy) Extract(_ *goquery.Document, raw string, pageURL *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return ""
	}
	return CollapseWhitespace(article.TextContent)
}

// DefaultStrategies is the ordered container lookup used for French news pages.
func DefaultStrategies() []Strategy {
	return []Strategy{
		SelectorStrategy{Selector: "article"},
		SelectorStrategy{Selector: `div[class*="content"]`},
		SelectorStrategy{Selector: "main"},
	}
}

// EnricherOptions configures an Enricher. Zero values select the defaults.
type EnricherOptions struct {
	Limit       int
	Readability bool
	Cache       ArticleCache
}

// Enricher fetches an article page and extracts a bounded plain-text body.
type Enricher struct {
	fetcher    PageFetcher
	cache      ArticleCache
	strategies []Strategy
	limit      int
	logger     zerolog.Logger
}

// NewEnricher creates an enricher over fetcher.
func NewEnricher(fetcher PageFetcher, logger zerolog.Logger, opts EnricherOptions) *Enricher {
	strategies := DefaultStrategies()
	if opts.Readability {
		strategies = append(strategies, ReadabilityStrategy{})
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultContentLimit
	}
	return &Enricher{
		fetcher:    fetcher,
		cache:      opts.Cache,
		strategies: strategies,
		limit:      limit,
		logger:     logger,
	}
}

// Enrich returns the article text and true, or "" and false when the page could
// not be used. The reason is logged; callers fall back to the feed description.
func (e *Enricher) Enrich(ctx context.Context, articleURL string) (string, bool) {
	text, err := e.Extract(ctx, articleURL)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", articleURL).Msg("article enrichment unavailable")
		return "", false
	}
	return text, true
}

// Extract is Enrich with the failure reason returned as an error.
func (e *Enricher) Extract(ctx context.Context, articleURL string) (string, error) {
	if strings.TrimSpace(articleURL) == "" {
		return "", fmt.Errorf("%w: empty url", ErrNoContent)
	}

	if e.cache != nil {
		text, ok, err := e.cache.Get(ctx, articleURL)
		if err != nil {
			e.logger.Warn().Err(err).Str("url", articleURL).Msg("article cache read failed")
		} else if ok {
			return text, nil
		}
	}

	raw, err := e.fetcher.GetText(ctx, articleURL)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}
	pageURL, _ := url.Parse(articleURL)

	for _, s := range e.strategies {
		text := s.Extract(doc, raw, pageURL)
		if text == "" {
			continue
		}
		text = Truncate(text, e.limit, Ellipsis)
		e.logger.Debug().Str("url", articleURL).Str("strategy", s.Name()).Int("runes", len([]rune(text))).Msg("article text extracted")

		if e.cache != nil {
			if err := e.cache.Set(ctx, articleURL, text); err != nil {
				e.logger.Warn().Err(err).Str("url", articleURL).Msg("article cache write failed")
			}
		}
		return text, nil
	}

	return "", ErrNoContent
}
