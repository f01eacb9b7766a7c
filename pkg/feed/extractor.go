package feed

import (
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"votetopics/pkg/content"
	"votetopics/pkg/domain"
)

// Defaults used when ExtractorOptions leaves a field zero.
const (
	DefaultMaxItems         = 5
	DefaultMinTitleLength   = 20
	DefaultDescriptionLimit = 500
)

var (
	itemPattern             = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	titleCDATAPattern       = regexp.MustCompile(`(?is)<title[^>]*>\s*<!\[CDATA\[(.*?)\]\]>\s*</title>`)
	titlePattern            = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	descriptionCDATAPattern = regexp.MustCompile(`(?is)<description[^>]*>\s*<!\[CDATA\[(.*?)\]\]>\s*</description>`)
	descriptionPattern      = regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>`)
	linkPattern             = regexp.MustCompile(`(?is)<link[^>]*>(.*?)</link>`)
	cdataWrapper            = regexp.MustCompile(`(?s)^<!\[CDATA\[(.*)\]\]>$`)
)

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	MaxItems         int
	MinTitleLength   int
	DescriptionLimit int
	TitleBlocklist   []string
}

// Extractor turns a raw feed document into the first few usable items.
type Extractor struct {
	parser    *gofeed.Parser
	filters   []ItemFilter
	maxItems  int
	descLimit int
}

// NewExtractor creates an extractor with the title filters built from opts.
func NewExtractor(opts ExtractorOptions) *Extractor {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.MinTitleLength <= 0 {
		opts.MinTitleLength = DefaultMinTitleLength
	}
	if opts.DescriptionLimit <= 0 {
		opts.DescriptionLimit = DefaultDescriptionLimit
	}
	return &Extractor{
		parser: gofeed.NewParser(),
		filters: []ItemFilter{
			NewTitleLengthFilter(opts.MinTitleLength),
			NewTitleKeywordFilter(opts.TitleBlocklist),
		},
		maxItems:  opts.MaxItems,
		descLimit: opts.DescriptionLimit,
	}
}

// Extract returns up to maxItems items in feed order, counting only items that
// survive the filters. Malformed input yields an empty slice.
func (e *Extractor) Extract(raw string) []domain.RawItem {
	candidates := e.parse(raw)

	items := make([]domain.RawItem, 0, e.maxItems)
	for _, item := range candidates {
		item = e.normalize(item)
		if !KeepItem(item, e.filters...) {
			continue
		}
		items = append(items, item)
		if len(items) == e.maxItems {
			break
		}
	}
	return items
}

// parse tries a real feed parser first and falls back to pattern matching,
// which copes with the slightly broken XML some outlets serve.
func (e *Extractor) parse(raw string) []domain.RawItem {
	parsed, err := e.parser.ParseString(raw)
	if err == nil && parsed != nil && len(parsed.Items) > 0 {
		items := make([]domain.RawItem, 0, len(parsed.Items))
		for _, it := range parsed.Items {
			if it == nil {
				continue
			}
			items = append(items, domain.RawItem{
				Title:       it.Title,
				Description: it.Description,
				ArticleURL:  it.Link,
			})
		}
		return items
	}
	return matchItems(raw)
}

func matchItems(raw string) []domain.RawItem {
	blocks := itemPattern.FindAllStringSubmatch(raw, -1)
	items := make([]domain.RawItem, 0, len(blocks))
	for _, block := range blocks {
		body := block[1]
		items = append(items, domain.RawItem{
			Title:       firstMatch(body, titleCDATAPattern, titlePattern),
			Description: firstMatch(body, descriptionCDATAPattern, descriptionPattern),
			ArticleURL:  unwrapCDATA(firstMatch(body, linkPattern)),
		})
	}
	return items
}

func firstMatch(s string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

func unwrapCDATA(s string) string {
	s = strings.TrimSpace(s)
	if m := cdataWrapper.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

func (e *Extractor) normalize(item domain.RawItem) domain.RawItem {
	item.Title = content.FlattenHTML(unwrapCDATA(item.Title))
	item.Description = content.Truncate(content.FlattenHTML(unwrapCDATA(item.Description)), e.descLimit, "")
	item.ArticleURL = strings.TrimSpace(item.ArticleURL)
	return item
}
