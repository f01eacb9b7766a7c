package feed

import (
	"strings"
	"unicode/utf8"

	"votetopics/pkg/domain"
)

// ItemFilter decides whether a feed item is worth processing at all.
type ItemFilter interface {
	ShouldKeep(item domain.RawItem) bool
}

// KeepItem reports whether every filter keeps item.
func KeepItem(item domain.RawItem, filters ...ItemFilter) bool {
	for _, f := range filters {
		if !f.ShouldKeep(item) {
			return false
		}
	}
	return true
}

// TitleLengthFilter drops items whose trimmed title has at most Min runes.
type TitleLengthFilter struct {
	Min int
}

// NewTitleLengthFilter creates a filter keeping titles strictly longer than min runes
func NewTitleLengthFilter(min int) *TitleLengthFilter {
	return &TitleLengthFilter{Min: min}
}

// ShouldKeep returns true if the title is long enough
func (f *TitleLengthFilter) ShouldKeep(item domain.RawItem) bool {
	return utf8.RuneCountInString(strings.TrimSpace(item.Title)) > f.Min
}

// TitleKeywordFilter drops items whose title contains any blocked keyword, case-insensitively.
type TitleKeywordFilter struct {
	blocked []string
}

// NewTitleKeywordFilter creates a filter for the given keywords
func NewTitleKeywordFilter(keywords []string) *TitleKeywordFilter {
	blocked := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			blocked = append(blocked, k)
		}
	}
	return &TitleKeywordFilter{blocked: blocked}
}

// ShouldKeep returns false if the title mentions a blocked keyword
func (f *TitleKeywordFilter) ShouldKeep(item domain.RawItem) bool {
	title := strings.ToLower(item.Title)
	for _, k := range f.blocked {
		if strings.Contains(title, k) {
			return false
		}
	}
	return true
}
