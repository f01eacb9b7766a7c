package db

import (
	"regexp"
	"strings"

	"votetopics/pkg/domain"
)

// StaleSignature describes outdated topics as SQL ILIKE patterns ("%budget 2024%").
// A topic is stale when its title matches any title pattern or its description
// matches any description pattern.
type StaleSignature struct {
	TitlePatterns       []string
	DescriptionPatterns []string
}

// Empty reports whether the signature matches nothing.
func (s StaleSignature) Empty() bool {
	return len(s.TitlePatterns) == 0 && len(s.DescriptionPatterns) == 0
}

// Matches evaluates the signature in memory with ILIKE semantics.
func (s StaleSignature) Matches(t domain.Topic) bool {
	for _, p := range s.TitlePatterns {
		if ILike(t.Title, p) {
			return true
		}
	}
	for _, p := range s.DescriptionPatterns {
		if ILike(t.Description, p) {
			return true
		}
	}
	return false
}

// ILike reports whether value matches the ILIKE pattern.
func ILike(value, pattern string) bool {
	return regexp.MustCompile("(?is)" + ILikeRegexp(pattern)).MatchString(value)
}

// ILikeRegexp translates an ILIKE pattern into an anchored regular expression
// (without case flag): % is any run, _ any single character, \ escapes.
func ILikeRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
