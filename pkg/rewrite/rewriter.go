package rewrite

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"votetopics/pkg/config"
	"votetopics/pkg/content"
	"votetopics/pkg/domain"
)

const (
	minSentenceRunes = 20
	maxDataSentences = 2
	leadFallbackRune = 300
	factSeparator    = " • "
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	dataSentence  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+[,.]?\d*\s*(?:%|euros?|€|millions?|milliards?|emplois?|ans?)`),
		regexp.MustCompile(`(?i)(?:budget|coût|prix|dépense|investissement|augmentation|baisse|hausse|diminution).*?\d+`),
	}
	// "question ? : reste" left behind by a phrase substitution
	danglingColon = regexp.MustCompile(`\?\s*:\s*`)
)

// Rewriter produces the votable form of an accepted item.
type Rewriter struct {
	questionMarkers []string
	templates       []Template
	categories      []config.CategoryRule
}

// New creates a rewriter. Nil templates select DefaultTemplates.
func New(rules config.Rules, templates []Template) *Rewriter {
	if templates == nil {
		templates = DefaultTemplates()
	}
	markers := make([]string, 0, len(rules.QuestionMarkers))
	for _, m := range rules.QuestionMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return &Rewriter{
		questionMarkers: markers,
		templates:       templates,
		categories:      rules.Categories,
	}
}

// IsQuestion reports whether title already reads as a question.
func (r *Rewriter) IsQuestion(title string) bool {
	lower := strings.ToLower(title)
	for _, m := range r.questionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Title rewrites a headline as a yes/no question. Titles that already are
// questions come back unchanged, which makes Title idempotent.
func (r *Rewriter) Title(title string) string {
	title = strings.TrimSpace(title)
	if r.IsQuestion(title) {
		return title
	}

	lower := strings.ToLower(title)
	for _, t := range r.templates {
		if !t.applies(lower) {
			continue
		}
		if t.Question != "" {
			return t.rephrase(title)
		}
		return trimTrailingPunct(title) + t.Suffix
	}
	return trimTrailingPunct(title) + FallbackSuffix
}

func (t Template) applies(lower string) bool {
	for _, group := range t.AnyOf {
		all := true
		for _, k := range group {
			if !strings.Contains(lower, k) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func (t Template) rephrase(title string) string {
	if t.Phrase == nil || !t.Phrase.MatchString(title) {
		return t.Question + " " + strings.TrimSpace(title)
	}
	out := t.Phrase.ReplaceAllLiteralString(title, t.Question)
	out = danglingColon.ReplaceAllString(out, "? ")
	return strings.TrimSpace(out)
}

func trimTrailingPunct(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " .;:!,")
}

// Summary builds the stored description: a context sentence, up to two
// sentences carrying figures, and the facts themselves.
func (r *Rewriter) Summary(text string, facts []domain.Fact) string {
	sentences := splitSentences(text)

	var b strings.Builder
	b.WriteString("CONTEXTE: ")
	if len(sentences) > 0 {
		b.WriteString(sentences[0])
		b.WriteString(".")
	} else {
		b.WriteString(content.Truncate(content.CollapseWhitespace(text), leadFallbackRune, content.Ellipsis))
	}

	var data []string
	for _, s := range sentences {
		if isDataSentence(s) {
			data = append(data, s)
			if len(data) == maxDataSentences {
				break
			}
		}
	}
	if len(data) > 0 {
		b.WriteString("\n\nFAITS CHIFFRÉS: ")
		b.WriteString(strings.Join(data, ". "))
		b.WriteString(".")
	}

	if len(facts) > 0 {
		rendered := make([]string, len(facts))
		for i, f := range facts {
			rendered[i] = f.String()
		}
		b.WriteString("\n\nDONNÉES PRÉCISES: ")
		b.WriteString(strings.Join(rendered, factSeparator))
	}
	return b.String()
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = content.CollapseWhitespace(s)
		if utf8.RuneCountInString(s) > minSentenceRunes {
			out = append(out, s)
		}
	}
	return out
}

func isDataSentence(s string) bool {
	for _, p := range dataSentence {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Category returns the first rule whose keyword appears in title, else def.
func (r *Rewriter) Category(title, def string) string {
	lower := strings.ToLower(title)
	for _, rule := range r.categories {
		for _, k := range rule.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" && strings.Contains(lower, k) {
				return rule.Name
			}
		}
	}
	return def
}
