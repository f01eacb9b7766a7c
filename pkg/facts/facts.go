package facts

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"votetopics/pkg/domain"
)

const (
	// MinFacts is the evidence threshold an item must reach to become a topic.
	MinFacts = 2
	// MaxFacts caps the facts kept per item.
	MaxFacts = 4
)

// Fact labels, in extraction order.
const (
	LabelPercentage = "Pourcentage"
	LabelAmount     = "Montant"
	LabelDate       = "Date/Année"
	LabelDuration   = "Durée"
	LabelCount      = "Nombre"
	LabelDelta      = "Évolution"
	LabelTenure     = "Âge/Durée"
)

type category struct {
	label   string
	pattern *regexp.Regexp
}

var categories = []category{
	{LabelPercentage, regexp.MustCompile(`(?i)\d+[,.]?\d*\s*%`)},
	{LabelAmount, regexp.MustCompile(`(?i)\d+[,.]?\d*\s*(?:millions?|milliards?)\s*(?:d['’]euros?|€|euros?)`)},
	{LabelDate, regexp.MustCompile(`\b(?:\d{1,2}/\d{1,2}/\d{4}|(?:19|20)\d{2})\b`)},
	{LabelDuration, regexp.MustCompile(`(?i)\d+[,.]?\d*\s*(?:années?|ans?|mois|semaines?|jours?)`)},
	{LabelCount, regexp.MustCompile(`(?i)\d+[,.]?\d*\s*(?:emplois?|postes?|personnes?|habitants?|élèves?|étudiants?|retraités?)`)},
	{LabelDelta, regexp.MustCompile(`(?i)(?:augmentation|baisse|hausse|diminution|croissance|recul)\s*(?:de\s*)?\d+[,.]?\d*(?:\s*%)?`)},
	{LabelTenure, regexp.MustCompile(`(?i)\d+\s*ans?\s*(?:de\s*)?(?:cotisation|retraite|service)`)},
}

// Extractor finds quantitative facts in French news text.
type Extractor struct {
	max int
}

// NewExtractor creates an extractor keeping at most max facts. max <= 0 means MaxFacts.
func NewExtractor(max int) *Extractor {
	if max <= 0 {
		max = MaxFacts
	}
	return &Extractor{max: max}
}

var defaultExtractor = NewExtractor(MaxFacts)

// Extract runs the default extractor.
func Extract(title, text string) []domain.Fact {
	return defaultExtractor.Extract(title, text)
}

// Extract scans title and text. Facts come out grouped by category in a fixed
// order, deduplicated on their rendered form and capped. Raw values are the
// matched substrings, never reformatted numbers.
func (e *Extractor) Extract(title, text string) []domain.Fact {
	corpus := strings.TrimSpace(title + " " + text)
	if corpus == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []domain.Fact
	for _, c := range categories {
		for _, loc := range c.pattern.FindAllStringIndex(corpus, -1) {
			if !endsAtWordBoundary(corpus, loc[1]) {
				continue
			}
			f := domain.Fact{Label: c.label, Raw: strings.TrimSpace(corpus[loc[0]:loc[1]])}
			key := f.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, f)
			if len(out) == e.max {
				return out
			}
		}
	}
	return out
}

// endsAtWordBoundary rejects matches that stop inside a word, so "2 an" is not
// read out of "2 annonces". Go's \b only knows ASCII letters.
func endsAtWordBoundary(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !unicode.IsLetter(r)
}
