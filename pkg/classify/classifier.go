package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"votetopics/pkg/config"
	"votetopics/pkg/domain"
	"votetopics/pkg/facts"
)

// Rejection gates, in the order an item meets them.
const (
	GateEvidence  = "evidence"
	GateDebatable = "debatable"
	GateFreshness = "freshness"
)

// Verdict carries the outcome of every gate so a rejection can be explained.
type Verdict struct {
	Accepted      bool
	Debatable     bool
	Excluded      bool
	Fresh         bool
	DebatableHit  string
	ExcludedHit   string
	StaleReason   string
	FactCount     int
	Facts         []domain.Fact
	RejectedAt    string
	RejectionNote string
}

// Classifier decides whether an enriched item can become a vote topic.
type Classifier struct {
	debatable       []string
	exclude         []string
	stale           []string
	pastYearContext []string
	retrospective   []string
	pastYear        *regexp.Regexp
	extractor       *facts.Extractor
	minFacts        int
}

// New builds a classifier from the rule tables. minFacts <= 0 means facts.MinFacts.
func New(rules config.Rules, extractor *facts.Extractor, minFacts int) *Classifier {
	if extractor == nil {
		extractor = facts.NewExtractor(facts.MaxFacts)
	}
	if minFacts <= 0 {
		minFacts = facts.MinFacts
	}
	return &Classifier{
		debatable:       lowerAll(rules.Debatable),
		exclude:         lowerAll(rules.Exclude),
		stale:           lowerAll(rules.Stale),
		pastYearContext: lowerAll(rules.PastYearContext),
		retrospective:   lowerAll(rules.Retrospective),
		pastYear:        yearPattern(rules.PastYears),
		extractor:       extractor,
		minFacts:        minFacts,
	}
}

// Classify runs the evidence, debatable-choice and freshness gates over the
// item's title and text. All gates are evaluated; RejectedAt names the first failing one.
func (c *Classifier) Classify(item domain.EnrichedItem) Verdict {
	text := strings.ToLower(item.Text())

	var v Verdict
	v.Facts = c.extractor.Extract(item.Title, item.FullText)
	v.FactCount = len(v.Facts)

	v.DebatableHit = firstContained(text, c.debatable)
	v.ExcludedHit = firstContained(text, c.exclude)
	v.Excluded = v.ExcludedHit != ""
	v.Debatable = v.DebatableHit != "" && !v.Excluded

	v.StaleReason = c.staleReason(text)
	v.Fresh = v.StaleReason == ""

	switch {
	case v.FactCount < c.minFacts:
		v.RejectedAt = GateEvidence
		v.RejectionNote = fmt.Sprintf("%d facts, need %d", v.FactCount, c.minFacts)
	case v.Excluded:
		v.RejectedAt = GateDebatable
		v.RejectionNote = fmt.Sprintf("exclude keyword %q", v.ExcludedHit)
	case !v.Debatable:
		v.RejectedAt = GateDebatable
		v.RejectionNote = "no debatable keyword"
	case !v.Fresh:
		v.RejectedAt = GateFreshness
		v.RejectionNote = v.StaleReason
	default:
		v.Accepted = true
	}
	return v
}

// IsDebatable reports the debatable-choice gate alone.
func (c *Classifier) IsDebatable(text string) bool {
	text = strings.ToLower(text)
	return firstContained(text, c.debatable) != "" && firstContained(text, c.exclude) == ""
}

// IsFresh reports the freshness gate alone.
func (c *Classifier) IsFresh(text string) bool {
	return c.staleReason(strings.ToLower(text)) == ""
}

func (c *Classifier) staleReason(text string) string {
	if k := firstContained(text, c.stale); k != "" {
		return fmt.Sprintf("stale keyword %q", k)
	}
	if c.pastYear != nil {
		if year := c.pastYear.FindString(text); year != "" {
			if k := firstContained(text, c.pastYearContext); k != "" {
				return fmt.Sprintf("past year %s with %q", year, k)
			}
		}
	}
	if k := firstContained(text, c.retrospective); k != "" {
		return fmt.Sprintf("retrospective keyword %q", k)
	}
	return ""
}

func yearPattern(years []int) *regexp.Regexp {
	if len(years) == 0 {
		return nil
	}
	alts := make([]string, len(years))
	for i, y := range years {
		alts[i] = strconv.Itoa(y)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

func firstContained(text string, keywords []string) string {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return k
		}
	}
	return ""
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
