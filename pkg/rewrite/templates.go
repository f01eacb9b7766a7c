package rewrite

import "regexp"

// Template turns a headline into a yes/no question. A template applies when
// the lowercased title contains every keyword of at least one group in AnyOf.
//
// Phrase templates replace the matched phrase with Question; when the keywords
// are present but not as that phrase, Question is prefixed to the headline.
// Suffix templates append Suffix to the title.
type Template struct {
	Name     string
	AnyOf    [][]string
	Phrase   *regexp.Regexp
	Question string
	Suffix   string
}

const (
	PensionQuestion = "Faut-il réformer le système de retraites ?"
	HealthQuestion  = "Faut-il réformer le système de santé ?"
	FallbackSuffix  = " : êtes-vous favorable à cette mesure ?"
)

// DefaultTemplates is the ordered template table. The first applicable one wins.
func DefaultTemplates() []Template {
	return []Template{
		{
			Name:     "pension-reform",
			AnyOf:    [][]string{{"réforme", "retraite"}},
			Phrase:   regexp.MustCompile(`(?i)réforme\s+(?:des\s+)?retraites?`),
			Question: PensionQuestion,
		},
		{
			Name:     "health-reform",
			AnyOf:    [][]string{{"réforme", "santé"}},
			Phrase:   regexp.MustCompile(`(?i)réforme\s+(?:de\s+la\s+)?santé`),
			Question: HealthQuestion,
		},
		{
			Name:   "reform",
			AnyOf:  [][]string{{"réforme"}},
			Suffix: " : êtes-vous favorable à cette réforme ?",
		},
		{
			Name:   "budget",
			AnyOf:  [][]string{{"budget"}, {"dépense"}, {"investissement"}},
			Suffix: " : soutenez-vous ces orientations budgétaires ?",
		},
		{
			Name:   "law",
			AnyOf:  [][]string{{"nouvelle loi"}, {"projet de loi"}},
			Suffix: " : êtes-vous favorable à cette proposition ?",
		},
		{
			Name:   "immigration",
			AnyOf:  [][]string{{"immigration"}},
			Suffix: " : soutenez-vous ces mesures sur l'immigration ?",
		},
		{
			Name:   "energy",
			AnyOf:  [][]string{{"nucléaire"}, {"énergie"}},
			Suffix: " : quelle politique énergétique privilégier ?",
		},
		{
			Name:   "education",
			AnyOf:  [][]string{{"éducation"}, {"école"}},
			Suffix: " : approuvez-vous ces changements éducatifs ?",
		},
	}
}
