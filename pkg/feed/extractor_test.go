package feed

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votetopics/pkg/domain"
)

func rssDocument(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Politique - Le Monde.fr</title>
		<link>https://www.lemonde.fr/politique/</link>
		` + strings.Join(items, "\n") + `
	</channel>
</rss>`
}

func rssItem(title, desc, link string) string {
	return fmt.Sprintf("<item><title><![CDATA[%s]]></title><description><![CDATA[%s]]></description><link>%s</link></item>", title, desc, link)
}

func newTestExtractor() *Extractor {
	return NewExtractor(ExtractorOptions{TitleBlocklist: []string{"podcast", "direct"}})
}

func TestExtractParsesFeed(t *testing.T) {
	doc := rssDocument(
		rssItem("Réforme des retraites : le gouvernement présente son projet", "<p>Le texte prévoit &amp; un report</p>", "https://www.lemonde.fr/a1"),
		rssItem("Budget 2026 : les députés examinent le projet de loi", "Examen en commission", "https://www.lemonde.fr/a2"),
	)

	items := newTestExtractor().Extract(doc)
	require.Len(t, items, 2)
	assert.Equal(t, domain.RawItem{
		Title:       "Réforme des retraites : le gouvernement présente son projet",
		Description: "Le texte prévoit & un report",
		ArticleURL:  "https://www.lemonde.fr/a1",
	}, items[0])
	assert.Equal(t, "https://www.lemonde.fr/a2", items[1].ArticleURL)
}

func TestExtractAppliesFiltersBeforeCap(t *testing.T) {
	var items []string
	items = append(items, rssItem("Trop court", "", "https://x.test/short"))
	items = append(items, rssItem("EN DIRECT - Suivez la séance à l'Assemblée nationale", "", "https://x.test/live"))
	items = append(items, rssItem("Notre podcast politique de la semaine complète", "", "https://x.test/pod"))
	for i := 0; i < 7; i++ {
		items = append(items, rssItem(fmt.Sprintf("Le gouvernement présente la mesure numéro %d", i), "", fmt.Sprintf("https://x.test/%d", i)))
	}

	got := newTestExtractor().Extract(rssDocument(items...))
	require.Len(t, got, DefaultMaxItems)
	for i, it := range got {
		assert.Equal(t, fmt.Sprintf("https://x.test/%d", i), it.ArticleURL)
		assert.Greater(t, utf8.RuneCountInString(it.Title), DefaultMinTitleLength)
	}
}

func TestExtractTitleLengthBoundary(t *testing.T) {
	exactly20 := "Vingt caractères ok"
	exactly20 += strings.Repeat("x", 20-utf8.RuneCountInString(exactly20))
	require.Equal(t, 20, utf8.RuneCountInString(exactly20))

	got := newTestExtractor().Extract(rssDocument(
		rssItem(exactly20, "", "https://x.test/20"),
		rssItem(exactly20+"y", "", "https://x.test/21"),
	))
	require.Len(t, got, 1)
	assert.Equal(t, "https://x.test/21", got[0].ArticleURL)
}

func TestExtractTruncatesDescription(t *testing.T) {
	long := strings.Repeat("é", 800)
	got := newTestExtractor().Extract(rssDocument(rssItem("Le gouvernement présente une nouvelle mesure", long, "https://x.test/d")))
	require.Len(t, got, 1)
	assert.Equal(t, DefaultDescriptionLimit, utf8.RuneCountInString(got[0].Description))
}

func TestExtractFallsBackToPatterns(t *testing.T) {
	// unescaped ampersand and no closing tags; whichever parser wins must yield the same items
	broken := `<rss><channel><title>Flux & cassé</title>
<item><title>Le Sénat adopte la proposition de loi sur le logement</title><description>Vote & débat</description><link>https://x.test/p1</link></item>
<item><title><![CDATA[Faut-il interdire les jets privés en France ?]]></title><link>https://x.test/p2</link></item>`

	got := newTestExtractor().Extract(broken)
	require.Len(t, got, 2)
	assert.Equal(t, "Le Sénat adopte la proposition de loi sur le logement", got[0].Title)
	assert.Equal(t, "Vote & débat", got[0].Description)
	assert.Equal(t, "https://x.test/p1", got[0].ArticleURL)
	assert.Equal(t, "Faut-il interdire les jets privés en France ?", got[1].Title)
	assert.Empty(t, got[1].Description)
}

func TestExtractMalformedInput(t *testing.T) {
	assert.Empty(t, newTestExtractor().Extract("not a feed at all"))
	assert.Empty(t, newTestExtractor().Extract(""))
}

func TestMatchItemsPrefersCDATA(t *testing.T) {
	got := matchItems(`<item><title><![CDATA[Titre <b>gras</b>]]></title><link> https://x.test/c </link></item>`)
	require.Len(t, got, 1)
	assert.Equal(t, "Titre <b>gras</b>", got[0].Title)
	assert.Equal(t, "https://x.test/c", got[0].ArticleURL)
}

func TestTitleKeywordFilter(t *testing.T) {
	f := NewTitleKeywordFilter([]string{"Podcast", " direct "})
	assert.False(t, f.ShouldKeep(domain.RawItem{Title: "PODCAST. La semaine politique"}))
	assert.False(t, f.ShouldKeep(domain.RawItem{Title: "En direct de l'Assemblée"}))
	assert.True(t, f.ShouldKeep(domain.RawItem{Title: "Le budget de la Sécurité sociale"}))
}
