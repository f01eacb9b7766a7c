package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Le  gouvernement\n présente  ", "Le gouvernement présente"},
		{"entities", "Pr&eacute;sent&eacute; &amp; vot&eacute;", "Présenté & voté"},
		{"tags become spaces", "<p>Premier</p><p>second</p>", "Premier second"},
		{"script dropped", "<p>texte</p><script>var x = 1;</script>", "texte"},
		{"image only", `<img src="x.jpg"/>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenHTML(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "court", Truncate("court", 10, Ellipsis))
	assert.Equal(t, "abc...", Truncate("abcdef", 3, Ellipsis))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0, Ellipsis))

	// counts runes, not bytes
	assert.Equal(t, "ééé", Truncate("ééééé", 3, ""))

	long := strings.Repeat("x", 1600)
	got := Truncate(long, DefaultContentLimit, Ellipsis)
	assert.Len(t, got, DefaultContentLimit+len(Ellipsis))
}
