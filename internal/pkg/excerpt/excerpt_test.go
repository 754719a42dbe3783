package excerpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_StripsMarkdown(t *testing.T) {
	raw := "# Heading\n\nSome **bold** and _italic_ text with a [link](https://example.com) and `code`."
	got := Summarize(raw, 0)
	assert.Equal(t, "Heading Some bold and italic text with a link and code.", got)
}

func TestSummarize_RemovesImagesAndFences(t *testing.T) {
	raw := "Intro ![alt text](/img.png) middle\n```go\nfunc main() {}\n```\nend"
	got := Summarize(raw, 0)
	assert.Equal(t, "Intro middle end", got)
}

func TestSummarize_CollapsesWhitespace(t *testing.T) {
	got := Summarize("a\n\n\nb\t\tc   d", 0)
	assert.Equal(t, "a b c d", got)
}

func TestSummarize_TruncatesWithEllipsis(t *testing.T) {
	raw := strings.Repeat("word ", 50)
	got := Summarize(raw, 120)
	assert.True(t, strings.HasSuffix(got, "…"))
	// 120 content runes max, plus the single ellipsis rune
	assert.LessOrEqual(t, len([]rune(got)), 121)
}

func TestSummarize_ShortTextUntouched(t *testing.T) {
	got := Summarize("short text", 120)
	assert.Equal(t, "short text", got)
	assert.False(t, strings.HasSuffix(got, "…"))
}

func TestSummarize_StripsHTML(t *testing.T) {
	got := Summarize(`<p>Hello <strong>world</strong></p>`, 0)
	assert.Equal(t, "Hello world", got)
}
