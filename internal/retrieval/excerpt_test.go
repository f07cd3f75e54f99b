package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt_PicksBestSentenceWithWindow(t *testing.T) {
	content := "First sentence here. Second sentence here. The cancellation fee applies after noon. Fourth sentence here. Fifth sentence here. Sixth sentence here."

	excerpt := Excerpt(content, []string{"cancellation", "fee"})

	assert.Contains(t, excerpt, "cancellation fee")
	// Window of two sentences each side.
	assert.Contains(t, excerpt, "First sentence")
	assert.Contains(t, excerpt, "Fifth sentence")
	assert.NotContains(t, excerpt, "Sixth sentence")
}

func TestExcerpt_FirstSentenceWinsTies(t *testing.T) {
	content := "Alpha has a fee. Beta has a fee."
	excerpt := Excerpt(content, []string{"fee"})
	assert.True(t, strings.HasPrefix(excerpt, "Alpha"), "first tying sentence must anchor the window, got %q", excerpt)
}

func TestExcerpt_NoSentencesFallsBackToPrefix(t *testing.T) {
	content := strings.Repeat("x", maxExcerptLength+50) // no terminal punctuation

	excerpt := Excerpt(content, []string{"anything"})

	assert.True(t, strings.HasSuffix(excerpt, ellipsis))
	assert.Len(t, excerpt, maxExcerptLength+len(ellipsis))
}

func TestExcerpt_ShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "just a fragment", Excerpt("just a fragment", []string{"fragment"}))
}

func TestExcerpt_LongWindowTruncated(t *testing.T) {
	long := strings.Repeat("word ", 100) + "fee."
	excerpt := Excerpt(long+" "+long, []string{"fee"})
	assert.LessOrEqual(t, len(excerpt), maxExcerptLength+len(ellipsis))
}

func TestExcerpt_SentencesJoinedWithSingleSpaces(t *testing.T) {
	content := "One.\n\nTwo fee.\n\nThree."
	excerpt := Excerpt(content, []string{"fee"})
	assert.Equal(t, "One. Two fee. Three.", excerpt)
}
