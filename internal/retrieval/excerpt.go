package retrieval

import (
	"regexp"
	"strings"
)

const (
	// maxExcerptLength caps the excerpt attached to a search result.
	maxExcerptLength = 300

	// excerptWindow is how many sentences around the best match are included
	// on each side.
	excerptWindow = 2

	ellipsis = "..."
)

// sentencePattern matches one sentence up to and including its terminal
// punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Excerpt extracts a short passage from content that best justifies a match
// on the given expanded query terms.
//
// Content is split into sentences on terminal punctuation. Each sentence is
// scored by the number of distinct terms it contains; the highest-scoring
// sentence (the first one on ties) anchors a window of up to excerptWindow
// sentences on either side, joined with single spaces. Content with no
// sentence boundaries falls back to a character prefix. Either form is
// truncated with an ellipsis when it exceeds maxExcerptLength.
func Excerpt(content string, terms []string) string {
	sentences := sentencePattern.FindAllString(content, -1)
	if len(sentences) == 0 {
		return truncate(strings.TrimSpace(content), maxExcerptLength)
	}

	for i, s := range sentences {
		sentences[i] = strings.TrimSpace(s)
	}

	best := 0
	bestScore := -1
	for i, sentence := range sentences {
		score := sentenceScore(sentence, terms)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	start := max(0, best-excerptWindow)
	end := min(len(sentences), best+excerptWindow+1)
	window := strings.Join(sentences[start:end], " ")
	return truncate(window, maxExcerptLength)
}

// sentenceScore counts the distinct terms present in the sentence.
func sentenceScore(sentence string, terms []string) int {
	lower := strings.ToLower(sentence)
	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	return score
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + ellipsis
}
