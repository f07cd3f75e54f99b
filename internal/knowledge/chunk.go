package knowledge

import "strings"

// DefaultChunkSize is the target maximum length of a chunk in characters.
const DefaultChunkSize = 4000

// Chunk splits content into segments of at most maxLen characters along
// blank-line paragraph boundaries. Content that already fits is returned as a
// single segment unchanged. Paragraphs are accumulated greedily: when
// appending the next paragraph would exceed maxLen, the running segment is
// emitted and a new one starts. A single paragraph longer than maxLen is
// emitted whole; mid-paragraph splitting is never performed.
//
// Joining the returned segments with "\n\n" reproduces the original content.
func Chunk(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	paragraphs := strings.Split(content, "\n\n")
	var segments []string
	var current strings.Builder

	for _, para := range paragraphs {
		if current.Len() == 0 {
			current.WriteString(para)
			continue
		}
		// +2 accounts for the "\n\n" separator.
		if current.Len()+2+len(para) > maxLen {
			segments = append(segments, current.String())
			current.Reset()
			current.WriteString(para)
			continue
		}
		current.WriteString("\n\n")
		current.WriteString(para)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}

	return segments
}
