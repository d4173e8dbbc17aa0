package review

import (
	"fmt"
	"strings"
)

// buildPrompt renders the user turn for one persona review. The persona's
// instructions travel separately as the system frame.
func buildPrompt(content string, paragraphs int) string {
	var b strings.Builder
	b.WriteString("Review this document and provide specific, actionable comments.\n\n")
	b.WriteString("Document:\n---\n")
	b.WriteString(content)
	b.WriteString("\n---\n\n")

	b.WriteString("Paragraphs are blocks of text separated by blank lines, numbered from 0")
	if paragraphs > 0 {
		fmt.Fprintf(&b, " (this document has %d, numbered 0 to %d)", paragraphs, paragraphs-1)
	}
	b.WriteString(".\n")
	b.WriteString("For each comment, specify which paragraph (by number, 0-indexed) you're commenting on.\n")
	b.WriteString("Format each comment as:\n")
	b.WriteString("[PARAGRAPH X] Your comment here\n\n")
	b.WriteString("Be specific and concise. Provide 3-5 comments total, focusing on different parts of the document.")
	return b.String()
}
