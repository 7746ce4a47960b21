package inference

import "strings"

// buildZeroShotPrompt asks the model to score the text against every
// candidate label at once. The snippet is capped so a large document
// cannot blow the prompt budget; scoring only needs the opening.
func buildZeroShotPrompt(text string, labels []string) string {
	const maxSnippet = 4000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	var b strings.Builder
	b.WriteString(`You are a zero-shot document classifier.
Score how well the document matches each candidate label.
Return a strict JSON object mapping every label to a number from 0 to 1.
No markdown, no extra keys.

Labels:
`)
	for _, label := range labels {
		b.WriteString("- ")
		b.WriteString(label)
		b.WriteByte('\n')
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(snippet)
	return b.String()
}
