package summarizer

import (
	"strings"

	"github.com/yithril/docpipeline/internal/core/ports"
)

// NewLegalDocumentStrategy summarizes contracts and other legal
// documents. The model tends to echo the prompt, so its output is cut
// back to the text after the final marker.
func NewLegalDocumentStrategy(backend ports.ModelBackend) (Strategy, error) {
	return newBaseStrategy("legal_document", backend, func(content string) string {
		return `Summarize the following legal document. Focus on:
1. Parties involved
2. Key terms and conditions
3. Important dates and deadlines
4. Obligations and responsibilities
5. Any special clauses or exceptions

Document:
` + content + `

Summary:`
	}, legalPostProcess)
}

// legalPostProcess drops any echoed document text before the summary.
func legalPostProcess(output string) string {
	if idx := strings.LastIndex(output, "Document:"); idx >= 0 {
		output = output[idx+len("Document:"):]
	}
	return stripSummaryMarker(output)
}

// NewEmailStrategy summarizes email threads.
func NewEmailStrategy(backend ports.ModelBackend) (Strategy, error) {
	return newBaseStrategy("email", backend, func(content string) string {
		return `Summarize the following email. Focus on:
1. Sender and recipient
2. Main topic or subject
3. Key points discussed
4. Action items or decisions made
5. Important dates or deadlines mentioned

Email:
` + content + `

Summary:`
	}, stripSummaryMarker)
}

// NewGeneralStrategy is the fallback for every document type without a
// dedicated strategy.
func NewGeneralStrategy(backend ports.ModelBackend) (Strategy, error) {
	return newBaseStrategy("general", backend, func(content string) string {
		return `Summarize the following document. Focus on:
1. Main topic or subject
2. Key points and important information
3. Main conclusions or outcomes
4. Any important dates, names, or numbers mentioned

Document:
` + content + `

Summary:`
	}, stripSummaryMarker)
}
