package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// ZeroShotLabels is the candidate set scored on every classification.
var ZeroShotLabels = []string{
	"contract", "nda", "court filing", "court opinion", "settlement agreement",
	"power of attorney", "legal memorandum",
	"business plan", "strategic presentation", "meeting minutes", "company policy",
	"internal memo", "project proposal", "procurement request", "statement of work",
	"email", "letter", "chat transcript", "text message log", "voicemail transcript",
	"invoice", "purchase order", "receipt", "balance sheet", "income statement",
	"expense report", "tax return", "budget forecast",
	"resume", "offer letter", "performance review", "employee handbook",
	"termination notice", "timesheet",
	"product specification", "engineering drawing", "source code", "test report",
	"patent application",
	"fax cover sheet", "blank form", "signed form", "checklist", "agenda",
	"news article", "press release", "research report", "survey results",
	"data export", "image description", "audio transcript",
}

// summarizationTypeByLabel folds raw zero-shot labels into the
// summarization taxonomy. Unknown labels fall through to general.
var summarizationTypeByLabel = map[string]string{
	"contract":              "legal_document",
	"nda":                   "legal_document",
	"court filing":          "legal_document",
	"court opinion":         "legal_document",
	"settlement agreement":  "legal_document",
	"power of attorney":     "legal_document",
	"legal memorandum":      "legal_document",
	"email":                 "email",
	"letter":                "email",
	"invoice":               "receipt",
	"purchase order":        "receipt",
	"receipt":               "receipt",
	"balance sheet":         "receipt",
	"income statement":      "receipt",
	"expense report":        "receipt",
	"tax return":            "receipt",
	"budget forecast":       "receipt",
	"resume":                "note",
	"offer letter":          "note",
	"performance review":    "note",
	"employee handbook":     "note",
	"termination notice":    "note",
	"timesheet":             "note",
	"product specification": "technical_document",
	"engineering drawing":   "technical_document",
	"source code":           "technical_document",
	"test report":           "technical_document",
	"patent application":    "technical_document",
	"news article":          "news_article",
	"press release":         "news_article",
	"research report":       "news_article",
	"survey results":        "news_article",
}

// MapDocumentType maps a raw classification label to the document type
// the summarizer understands.
func MapDocumentType(label string) string {
	if t, ok := summarizationTypeByLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return "general"
}

// ClassificationEngine scores extracted text against the zero-shot
// label set. Text over the model's input budget is condensed through
// the backend first; condensation failure degrades to truncation.
type ClassificationEngine struct {
	backend       ports.ModelBackend
	condenseModel string
	maxInputChars int
}

func NewClassificationEngine(backend ports.ModelBackend, condenseModel string, maxInputChars int) *ClassificationEngine {
	if maxInputChars <= 0 {
		maxInputChars = 4000
	}
	return &ClassificationEngine{
		backend:       backend,
		condenseModel: condenseModel,
		maxInputChars: maxInputChars,
	}
}

func (e *ClassificationEngine) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ClassificationResult{
			Candidates: map[string]float64{},
			Error:      "Input text is empty",
		}, nil
	}

	text = e.condenseForClassification(ctx, text)

	scores, err := e.backend.ClassifyZeroShot(ctx, text, ZeroShotLabels)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classify document: %w", err)
	}

	best, bestScore := topCandidate(scores)
	if best == "" {
		return domain.ClassificationResult{
			Candidates: map[string]float64{},
			Error:      "classifier returned no candidates",
		}, nil
	}

	return domain.ClassificationResult{
		DocumentType: best,
		Confidence:   bestScore,
		Candidates:   clampScores(scores),
	}, nil
}

// condenseForClassification shrinks oversized text to a
// classification-focused summary. Under the budget it is a strict
// no-op; on backend failure the head of the text is used instead.
func (e *ClassificationEngine) condenseForClassification(ctx context.Context, text string) string {
	if len(text) <= e.maxInputChars {
		return text
	}

	prompt := buildCondensePrompt(text[:e.maxInputChars])
	summary, err := e.backend.Generate(ctx, e.condenseModel, prompt, 200)
	if err != nil || strings.TrimSpace(summary) == "" {
		return text[:e.maxInputChars]
	}
	return summary
}

func buildCondensePrompt(text string) string {
	return `Summarize this document in a way that helps identify its type and category.
Focus on:
- Document structure and format
- Key terms and language patterns
- Purpose and function
- Any identifying characteristics

Keep the summary concise but informative for document type classification.

Document: ` + text + `

Summary:`
}

func topCandidate(scores map[string]float64) (string, float64) {
	best := ""
	bestScore := -1.0
	for label, score := range scores {
		if score > bestScore || (score == bestScore && label < best) {
			best = label
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, clamp01(bestScore)
}

func clampScores(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for label, score := range scores {
		out[label] = clamp01(score)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
