package domain

import "strings"

// validTransitions is the full legal-transition table. Any (from, to)
// pair not listed here is a programming fault, never coerced into a
// neighboring legal state.
var validTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded: {StatusTextExtractionPending, StatusFailed},

	StatusTextExtractionPending:   {StatusTextExtractionRunning, StatusFailed},
	StatusTextExtractionRunning:   {StatusTextExtractionSucceeded, StatusTextExtractionFailed},
	StatusTextExtractionSucceeded: {StatusTypeIdentificationPending, StatusFailed},
	StatusTextExtractionFailed:    {StatusTextExtractionPending, StatusFailed},

	StatusTypeIdentificationPending:   {StatusTypeIdentificationRunning, StatusFailed},
	StatusTypeIdentificationRunning:   {StatusTypeIdentificationSucceeded, StatusTypeIdentificationFailed},
	StatusTypeIdentificationSucceeded: {StatusSummarizationPending, StatusFailed},
	StatusTypeIdentificationFailed:    {StatusTypeIdentificationPending, StatusFailed},

	StatusSummarizationPending:   {StatusSummarizationRunning, StatusFailed},
	StatusSummarizationRunning:   {StatusSummarizationSucceeded, StatusSummarizationFailed},
	StatusSummarizationSucceeded: {StatusHumanReviewPending, StatusFailed},
	StatusSummarizationFailed:    {StatusSummarizationPending, StatusFailed},

	StatusHumanReviewPending:  {StatusHumanReviewApproved, StatusHumanReviewRejected, StatusFailed},
	StatusHumanReviewApproved: {StatusVectorizationPending, StatusFailed},
	StatusHumanReviewRejected: {StatusFailed},

	StatusVectorizationPending:   {StatusVectorizationRunning, StatusFailed},
	StatusVectorizationRunning:   {StatusVectorizationSucceeded, StatusVectorizationFailed},
	StatusVectorizationSucceeded: {StatusActorExtractionPending, StatusFailed},
	StatusVectorizationFailed:    {StatusVectorizationPending, StatusFailed},

	StatusActorExtractionPending:   {StatusActorExtractionRunning, StatusFailed},
	StatusActorExtractionRunning:   {StatusActorExtractionSucceeded, StatusActorExtractionFailed},
	StatusActorExtractionSucceeded: {StatusTimelineExtractionPending, StatusFailed},
	StatusActorExtractionFailed:    {StatusActorExtractionPending, StatusFailed},

	StatusTimelineExtractionPending:   {StatusTimelineExtractionRunning, StatusFailed},
	StatusTimelineExtractionRunning:   {StatusTimelineExtractionSucceeded, StatusTimelineExtractionFailed},
	StatusTimelineExtractionSucceeded: {StatusLegalAnalysisPending, StatusFailed},
	StatusTimelineExtractionFailed:    {StatusTimelineExtractionPending, StatusFailed},

	StatusLegalAnalysisPending:   {StatusLegalAnalysisRunning, StatusFailed},
	StatusLegalAnalysisRunning:   {StatusLegalAnalysisSucceeded, StatusLegalAnalysisFailed},
	StatusLegalAnalysisSucceeded: {StatusCompleted, StatusFailed},
	StatusLegalAnalysisFailed:    {StatusLegalAnalysisPending, StatusFailed},

	// Terminal states: no outgoing edges.
	StatusFailed:    {},
	StatusCompleted: {},
}

// IsValidTransition reports whether from -> to appears in the table.
func IsValidTransition(from, to DocumentStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns all statuses reachable from the current one
// in a single step. The returned slice is a copy.
func ValidTransitions(from DocumentStatus) []DocumentStatus {
	next := validTransitions[from]
	out := make([]DocumentStatus, len(next))
	copy(out, next)
	return out
}

// Transition validates from -> to and returns ErrInvalidTransition for
// any pair outside the table. Callers must treat a rejection as fatal
// to the current pipeline run.
func Transition(from, to DocumentStatus) error {
	if !IsValidTransition(from, to) {
		return WrapError(ErrInvalidTransition, "transition",
			&TransitionError{From: from, To: to})
	}
	return nil
}

// StorageStage maps a status to the blob store partition holding the
// authoritative content while the document is in that status. Total
// over all statuses; terminal statuses map to the completed stage.
func (s DocumentStatus) StorageStage() StorageStage {
	switch {
	case s == StatusUploaded:
		return StageUploaded
	case s == StatusHumanReviewPending, s == StatusHumanReviewApproved, s == StatusHumanReviewRejected:
		return StageReview
	case s == StatusCompleted, s == StatusFailed:
		return StageCompleted
	case strings.HasPrefix(string(s), "VECTORIZATION_"),
		strings.HasPrefix(string(s), "ACTOR_EXTRACTION_"),
		strings.HasPrefix(string(s), "TIMELINE_EXTRACTION_"),
		strings.HasPrefix(string(s), "LEGAL_ANALYSIS_"):
		return StageCompleted
	default:
		return StageProcessed
	}
}

// Phase returns the workflow phase name for a status, e.g.
// "extraction" for every TEXT_EXTRACTION_* status.
func (s DocumentStatus) Phase() string {
	switch {
	case s == StatusUploaded:
		return "upload"
	case strings.HasPrefix(string(s), "TEXT_EXTRACTION_"):
		return "extraction"
	case strings.HasPrefix(string(s), "DOCUMENT_TYPE_IDENTIFICATION_"):
		return "classification"
	case strings.HasPrefix(string(s), "CHUNKING_"):
		return "chunking"
	case strings.HasPrefix(string(s), "SUMMARIZATION_"):
		return "summarization"
	case strings.HasPrefix(string(s), "HUMAN_REVIEW_"):
		return "review"
	case strings.HasPrefix(string(s), "VECTORIZATION_"):
		return "vectorization"
	case strings.HasPrefix(string(s), "ACTOR_EXTRACTION_"):
		return "actors"
	case strings.HasPrefix(string(s), "TIMELINE_EXTRACTION_"):
		return "timeline"
	case strings.HasPrefix(string(s), "LEGAL_ANALYSIS_"):
		return "analysis"
	case s == StatusCompleted:
		return "completed"
	case s == StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusCompleted
}

// IsFailed reports whether the status represents a failure, terminal
// or otherwise.
func (s DocumentStatus) IsFailed() bool {
	return s == StatusFailed || strings.HasSuffix(string(s), "_FAILED")
}

// CanRetry reports whether the status is a phase failure with a retry
// edge back to its pending state. The terminal FAILED status cannot be
// retried.
func (s DocumentStatus) CanRetry() bool {
	if s == StatusFailed {
		return false
	}
	return strings.HasSuffix(string(s), "_FAILED") && len(validTransitions[s]) > 0
}
