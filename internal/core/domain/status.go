package domain

// DocumentStatus is the closed set of pipeline states a document moves
// through between upload and hand-off to the vectorization pipeline.
type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "UPLOADED"

	StatusTextExtractionPending   DocumentStatus = "TEXT_EXTRACTION_PENDING"
	StatusTextExtractionRunning   DocumentStatus = "TEXT_EXTRACTION_RUNNING"
	StatusTextExtractionSucceeded DocumentStatus = "TEXT_EXTRACTION_SUCCEEDED"
	StatusTextExtractionFailed    DocumentStatus = "TEXT_EXTRACTION_FAILED"

	StatusTypeIdentificationPending   DocumentStatus = "DOCUMENT_TYPE_IDENTIFICATION_PENDING"
	StatusTypeIdentificationRunning   DocumentStatus = "DOCUMENT_TYPE_IDENTIFICATION_RUNNING"
	StatusTypeIdentificationSucceeded DocumentStatus = "DOCUMENT_TYPE_IDENTIFICATION_SUCCEEDED"
	StatusTypeIdentificationFailed    DocumentStatus = "DOCUMENT_TYPE_IDENTIFICATION_FAILED"

	// Chunking statuses are reserved for the downstream vectorization
	// pipeline; they exist in the enum but have no transition edges yet.
	StatusChunkingPending   DocumentStatus = "CHUNKING_PENDING"
	StatusChunkingRunning   DocumentStatus = "CHUNKING_RUNNING"
	StatusChunkingSucceeded DocumentStatus = "CHUNKING_SUCCEEDED"
	StatusChunkingFailed    DocumentStatus = "CHUNKING_FAILED"

	StatusSummarizationPending   DocumentStatus = "SUMMARIZATION_PENDING"
	StatusSummarizationRunning   DocumentStatus = "SUMMARIZATION_RUNNING"
	StatusSummarizationSucceeded DocumentStatus = "SUMMARIZATION_SUCCEEDED"
	StatusSummarizationFailed    DocumentStatus = "SUMMARIZATION_FAILED"

	StatusHumanReviewPending  DocumentStatus = "HUMAN_REVIEW_PENDING"
	StatusHumanReviewApproved DocumentStatus = "HUMAN_REVIEW_APPROVED"
	StatusHumanReviewRejected DocumentStatus = "HUMAN_REVIEW_REJECTED"

	StatusVectorizationPending   DocumentStatus = "VECTORIZATION_PENDING"
	StatusVectorizationRunning   DocumentStatus = "VECTORIZATION_RUNNING"
	StatusVectorizationSucceeded DocumentStatus = "VECTORIZATION_SUCCEEDED"
	StatusVectorizationFailed    DocumentStatus = "VECTORIZATION_FAILED"

	StatusActorExtractionPending   DocumentStatus = "ACTOR_EXTRACTION_PENDING"
	StatusActorExtractionRunning   DocumentStatus = "ACTOR_EXTRACTION_RUNNING"
	StatusActorExtractionSucceeded DocumentStatus = "ACTOR_EXTRACTION_SUCCEEDED"
	StatusActorExtractionFailed    DocumentStatus = "ACTOR_EXTRACTION_FAILED"

	StatusTimelineExtractionPending   DocumentStatus = "TIMELINE_EXTRACTION_PENDING"
	StatusTimelineExtractionRunning   DocumentStatus = "TIMELINE_EXTRACTION_RUNNING"
	StatusTimelineExtractionSucceeded DocumentStatus = "TIMELINE_EXTRACTION_SUCCEEDED"
	StatusTimelineExtractionFailed    DocumentStatus = "TIMELINE_EXTRACTION_FAILED"

	StatusLegalAnalysisPending   DocumentStatus = "LEGAL_ANALYSIS_PENDING"
	StatusLegalAnalysisRunning   DocumentStatus = "LEGAL_ANALYSIS_RUNNING"
	StatusLegalAnalysisSucceeded DocumentStatus = "LEGAL_ANALYSIS_SUCCEEDED"
	StatusLegalAnalysisFailed    DocumentStatus = "LEGAL_ANALYSIS_FAILED"

	StatusCompleted DocumentStatus = "COMPLETED"
	StatusFailed    DocumentStatus = "FAILED"
)

// StorageStage names one of the four blob store partitions. The stage
// selects the container a document's content currently lives in; the
// blob path inside a stage never changes.
type StorageStage string

const (
	StageUploaded  StorageStage = "uploaded"
	StageProcessed StorageStage = "processed"
	StageReview    StorageStage = "review"
	StageCompleted StorageStage = "completed"
)

// AllStorageStages lists every stage partition, in pipeline order.
func AllStorageStages() []StorageStage {
	return []StorageStage{StageUploaded, StageProcessed, StageReview, StageCompleted}
}

// AllStatuses returns every defined status. Primarily used by the
// state machine tests to check closure over the whole enum.
func AllStatuses() []DocumentStatus {
	return []DocumentStatus{
		StatusUploaded,
		StatusTextExtractionPending, StatusTextExtractionRunning,
		StatusTextExtractionSucceeded, StatusTextExtractionFailed,
		StatusTypeIdentificationPending, StatusTypeIdentificationRunning,
		StatusTypeIdentificationSucceeded, StatusTypeIdentificationFailed,
		StatusChunkingPending, StatusChunkingRunning,
		StatusChunkingSucceeded, StatusChunkingFailed,
		StatusSummarizationPending, StatusSummarizationRunning,
		StatusSummarizationSucceeded, StatusSummarizationFailed,
		StatusHumanReviewPending, StatusHumanReviewApproved, StatusHumanReviewRejected,
		StatusVectorizationPending, StatusVectorizationRunning,
		StatusVectorizationSucceeded, StatusVectorizationFailed,
		StatusActorExtractionPending, StatusActorExtractionRunning,
		StatusActorExtractionSucceeded, StatusActorExtractionFailed,
		StatusTimelineExtractionPending, StatusTimelineExtractionRunning,
		StatusTimelineExtractionSucceeded, StatusTimelineExtractionFailed,
		StatusLegalAnalysisPending, StatusLegalAnalysisRunning,
		StatusLegalAnalysisSucceeded, StatusLegalAnalysisFailed,
		StatusCompleted, StatusFailed,
	}
}
