package extractor

// Kind classifies the outcome of an extraction attempt.
type Kind string

const (
	KindOK          Kind = "ok"
	KindCorrupted   Kind = "corrupted"
	KindUnsupported Kind = "unsupported"
	KindFailed      Kind = "failed"
)

// Result is the outcome of running a strategy against one file.
// Success=false implies Text is an empty stream; Metadata is never
// nil.
type Result struct {
	Success        bool
	Kind           Kind
	Text           Stream
	FilePath       string
	StrategyUsed   string
	ErrorMessage   string
	ProcessingTime float64
	Metadata       map[string]any
}

func successResult(text Stream, filePath, strategy string, elapsed float64, metadata map[string]any) *Result {
	if metadata == nil {
		metadata = map[string]any{}
	}
	if text == nil {
		text = emptyStream{}
	}
	return &Result{
		Success:        true,
		Kind:           KindOK,
		Text:           text,
		FilePath:       filePath,
		StrategyUsed:   strategy,
		ProcessingTime: elapsed,
		Metadata:       metadata,
	}
}

func failureResult(kind Kind, filePath, strategy, message string, elapsed float64) *Result {
	return &Result{
		Success:        false,
		Kind:           kind,
		Text:           emptyStream{},
		FilePath:       filePath,
		StrategyUsed:   strategy,
		ErrorMessage:   message,
		ProcessingTime: elapsed,
		Metadata:       map[string]any{},
	}
}
