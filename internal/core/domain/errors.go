package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	// Validation errors: detected before any model invocation and not
	// retryable with the same input.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrCorruptedFile       = errors.New("corrupted file")
	ErrEmptyInput          = errors.New("input text is empty")

	// Model errors. Load failures are fatal at construction time;
	// generation failures are per-call and retryable by the caller.
	ErrModelLoad     = errors.New("model load failure")
	ErrGeneration    = errors.New("generation failure")
	ErrInputTooLarge = errors.New("input exceeds token budget")

	// State-machine violations are programming faults and always fatal
	// to the current pipeline run.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError carries the rejected edge for diagnostics.
type TransitionError struct {
	From DocumentStatus
	To   DocumentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no edge from %s to %s", e.From, e.To)
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
