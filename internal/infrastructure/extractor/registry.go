package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yithril/docpipeline/internal/core/domain"
)

// Strategy extracts text from one format family. Implementations hold
// no per-call state and a single instance is shared across calls.
type Strategy interface {
	Name() string
	CanHandle(filePath, mimeType string) bool
	Validate(filePath string) bool
	Extract(ctx context.Context, filePath string) *Result
	Extensions() []string
	MIMETypes() []string
}

// UnsupportedFileTypeError is returned when neither the extension nor
// the MIME type resolves to a strategy.
type UnsupportedFileTypeError struct {
	FilePath            string
	MIMEType            string
	Extension           string
	SupportedExtensions []string
	SupportedMIMETypes  []string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf(
		"unsupported file type: %s | MIME type: %s | extension: %s | supported extensions: %s | supported MIME types: %s",
		e.FilePath, e.MIMEType, e.Extension,
		strings.Join(e.SupportedExtensions, ", "),
		strings.Join(e.SupportedMIMETypes, ", "),
	)
}

func (e *UnsupportedFileTypeError) Unwrap() error { return domain.ErrUnsupportedFileType }

// Registry resolves a file to its extraction strategy. Extension match
// takes priority over MIME type when both resolve. Strategy instances
// are constructed once and reused.
type Registry struct {
	byExtension map[string]Strategy
	byMIMEType  map[string]Strategy
}

// NewRegistry builds a registry with every built-in strategy
// registered.
func NewRegistry() *Registry {
	r := &Registry{
		byExtension: map[string]Strategy{},
		byMIMEType:  map[string]Strategy{},
	}
	r.register(NewPlainTextStrategy())
	r.register(NewCSVStrategy())
	r.register(NewSpreadsheetStrategy())
	r.register(NewRichTextStrategy())
	r.register(NewPDFStrategy())
	r.register(NewWordDocumentStrategy())
	return r
}

func (r *Registry) register(s Strategy) {
	for _, ext := range s.Extensions() {
		r.byExtension[strings.ToLower(ext)] = s
	}
	for _, mime := range s.MIMETypes() {
		r.byMIMEType[strings.ToLower(mime)] = s
	}
}

// Get selects the strategy for the given file. Lookup is by lowercase
// extension first, then MIME type.
func (r *Registry) Get(filePath, mimeType string) (Strategy, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is empty")
	}
	ext := strings.ToLower(filepath.Ext(filePath))

	if s, ok := r.byExtension[ext]; ok {
		return s, nil
	}
	if s, ok := r.byMIMEType[strings.ToLower(mimeType)]; ok {
		return s, nil
	}
	return nil, &UnsupportedFileTypeError{
		FilePath:            filePath,
		MIMEType:            mimeType,
		Extension:           ext,
		SupportedExtensions: r.SupportedExtensions(),
		SupportedMIMETypes:  r.SupportedMIMETypes(),
	}
}

// Supports reports whether any registered strategy handles the file.
func (r *Registry) Supports(filePath, mimeType string) bool {
	_, err := r.Get(filePath, mimeType)
	return err == nil
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	out := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	out := make([]string, 0, len(r.byMIMEType))
	for mime := range r.byMIMEType {
		out = append(out, mime)
	}
	sort.Strings(out)
	return out
}
