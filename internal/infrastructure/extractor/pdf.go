package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFStrategy extracts page text with ledongthuc/pdf. Pages that fail
// to render are skipped rather than failing the whole document.
type PDFStrategy struct{}

func NewPDFStrategy() *PDFStrategy { return &PDFStrategy{} }

func (s *PDFStrategy) Name() string { return "pdf" }

func (s *PDFStrategy) Extensions() []string { return []string{".pdf"} }

func (s *PDFStrategy) MIMETypes() []string { return []string{"application/pdf"} }

func (s *PDFStrategy) CanHandle(filePath, mimeType string) bool {
	return canHandle(s, filePath, mimeType)
}

func (s *PDFStrategy) Validate(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	if info.Size() == 0 {
		return true
	}
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()
	return r.NumPage() >= 0
}

func (s *PDFStrategy) Extract(_ context.Context, filePath string) *Result {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(),
			fmt.Sprintf("file not found: %s", filePath), seconds(start))
	}
	if info.Size() == 0 {
		return successResult(emptyStream{}, filePath, s.Name(), seconds(start),
			map[string]any{"file_size": int64(0), "format": "pdf", "pages": 0})
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted PDF file %s: %v", filePath, err), seconds(start))
	}
	defer f.Close()

	pages := r.NumPage()
	skipped := 0
	var b strings.Builder
	for n := 1; n <= pages; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			skipped++
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			skipped++
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	return successResult(newSliceStream(splitText(b.String())), filePath, s.Name(), seconds(start), map[string]any{
		"file_size":     info.Size(),
		"format":        "pdf",
		"pages":         pages,
		"pages_skipped": skipped,
	})
}
