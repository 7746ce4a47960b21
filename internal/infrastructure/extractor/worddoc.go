package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// WordDocumentStrategy reads the main document part of a .docx
// archive. Runs of text inside a paragraph concatenate; paragraphs are
// separated by newlines.
type WordDocumentStrategy struct{}

func NewWordDocumentStrategy() *WordDocumentStrategy { return &WordDocumentStrategy{} }

func (s *WordDocumentStrategy) Name() string { return "word_document" }

func (s *WordDocumentStrategy) Extensions() []string { return []string{".docx"} }

func (s *WordDocumentStrategy) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (s *WordDocumentStrategy) CanHandle(filePath, mimeType string) bool {
	return canHandle(s, filePath, mimeType)
}

func (s *WordDocumentStrategy) Validate(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	if info.Size() == 0 {
		return true
	}
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

func (s *WordDocumentStrategy) Extract(_ context.Context, filePath string) *Result {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(),
			fmt.Sprintf("file not found: %s", filePath), seconds(start))
	}
	if info.Size() == 0 {
		return successResult(emptyStream{}, filePath, s.Name(), seconds(start),
			map[string]any{"file_size": int64(0), "format": "docx", "paragraphs": 0})
	}

	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted Word document %s: %v", filePath, err), seconds(start))
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted Word document %s: missing word/document.xml", filePath), seconds(start))
	}

	rc, err := doc.Open()
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(), err.Error(), seconds(start))
	}
	defer rc.Close()

	text, paragraphs, err := decodeWordXML(rc)
	if err != nil {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted Word document %s: %v", filePath, err), seconds(start))
	}

	return successResult(newSliceStream(splitText(text)), filePath, s.Name(), seconds(start), map[string]any{
		"file_size":  info.Size(),
		"format":     "docx",
		"paragraphs": paragraphs,
	})
}

// decodeWordXML streams the WordprocessingML token stream, collecting
// w:t character data and closing each w:p with a newline. Tabs and
// explicit breaks map to their plain-text equivalents.
func decodeWordXML(r io.Reader) (string, int, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	paragraphs := 0
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs++
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), paragraphs, nil
}
