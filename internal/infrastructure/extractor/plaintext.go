package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// PlainTextStrategy streams .txt and .md files in fixed-size byte
// chunks. Concatenating the chunks reproduces the file exactly.
type PlainTextStrategy struct{}

func NewPlainTextStrategy() *PlainTextStrategy { return &PlainTextStrategy{} }

func (s *PlainTextStrategy) Name() string { return "plain_text" }

func (s *PlainTextStrategy) Extensions() []string { return []string{".txt", ".md"} }

func (s *PlainTextStrategy) MIMETypes() []string {
	return []string{"text/plain", "text/markdown"}
}

func (s *PlainTextStrategy) CanHandle(filePath, mimeType string) bool {
	return canHandle(s, filePath, mimeType)
}

func (s *PlainTextStrategy) Validate(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	if info.Size() == 0 {
		return true
	}

	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	if n <= 0 {
		return false
	}
	head := buf[:n]
	// A multi-byte rune may be cut at the read window edge; trimming
	// up to UTFMax-1 trailing bytes must make the sample valid UTF-8.
	for trim := 0; trim < utf8.UTFMax && len(head) > 0; trim++ {
		if utf8.Valid(head) {
			return true
		}
		head = head[:len(head)-1]
	}
	return false
}

func (s *PlainTextStrategy) Extract(_ context.Context, filePath string) *Result {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(),
			fmt.Sprintf("file not found: %s", filePath), seconds(start))
	}
	if info.Size() == 0 {
		return successResult(emptyStream{}, filePath, s.Name(), seconds(start),
			map[string]any{"file_size": int64(0), "encoding": "utf-8", "chunk_size": ChunkSize})
	}
	if !s.Validate(filePath) {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted text file: %s", filePath), seconds(start))
	}

	f, err := os.Open(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(), err.Error(), seconds(start))
	}
	return successResult(newFileStream(f), filePath, s.Name(), seconds(start), map[string]any{
		"file_size":  info.Size(),
		"encoding":   "utf-8",
		"chunk_size": ChunkSize,
	})
}

// canHandle is the shared extension-or-MIME check used by every
// strategy.
func canHandle(s Strategy, filePath, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range s.Extensions() {
		if e == ext {
			return true
		}
	}
	for _, m := range s.MIMETypes() {
		if strings.EqualFold(m, mimeType) {
			return true
		}
	}
	return false
}

func seconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}
