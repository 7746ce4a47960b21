package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph with </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r><w:r><w:t> text.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestWordDocumentExtract(t *testing.T) {
	path := writeTempDocx(t, sampleDocumentXML)

	s := NewWordDocumentStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("extract failed: %s", res.ErrorMessage)
	}
	text, err := Drain(res.Text)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}

	if !strings.Contains(text, "First paragraph with bold text.") {
		t.Errorf("runs not joined: %q", text)
	}
	if !strings.Contains(text, "Second\ttabbed.") {
		t.Errorf("tab not preserved: %q", text)
	}
	if !strings.Contains(text, "text.\nSecond") {
		t.Errorf("paragraph break missing: %q", text)
	}
	if res.Metadata["paragraphs"] != 2 {
		t.Errorf("paragraphs = %v, want 2", res.Metadata["paragraphs"])
	}
	if res.Metadata["format"] != "docx" {
		t.Errorf("format = %v", res.Metadata["format"])
	}
}

func TestWordDocumentMissingPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hollow.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("word/styles.xml")
	_, _ = w.Write([]byte("<styles/>"))
	_ = zw.Close()
	_ = f.Close()

	s := NewWordDocumentStrategy()
	res := s.Extract(context.Background(), path)
	if res.Success {
		t.Fatal("expected failure without word/document.xml")
	}
	if res.Kind != KindCorrupted {
		t.Errorf("kind = %s, want %s", res.Kind, KindCorrupted)
	}
}

func TestWordDocumentNotAZip(t *testing.T) {
	path := writeTempFile(t, "fake.docx", "plain bytes, not an archive")

	s := NewWordDocumentStrategy()
	res := s.Extract(context.Background(), path)
	if res.Success {
		t.Fatal("expected failure for non-zip content")
	}
	if res.Kind != KindCorrupted {
		t.Errorf("kind = %s, want %s", res.Kind, KindCorrupted)
	}
}

func TestWordDocumentEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.docx", "")

	s := NewWordDocumentStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("empty file must succeed: %s", res.ErrorMessage)
	}
	if text, _ := Drain(res.Text); text != "" {
		t.Errorf("expected no text, got %q", text)
	}
}
