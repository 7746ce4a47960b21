package extractor

import (
	"context"
	"strings"
	"testing"
)

func TestPlainTextRoundTrip(t *testing.T) {
	content := strings.Repeat("The quick brown fox jumps over the lazy dog.\n", 400)
	path := writeTempFile(t, "big.txt", content)

	s := NewPlainTextStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("extract failed: %s", res.ErrorMessage)
	}
	got, err := Drain(res.Text)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if got != content {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(content))
	}
	if res.Metadata["encoding"] != "utf-8" {
		t.Errorf("encoding = %v", res.Metadata["encoding"])
	}
	if res.Metadata["chunk_size"] != ChunkSize {
		t.Errorf("chunk_size = %v", res.Metadata["chunk_size"])
	}
}

func TestPlainTextEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "")

	s := NewPlainTextStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("empty file must succeed: %s", res.ErrorMessage)
	}
	if text, _ := Drain(res.Text); text != "" {
		t.Errorf("expected no text, got %q", text)
	}
	if res.Metadata["file_size"] != int64(0) {
		t.Errorf("file_size = %v, want 0", res.Metadata["file_size"])
	}
}

func TestPlainTextBinaryIsCorrupted(t *testing.T) {
	path := writeTempFile(t, "blob.txt", "\xff\xfe\x00\x01garbage\x80\x81")

	s := NewPlainTextStrategy()
	res := s.Extract(context.Background(), path)
	if res.Success {
		t.Fatal("expected failure for non-UTF-8 content")
	}
	if res.Kind != KindCorrupted {
		t.Errorf("kind = %s, want %s", res.Kind, KindCorrupted)
	}
}

func TestPlainTextValidateAllowsRuneCutAtSampleEdge(t *testing.T) {
	// 1023 ASCII bytes followed by a multi-byte rune that straddles the
	// 1024-byte validation window.
	content := strings.Repeat("a", 1023) + "é and more text"
	path := writeTempFile(t, "edge.txt", content)

	s := NewPlainTextStrategy()
	if !s.Validate(path) {
		t.Error("validate rejected a rune cut at the sample boundary")
	}
}

func TestPlainTextCanHandle(t *testing.T) {
	s := NewPlainTextStrategy()
	if !s.CanHandle("notes.md", "") {
		t.Error("should handle .md by extension")
	}
	if !s.CanHandle("unknown.bin", "text/plain") {
		t.Error("should handle text/plain by MIME type")
	}
	if s.CanHandle("doc.pdf", "application/pdf") {
		t.Error("should not handle PDF")
	}
}
