package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSVExtract(t *testing.T) {
	path := writeTempFile(t, "people.csv", "Name,Age,City\nJohn,30,NY\nJane,25,LA\n")

	s := NewCSVStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("extract failed: %s", res.ErrorMessage)
	}

	text, err := Drain(res.Text)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	want := "Name | Age | City\nJohn | 30 | NY\nJane | 25 | LA\n"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}

	if res.Metadata["format"] != "csv" {
		t.Errorf("format = %v", res.Metadata["format"])
	}
	if res.Metadata["delimiter"] != "," {
		t.Errorf("delimiter = %v", res.Metadata["delimiter"])
	}
	if res.Metadata["row_count"] != 2 {
		t.Errorf("row_count = %v, want 2", res.Metadata["row_count"])
	}
	if res.StrategyUsed != "csv" {
		t.Errorf("strategy = %s", res.StrategyUsed)
	}
}

func TestCSVColumnMismatchIsCorrupted(t *testing.T) {
	path := writeTempFile(t, "bad.csv", "a,b,c\n1,2\n3,4,5\n")

	s := NewCSVStrategy()
	res := s.Extract(context.Background(), path)
	if res.Success {
		t.Fatal("expected failure for inconsistent column count")
	}
	if res.Kind != KindCorrupted {
		t.Errorf("kind = %s, want %s", res.Kind, KindCorrupted)
	}
	// No partial content may leak from an invalid file.
	if text, _ := Drain(res.Text); text != "" {
		t.Errorf("failed result leaked text %q", text)
	}
}

func TestCSVEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	s := NewCSVStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("empty file must succeed: %s", res.ErrorMessage)
	}
	if text, _ := Drain(res.Text); text != "" {
		t.Errorf("expected no chunks, got %q", text)
	}
	if res.Metadata["file_size"] != int64(0) {
		t.Errorf("file_size = %v, want 0", res.Metadata["file_size"])
	}
	if res.Metadata["row_count"] != 0 {
		t.Errorf("row_count = %v, want 0", res.Metadata["row_count"])
	}
}

func TestCSVMissingFile(t *testing.T) {
	s := NewCSVStrategy()
	res := s.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if res.Success {
		t.Fatal("expected failure for missing file")
	}
	if res.Kind != KindFailed {
		t.Errorf("kind = %s, want %s", res.Kind, KindFailed)
	}
}

func TestCSVRowsNeverSplitAcrossChunks(t *testing.T) {
	// Enough uniform rows to overflow one chunk.
	content := "col1,col2,col3\n"
	row := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa,bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb,cccccccccccccccccccccccccccccccc\n"
	for i := 0; i < 200; i++ {
		content += row
	}
	path := writeTempFile(t, "wide.csv", content)

	s := NewCSVStrategy()
	res := s.Extract(context.Background(), path)
	if !res.Success {
		t.Fatalf("extract failed: %s", res.ErrorMessage)
	}

	chunks := 0
	for {
		chunk, err := res.Text.Next()
		if err != nil {
			break
		}
		chunks++
		if len(chunk) > ChunkSize {
			t.Errorf("chunk %d exceeds limit: %d bytes", chunks, len(chunk))
		}
		if chunk[len(chunk)-1] != '\n' {
			t.Errorf("chunk %d does not end on a row boundary", chunks)
		}
	}
	if chunks < 2 {
		t.Fatalf("expected multiple chunks, got %d", chunks)
	}
}
