package extractor

import (
	"io"
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	text := strings.Repeat("x", ChunkSize*2+100)
	chunks := splitText(text)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != ChunkSize || len(chunks[1]) != ChunkSize || len(chunks[2]) != 100 {
		t.Errorf("chunk sizes = %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("concatenated chunks do not reproduce input")
	}
}

func TestSplitTextEmpty(t *testing.T) {
	if chunks := splitText(""); chunks != nil {
		t.Errorf("splitText(\"\") = %v, want nil", chunks)
	}
}

func TestPackLinesRespectsBoundaries(t *testing.T) {
	line := strings.Repeat("y", 3000) + "\n"
	chunks := packLines([]string{line, line, line, line})
	// Two 3001-byte lines fit a chunk; the third would overflow.
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	for i, c := range chunks {
		if len(c)%len(line) != 0 {
			t.Errorf("chunk %d splits a line: %d bytes", i, len(c))
		}
	}
}

func TestPackLinesOversizedLine(t *testing.T) {
	huge := strings.Repeat("z", ChunkSize+500) + "\n"
	chunks := packLines([]string{"small\n", huge, "tail\n"})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if chunks[1] != huge {
		t.Error("oversized line must be its own chunk, intact")
	}
}

func TestStreamReader(t *testing.T) {
	s := newSliceStream([]string{"hello ", "world"})
	data, err := io.ReadAll(NewReader(s))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("got %q", data)
	}
}

func TestDrainEmptyStream(t *testing.T) {
	text, err := Drain(emptyStream{})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if text != "" {
		t.Errorf("got %q", text)
	}
}
