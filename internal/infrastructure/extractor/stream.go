package extractor

import (
	"io"
	"os"
	"strings"
)

// ChunkSize is the upper bound on the size of a single emitted text
// chunk. Chunk boundaries carry no semantic meaning except for
// row-oriented strategies, which never split a row across chunks.
const ChunkSize = 8192

// Stream is a finite, single-pass producer of extracted text chunks.
// Next returns io.EOF after the final chunk; a stream is never
// restartable.
type Stream interface {
	Next() (string, error)
}

// Drain consumes the stream and concatenates every chunk.
func Drain(s Stream) (string, error) {
	var b strings.Builder
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
}

// NewReader adapts a stream to io.Reader so extracted text can be
// piped straight into blob storage without buffering the whole
// document.
func NewReader(s Stream) io.Reader {
	return &streamReader{stream: s}
}

type streamReader struct {
	stream Stream
	rest   []byte
	done   bool
}

func (r *streamReader) Read(p []byte) (int, error) {
	for len(r.rest) == 0 {
		if r.done {
			return 0, io.EOF
		}
		chunk, err := r.stream.Next()
		if err == io.EOF {
			r.done = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		r.rest = []byte(chunk)
	}
	n := copy(p, r.rest)
	r.rest = r.rest[n:]
	return n, nil
}

// emptyStream yields no chunks. Used for zero-byte inputs and for the
// text field of failed results.
type emptyStream struct{}

func (emptyStream) Next() (string, error) { return "", io.EOF }

// sliceStream yields pre-computed chunks in order.
type sliceStream struct {
	chunks []string
	pos    int
}

func newSliceStream(chunks []string) *sliceStream {
	return &sliceStream{chunks: chunks}
}

func (s *sliceStream) Next() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

// fileStream reads a file in fixed-size byte chunks. Concatenating its
// chunks reproduces the file byte for byte.
type fileStream struct {
	f   *os.File
	buf []byte
}

func newFileStream(f *os.File) *fileStream {
	return &fileStream{f: f, buf: make([]byte, ChunkSize)}
}

func (s *fileStream) Next() (string, error) {
	n, err := s.f.Read(s.buf)
	if n > 0 {
		return string(s.buf[:n]), nil
	}
	if err == io.EOF {
		_ = s.f.Close()
		return "", io.EOF
	}
	if err != nil {
		_ = s.f.Close()
		return "", err
	}
	return "", io.EOF
}

// splitText cuts free-form text into chunks of at most ChunkSize
// bytes.
func splitText(text string) []string {
	if text == "" {
		return nil
	}
	chunks := make([]string, 0, len(text)/ChunkSize+1)
	for len(text) > ChunkSize {
		chunks = append(chunks, text[:ChunkSize])
		text = text[ChunkSize:]
	}
	return append(chunks, text)
}

// packLines groups whole lines into chunks of at most ChunkSize bytes
// without ever splitting a line. A single line longer than ChunkSize
// becomes its own oversized chunk.
func packLines(lines []string) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line) > ChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
