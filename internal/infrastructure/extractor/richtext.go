package extractor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RichTextStrategy strips RTF markup down to plain text. The parser
// walks control words and groups directly; no markup token may survive
// into the output.
type RichTextStrategy struct{}

func NewRichTextStrategy() *RichTextStrategy { return &RichTextStrategy{} }

func (s *RichTextStrategy) Name() string { return "rich_text" }

func (s *RichTextStrategy) Extensions() []string { return []string{".rtf"} }

func (s *RichTextStrategy) MIMETypes() []string {
	return []string{"application/rtf", "text/rtf"}
}

func (s *RichTextStrategy) CanHandle(filePath, mimeType string) bool {
	return canHandle(s, filePath, mimeType)
}

func (s *RichTextStrategy) Validate(filePath string) bool {
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

	buf := make([]byte, 6)
	n, _ := f.Read(buf)
	return n >= 5 && strings.HasPrefix(string(buf[:n]), `{\rtf`)
}

func (s *RichTextStrategy) Extract(_ context.Context, filePath string) *Result {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(),
			fmt.Sprintf("file not found: %s", filePath), seconds(start))
	}
	if info.Size() == 0 {
		return successResult(emptyStream{}, filePath, s.Name(), seconds(start),
			map[string]any{"file_size": int64(0), "format": "rtf"})
	}
	if !s.Validate(filePath) {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted RTF file: %s", filePath), seconds(start))
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(), err.Error(), seconds(start))
	}

	text := stripRTF(string(raw))
	return successResult(newSliceStream(splitText(text)), filePath, s.Name(), seconds(start), map[string]any{
		"file_size": info.Size(),
		"format":    "rtf",
	})
}

// destinations whose group content is metadata, not document text.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
	"*":          true,
}

// stripRTF converts RTF source to plain text. \par and \line become
// newlines, \tab a tab, and \'hh escapes decode as cp1252-adjacent
// bytes. Skippable destination groups are dropped entirely.
func stripRTF(src string) string {
	var out strings.Builder
	skipDepth := 0
	depth := 0
	i := 0

	for i < len(src) {
		c := src[i]
		switch c {
		case '{':
			depth++
			i++
			// A group opening with a skippable destination is dropped
			// until its matching brace.
			if skipDepth == 0 {
				if word, _ := peekControlWord(src, i); rtfSkipGroups[word] {
					skipDepth = depth
				}
			}
		case '}':
			if skipDepth != 0 && depth == skipDepth {
				skipDepth = 0
			}
			depth--
			i++
		case '\\':
			word, next := readControl(src, i+1, &out, skipDepth == 0)
			i = next
			_ = word
		case '\r', '\n':
			i++
		default:
			if skipDepth == 0 {
				out.WriteByte(c)
			}
			i++
		}
	}
	return strings.TrimSpace(out.String())
}

// peekControlWord reads the control word at src[i] (after a '{')
// without consuming it, handling the \*\dest ignorable marker.
func peekControlWord(src string, i int) (string, int) {
	if i >= len(src) || src[i] != '\\' {
		return "", i
	}
	j := i + 1
	if j < len(src) && src[j] == '*' {
		// \* flags an ignorable destination; the word follows.
		j++
		if j < len(src) && src[j] == '\\' {
			j++
		} else {
			return "*", j
		}
	}
	start := j
	for j < len(src) && isAlpha(src[j]) {
		j++
	}
	return src[start:j], j
}

// readControl consumes a control word or symbol starting after the
// backslash and emits its textual equivalent when emit is true.
// Returns the word and the index past the consumed sequence.
func readControl(src string, i int, out *strings.Builder, emit bool) (string, int) {
	if i >= len(src) {
		return "", i
	}

	c := src[i]
	if !isAlpha(c) {
		// Control symbol: escaped brace/backslash, hex escape, or a
		// one-character control like \~.
		switch c {
		case '\\', '{', '}':
			if emit {
				out.WriteByte(c)
			}
			return string(c), i + 1
		case '\'':
			if i+2 < len(src) {
				if v, err := strconv.ParseUint(src[i+1:i+3], 16, 8); err == nil {
					if emit {
						out.WriteRune(rune(v))
					}
					return "'", i + 3
				}
			}
			return "'", i + 1
		case '~':
			if emit {
				out.WriteByte(' ')
			}
			return "~", i + 1
		default:
			return string(c), i + 1
		}
	}

	start := i
	for i < len(src) && isAlpha(src[i]) {
		i++
	}
	word := src[start:i]

	// Optional numeric parameter.
	if i < len(src) && (src[i] == '-' || isDigit(src[i])) {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	// A single space after a control word is part of the word.
	if i < len(src) && src[i] == ' ' {
		i++
	}

	if emit {
		switch word {
		case "par", "line", "row":
			out.WriteByte('\n')
		case "tab", "cell":
			out.WriteByte('\t')
		case "emdash", "endash":
			out.WriteByte('-')
		case "lquote", "rquote":
			out.WriteByte('\'')
		case "ldblquote", "rdblquote":
			out.WriteByte('"')
		}
	}
	return word, i
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
