package fileutil

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/harrison/verprep/internal/filelock"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// TextCodec reads and writes files as lines in one text encoding.
type TextCodec struct {
	name string
	enc  encoding.Encoding
}

// LookupEncoding returns the codec for a WHATWG encoding label such as
// "utf-8", "shift_jis" or "windows-1252". An empty name selects DefaultEncoding.
func LookupEncoding(name string) (*TextCodec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = name
	}
	return &TextCodec{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (c *TextCodec) Name() string {
	return c.name
}

// Decode converts raw file bytes to a string.
func (c *TextCodec) Decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", c.name, err)
	}
	return string(out), nil
}

// Encode converts text to the codec's encoding. Characters the encoding
// cannot represent are replaced rather than rejected.
func (c *TextCodec) Encode(text string) ([]byte, error) {
	out, _, err := transform.Bytes(encoding.ReplaceUnsupported(c.enc.NewEncoder()), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	return out, nil
}

// ReadLines reads path and splits it into lines.
func (c *TextCodec) ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return SplitLines(text), nil
}

// WriteLines joins lines with lineEnding, encodes them and writes path atomically.
func (c *TextCodec) WriteLines(path string, lines []string, lineEnding string, perm os.FileMode) error {
	data, err := c.Encode(JoinLines(lines, lineEnding))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return filelock.AtomicWrite(path, data, perm)
}

// SplitLines splits text on "\n", "\r\n" or "\r". A trailing terminator does
// not produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// JoinLines terminates every line with lineEnding.
func JoinLines(lines []string, lineEnding string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString(lineEnding)
	}
	return sb.String()
}
