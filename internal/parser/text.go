package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. Plain text carries no heading
// markup, so the whole document becomes one untitled section with
// blank-line paragraph breaks preserved.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]Section, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b builder
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				b.Text(current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		b.Text(current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Sections(), nil
}
