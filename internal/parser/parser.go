package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Section is one heading-delimited span of a corpus document, in reading
// order. Level is 0 for preamble text that appears before the first heading.
type Section struct {
	Heading string
	Level   int
	Content string
}

// Parser converts raw document bytes into ordered sections. PDF documents
// do not go through this package; they carry font metadata and are handled
// by the layout and segment packages.
type Parser interface {
	Parse(r io.Reader, filename string) ([]Section, error)
}

// SupportedExtensions lists file extensions the corpus index can handle
// through this package.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// builder accumulates sections as a parser walks a document. Text seen
// before any heading lands in an untitled preamble section.
type builder struct {
	sections []Section
	heading  string
	level    int
	body     strings.Builder
}

func (b *builder) Heading(title string, level int) {
	b.flush()
	b.heading = strings.TrimSpace(title)
	b.level = level
}

func (b *builder) Text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.body.Len() > 0 {
		b.body.WriteString("\n\n")
	}
	b.body.WriteString(t)
}

func (b *builder) flush() {
	content := strings.TrimSpace(b.body.String())
	if content != "" || b.heading != "" {
		b.sections = append(b.sections, Section{
			Heading: b.heading,
			Level:   b.level,
			Content: content,
		})
	}
	b.heading = ""
	b.level = 0
	b.body.Reset()
}

// Sections finalizes the walk and returns everything collected so far.
func (b *builder) Sections() []Section {
	b.flush()
	return b.sections
}
