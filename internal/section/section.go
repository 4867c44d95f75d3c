package section

// Document is one ingested source file and the sections carved out of it.
type Document struct {
	ID        string // UUID assigned at ingestion
	Filename  string // As listed in the run configuration
	Title     string // From layout analysis or the filename
	PageCount int
	Sections  []Section
}

// Section is a contiguous span of document text introduced by a heading.
// Sections within one document are non-overlapping and ordered by StartPage.
type Section struct {
	ID           string // UUID
	DocumentID   string
	Heading      string // Never empty; "Untitled" when no heading block was found
	HeadingLevel int    // 1 = largest heading font observed in the document
	StartPage    int    // 1-indexed
	Content      string // Concatenated body text, heading excluded
	Embedding    []float64
}

// Subsection is a smaller unit inside a top-ranked section, re-ranked for
// fine-grained relevance.
type Subsection struct {
	SectionID  string
	Text       string
	PageNumber int
	Score      float64
}

// RankedResult records a section's position in the final relevance ordering.
type RankedResult struct {
	DocumentID     string
	SectionID      string
	ImportanceRank int // 1-based, unique, ascending by relevance
	PageNumber     int
	Title          string
	Document       string // Source filename
	Score          float64
}
