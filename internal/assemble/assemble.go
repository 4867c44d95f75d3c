package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docsift/internal/section"
)

// Output is the structural contract of a batch run. Field order and names
// are fixed; consumers parse this shape byte-for-byte.
type Output struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionEntry  `json:"subsection_analysis"`
}

type Metadata struct {
	Documents []string `json:"documents"`
	Persona   string   `json:"persona"`
	Job       string   `json:"job"`
	Timestamp string   `json:"timestamp"`
}

type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

type SubsectionEntry struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Build packages ranked sections and subsection analyses with run metadata.
// Pure structural transform; the ranked order is preserved as given.
func Build(documents []string, persona, job string, now time.Time, results []section.RankedResult, subs []section.Subsection) *Output {
	out := &Output{
		Metadata: Metadata{
			Documents: documents,
			Persona:   persona,
			Job:       job,
			Timestamp: now.Format(time.RFC3339),
		},
		ExtractedSections:  make([]ExtractedSection, 0, len(results)),
		SubsectionAnalysis: make([]SubsectionEntry, 0, len(subs)),
	}
	byID := make(map[string]section.RankedResult, len(results))
	for _, r := range results {
		out.ExtractedSections = append(out.ExtractedSections, ExtractedSection{
			Document:       r.Document,
			SectionTitle:   r.Title,
			ImportanceRank: r.ImportanceRank,
			PageNumber:     r.PageNumber,
		})
		byID[r.SectionID] = r
	}
	for _, s := range subs {
		doc := ""
		if r, ok := byID[s.SectionID]; ok {
			doc = r.Document
		}
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, SubsectionEntry{
			Document:    doc,
			RefinedText: s.Text,
			PageNumber:  s.PageNumber,
		})
	}
	return out
}

// WriteFile serializes the output and moves it into place atomically:
// either a complete, well-formed result exists at path or none does.
func WriteFile(path string, out *Output) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docsift-out-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
