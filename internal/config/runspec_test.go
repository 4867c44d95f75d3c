package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write spec file: %v", err)
	}
	return path
}

func TestLoadRunSpec_Valid(t *testing.T) {
	path := writeSpec(t, `{
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip of 4 days for a group of 10 college friends"},
		"documents": [
			{"filename": "south_of_france_cities.pdf", "title": "South of France - Cities"},
			{"filename": "south_of_france_cuisine.pdf"}
		]
	}`)

	spec, err := LoadRunSpec(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Persona.Role != "Travel Planner" {
		t.Errorf("unexpected role %q", spec.Persona.Role)
	}
	if spec.JobToBeDone.Task == "" {
		t.Errorf("task not parsed")
	}
	if len(spec.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(spec.Documents))
	}
	if spec.Documents[0].Title != "South of France - Cities" {
		t.Errorf("title not parsed: %q", spec.Documents[0].Title)
	}
}

func TestLoadRunSpec_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{nope`},
		{"missing role", `{"persona":{},"job_to_be_done":{"task":"t"},"documents":[{"filename":"a.pdf"}]}`},
		{"missing task", `{"persona":{"role":"r"},"job_to_be_done":{},"documents":[{"filename":"a.pdf"}]}`},
		{"empty documents", `{"persona":{"role":"r"},"job_to_be_done":{"task":"t"},"documents":[]}`},
		{"document without filename", `{"persona":{"role":"r"},"job_to_be_done":{"task":"t"},"documents":[{"title":"only a title"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunSpec(writeSpec(t, tt.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadRunSpec_MissingFile(t *testing.T) {
	_, err := LoadRunSpec(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("missing file must report a malformed configuration, got %v", err)
	}
}
