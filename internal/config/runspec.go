package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMalformed marks a run configuration that fails validation.
var ErrMalformed = errors.New("malformed run configuration")

// RunSpec is the batch input configuration: who is reading, why, and which
// documents to rank across.
type RunSpec struct {
	Persona struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
	Documents []RunDocument `json:"documents"`
}

// RunDocument names one input PDF.
type RunDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// LoadRunSpec reads and validates the run configuration file.
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var spec RunSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %v", ErrMalformed, path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the required fields.
func (s *RunSpec) Validate() error {
	if s.Persona.Role == "" {
		return fmt.Errorf("%w: persona.role is required", ErrMalformed)
	}
	if s.JobToBeDone.Task == "" {
		return fmt.Errorf("%w: job_to_be_done.task is required", ErrMalformed)
	}
	if len(s.Documents) == 0 {
		return fmt.Errorf("%w: documents must be a non-empty list", ErrMalformed)
	}
	for i, d := range s.Documents {
		if d.Filename == "" {
			return fmt.Errorf("%w: documents[%d] missing filename", ErrMalformed, i)
		}
	}
	return nil
}
