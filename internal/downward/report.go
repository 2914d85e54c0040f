package downward

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the serializable form of a Snapshot. Labels is nil and
// LabelsError set when the labels file was unavailable.
type Report struct {
	Complete    bool      `json:"complete" yaml:"complete"`
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`
	Runtime     []Fact    `json:"runtime" yaml:"runtime"`
	Labels      []Label   `json:"labels" yaml:"labels"`
	LabelsError string    `json:"labels_error,omitempty" yaml:"labels_error,omitempty"`
}

// Report converts s to its serializable form.
func (s Snapshot) Report() Report {
	r := Report{
		Complete:    s.Complete(),
		CollectedAt: s.CollectedAt,
		Runtime:     []Fact(s.Runtime),
	}
	if s.Labels.OK() {
		r.Labels = s.Labels.Labels
	} else {
		r.LabelsError = s.Labels.Err.Error()
	}
	return r
}

// Format selects a Report encoding.
type Format string

// Supported encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format. The empty string
// selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// ContentType returns the media type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes r to w in format f.
func (r Report) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}
