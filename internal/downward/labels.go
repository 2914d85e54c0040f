package downward

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// DefaultLabelsPath is where the pod's downwardAPI volume projects
// metadata.labels.
const DefaultLabelsPath = "/etc/podinfo/labels"

const asciiSpace = " \t\n\v\f\r"

// Label is one key/value pair from the labels file.
type Label struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// LabelSourceError reports that the labels file could not be read. Every
// failure (missing file, permission denied, read error) maps to it.
type LabelSourceError struct {
	Path string
	Err  error
}

func (e *LabelSourceError) Error() string {
	return fmt.Sprintf("Labels file not found at %s", e.Path)
}

func (e *LabelSourceError) Unwrap() error { return e.Err }

// LabelSet is either a parsed list of labels or a source error, never both.
// Check OK before ranging over Labels.
type LabelSet struct {
	Labels []Label
	Err    *LabelSourceError
}

// OK reports whether the labels file was read.
func (s LabelSet) OK() bool { return s.Err == nil }

// Get returns the value stored for key.
func (s LabelSet) Get(key string) (string, bool) {
	for _, l := range s.Labels {
		if l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// ReadLabels opens path on fsys and parses it. It never returns a fault:
// an unreadable source comes back as a LabelSet with Err set.
func ReadLabels(fsys afero.Fs, path string) LabelSet {
	f, err := fsys.Open(path)
	if err != nil {
		return LabelSet{Err: &LabelSourceError{Path: path, Err: err}}
	}
	defer f.Close()

	labels, err := ParseLabels(f)
	if err != nil {
		return LabelSet{Err: &LabelSourceError{Path: path, Err: err}}
	}
	return LabelSet{Labels: labels}
}

// ParseLabels reads key=value lines from r. Lines have no length limit.
// Empty lines and lines without '=' are skipped. A key seen twice keeps its
// first position and takes the last value. The returned slice is non-nil.
func ParseLabels(r io.Reader) ([]Label, error) {
	labels := make([]Label, 0)
	index := make(map[string]int)

	br := bufio.NewReader(r)
	for done := false; !done; {
		line, err := br.ReadString('\n')
		switch {
		case err == io.EOF:
			done = true
		case err != nil:
			return nil, fmt.Errorf("read labels: %w", err)
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line == "" {
			continue
		}
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		if i, exists := index[key]; exists {
			labels[i].Value = value
			continue
		}
		index[key] = len(labels)
		labels = append(labels, Label{Key: key, Value: value})
	}
	return labels, nil
}

// parseLine splits line at the first '='. The value loses surrounding
// whitespace and then at most one double quote at each end.
func parseLine(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.Trim(key, asciiSpace)
	value = strings.Trim(value, asciiSpace)
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return key, value, true
}
