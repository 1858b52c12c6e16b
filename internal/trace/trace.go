// Package trace loads trace documents: YAML files holding the ordered
// atomic events an instrumented algorithm run produced. Documents are
// validated against a CUE schema before use.
package trace

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/retrace/internal/op"
)

// Document is a named trace of atomic events.
type Document struct {
	Name   string     `yaml:"name"`
	Events []op.Event `yaml:"events"`
}

// Parse validates and decodes a YAML trace document. Event sequence
// numbers are assigned from document order (1-based); any seq values in
// the document are overwritten, since position in the trace is the only
// order that counts.
func Parse(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode trace document: %w", err)
	}

	for i := range doc.Events {
		doc.Events[i].Seq = int64(i + 1)
	}
	return &doc, nil
}

// Load reads and parses a trace document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
