package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for graphs.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Unknown extensions
// are treated as YAML, which also accepts JSON documents.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parser is responsible for converting raw bytes into a Graph.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a JSON or YAML graph. Documents starting with '{' are read
// as JSON with exact numbers; anything else is read as YAML.
func (p *Parser) Parse(data []byte) (*domain.Graph, error) {
	var g domain.Graph
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("failed to parse graph: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}

	for i, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node #%d", ErrMissingNodeID, i)
		}
	}
	return &g, nil
}

// Encode serializes g in the requested format.
func (p *Parser) Encode(g *domain.Graph, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(g, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
