// Package render: JSON renderer.
// Writes the parsed block tree with per-block validity and a summary of
// how many blocks were read, migrated or left invalid.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// Summary counts blocks at every nesting depth.
type Summary struct {
	Blocks  int            `json:"blocks"`
	Invalid int            `json:"invalid"`
	ByName  map[string]int `json:"by_name"`
}

type jsonReport struct {
	Source      string              `json:"source"`
	GeneratedAt string              `json:"generated_at"`
	Summary     Summary             `json:"summary"`
	Blocks      []*core.ParsedBlock `json:"blocks"`
}

// JSONRenderer produces the block tree as JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the report.
func (r *JSONRenderer) Render(report *core.Report) ([]byte, error) {
	out := jsonReport{
		Source:      report.Source,
		GeneratedAt: report.GeneratedAt,
		Summary:     Summarize(report.Blocks),
		Blocks:      report.Blocks,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Summarize counts blocks, recursing into inner blocks.
func Summarize(blocks []*core.ParsedBlock) Summary {
	s := Summary{ByName: map[string]int{}}
	Walk(blocks, func(b *core.ParsedBlock, _ int) {
		s.Blocks++
		s.ByName[b.Name]++
		if !b.IsValid {
			s.Invalid++
		}
	})
	return s
}

// Walk visits blocks depth first with their nesting depth.
func Walk(blocks []*core.ParsedBlock, visit func(b *core.ParsedBlock, depth int)) {
	var walk func([]*core.ParsedBlock, int)
	walk = func(bs []*core.ParsedBlock, depth int) {
		for _, b := range bs {
			visit(b, depth)
			walk(b.InnerBlocks, depth+1)
		}
	}
	walk(blocks, 0)
}
