package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/blockpipe/core"
)

func sampleReport() *core.Report {
	return &core.Report{
		Source:      "post.html",
		GeneratedAt: "2026-01-02T03:04:05Z",
		Blocks: []*core.ParsedBlock{
			{
				ClientID: "1",
				Name:     "core/group",
				IsValid:  true,
				InnerBlocks: []*core.ParsedBlock{
					{ClientID: "2", Name: "core/paragraph", IsValid: true, Attributes: core.Attributes{"content": "x"}},
				},
			},
			{
				ClientID:        "3",
				Name:            "core/paragraph",
				OriginalContent: "<p>a</p>\n<p>b</p>",
				ValidationIssues: []core.ValidationIssue{
					{Level: "warning", Template: "Expected end of content, instead saw %s.", Args: []any{"<p>"}},
					{Level: "error", Template: "Block validation failed for `%s`.\n\nmore", Args: []any{"core/paragraph"}},
				},
			},
		},
		Serialized: "<!-- wp:paragraph -->\n<p><strong>x</strong></p>\n<!-- /wp:paragraph -->",
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleReport().Blocks)
	assert.Equal(t, 3, s.Blocks)
	assert.Equal(t, 1, s.Invalid)
	assert.Equal(t, map[string]int{"core/group": 1, "core/paragraph": 2}, s.ByName)
}

func TestWalk_Depth(t *testing.T) {
	var visited []string
	var depths []int
	Walk(sampleReport().Blocks, func(b *core.ParsedBlock, depth int) {
		visited = append(visited, b.ClientID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"1", "2", "3"}, visited)
	assert.Equal(t, []int{0, 1, 0}, depths)
}

func TestJSONRenderer(t *testing.T) {
	r := NewJSONRenderer()
	data, err := r.Render(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, ".json", r.Extension())

	var decoded struct {
		Source  string `json:"source"`
		Summary struct {
			Blocks  int `json:"blocks"`
			Invalid int `json:"invalid"`
		} `json:"summary"`
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "post.html", decoded.Source)
	assert.Equal(t, 3, decoded.Summary.Blocks)
	assert.Equal(t, 1, decoded.Summary.Invalid)
	require.Len(t, decoded.Blocks, 2)
	assert.NotContains(t, string(data), "Serialized")
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer()
	data, err := r.Render(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, string(data), "**x**")
	assert.NotContains(t, string(data), "wp:paragraph")
	assert.Equal(t, ".md", r.Extension())
}

func TestHTMLRenderer(t *testing.T) {
	report := sampleReport()
	r := NewHTMLRenderer()
	data, err := r.Render(report)
	require.NoError(t, err)
	assert.Equal(t, report.Serialized, string(data))
	assert.Equal(t, ".html", r.Extension())
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer()
	data, err := r.Render(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.Equal(t, ".pdf", r.Extension())
}

func TestIssueText_FirstLineOnly(t *testing.T) {
	issue := core.ValidationIssue{Template: "Block validation failed for `%s`.\n\nmore", Args: []any{"core/quote"}}
	assert.Equal(t, "Block validation failed for `core/quote`.", issueText(issue))
}
