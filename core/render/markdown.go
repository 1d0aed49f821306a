// Package render provides output renderers for parse reports.
// This file implements the Markdown renderer, which converts the serialized
// document's markup with html-to-markdown. Block delimiters are comments and
// do not survive the conversion.
package render

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// MarkdownRenderer writes the document content as Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts the serialized document to Markdown.
func (r *MarkdownRenderer) Render(report *core.Report) ([]byte, error) {
	markdown, err := htmltomarkdown.ConvertString(report.Serialized)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return []byte(markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// HTMLRenderer writes the serialized document unchanged.
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render returns the serialized document.
func (r *HTMLRenderer) Render(report *core.Report) ([]byte, error) {
	return []byte(report.Serialized), nil
}

// Extension returns the file extension for serialized output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}
