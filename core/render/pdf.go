// Package render: PDF renderer.
// Produces a validation report: a summary, then one entry per block with
// its validity and, for invalid blocks, the recorded issues and stored markup.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// PDFRenderer renders a parse report as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the report into PDF bytes.
func (r *PDFRenderer) Render(report *core.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, "Block validation report", "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+report.Source), "", "L", false)
	pdf.MultiCell(0, 5, "Generated: "+report.GeneratedAt, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	summary := Summarize(report.Blocks)
	renderHeading(pdf, "Summary", 2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d blocks, %d invalid", summary.Blocks, summary.Invalid), "", "L", false)
	names := make([]string, 0, len(summary.ByName))
	for name := range summary.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pdf.MultiCell(0, 5, fmt.Sprintf("- %s: %d", name, summary.ByName[name]), "", "L", false)
	}

	renderHeading(pdf, "Blocks", 2)
	Walk(report.Blocks, func(b *core.ParsedBlock, depth int) {
		indent := float64(depth) * 6
		status := "valid"
		if !b.IsValid {
			status = "INVALID"
		}

		pdf.SetX(pdf.GetX() + indent)
		pdf.SetFont("Helvetica", "B", 10)
		if !b.IsValid {
			pdf.SetTextColor(180, 0, 0)
		}
		pdf.MultiCell(0, 5, tr(b.Name+" ("+status+")"), "", "L", false)
		pdf.SetTextColor(0, 0, 0)

		if b.IsValid {
			return
		}
		pdf.SetFont("Helvetica", "", 9)
		for _, issue := range b.ValidationIssues {
			pdf.SetX(pdf.GetX() + indent)
			pdf.MultiCell(0, 4.5, tr("- "+issueText(issue)), "", "L", false)
		}

		// Stored markup, as in a code block.
		pdf.Ln(2)
		pdf.SetFont("Courier", "", 8)
		pdf.SetFillColor(245, 245, 245)
		for _, line := range strings.Split(b.OriginalContent, "\n") {
			pdf.SetX(pdf.GetX() + indent)
			pdf.MultiCell(0, 4, tr(line), "", "L", true)
		}
		pdf.Ln(2)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(2)
}

// issueText fills in an issue's template, keeping only its first line.
func issueText(issue core.ValidationIssue) string {
	text := fmt.Sprintf(issue.Template, issue.Args...)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}
