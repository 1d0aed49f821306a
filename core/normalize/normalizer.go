// Package normalize fills in the defaults of a raw block before it is
// looked up and parsed.
// Markup that belongs to the freeform fallback block is additionally
// passed through Autop, so classic content keeps its implicit paragraphs.
package normalize

import (
	"strings"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// Normalizer normalizes raw blocks against a fallback block name.
type Normalizer struct {
	FallbackName string
	SkipAutop    bool
}

// New creates a Normalizer for the given freeform fallback block name.
func New(fallbackName string, skipAutop bool) *Normalizer {
	return &Normalizer{FallbackName: fallbackName, SkipAutop: skipAutop}
}

// Normalize returns a copy of raw with a name, attributes, trimmed inner
// markup and inner blocks always present.
func (n *Normalizer) Normalize(raw core.RawBlock) core.RawBlock {
	out := raw
	if out.Name == "" {
		out.Name = n.FallbackName
	}
	if out.Attrs == nil {
		out.Attrs = core.Attributes{}
	}
	if out.InnerBlocks == nil {
		out.InnerBlocks = []core.RawBlock{}
	}

	html := strings.TrimSpace(raw.InnerHTML)
	if out.Name == n.FallbackName && !n.SkipAutop {
		html = strings.TrimSpace(Autop(html))
	}
	out.InnerHTML = html
	return out
}
