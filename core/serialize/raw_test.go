package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/grammar"
)

func TestReserialize_TokenizedBlocksAreExact(t *testing.T) {
	docs := []string{
		"<!-- wp:paragraph -->\n<p>x</p>\n<!-- /wp:paragraph -->",
		`<!-- wp:separator {"a":1}   /-->`,
		"<!-- wp:group {\"tagName\":\"section\"} --><section>\n\n<!-- wp:paragraph --><p>a</p><!-- /wp:paragraph -->\n\n</section><!-- /wp:group -->",
		"just freeform\n\ntext",
	}
	s := newSerializer()
	for _, doc := range docs {
		raws := grammar.Tokenize(doc)
		require.Len(t, raws, 1, doc)
		assert.Equal(t, doc, s.Reserialize(raws[0], DelimitAll))
	}
}

func TestReserialize_TopLevelModes(t *testing.T) {
	raws := grammar.Tokenize("<!-- wp:group -->\n<div><!-- wp:paragraph --><p>a</p><!-- /wp:paragraph --></div>\n<!-- /wp:group -->")
	require.Len(t, raws, 1)
	s := newSerializer()

	want := "<div><!-- wp:paragraph --><p>a</p><!-- /wp:paragraph --></div>"
	assert.Equal(t, want, s.Reserialize(raws[0], DelimitNone))
	assert.Equal(t, want, s.Reserialize(raws[0], DelimitNoTopLevel))
}

func TestReserialize_ConstructedBlock(t *testing.T) {
	inner := core.RawBlock{
		Name:         "core/paragraph",
		Attrs:        core.Attributes{},
		InnerHTML:    "<p>a</p>",
		InnerContent: []*string{core.Chunk("<p>a</p>")},
	}
	opening, closing := "<div>\n\n", "\n</div>"
	raw := core.RawBlock{
		Name:         "core/group",
		Attrs:        core.Attributes{"tagName": "div"},
		InnerContent: []*string{&opening, nil, &closing},
		InnerBlocks:  []core.RawBlock{inner},
	}
	s := newSerializer()

	assert.Equal(t,
		"<!-- wp:group {\"tagName\":\"div\"} -->\n<div>\n<!-- wp:paragraph -->\n<p>a</p>\n<!-- /wp:paragraph -->\n</div>\n<!-- /wp:group -->",
		s.Reserialize(raw, DelimitAll))
	assert.Equal(t,
		"<div>\n<!-- wp:paragraph -->\n<p>a</p>\n<!-- /wp:paragraph -->\n</div>",
		s.Reserialize(raw, DelimitNone))
}

func TestReserialize_ExtraMarkerIsSkipped(t *testing.T) {
	text := "<p>x</p>"
	raw := core.RawBlock{
		Name:         "core/paragraph",
		InnerContent: []*string{&text, nil},
	}
	assert.Equal(t, "<p>x</p>", newSerializer().Reserialize(raw, DelimitNone))
}

func TestDelimiterMode_String(t *testing.T) {
	assert.Equal(t, "all", DelimitAll.String())
	assert.Equal(t, "none", DelimitNone.String())
	assert.Equal(t, "no-top-level", DelimitNoTopLevel.String())
	assert.Equal(t, "unknown", DelimiterMode(9).String())
}
