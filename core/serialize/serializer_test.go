package serialize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/grammar"
)

type fixtures map[string]*core.BlockType

func (f fixtures) Lookup(name string) (*core.BlockType, bool) {
	bt, ok := f[name]
	return bt, ok
}

func testRegistry() fixtures {
	return fixtures{
		"core/paragraph": {
			Name: "core/paragraph",
			Attributes: map[string]*core.AttributeSchema{
				"content": {Source: core.SourceHTML, Selector: "p", Default: ""},
				"align":   {Source: core.SourceComment},
				"dropCap": {Source: core.SourceComment, Default: false},
			},
			Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
				content, _ := attrs["content"].(string)
				return "<p>" + content + "</p>", nil
			},
		},
		"core/group": {
			Name: "core/group",
			Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
				return "<div>" + core.InnerBlocksPlaceholder + "</div>", nil
			},
		},
		"core/separator": {
			Name: "core/separator",
			Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
				return "<hr/>", nil
			},
		},
		"core/broken": {
			Name: "core/broken",
			Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
				return "", errors.New("boom")
			},
		},
		"core/freeform": {
			Name: "core/freeform",
			Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
				content, _ := attrs["content"].(string)
				return content, nil
			},
		},
		"core/empty": {Name: "core/empty"},
	}
}

func newSerializer() *Serializer {
	return New(testRegistry(), Config{FreeformName: "core/freeform", UnregisteredName: "core/missing"}, nil)
}

func TestSerializeAttributes_Escapes(t *testing.T) {
	out := SerializeAttributes(core.Attributes{"b": `"q"`, "a": "--<>&"})
	assert.Equal(t, `{"a":"\u002d\u002d\u003c\u003e\u0026","b":"\u0022q\u0022"}`, out)
}

func TestSerializeAttributes_SortedKeys(t *testing.T) {
	out := SerializeAttributes(core.Attributes{"z": 1.0, "a": true, "m": []any{"x"}})
	assert.Equal(t, `{"a":true,"m":["x"],"z":1}`, out)
}

func TestSerializeAttributes_MatchesScriptJSON(t *testing.T) {
	out := SerializeAttributes(core.Attributes{"s": "a\u2028b\u2029c", "lit": `x\u2028`})
	assert.Equal(t, "{\"lit\":\"x\\\\u2028\",\"s\":\"a\u2028b\u2029c\"}", out)

	out = SerializeAttributes(core.Attributes{"big": 1e21, "small": 1e-7, "n": 0.1})
	assert.Equal(t, `{"big":1e+21,"n":0.1,"small":1e-7}`, out)
}

func TestCommentDelimited(t *testing.T) {
	s := newSerializer()

	assert.Equal(t, "<!-- wp:paragraph -->\n<p>x</p>\n<!-- /wp:paragraph -->",
		s.CommentDelimited("core/paragraph", nil, "<p>x</p>"))
	assert.Equal(t, `<!-- wp:separator {"a":1} /-->`,
		s.CommentDelimited("core/separator", core.Attributes{"a": 1.0}, ""))
	assert.Equal(t, "<!-- wp:my/block /-->",
		s.CommentDelimited("my/block", core.Attributes{}, ""))
}

func TestCommentDelimited_CustomNamespace(t *testing.T) {
	s := New(testRegistry(), Config{DefaultNamespace: "acme"}, nil)
	assert.Equal(t, "<!-- wp:widget /-->", s.CommentDelimited("acme/widget", nil, ""))
	assert.Equal(t, "<!-- wp:core/widget /-->", s.CommentDelimited("core/widget", nil, ""))
}

func TestCommentAttributes_OmitsDefaultsAndMarkupSources(t *testing.T) {
	bt := testRegistry()["core/paragraph"]
	out := CommentAttributes(bt, core.Attributes{"content": "x", "align": "left", "dropCap": false})
	assert.Equal(t, core.Attributes{"align": "left"}, out)
}

func TestCommentAttributes_NullDefault(t *testing.T) {
	bt := &core.BlockType{Name: "core/figure", Attributes: map[string]*core.AttributeSchema{
		"caption": {Source: core.SourceComment, NullDefault: true},
		"note":    {Source: core.SourceComment},
	}}
	out := CommentAttributes(bt, core.Attributes{"caption": nil, "note": nil})
	assert.Equal(t, core.Attributes{"note": nil}, out)
}

func TestBlock_CommentAttributes(t *testing.T) {
	b := &core.ParsedBlock{
		Name:       "core/paragraph",
		Attributes: core.Attributes{"content": "hi", "align": "center", "dropCap": false},
		IsValid:    true,
	}
	assert.Equal(t, "<!-- wp:paragraph {\"align\":\"center\"} -->\n<p>hi</p>\n<!-- /wp:paragraph -->",
		newSerializer().Block(b))
}

func TestBlock_InnerBlocksPlaceholder(t *testing.T) {
	group := &core.ParsedBlock{
		Name:    "core/group",
		IsValid: true,
		InnerBlocks: []*core.ParsedBlock{
			{Name: "core/paragraph", Attributes: core.Attributes{"content": "a"}, IsValid: true},
			{Name: "core/separator", IsValid: true},
		},
	}
	want := "<!-- wp:group -->\n<div>" +
		"<!-- wp:paragraph -->\n<p>a</p>\n<!-- /wp:paragraph -->\n" +
		"<!-- wp:separator -->\n<hr/>\n<!-- /wp:separator -->" +
		"</div>\n<!-- /wp:group -->"
	assert.Equal(t, want, newSerializer().Block(group))
}

func TestBlock_EmptyRenderIsSelfClosing(t *testing.T) {
	b := &core.ParsedBlock{Name: "core/empty", IsValid: true}
	assert.Equal(t, "<!-- wp:empty /-->", newSerializer().Block(b))
}

func TestBlock_RenderErrorKeepsOriginalContent(t *testing.T) {
	b := &core.ParsedBlock{Name: "core/broken", OriginalContent: "<p>orig</p>", IsValid: true}
	assert.Equal(t, "<!-- wp:broken -->\n<p>orig</p>\n<!-- /wp:broken -->", newSerializer().Block(b))
}

func TestBlock_UnknownTypeKeepsOriginalContent(t *testing.T) {
	b := &core.ParsedBlock{Name: "acme/gone", Attributes: core.Attributes{"x": "y"}, OriginalContent: "<b>x</b>", IsValid: true}
	assert.Equal(t, "<!-- wp:acme/gone {\"x\":\"y\"} -->\n<b>x</b>\n<!-- /wp:acme/gone -->", newSerializer().Block(b))
}

func TestBlock_FreeformIsUndelimitedAtTopLevel(t *testing.T) {
	s := newSerializer()
	free := &core.ParsedBlock{Name: "core/freeform", Attributes: core.Attributes{"content": "<p>t</p>"}, IsValid: true}
	assert.Equal(t, "<p>t</p>", s.Block(free))

	group := &core.ParsedBlock{Name: "core/group", IsValid: true, InnerBlocks: []*core.ParsedBlock{free}}
	assert.Equal(t, "<!-- wp:group -->\n<div><!-- wp:freeform -->\n<p>t</p>\n<!-- /wp:freeform --></div>\n<!-- /wp:group -->",
		s.Block(group))
}

func TestBlock_InvalidReproducesRawSource(t *testing.T) {
	doc := "<!-- wp:paragraph {\"align\":\"left\"} --><p>a</p><p>b</p><!-- /wp:paragraph -->"
	raws := grammar.Tokenize(doc)
	require.Len(t, raws, 1)

	b := &core.ParsedBlock{
		Name:       "core/paragraph",
		Attributes: core.Attributes{"content": "a"},
		IsValid:    false,
		RawSource:  &raws[0],
	}
	assert.Equal(t, doc, newSerializer().Block(b))
}

func TestDocument_JoinsWithBlankLine(t *testing.T) {
	blocks := []*core.ParsedBlock{
		{Name: "core/paragraph", Attributes: core.Attributes{"content": "a"}, IsValid: true},
		{Name: "core/empty", IsValid: true},
	}
	assert.Equal(t, "<!-- wp:paragraph -->\n<p>a</p>\n<!-- /wp:paragraph -->\n\n<!-- wp:empty /-->",
		newSerializer().Document(blocks))
	assert.Empty(t, newSerializer().Document(nil))
}
