package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/gaurav-prasanna/blockpipe/core"
)

func TestRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&core.BlockType{Name: "acme/card"}))

	bt, ok := r.Lookup("acme/card")
	require.True(t, ok)
	assert.Equal(t, "acme/card", bt.Name)

	_, ok = r.Lookup("acme/missing")
	assert.False(t, ok)
}

func TestRegister_ReportsEveryProblem(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&core.BlockType{Name: "acme/card"}))

	err := r.Register(
		&core.BlockType{Name: "acme/card"},
		&core.BlockType{Name: "NoNamespace"},
		nil,
		&core.BlockType{Name: "acme/image", Attributes: map[string]*core.AttributeSchema{
			"src": {Source: core.SourceAttribute, Selector: "img"},
		}},
		&core.BlockType{Name: "acme/gallery", Attributes: map[string]*core.AttributeSchema{
			"images": {Source: core.SourceQuery, Selector: "img", Query: map[string]*core.AttributeSchema{
				"alt": nil,
			}},
		}},
		&core.BlockType{Name: "acme/ok"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBlockType)
	assert.Len(t, multierr.Errors(err), 5)

	assert.Equal(t, []string{"acme/card", "acme/ok"}, r.Names())
}

func TestRegister_ChecksDeprecationSchemas(t *testing.T) {
	err := New().Register(&core.BlockType{
		Name: "acme/card",
		Deprecations: []core.Deprecation{{
			Attributes: map[string]*core.AttributeSchema{"x": nil},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deprecation 0")
}

func TestMustRegister_Panics(t *testing.T) {
	assert.Panics(t, func() { New().MustRegister(&core.BlockType{Name: "bad"}) })
}

func TestUnregister(t *testing.T) {
	r := New()
	r.MustRegister(&core.BlockType{Name: "acme/card"})

	assert.True(t, r.Unregister("acme/card"))
	assert.False(t, r.Unregister("acme/card"))
	assert.Empty(t, r.Names())
}

func TestRegisterCore(t *testing.T) {
	r := New()
	require.NoError(t, RegisterCore(r, "", ""))

	for _, name := range []string{FreeformBlock, MissingBlock, ParagraphBlock, HeadingBlock, GroupBlock, CoverBlock} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Len(t, r.Names(), len(CoreTypes("", "")))

	assert.Error(t, RegisterCore(r, "", ""), "second registration collides")
}

func TestCoreTypes_DefaultFallbackNames(t *testing.T) {
	types := CoreTypes("", "")
	assert.Equal(t, FreeformBlock, types[0].Name)
	assert.Equal(t, MissingBlock, types[1].Name)
	assert.NoError(t, New().Register(types...))
}

func TestRegisterCore_CustomFallbackNames(t *testing.T) {
	r := New()
	require.NoError(t, RegisterCore(r, "acme/classic", "acme/unknown"))

	_, ok := r.Lookup("acme/classic")
	assert.True(t, ok)
	_, ok = r.Lookup(FreeformBlock)
	assert.False(t, ok)
}

func TestCoreRenders(t *testing.T) {
	types := map[string]*core.BlockType{}
	for _, bt := range CoreTypes("", "") {
		types[bt.Name] = bt
	}

	tests := []struct {
		name  string
		block string
		attrs core.Attributes
		want  string
	}{
		{"paragraph", ParagraphBlock, core.Attributes{"content": "x", "align": "center", "dropCap": true},
			`<p class="has-text-align-center has-drop-cap">x</p>`},
		{"heading", HeadingBlock, core.Attributes{"content": "T", "level": 3.0}, `<h3>T</h3>`},
		{"heading default level", HeadingBlock, core.Attributes{"content": "T"}, `<h2>T</h2>`},
		{"ordered list", ListBlock, core.Attributes{"ordered": true, "values": "<li>a</li>"}, `<ol><li>a</li></ol>`},
		{"quote", QuoteBlock, core.Attributes{"value": "<p>q</p>", "citation": "me"},
			`<blockquote class="wp-block-quote"><p>q</p><cite>me</cite></blockquote>`},
		{"image", ImageBlock, core.Attributes{"url": "a.png", "alt": `"A"`, "id": 7.0},
			`<figure class="wp-block-image"><img src="a.png" alt="&#34;A&#34;" class="wp-image-7"/></figure>`},
		{"separator", SeparatorBlock, core.Attributes{}, `<hr class="wp-block-separator"/>`},
		{"group", GroupBlock, core.Attributes{"tagName": "section"},
			`<section class="wp-block-group">` + core.InnerBlocksPlaceholder + `</section>`},
		{"social link", SocialLinkBlock, core.Attributes{"service": "x"}, ``},
		{"embed without url", EmbedBlock, core.Attributes{}, ``},
		{"cover", CoverBlock, core.Attributes{"url": "bg.jpg"},
			`<div class="wp-block-cover has-background-dim" style="background-image:url(bg.jpg)"><div class="wp-block-cover__inner-container">` +
				core.InnerBlocksPlaceholder + `</div></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := types[tt.block].Render(tt.attrs, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHeadingRender_RejectsBadLevel(t *testing.T) {
	_, err := headingType().Render(core.Attributes{"level": 9.0}, nil)
	assert.Error(t, err)
}
