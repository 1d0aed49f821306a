package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gaurav-prasanna/blockpipe/core"
)

func TestDefaultRules(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		attrs     core.Attributes
		wantName  string
		wantAttrs core.Attributes
	}{
		{"cover image", "core/cover-image", core.Attributes{"url": "a"}, "core/cover", core.Attributes{"url": "a"}},
		{"text", "core/text", core.Attributes{}, "core/paragraph", core.Attributes{}},
		{"cover text", "core/cover-text", core.Attributes{}, "core/paragraph", core.Attributes{}},
		{"social link", "core/social-link-wordpress", core.Attributes{"url": "u"}, "core/social-link",
			core.Attributes{"url": "u", "service": "wordpress"}},
		{"embed", "core-embed/youtube", core.Attributes{}, "core/embed",
			core.Attributes{"providerNameSlug": "youtube", "responsive": true}},
		{"embed renamed provider", "core-embed/speaker", core.Attributes{}, "core/embed",
			core.Attributes{"providerNameSlug": "speaker-deck", "responsive": true}},
		{"embed not responsive", "core-embed/wordpress", core.Attributes{}, "core/embed",
			core.Attributes{"providerNameSlug": "wordpress"}},
		{"comment author", "core/post-comment-author", core.Attributes{}, "core/comment-author-name", core.Attributes{}},
		{"comment content", "core/post-comment-content", core.Attributes{}, "core/comment-content", core.Attributes{}},
		{"comment date", "core/post-comment-date", core.Attributes{}, "core/comment-date", core.Attributes{}},
		{"comments query loop", "core/comments-query-loop", core.Attributes{"className": "mine"}, "core/comments",
			core.Attributes{"className": "wp-block-comments-query-loop mine"}},
		{"post comments", "core/post-comments", core.Attributes{}, "core/comments", core.Attributes{"legacy": true}},
		{"unmatched", "core/paragraph", core.Attributes{"a": 1.0}, "core/paragraph", core.Attributes{"a": 1.0}},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, attrs := c.Convert(tt.in, tt.attrs)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantAttrs, attrs)
		})
	}
}

func TestConvert_QueryLoopClassNotDuplicated(t *testing.T) {
	_, attrs := Default().Convert("core/comments-query-loop", core.Attributes{"className": "wp-block-comments-query-loop"})
	assert.Equal(t, "wp-block-comments-query-loop", attrs["className"])
}

func TestConvert_DoesNotMutateInput(t *testing.T) {
	in := core.Attributes{"url": "u"}
	_, out := Default().Convert("core/social-link-github", in)

	assert.Equal(t, core.Attributes{"url": "u"}, in)
	assert.Equal(t, "github", out["service"])
}

func TestConvert_FirstMatchOnly(t *testing.T) {
	c := New(
		Rename("a/x", "a/y"),
		Rename("a/y", "a/z"),
		Rename("a/x", "a/never"),
	)
	name, _ := c.Convert("a/x", nil)
	assert.Equal(t, "a/y", name)
	assert.Len(t, c.Rules(), 3)
}

func TestConvertBlock(t *testing.T) {
	raw := core.RawBlock{Name: "core/text", Attrs: core.Attributes{}, InnerHTML: "<p>x</p>"}
	out := Default().ConvertBlock(raw)
	assert.Equal(t, "core/paragraph", out.Name)
	assert.Equal(t, "<p>x</p>", out.InnerHTML)
}

func TestSuffixToAttribute_RequiresSuffix(t *testing.T) {
	r := SuffixToAttribute("core/social-link-", "core/social-link", "service")
	assert.False(t, r.Matches("core/social-link-", nil))
	assert.False(t, r.Matches("core/social-link", nil))
	assert.True(t, r.Matches("core/social-link-x", nil))
}
