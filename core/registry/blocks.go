package registry

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// Built-in block names.
const (
	FreeformBlock   = "core/freeform"
	MissingBlock    = "core/missing"
	ParagraphBlock  = "core/paragraph"
	HeadingBlock    = "core/heading"
	ListBlock       = "core/list"
	QuoteBlock      = "core/quote"
	ImageBlock      = "core/image"
	GroupBlock      = "core/group"
	SeparatorBlock  = "core/separator"
	HTMLBlock       = "core/html"
	SocialLinkBlock = "core/social-link"
	EmbedBlock      = "core/embed"
	CoverBlock      = "core/cover"
)

const (
	classNameAttr     = "className"
	headingSelector   = "h1,h2,h3,h4,h5,h6"
	defaultCoverDim   = 50.0
	defaultHeadingLvl = 2.0
)

// RegisterCore registers the built-in block types. freeform and missing name
// the fallback types for markup outside blocks and for unknown blocks.
func RegisterCore(r *Registry, freeform, missing string) error {
	return r.Register(CoreTypes(freeform, missing)...)
}

// CoreTypes returns fresh definitions of the built-in block types. Empty
// fallback names select FreeformBlock and MissingBlock.
func CoreTypes(freeform, missing string) []*core.BlockType {
	if freeform == "" {
		freeform = FreeformBlock
	}
	if missing == "" {
		missing = MissingBlock
	}
	return []*core.BlockType{
		freeformType(freeform),
		missingType(missing),
		paragraphType(),
		headingType(),
		listType(),
		quoteType(),
		imageType(),
		groupType(),
		separatorType(),
		htmlType(),
		socialLinkType(),
		embedType(),
		coverType(),
	}
}

func comment(types ...core.AttrType) *core.AttributeSchema {
	return &core.AttributeSchema{Source: core.SourceComment, Type: types}
}

func withClassName(attrs map[string]*core.AttributeSchema) map[string]*core.AttributeSchema {
	attrs[classNameAttr] = comment(core.TypeString)
	return attrs
}

func freeformType(name string) *core.BlockType {
	return &core.BlockType{
		Name: name,
		Attributes: map[string]*core.AttributeSchema{
			"content": {Source: core.SourceHTML},
		},
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			return str(attrs, "content"), nil
		},
		DisableCustomClassName: true,
	}
}

func missingType(name string) *core.BlockType {
	return &core.BlockType{
		Name: name,
		Attributes: map[string]*core.AttributeSchema{
			"originalName":               comment(core.TypeString),
			"originalContent":            comment(core.TypeString),
			"originalUndelimitedContent": comment(core.TypeString),
		},
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			return str(attrs, "originalContent"), nil
		},
		DisableCustomClassName: true,
	}
}

func paragraphType() *core.BlockType {
	content := &core.AttributeSchema{Source: core.SourceHTML, Selector: "p", Type: []core.AttrType{core.TypeString}, Default: ""}
	return &core.BlockType{
		Name: ParagraphBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"content": content,
			"align":   comment(core.TypeString),
			"dropCap": {Source: core.SourceComment, Type: []core.AttrType{core.TypeBoolean}, Default: false},
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			class := classes(
				prefixed("has-text-align-", str(attrs, "align")),
				flag(attrs, "dropCap", "has-drop-cap"),
				str(attrs, classNameAttr),
			)
			return "<p" + attr("class", class) + ">" + str(attrs, "content") + "</p>", nil
		},
		Deprecations: []core.Deprecation{{
			// Alignment used to be written as an inline style.
			Attributes: withClassName(map[string]*core.AttributeSchema{
				"content": content,
				"align":   comment(core.TypeString),
			}),
			Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
				style := ""
				if align := str(attrs, "align"); align != "" {
					style = "text-align:" + align
				}
				return "<p" + attr("class", str(attrs, classNameAttr)) + attr("style", style) + ">" +
					str(attrs, "content") + "</p>", nil
			},
		}},
	}
}

func headingType() *core.BlockType {
	content := &core.AttributeSchema{Source: core.SourceHTML, Selector: headingSelector, Type: []core.AttrType{core.TypeString}, Default: ""}
	return &core.BlockType{
		Name: HeadingBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"content":   content,
			"level":     {Source: core.SourceComment, Type: []core.AttrType{core.TypeNumber}, Default: defaultHeadingLvl},
			"textAlign": comment(core.TypeString),
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			level := num(attrs, "level", defaultHeadingLvl)
			if level < 1 || level > 6 || level != float64(int(level)) {
				return "", fmt.Errorf("heading level %v out of range", level)
			}
			tag := "h" + strconv.Itoa(int(level))
			class := classes(prefixed("has-text-align-", str(attrs, "textAlign")), str(attrs, classNameAttr))
			return "<" + tag + attr("class", class) + ">" + str(attrs, "content") + "</" + tag + ">", nil
		},
		Deprecations: []core.Deprecation{{
			// The heading level used to be stored as the tag name.
			Attributes: withClassName(map[string]*core.AttributeSchema{
				"content":  content,
				"nodeName": {Source: core.SourceTag, Selector: headingSelector, Type: []core.AttrType{core.TypeString}, Default: "h2"},
			}),
			IsEligible: func(commentAttrs core.Attributes, _ []*core.ParsedBlock) bool {
				_, ok := commentAttrs["nodeName"]
				return ok
			},
			Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
				tag := strings.ToLower(str(attrs, "nodeName"))
				return "<" + tag + attr("class", str(attrs, classNameAttr)) + ">" + str(attrs, "content") + "</" + tag + ">", nil
			},
			Migrate: func(attrs core.Attributes, inner []*core.ParsedBlock) (core.Attributes, []*core.ParsedBlock) {
				nodeName := strings.ToLower(str(attrs, "nodeName"))
				delete(attrs, "nodeName")
				if len(nodeName) == 2 && nodeName[1] >= '1' && nodeName[1] <= '6' {
					attrs["level"] = float64(nodeName[1] - '0')
				}
				return attrs, inner
			},
		}},
	}
}

func listType() *core.BlockType {
	return &core.BlockType{
		Name: ListBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"ordered": {Source: core.SourceComment, Type: []core.AttrType{core.TypeBoolean}, Default: false},
			"values":  {Source: core.SourceHTML, Selector: "ol,ul", Multiline: "li", Type: []core.AttrType{core.TypeString}, Default: ""},
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			tag := "ul"
			if b, _ := attrs["ordered"].(bool); b {
				tag = "ol"
			}
			return "<" + tag + attr("class", str(attrs, classNameAttr)) + ">" + str(attrs, "values") + "</" + tag + ">", nil
		},
	}
}

func quoteType() *core.BlockType {
	return &core.BlockType{
		Name: QuoteBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"value":    {Source: core.SourceHTML, Selector: "blockquote", Multiline: "p", Type: []core.AttrType{core.TypeString}, Default: ""},
			"citation": {Source: core.SourceHTML, Selector: "cite", Type: []core.AttrType{core.TypeString}, Default: ""},
			"align":    comment(core.TypeString),
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			class := classes("wp-block-quote", prefixed("has-text-align-", str(attrs, "align")), str(attrs, classNameAttr))
			var b strings.Builder
			b.WriteString("<blockquote" + attr("class", class) + ">")
			b.WriteString(str(attrs, "value"))
			if citation := str(attrs, "citation"); citation != "" {
				b.WriteString("<cite>" + citation + "</cite>")
			}
			b.WriteString("</blockquote>")
			return b.String(), nil
		},
	}
}

func imageType() *core.BlockType {
	return &core.BlockType{
		Name: ImageBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"url":     {Source: core.SourceAttribute, Selector: "img", Attribute: "src", Type: []core.AttrType{core.TypeString}},
			"alt":     {Source: core.SourceAttribute, Selector: "img", Attribute: "alt", Type: []core.AttrType{core.TypeString}, Default: ""},
			"caption": {Source: core.SourceHTML, Selector: "figcaption", Type: []core.AttrType{core.TypeString}},
			"href":    {Source: core.SourceAttribute, Selector: "figure > a", Attribute: "href", Type: []core.AttrType{core.TypeString}},
			"id":      comment(core.TypeNumber),
			"align":   comment(core.TypeString),
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			imgClass := ""
			if id, ok := attrs["id"].(float64); ok {
				imgClass = "wp-image-" + strconv.FormatFloat(id, 'f', -1, 64)
			}
			img := "<img" + attr("src", str(attrs, "url")) + attr("alt", str(attrs, "alt")) + attr("class", imgClass) + "/>"
			if href := str(attrs, "href"); href != "" {
				img = "<a" + attr("href", href) + ">" + img + "</a>"
			}
			class := classes("wp-block-image", prefixed("align", str(attrs, "align")), str(attrs, classNameAttr))
			out := "<figure" + attr("class", class) + ">" + img
			if caption := str(attrs, "caption"); caption != "" {
				out += "<figcaption>" + caption + "</figcaption>"
			}
			return out + "</figure>", nil
		},
	}
}

func groupType() *core.BlockType {
	return &core.BlockType{
		Name: GroupBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"tagName": {Source: core.SourceComment, Type: []core.AttrType{core.TypeString}, Default: "div"},
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			tag := str(attrs, "tagName")
			if tag == "" {
				tag = "div"
			}
			class := classes("wp-block-group", str(attrs, classNameAttr))
			return "<" + tag + attr("class", class) + ">" + core.InnerBlocksPlaceholder + "</" + tag + ">", nil
		},
	}
}

func separatorType() *core.BlockType {
	return &core.BlockType{
		Name:       SeparatorBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			return "<hr" + attr("class", classes("wp-block-separator", str(attrs, classNameAttr))) + "/>", nil
		},
	}
}

func htmlType() *core.BlockType {
	return &core.BlockType{
		Name: HTMLBlock,
		Attributes: map[string]*core.AttributeSchema{
			"content": {Source: core.SourceHTML, Type: []core.AttrType{core.TypeString}},
		},
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			return str(attrs, "content"), nil
		},
		DisableCustomClassName: true,
	}
}

// socialLinkType is rendered on the server; only its comment is stored.
func socialLinkType() *core.BlockType {
	return &core.BlockType{
		Name: SocialLinkBlock,
		Attributes: map[string]*core.AttributeSchema{
			"service": comment(core.TypeString),
			"url":     comment(core.TypeString),
			"label":   comment(core.TypeString),
		},
		Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
			return "", nil
		},
		DisableCustomClassName: true,
	}
}

func embedType() *core.BlockType {
	return &core.BlockType{
		Name: EmbedBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"url":              comment(core.TypeString),
			"type":             comment(core.TypeString),
			"providerNameSlug": comment(core.TypeString),
			"responsive":       {Source: core.SourceComment, Type: []core.AttrType{core.TypeBoolean}, Default: false},
			"caption":          {Source: core.SourceHTML, Selector: "figcaption", Type: []core.AttrType{core.TypeString}},
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			url := str(attrs, "url")
			if url == "" {
				return "", nil
			}
			slug := str(attrs, "providerNameSlug")
			class := classes(
				"wp-block-embed",
				prefixed("is-type-", str(attrs, "type")),
				prefixed("is-provider-", slug),
				prefixed("wp-block-embed-", slug),
				str(attrs, classNameAttr),
			)
			out := "<figure" + attr("class", class) + `><div class="wp-block-embed__wrapper">` + "\n" +
				html.EscapeString(url) + "\n</div>"
			if caption := str(attrs, "caption"); caption != "" {
				out += "<figcaption>" + caption + "</figcaption>"
			}
			return out + "</figure>", nil
		},
	}
}

func coverType() *core.BlockType {
	return &core.BlockType{
		Name: CoverBlock,
		Attributes: withClassName(map[string]*core.AttributeSchema{
			"url":      comment(core.TypeString),
			"dimRatio": {Source: core.SourceComment, Type: []core.AttrType{core.TypeNumber}, Default: defaultCoverDim},
		}),
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			dim := ""
			if num(attrs, "dimRatio", defaultCoverDim) != 0 {
				dim = "has-background-dim"
			}
			style := ""
			if url := str(attrs, "url"); url != "" {
				style = "background-image:url(" + url + ")"
			}
			class := classes("wp-block-cover", dim, str(attrs, classNameAttr))
			return "<div" + attr("class", class) + attr("style", style) + `><div class="wp-block-cover__inner-container">` +
				core.InnerBlocksPlaceholder + "</div></div>", nil
		},
	}
}

func str(attrs core.Attributes, key string) string {
	s, _ := attrs[key].(string)
	return s
}

func num(attrs core.Attributes, key string, fallback float64) float64 {
	switch v := attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func flag(attrs core.Attributes, key, class string) string {
	if b, _ := attrs[key].(bool); b {
		return class
	}
	return ""
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// attr renders name="value", or nothing for an empty value.
func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return " " + name + `="` + html.EscapeString(value) + `"`
}
