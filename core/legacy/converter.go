// Package legacy rewrites block names and attribute shapes that were
// renamed over the lifetime of the block format to their current form.
// Rules are checked in order and only the first matching rule is applied.
package legacy

import (
	"strings"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// Rule is one independent rewrite.
type Rule struct {
	Name      string
	Matches   func(name string, attrs core.Attributes) bool
	Transform func(name string, attrs core.Attributes) (string, core.Attributes)
}

// Converter applies an ordered rule list.
type Converter struct {
	rules []Rule
}

// New creates a Converter with the given rules, in priority order.
func New(rules ...Rule) *Converter {
	return &Converter{rules: rules}
}

// Default creates a Converter with the built-in rules.
func Default() *Converter {
	return New(DefaultRules()...)
}

// Rules returns the converter's rules in evaluation order.
func (c *Converter) Rules() []Rule {
	return c.rules
}

// Convert returns the canonical name and attributes. Unmatched input is
// returned unchanged; matched input is never modified in place.
func (c *Converter) Convert(name string, attrs core.Attributes) (string, core.Attributes) {
	for _, r := range c.rules {
		if r.Matches(name, attrs) {
			return r.Transform(name, attrs)
		}
	}
	return name, attrs
}

// ConvertBlock applies Convert to a raw block.
func (c *Converter) ConvertBlock(raw core.RawBlock) core.RawBlock {
	name, attrs := c.Convert(raw.Name, raw.Attrs)
	raw.Name = name
	raw.Attrs = attrs
	return raw
}

// Rename returns a rule mapping one exact name to another.
func Rename(from, to string) Rule {
	return Rule{
		Name:    from + " -> " + to,
		Matches: func(name string, _ core.Attributes) bool { return name == from },
		Transform: func(_ string, attrs core.Attributes) (string, core.Attributes) {
			return to, attrs
		},
	}
}

// SuffixToAttribute returns a rule mapping prefix+suffix to name with the
// suffix stored in attribute key.
func SuffixToAttribute(prefix, name, key string) Rule {
	return Rule{
		Name: prefix + "* -> " + name,
		Matches: func(n string, _ core.Attributes) bool {
			return strings.HasPrefix(n, prefix) && len(n) > len(prefix)
		},
		Transform: func(n string, attrs core.Attributes) (string, core.Attributes) {
			out := attrs.Clone()
			out[key] = strings.TrimPrefix(n, prefix)
			return name, out
		},
	}
}

var deprecatedEmbedProviders = map[string]string{
	"speaker":   "speaker-deck",
	"polldaddy": "crowdsignal",
}

// DefaultRules returns the built-in rewrite table.
func DefaultRules() []Rule {
	return []Rule{
		Rename("core/cover-image", "core/cover"),
		Rename("core/text", "core/paragraph"),
		Rename("core/cover-text", "core/paragraph"),
		SuffixToAttribute("core/social-link-", "core/social-link", "service"),
		{
			Name:    "core-embed/* -> core/embed",
			Matches: func(n string, _ core.Attributes) bool { return strings.HasPrefix(n, "core-embed/") },
			Transform: func(n string, attrs core.Attributes) (string, core.Attributes) {
				slug := strings.TrimPrefix(n, "core-embed/")
				out := attrs.Clone()
				if renamed, ok := deprecatedEmbedProviders[slug]; ok {
					out["providerNameSlug"] = renamed
				} else {
					out["providerNameSlug"] = slug
				}
				if slug != "amazon-kindle" && slug != "wordpress" {
					out["responsive"] = true
				}
				return "core/embed", out
			},
		},
		Rename("core/post-comment-author", "core/comment-author-name"),
		Rename("core/post-comment-content", "core/comment-content"),
		Rename("core/post-comment-date", "core/comment-date"),
		{
			Name:    "core/comments-query-loop -> core/comments",
			Matches: func(n string, _ core.Attributes) bool { return n == "core/comments-query-loop" },
			Transform: func(_ string, attrs core.Attributes) (string, core.Attributes) {
				out := attrs.Clone()
				className, _ := out["className"].(string)
				if !strings.Contains(className, "wp-block-comments-query-loop") {
					out["className"] = strings.TrimSpace("wp-block-comments-query-loop " + className)
				}
				return "core/comments", out
			},
		},
		{
			Name:    "core/post-comments -> core/comments",
			Matches: func(n string, _ core.Attributes) bool { return n == "core/post-comments" },
			Transform: func(_ string, attrs core.Attributes) (string, core.Attributes) {
				out := attrs.Clone()
				out["legacy"] = true
				return "core/comments", out
			},
		},
	}
}
