// Package serialize turns parsed blocks back into comment-delimited markup.
// A block's markup is produced by its type's render function and wrapped in
// delimiters carrying the attributes that only live in the comment.
package serialize

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/extract"
)

// Config names the fallback block types and the namespace elided in
// delimiters.
type Config struct {
	FreeformName     string
	UnregisteredName string
	DefaultNamespace string
}

// Serializer serializes blocks of registered types.
type Serializer struct {
	registry core.Registry
	cfg      Config
	log      *zap.Logger
}

// New creates a Serializer resolving block types through reg.
func New(reg core.Registry, cfg Config, log *zap.Logger) *Serializer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DefaultNamespace == "" {
		cfg.DefaultNamespace = "core"
	}
	return &Serializer{registry: reg, cfg: cfg, log: log.Named("serialize")}
}

// Config returns the serializer's configuration.
func (s *Serializer) Config() Config {
	return s.cfg
}

// SaveContent renders a block's markup. The inner blocks placeholder is
// replaced by the serialized inner blocks.
func (s *Serializer) SaveContent(bt *core.BlockType, attrs core.Attributes, innerBlocks []*core.ParsedBlock) (string, error) {
	if bt.Render == nil {
		return "", nil
	}
	out, err := bt.Render(attrs, innerBlocks)
	if err != nil {
		return "", err
	}
	if strings.Contains(out, core.InnerBlocksPlaceholder) {
		out = strings.ReplaceAll(out, core.InnerBlocksPlaceholder, s.innerBlocks(innerBlocks))
	}
	return out, nil
}

func (s *Serializer) innerBlocks(blocks []*core.ParsedBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, s.block(b, true))
	}
	return strings.Join(parts, "\n")
}

// CommentAttributes returns the comment-sourced attributes of attrs that
// are defined and differ from their default.
func CommentAttributes(bt *core.BlockType, attrs core.Attributes) core.Attributes {
	out := core.Attributes{}
	for key, schema := range bt.Attributes {
		if schema.Source != core.SourceComment {
			continue
		}
		value, ok := attrs[key]
		if !ok {
			continue
		}
		if def, ok := schema.DefaultValue(); ok && extract.Equal(value, def) {
			continue
		}
		out[key] = value
	}
	return out
}

var attributeEscapes = strings.NewReplacer(
	"--", `\u002d\u002d`,
	"<", `\u003c`,
	">", `\u003e`,
	"&", `\u0026`,
	`\"`, `\u0022`,
)

// SerializeAttributes encodes attributes as JSON safe to embed in an HTML
// comment. Keys are written in sorted order.
func SerializeAttributes(attrs core.Attributes) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(attrs)); err != nil {
		return "{}"
	}
	return attributeEscapes.Replace(rawLineSeparators(strings.TrimSuffix(buf.String(), "\n")))
}

// rawLineSeparators undoes the \u2028 and \u2029 escapes encoding/json always
// writes, matching the JSON other block serializers produce.
func rawLineSeparators(s string) string {
	if !strings.Contains(s, `\u202`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch rest := s[i+1:]; {
		case strings.HasPrefix(rest, "u2028"):
			b.WriteRune('\u2028')
			i += 5
		case strings.HasPrefix(rest, "u2029"):
			b.WriteRune('\u2029')
			i += 5
		default:
			b.WriteString(s[i : i+2])
			i++
		}
	}
	return b.String()
}

// CommentDelimited wraps content in block delimiters. Empty content yields
// the self-closing form.
func (s *Serializer) CommentDelimited(name string, attrs core.Attributes, content string) string {
	serialized := ""
	if len(attrs) > 0 {
		serialized = SerializeAttributes(attrs) + " "
	}
	name = strings.TrimPrefix(name, s.cfg.DefaultNamespace+"/")

	if content == "" {
		return "<!-- wp:" + name + " " + serialized + "/-->"
	}
	return "<!-- wp:" + name + " " + serialized + "-->\n" + content + "\n<!-- /wp:" + name + " -->"
}

// Block serializes one block.
func (s *Serializer) Block(b *core.ParsedBlock) string {
	return s.block(b, false)
}

func (s *Serializer) block(b *core.ParsedBlock, inner bool) string {
	if !b.IsValid && b.RawSource != nil {
		return s.Reserialize(*b.RawSource, DelimitAll)
	}

	bt, ok := s.registry.Lookup(b.Name)
	if !ok {
		s.log.Warn("serializing block of unknown type", zap.String("block", b.Name))
		return s.CommentDelimited(b.Name, b.Attributes, b.OriginalContent)
	}

	content, err := s.SaveContent(bt, b.Attributes, b.InnerBlocks)
	if err != nil {
		s.log.Error("render failed, keeping original content",
			zap.String("block", b.Name), zap.Error(err))
		content = b.OriginalContent
	}

	if b.Name == s.cfg.UnregisteredName || (!inner && b.Name == s.cfg.FreeformName) {
		return content
	}
	return s.CommentDelimited(b.Name, CommentAttributes(bt, b.Attributes), content)
}

// Document serializes top-level blocks separated by a blank line.
func (s *Serializer) Document(blocks []*core.ParsedBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, s.Block(b))
	}
	return strings.Join(parts, "\n\n")
}
