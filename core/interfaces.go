// Package core defines the block pipeline data model and stage interfaces.
// Each stage of the pipeline is a clean, testable interface or function type;
// the concrete stages live in the sub-packages of core.
package core

import (
	"context"
	"errors"
)

// ErrInnerContentMismatch reports a raw block whose nested-block markers in
// InnerContent do not line up with its InnerBlocks.
var ErrInnerContentMismatch = errors.New("inner content markers do not match inner blocks")

// InnerBlocksPlaceholder is written by a render function at the position where
// the block's serialized inner blocks belong.
const InnerBlocksPlaceholder = "<!--wp:inner-blocks-->"

// Attributes maps attribute keys to JSON-compatible values. An attribute
// whose key is absent is undefined.
type Attributes map[string]any

// Clone returns a shallow copy of the attributes.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// RawBlock is a block node as produced by the grammar tokenizer.
type RawBlock struct {
	// Name is the namespaced block name; empty for freeform markup.
	Name string `json:"blockName"`
	// Attrs holds the comment attributes; nil when they could not be decoded.
	Attrs Attributes `json:"attrs"`
	// InnerHTML is the block's own markup, excluding nested blocks.
	InnerHTML string `json:"innerHTML"`
	// InnerContent interleaves literal markup with nil markers, one marker per
	// entry of InnerBlocks, in document order.
	InnerContent []*string  `json:"innerContent"`
	InnerBlocks  []RawBlock `json:"innerBlocks"`

	// Opener and Closer are the exact delimiter comments the block was read
	// from. Both are empty for blocks that were not produced by a tokenizer.
	Opener string `json:"-"`
	Closer string `json:"-"`
}

// Chunk returns a literal InnerContent entry.
func Chunk(s string) *string {
	return &s
}

// CheckInnerContent verifies that InnerContent carries exactly one nil marker
// per inner block, recursively.
func (b RawBlock) CheckInnerContent() error {
	markers := 0
	for _, item := range b.InnerContent {
		if item == nil {
			markers++
		}
	}
	if markers != len(b.InnerBlocks) {
		return ErrInnerContentMismatch
	}
	for _, inner := range b.InnerBlocks {
		if err := inner.CheckInnerContent(); err != nil {
			return err
		}
	}
	return nil
}

// Source selects the strategy used to recover an attribute value.
type Source int

const (
	// SourceComment reads the value from the block's comment attributes.
	SourceComment Source = iota
	SourceAttribute
	SourceHTML
	SourceText
	SourceChildren
	SourceQuery
	SourceTag
	// SourceMeta attributes are resolved outside the parse pipeline.
	SourceMeta
)

var sourceNames = [...]string{"comment", "attribute", "html", "text", "children", "query", "tag", "meta"}

func (s Source) String() string {
	if int(s) < 0 || int(s) >= len(sourceNames) {
		return "unknown"
	}
	return sourceNames[s]
}

// AttrType is a JSON schema primitive type name.
type AttrType string

const (
	TypeString  AttrType = "string"
	TypeBoolean AttrType = "boolean"
	TypeObject  AttrType = "object"
	TypeNull    AttrType = "null"
	TypeArray   AttrType = "array"
	TypeInteger AttrType = "integer"
	TypeNumber  AttrType = "number"
)

// AttributeSchema describes how one attribute is stored and recovered.
type AttributeSchema struct {
	Source   Source
	Selector string
	// Attribute names the HTML attribute read by SourceAttribute.
	Attribute string
	// Type lists the accepted types; empty accepts anything.
	Type []AttrType
	// Enum lists the accepted values; empty accepts anything.
	Enum []any
	// Default is used when the value is undefined. A nil Default means the
	// attribute has no default unless NullDefault is set.
	Default any
	// NullDefault declares a JSON null default.
	NullDefault bool
	// Multiline is the tag name of the units an html-sourced value is made of.
	Multiline string
	// Query holds the per-element sub-schemas of a SourceQuery attribute.
	Query map[string]*AttributeSchema
}

// DefaultValue returns the declared default; ok is false when there is none.
func (s *AttributeSchema) DefaultValue() (value any, ok bool) {
	if s.NullDefault {
		return nil, true
	}
	return s.Default, s.Default != nil
}

// HasType reports whether t is the only declared type.
func (s *AttributeSchema) HasType(t AttrType) bool {
	return len(s.Type) == 1 && s.Type[0] == t
}

// RenderFunc produces a block's markup from its attributes and inner blocks.
type RenderFunc func(attrs Attributes, innerBlocks []*ParsedBlock) (string, error)

// MigrateFunc upgrades attributes and inner blocks recovered through a
// deprecation. A nil return component keeps the pre-migration value.
type MigrateFunc func(attrs Attributes, innerBlocks []*ParsedBlock) (Attributes, []*ParsedBlock)

// EligibleFunc lets a deprecation opt into migration of an otherwise valid block.
type EligibleFunc func(commentAttrs Attributes, innerBlocks []*ParsedBlock) bool

// Deprecation is a superseded schema and render definition of a block type.
type Deprecation struct {
	// Attributes overrides the block type's schemas when non-nil.
	Attributes map[string]*AttributeSchema
	IsEligible EligibleFunc
	Migrate    MigrateFunc
	// Render overrides the block type's render when non-nil.
	Render RenderFunc
}

// BlockType is a registered block definition.
type BlockType struct {
	Name         string
	Attributes   map[string]*AttributeSchema
	Render       RenderFunc
	Deprecations []Deprecation

	// DisableCustomClassName opts the type out of the className fix-up.
	DisableCustomClassName bool
}

// Deprecated returns the effective block type for deprecation i: the
// current type with the deprecation's overrides applied.
func (t *BlockType) Deprecated(i int) *BlockType {
	d := t.Deprecations[i]
	eff := &BlockType{
		Name:                   t.Name,
		Attributes:             t.Attributes,
		Render:                 t.Render,
		DisableCustomClassName: t.DisableCustomClassName,
	}
	if d.Attributes != nil {
		eff.Attributes = d.Attributes
	}
	if d.Render != nil {
		eff.Render = d.Render
	}
	return eff
}

// ValidationIssue is a diagnostic recorded while validating a block.
type ValidationIssue struct {
	Level    string `json:"level"`
	Template string `json:"template"`
	Args     []any  `json:"args,omitempty"`
}

// ParsedBlock is a fully parsed block.
type ParsedBlock struct {
	ClientID         string            `json:"clientId"`
	Name             string            `json:"name"`
	Attributes       Attributes        `json:"attributes"`
	InnerBlocks      []*ParsedBlock    `json:"innerBlocks"`
	OriginalContent  string            `json:"originalContent"`
	IsValid          bool              `json:"isValid"`
	ValidationIssues []ValidationIssue `json:"validationIssues"`
	// RawSource is kept only for invalid blocks so they can be written back
	// unchanged.
	RawSource *RawBlock `json:"-"`
}

// Tokenizer splits a document into raw block nodes.
type Tokenizer interface {
	Tokenize(document string) []RawBlock
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(document string) []RawBlock

// Tokenize calls f.
func (f TokenizerFunc) Tokenize(document string) []RawBlock {
	return f(document)
}

// Registry resolves block names to block types.
type Registry interface {
	Lookup(name string) (*BlockType, bool)
}

// Document is a loaded input document.
type Document struct {
	Location string
	Content  string
}

// Loader retrieves a document from a file path or URL.
type Loader interface {
	Load(ctx context.Context, location string) (*Document, error)
}

// Report is the parse result handed to renderers.
type Report struct {
	Source      string         `json:"source"`
	GeneratedAt string         `json:"generated_at"` // ISO8601
	Blocks      []*ParsedBlock `json:"blocks"`
	Serialized  string         `json:"-"`
}

// Renderer converts a parse report into a final output format.
type Renderer interface {
	Render(report *Report) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
