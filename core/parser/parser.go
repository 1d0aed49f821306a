// Package parser is the block pipeline facade.
// It wires the stages together:
// tokenize → normalize → legacy conversion → lookup → extract → validate → migrate.
//
// Every problem a document can have is reported as data on the parsed
// blocks; parsing never fails.
package parser

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/extract"
	"github.com/gaurav-prasanna/blockpipe/core/grammar"
	"github.com/gaurav-prasanna/blockpipe/core/legacy"
	"github.com/gaurav-prasanna/blockpipe/core/migrate"
	"github.com/gaurav-prasanna/blockpipe/core/normalize"
	"github.com/gaurav-prasanna/blockpipe/core/serialize"
	"github.com/gaurav-prasanna/blockpipe/core/validate"
)

// Options configures a Parser. Zero values select the defaults.
type Options struct {
	Tokenizer core.Tokenizer
	Legacy    *legacy.Converter

	FreeformName     string
	UnregisteredName string
	DefaultNamespace string

	SkipAutop bool
	// Strict panics on internal invariant violations instead of logging them.
	Strict bool

	Logger *zap.Logger
	NewID  func() string
}

// Parser parses and serializes block documents.
type Parser struct {
	registry   core.Registry
	opts       Options
	tokenizer  core.Tokenizer
	normalizer *normalize.Normalizer
	legacy     *legacy.Converter
	extractor  *extract.Extractor
	serializer *serialize.Serializer
	validator  *validate.BlockValidator
	resolver   *migrate.Resolver
	log        *zap.Logger
}

// New creates a Parser resolving block types through reg.
func New(reg core.Registry, opts Options) *Parser {
	if opts.Tokenizer == nil {
		opts.Tokenizer = grammar.Tokenizer
	}
	if opts.Legacy == nil {
		opts.Legacy = legacy.Default()
	}
	if opts.FreeformName == "" {
		opts.FreeformName = "core/freeform"
	}
	if opts.UnregisteredName == "" {
		opts.UnregisteredName = "core/missing"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log := opts.Logger

	s := serialize.New(reg, serialize.Config{
		FreeformName:     opts.FreeformName,
		UnregisteredName: opts.UnregisteredName,
		DefaultNamespace: opts.DefaultNamespace,
	}, log)
	e := extract.New(log)
	v := validate.NewBlockValidator(s, log)

	return &Parser{
		registry:   reg,
		opts:       opts,
		tokenizer:  opts.Tokenizer,
		normalizer: normalize.New(opts.FreeformName, opts.SkipAutop),
		legacy:     opts.Legacy,
		extractor:  e,
		serializer: s,
		validator:  v,
		resolver:   migrate.New(e, v, s, log),
		log:        log.Named("parser"),
	}
}

// Serializer returns the serializer used by SerializeDocument.
func (p *Parser) Serializer() *serialize.Serializer {
	return p.serializer
}

// ParseDocument parses a serialized document into its top-level blocks.
func (p *Parser) ParseDocument(document string) []*core.ParsedBlock {
	raws := p.tokenizer.Tokenize(document)
	blocks := make([]*core.ParsedBlock, 0, len(raws))
	for _, raw := range raws {
		if b := p.ParseRawBlock(raw); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// SerializeDocument writes blocks back to their serialized form.
func (p *Parser) SerializeDocument(blocks []*core.ParsedBlock) string {
	return p.serializer.Document(blocks)
}

// IsValidBlockContent reports whether original is the markup bt renders for
// attrs.
func (p *Parser) IsValidBlockContent(bt *core.BlockType, attrs core.Attributes, original string) bool {
	return p.validator.IsValidBlockContent(bt, attrs, original)
}

// ParseRawBlock parses one raw block and its inner blocks. It returns nil
// for blocks that carry nothing: empty fallback blocks, or unknown blocks
// when neither fallback type is registered.
func (p *Parser) ParseRawBlock(raw core.RawBlock) *core.ParsedBlock {
	if err := raw.CheckInnerContent(); err != nil {
		if p.opts.Strict {
			panic(fmt.Errorf("parser: block %q: %w", raw.Name, err))
		}
		p.log.Error("malformed raw block", zap.String("block", raw.Name), zap.Error(err))
	}

	normalized := p.legacy.ConvertBlock(p.normalizer.Normalize(raw))

	bt, ok := p.registry.Lookup(normalized.Name)
	if !ok {
		p.log.Debug("unknown block type", zap.String("block", normalized.Name))
		normalized = p.missingBlock(normalized)
		bt, ok = p.registry.Lookup(normalized.Name)
		if !ok && normalized.Name != p.opts.FreeformName {
			// Without an unregistered type the markup is kept as freeform content.
			normalized.Name = p.opts.FreeformName
			bt, ok = p.registry.Lookup(normalized.Name)
		}
		if !ok {
			p.log.Warn("no fallback block type registered, dropping block",
				zap.String("block", raw.Name))
		}
	}

	fallback := normalized.Name == p.opts.FreeformName || normalized.Name == p.opts.UnregisteredName
	if !ok || (fallback && normalized.InnerHTML == "") {
		return nil
	}

	inner := make([]*core.ParsedBlock, 0, len(normalized.InnerBlocks))
	for _, child := range normalized.InnerBlocks {
		if b := p.ParseRawBlock(child); b != nil {
			inner = append(inner, b)
		}
	}

	block := &core.ParsedBlock{
		ClientID:        p.opts.NewID(),
		Name:            normalized.Name,
		Attributes:      p.extractor.Attributes(bt, extract.CurrentVersion, normalized.InnerHTML, normalized.Attrs),
		InnerBlocks:     inner,
		OriginalContent: normalized.InnerHTML,
	}

	validated := p.resolver.Validate(block, bt)
	updated := p.resolver.Resolve(validated, normalized.Attrs, bt)

	if !updated.IsValid {
		// Keep the block exactly as it was read so it can be written back.
		source := raw
		updated.RawSource = &source
	}

	switch {
	case !validated.IsValid && updated.IsValid:
		p.log.Info("block updated",
			zap.String("block", bt.Name),
			zap.String("content", updated.OriginalContent))
	case !updated.IsValid:
		p.log.Warn("block validation failed",
			zap.String("block", bt.Name),
			zap.Any("issues", updated.ValidationIssues))
	}
	return updated
}

// missingBlock wraps a block of unknown type in the unregistered fallback
// type, keeping its markup as attributes.
func (p *Parser) missingBlock(raw core.RawBlock) core.RawBlock {
	undelimited := p.serializer.Reserialize(raw, serialize.DelimitNone)
	delimited := p.serializer.Reserialize(raw, serialize.DelimitAll)

	innerHTML := raw.InnerHTML
	if raw.Name != "" {
		innerHTML = delimited
	}
	return core.RawBlock{
		Name: p.opts.UnregisteredName,
		Attrs: core.Attributes{
			"originalName":               raw.Name,
			"originalContent":            delimited,
			"originalUndelimitedContent": undelimited,
		},
		InnerHTML:    innerHTML,
		InnerContent: raw.InnerContent,
		InnerBlocks:  raw.InnerBlocks,
	}
}
