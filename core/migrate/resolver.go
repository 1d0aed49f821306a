// Package migrate recovers blocks whose stored markup was written by an older
// definition of their type.
//
// Deprecations are tried in declaration order. For each one the attributes
// are extracted again with the deprecated schemas and validated with the
// deprecated render; the first deprecation that validates is accepted and
// its migrate transform, if any, upgrades the result.
package migrate

import (
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/extract"
	"github.com/gaurav-prasanna/blockpipe/core/serialize"
	"github.com/gaurav-prasanna/blockpipe/core/validate"
)

// Resolver runs block validation and deprecation migration.
type Resolver struct {
	extractor  *extract.Extractor
	validator  *validate.BlockValidator
	serializer *serialize.Serializer
	log        *zap.Logger
}

// New creates a Resolver.
func New(e *extract.Extractor, v *validate.BlockValidator, s *serialize.Serializer, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{extractor: e, validator: v, serializer: s, log: log.Named("migrate")}
}

// Validate validates block against bt, retrying once with the built-in
// fixes applied. It returns the block with its validity, issues and, when
// fixed, attributes updated.
func (r *Resolver) Validate(block *core.ParsedBlock, bt *core.BlockType) *core.ParsedBlock {
	out := *block
	valid, issues := r.validator.Validate(bt, block.Attributes, block.OriginalContent)
	if valid {
		out.IsValid = true
		out.ValidationIssues = []core.ValidationIssue{}
		return &out
	}

	fixed := r.ApplyBuiltInFixes(bt, block.Attributes, block.OriginalContent)
	valid, issues = r.validator.Validate(bt, fixed, block.OriginalContent)
	out.Attributes = fixed
	out.IsValid = valid
	out.ValidationIssues = issues
	return &out
}

// Resolve applies the first deprecation of bt that reproduces the block's
// original content. commentAttrs are the attributes read from the block's
// delimiter. A valid block is only considered by deprecations that declare
// it eligible. The block is returned unchanged when no deprecation applies.
func (r *Resolver) Resolve(block *core.ParsedBlock, commentAttrs core.Attributes, bt *core.BlockType) *core.ParsedBlock {
	for i, d := range bt.Deprecations {
		if block.IsValid && (d.IsEligible == nil || !d.IsEligible(commentAttrs, block.InnerBlocks)) {
			continue
		}

		deprecated := bt.Deprecated(i)
		attrs := r.extractor.Attributes(deprecated, i, block.OriginalContent, commentAttrs)

		valid, _ := r.validator.Validate(deprecated, attrs, block.OriginalContent)
		if !valid {
			attrs = r.ApplyBuiltInFixes(deprecated, attrs, block.OriginalContent)
			valid, _ = r.validator.Validate(deprecated, attrs, block.OriginalContent)
		}
		if !valid {
			r.log.Debug("deprecation does not match",
				zap.String("block", bt.Name), zap.Int("deprecation", i))
			continue
		}

		innerBlocks := block.InnerBlocks
		if d.Migrate != nil {
			migratedAttrs, migratedInner := d.Migrate(attrs.Clone(), block.InnerBlocks)
			if migratedAttrs != nil {
				attrs = migratedAttrs
			}
			if migratedInner != nil {
				innerBlocks = migratedInner
			}
		}

		r.log.Debug("deprecation accepted",
			zap.String("block", bt.Name), zap.Int("deprecation", i))
		out := *block
		out.Attributes = attrs
		out.InnerBlocks = innerBlocks
		out.IsValid = true
		out.ValidationIssues = []core.ValidationIssue{}
		out.RawSource = nil
		return &out
	}
	return block
}
