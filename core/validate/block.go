package validate

import (
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/serialize"
)

// BlockValidator checks parsed attributes against a block's stored markup by
// rendering them again.
type BlockValidator struct {
	serializer *serialize.Serializer
	html       *Validator
	log        *zap.Logger
}

// NewBlockValidator creates a BlockValidator rendering through s.
func NewBlockValidator(s *serialize.Serializer, log *zap.Logger) *BlockValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlockValidator{serializer: s, html: New(log), log: log.Named("validate")}
}

// Validate renders attrs with bt and compares the result with original.
// Fallback block types are valid without comparison.
func (v *BlockValidator) Validate(bt *core.BlockType, attrs core.Attributes, original string) (bool, []core.ValidationIssue) {
	cfg := v.serializer.Config()
	if bt.Name == cfg.FreeformName || bt.Name == cfg.UnregisteredName {
		return true, nil
	}

	t := &trace{log: v.log}
	generated, err := v.serializer.SaveContent(bt, attrs, nil)
	if err != nil {
		t.error("Block validation failed because an error occurred while generating block content: %s", err.Error())
		return false, t.issues
	}

	if v.html.equivalent(original, generated, t) {
		return true, t.issues
	}
	t.error("Block validation failed for `%s`.\n\nContent generated by save function:\n\n%s\n\nContent retrieved from post body:\n\n%s",
		bt.Name, generated, original)
	return false, t.issues
}

// IsValidBlockContent reports whether original is the markup bt renders for
// attrs.
func (v *BlockValidator) IsValidBlockContent(bt *core.BlockType, attrs core.Attributes, original string) bool {
	ok, _ := v.Validate(bt, attrs, original)
	return ok
}
