package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/serialize"
)

type fixtures map[string]*core.BlockType

func (f fixtures) Lookup(name string) (*core.BlockType, bool) {
	bt, ok := f[name]
	return bt, ok
}

var (
	paragraph = &core.BlockType{
		Name: "core/paragraph",
		Render: func(attrs core.Attributes, _ []*core.ParsedBlock) (string, error) {
			content, _ := attrs["content"].(string)
			return "<p>" + content + "</p>", nil
		},
	}
	broken = &core.BlockType{
		Name: "core/broken",
		Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
			return "", errors.New("boom")
		},
	}
	freeform = &core.BlockType{Name: "core/freeform"}
	group    = &core.BlockType{
		Name: "core/group",
		Render: func(core.Attributes, []*core.ParsedBlock) (string, error) {
			return "<div>" + core.InnerBlocksPlaceholder + "</div>", nil
		},
	}
)

func newBlockValidator() *BlockValidator {
	reg := fixtures{paragraph.Name: paragraph, broken.Name: broken, freeform.Name: freeform, group.Name: group}
	s := serialize.New(reg, serialize.Config{FreeformName: "core/freeform", UnregisteredName: "core/missing"}, nil)
	return NewBlockValidator(s, nil)
}

func TestValidate_Equivalent(t *testing.T) {
	ok, issues := newBlockValidator().Validate(paragraph, core.Attributes{"content": "hi"}, "<p>hi</p>\n")
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestValidate_Mismatch(t *testing.T) {
	ok, issues := newBlockValidator().Validate(paragraph, core.Attributes{"content": "a"}, "<p>a</p><p>b</p>")
	assert.False(t, ok)
	require.Len(t, issues, 2)
	assert.Equal(t, LevelWarning, issues[0].Level)
	assert.Equal(t, LevelError, issues[1].Level)
	assert.Equal(t, "core/paragraph", issues[1].Args[0])
}

func TestValidate_FallbackTypesAlwaysValid(t *testing.T) {
	ok, issues := newBlockValidator().Validate(freeform, core.Attributes{}, "<p")
	assert.True(t, ok)
	assert.Nil(t, issues)
}

func TestValidate_RenderError(t *testing.T) {
	ok, issues := newBlockValidator().Validate(broken, core.Attributes{}, "<p>x</p>")
	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, LevelError, issues[0].Level)
	assert.Equal(t, []any{"boom"}, issues[0].Args)
}

func TestValidate_InnerBlocksAreNotRendered(t *testing.T) {
	v := newBlockValidator()
	assert.True(t, v.IsValidBlockContent(group, core.Attributes{}, "<div></div>"))
	assert.False(t, v.IsValidBlockContent(group, core.Attributes{}, "<section></section>"))
}
