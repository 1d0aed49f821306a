package migrate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/extract"
)

// ClassNameAttribute holds the user-added classes of a block's root element.
const ClassNameAttribute = "className"

// ApplyBuiltInFixes returns attrs corrected for divergences every block type
// shares. Currently that is only custom classes on the root element: classes
// present in original but not rendered without className are moved into
// className.
func (r *Resolver) ApplyBuiltInFixes(bt *core.BlockType, attrs core.Attributes, original string) core.Attributes {
	if bt.DisableCustomClassName {
		return attrs
	}

	sansClassName := attrs.Clone()
	delete(sansClassName, ClassNameAttribute)
	serialized, err := r.serializer.SaveContent(bt, sansClassName, nil)
	if err != nil {
		r.log.Debug("skipping className fix", zap.String("block", bt.Name), zap.Error(err))
		return attrs
	}

	defaults := map[string]bool{}
	for _, c := range RootClasses(serialized) {
		defaults[c] = true
	}
	var custom []string
	for _, c := range RootClasses(original) {
		if !defaults[c] {
			custom = append(custom, c)
		}
	}

	fixed := attrs.Clone()
	switch {
	case len(custom) > 0:
		fixed[ClassNameAttribute] = strings.Join(custom, " ")
	case serialized != "":
		delete(fixed, ClassNameAttribute)
	}
	return fixed
}

// RootClasses returns the classes of the first root element of markup.
func RootClasses(markup string) []string {
	class, ok := extract.ParseFragment(markup).Children().First().Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}
