package serialize

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// DelimiterMode selects where Reserialize writes block delimiters.
type DelimiterMode int

const (
	// DelimitAll delimits the block and every nested block.
	DelimitAll DelimiterMode = iota
	// DelimitNone leaves the top-level block undelimited.
	DelimitNone
	// DelimitNoTopLevel leaves the top-level block undelimited; nested blocks
	// keep their delimiters.
	DelimitNoTopLevel
)

func (m DelimiterMode) String() string {
	switch m {
	case DelimitAll:
		return "all"
	case DelimitNone:
		return "none"
	case DelimitNoTopLevel:
		return "no-top-level"
	}
	return "unknown"
}

var blankLines = regexp.MustCompile(`\n+`)

// Reserialize reconstructs the markup of a raw block tree. Blocks read by a
// tokenizer are reproduced exactly from their recorded delimiters; other
// blocks get canonical delimiters around their newline-joined content.
func (s *Serializer) Reserialize(raw core.RawBlock, mode DelimiterMode) string {
	verbatim := raw.Opener != "" || raw.Name == ""

	fragments := make([]string, 0, len(raw.InnerContent))
	next := 0
	for _, item := range raw.InnerContent {
		if item != nil {
			fragments = append(fragments, *item)
			continue
		}
		if next >= len(raw.InnerBlocks) {
			s.log.Error("inner content marker without inner block",
				zap.String("block", raw.Name), zap.Error(core.ErrInnerContentMismatch))
			continue
		}
		fragments = append(fragments, s.Reserialize(raw.InnerBlocks[next], DelimitAll))
		next++
	}

	if verbatim {
		content := strings.Join(fragments, "")
		switch {
		case raw.Name == "":
			return content
		case mode == DelimitAll:
			return raw.Opener + content + raw.Closer
		}
		return strings.TrimSpace(content)
	}

	content := strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(fragments, "\n"), "\n"))
	if mode != DelimitAll {
		return content
	}
	return s.CommentDelimited(raw.Name, raw.Attrs, content)
}
