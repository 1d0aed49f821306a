// Package grammar splits a serialized document into raw block nodes.
// Blocks are delimited by HTML comments of the form
//
//	<!-- wp:namespace/name {"json":"attrs"} -->...<!-- /wp:namespace/name -->
//	<!-- wp:namespace/name {"json":"attrs"} /-->
//
// and markup found outside any block becomes a nameless freeform node.
// The scan is linear and never fails: unbalanced delimiters are repaired
// the same way every time.
package grammar

import (
	"encoding/json"

	"github.com/dlclark/regexp2"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// DefaultNamespace is prepended to delimiter names written without one.
const DefaultNamespace = "core/"

// delimiter matches openers, closers and void delimiters in one pass. Group 5
// is the possessive-match trick that keeps the attribute scan linear; it needs
// lookahead and a backreference, hence regexp2.
var delimiter = regexp2.MustCompile(
	`<!--\s+(/)?wp:([a-z][a-z0-9_-]*/)?([a-z][a-z0-9/_-]*)\s+(\{(?:(?=([^}]+|\}+(?=\})|(?!\}\s+/?-->)[\s\S])*)\5|[\s\S]*?)\}\s+)?(/)?-->`,
	regexp2.None,
)

type tokenType int

const (
	noMoreTokens tokenType = iota
	voidBlock
	blockOpener
	blockCloser
)

type token struct {
	typ    tokenType
	name   string
	attrs  core.Attributes
	start  int
	length int
}

type frame struct {
	block            core.RawBlock
	tokenStart       int
	tokenLength      int
	prevOffset       int
	leadingHTMLStart int
}

type scanner struct {
	doc    []rune
	offset int
	output []core.RawBlock
	stack  []*frame
}

// Tokenize parses document into its top-level raw blocks.
func Tokenize(document string) []core.RawBlock {
	s := &scanner{doc: []rune(document)}
	for s.proceed() {
	}
	return s.output
}

// Tokenizer is the core.Tokenizer backed by Tokenize.
var Tokenizer core.Tokenizer = core.TokenizerFunc(Tokenize)

func (s *scanner) text(from, to int) string {
	return string(s.doc[from:to])
}

func (s *scanner) proceed() bool {
	depth := len(s.stack)
	next := s.nextToken()

	leadingHTMLStart := -1
	if next.start > s.offset {
		leadingHTMLStart = s.offset
	}

	switch next.typ {
	case noMoreTokens:
		if depth == 0 {
			s.addFreeform(0)
			return false
		}
		// Unclosed blocks are closed implicitly at the end of the document.
		for len(s.stack) > 0 {
			s.addBlockFromStack(-1, "")
		}
		return false

	case voidBlock:
		opener := s.text(next.start, next.start+next.length)
		block := core.RawBlock{Name: next.name, Attrs: next.attrs, Opener: opener}
		if depth == 0 {
			if leadingHTMLStart >= 0 {
				s.output = append(s.output, freeform(s.text(leadingHTMLStart, next.start)))
			}
			s.output = append(s.output, block)
			s.offset = next.start + next.length
			return true
		}
		s.addInnerBlock(block, next.start, next.length, -1)
		s.offset = next.start + next.length
		return true

	case blockOpener:
		s.stack = append(s.stack, &frame{
			block: core.RawBlock{
				Name:   next.name,
				Attrs:  next.attrs,
				Opener: s.text(next.start, next.start+next.length),
			},
			tokenStart:       next.start,
			tokenLength:      next.length,
			prevOffset:       next.start + next.length,
			leadingHTMLStart: leadingHTMLStart,
		})
		s.offset = next.start + next.length
		return true

	case blockCloser:
		closer := s.text(next.start, next.start+next.length)
		if depth == 0 {
			// A closer without an opener: the rest is freeform.
			s.addFreeform(0)
			return false
		}
		if depth == 1 {
			s.addBlockFromStack(next.start, closer)
			s.offset = next.start + next.length
			return true
		}

		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		html := s.text(top.prevOffset, next.start)
		top.block.InnerHTML += html
		top.block.InnerContent = append(top.block.InnerContent, core.Chunk(html))
		top.block.Closer = closer
		top.prevOffset = next.start + next.length

		s.addInnerBlock(top.block, top.tokenStart, top.tokenLength, next.start+next.length)
		s.offset = next.start + next.length
		return true
	}

	s.addFreeform(0)
	return false
}

func (s *scanner) nextToken() token {
	m, err := delimiter.FindRunesMatchStartingAt(s.doc, s.offset)
	if err != nil || m == nil {
		return token{typ: noMoreTokens}
	}

	isCloser := participated(m.GroupByNumber(1))
	isVoid := participated(m.GroupByNumber(6))

	namespace := DefaultNamespace
	if g := m.GroupByNumber(2); participated(g) {
		namespace = g.String()
	}
	name := namespace + m.GroupByNumber(3).String()

	var attrs core.Attributes
	if g := m.GroupByNumber(4); participated(g) {
		attrs = parseJSON(g.String())
	} else {
		attrs = core.Attributes{}
	}

	t := token{name: name, attrs: attrs, start: m.Index, length: m.Length}
	switch {
	case isVoid:
		t.typ = voidBlock
	case isCloser:
		t.typ = blockCloser
		t.attrs = nil
	default:
		t.typ = blockOpener
	}
	return t
}

func participated(g *regexp2.Group) bool {
	return g != nil && len(g.Captures) > 0
}

// parseJSON decodes comment attributes, returning nil for invalid JSON.
func parseJSON(input string) core.Attributes {
	var attrs core.Attributes
	if err := json.Unmarshal([]byte(input), &attrs); err != nil {
		return nil
	}
	return attrs
}

func freeform(html string) core.RawBlock {
	return core.RawBlock{
		Attrs:        core.Attributes{},
		InnerHTML:    html,
		InnerContent: []*string{core.Chunk(html)},
	}
}

// addFreeform flushes the rest of the document (or length runes of it) as
// freeform markup.
func (s *scanner) addFreeform(length int) {
	if length == 0 {
		length = len(s.doc) - s.offset
	}
	if length <= 0 {
		return
	}
	s.output = append(s.output, freeform(s.text(s.offset, s.offset+length)))
}

func (s *scanner) addInnerBlock(block core.RawBlock, tokenStart, tokenLength, lastOffset int) {
	parent := s.stack[len(s.stack)-1]
	parent.block.InnerBlocks = append(parent.block.InnerBlocks, block)

	if html := s.text(parent.prevOffset, tokenStart); html != "" {
		parent.block.InnerHTML += html
		parent.block.InnerContent = append(parent.block.InnerContent, core.Chunk(html))
	}
	parent.block.InnerContent = append(parent.block.InnerContent, nil)

	if lastOffset >= 0 {
		parent.prevOffset = lastOffset
	} else {
		parent.prevOffset = tokenStart + tokenLength
	}
}

// addBlockFromStack closes the innermost open block at endOffset, or at the
// end of the document when endOffset is negative.
func (s *scanner) addBlockFromStack(endOffset int, closer string) {
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	var html string
	if endOffset >= 0 {
		html = s.text(top.prevOffset, endOffset)
	} else {
		html = s.text(top.prevOffset, len(s.doc))
	}
	if html != "" {
		top.block.InnerHTML += html
		top.block.InnerContent = append(top.block.InnerContent, core.Chunk(html))
	}
	top.block.Closer = closer

	if top.leadingHTMLStart >= 0 {
		s.output = append(s.output, freeform(s.text(top.leadingHTMLStart, top.tokenStart)))
	}
	s.output = append(s.output, top.block)
}
