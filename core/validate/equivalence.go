// Package validate decides whether stored block markup and freshly rendered
// markup describe the same document.
//
// Both strings are tokenized and the two token streams are walked side by
// side. Whitespace-only text, attribute order, class order, style property
// order and the presence-only value of boolean attributes are ignored.
// Malformed markup is never equivalent to anything.
package validate

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/blockpipe/core"
)

const (
	LevelWarning = "warning"
	LevelError   = "error"
)

type tokenKind int

const (
	startTag tokenKind = iota
	endTag
	chars
	comment
)

var kindNames = [...]string{"StartTag", "EndTag", "Chars", "Comment"}

func (k tokenKind) String() string { return kindNames[k] }

type token struct {
	kind        tokenKind
	tag         string
	attrs       []html.Attribute
	selfClosing bool
	data        string
}

func (t token) String() string {
	switch t.kind {
	case startTag:
		if t.selfClosing {
			return "<" + t.tag + "/>"
		}
		return "<" + t.tag + ">"
	case endTag:
		return "</" + t.tag + ">"
	}
	return t.data
}

// Void elements never have an end tag; a start tag of one is self-closed.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Validator compares HTML strings. It is safe for concurrent use.
type Validator struct {
	log *zap.Logger
}

// New creates a Validator.
func New(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log.Named("validate")}
}

var defaultValidator = New(nil)

// IsEquivalent reports whether two HTML strings are equivalent.
func IsEquivalent(actual, expected string) bool {
	ok, _ := defaultValidator.IsEquivalentHTML(actual, expected)
	return ok
}

// trace collects the diagnostics of one comparison.
type trace struct {
	log    *zap.Logger
	issues []core.ValidationIssue
}

func (t *trace) add(level, template string, args ...any) {
	t.issues = append(t.issues, core.ValidationIssue{Level: level, Template: template, Args: args})
	t.log.Debug(template, zap.String("level", level), zap.Any("args", args))
}

func (t *trace) warning(template string, args ...any) { t.add(LevelWarning, template, args...) }

func (t *trace) error(template string, args ...any) { t.add(LevelError, template, args...) }

// IsEquivalentHTML reports whether actual and expected are equivalent and
// returns the diagnostics explaining the first divergence.
func (v *Validator) IsEquivalentHTML(actual, expected string) (bool, []core.ValidationIssue) {
	t := &trace{log: v.log}
	ok := v.equivalent(actual, expected, t)
	return ok, t.issues
}

func (v *Validator) equivalent(actual, expected string, t *trace) bool {
	actualTokens, ok := tokenize(actual)
	if !ok {
		t.warning("Malformed HTML detected: %s", actual)
		return false
	}
	expectedTokens, ok := tokenize(expected)
	if !ok {
		t.warning("Malformed HTML detected: %s", expected)
		return false
	}
	if actual == expected {
		return true
	}

	a := &stream{tokens: actualTokens}
	e := &stream{tokens: expectedTokens}
	for {
		actualToken, ok := a.next()
		if !ok {
			break
		}
		expectedToken, ok := e.next()
		if !ok {
			t.warning("Expected end of content, instead saw %s.", actualToken.String())
			return false
		}

		if actualToken.kind != expectedToken.kind {
			t.warning("Expected token of type `%s` (%s), instead saw `%s` (%s).",
				expectedToken.kind.String(), expectedToken.String(),
				actualToken.kind.String(), actualToken.String())
			return false
		}
		if !equalTokens(actualToken, expectedToken, t) {
			return false
		}

		skipEndTags(actualToken, expectedToken, a, e)
	}

	if expectedToken, ok := e.next(); ok {
		t.warning("Expected %s, instead saw end of content.", expectedToken.String())
		return false
	}
	return true
}

func equalTokens(actual, expected token, t *trace) bool {
	switch actual.kind {
	case startTag:
		if !strings.EqualFold(actual.tag, expected.tag) {
			t.warning("Expected tag name `%s`, instead saw `%s`.", expected.tag, actual.tag)
			return false
		}
		return equalAttributes(meaningful(actual.attrs), meaningful(expected.attrs), t)
	case chars, comment:
		if actual.data == expected.data || collapseWhitespace(actual.data) == collapseWhitespace(expected.data) {
			return true
		}
		t.warning("Expected text `%s`, saw `%s`.", expected.data, actual.data)
		return false
	}
	return true
}

// skipEndTags consumes the explicit end tags that follow a self-closed start
// tag. When both sides carry one they are consumed together.
func skipEndTags(actual, expected token, a, e *stream) {
	if actual.kind != startTag || !(actual.selfClosing || expected.selfClosing) {
		return
	}
	actualEnd, expectedEnd := endsTag(a.peek(), actual.tag), endsTag(e.peek(), expected.tag)
	switch {
	case actualEnd && expectedEnd:
		a.next()
		e.next()
	case expectedEnd && actual.selfClosing:
		e.next()
	case actualEnd && expected.selfClosing:
		a.next()
	}
}

func endsTag(next *token, tag string) bool {
	return next != nil && next.kind == endTag && strings.EqualFold(next.tag, tag)
}

type stream struct {
	tokens []token
	pos    int
}

// next returns the next token that is not whitespace-only text.
func (s *stream) next() (token, bool) {
	for s.pos < len(s.tokens) {
		tok := s.tokens[s.pos]
		s.pos++
		if tok.kind == chars && isWhitespace(tok.data) {
			continue
		}
		return tok, true
	}
	return token{}, false
}

// peek returns the token next would return without consuming it.
func (s *stream) peek() *token {
	for i := s.pos; i < len(s.tokens); i++ {
		if s.tokens[i].kind == chars && isWhitespace(s.tokens[i].data) {
			continue
		}
		return &s.tokens[i]
	}
	return nil
}

// tokenize splits markup into tokens; ok is false when the markup is
// malformed or not fully consumed.
func tokenize(markup string) ([]token, bool) {
	z := html.NewTokenizer(strings.NewReader(markup))
	var (
		out      []token
		consumed int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return nil, false
			}
			return out, consumed == len(markup)
		}
		consumed += len(z.Raw())

		tok := z.Token()
		switch tt {
		case html.StartTagToken:
			out = append(out, token{kind: startTag, tag: tok.Data, attrs: tok.Attr, selfClosing: voidElements[tok.Data]})
		case html.SelfClosingTagToken:
			out = append(out, token{kind: startTag, tag: tok.Data, attrs: tok.Attr, selfClosing: true})
		case html.EndTagToken:
			out = append(out, token{kind: endTag, tag: tok.Data})
		case html.TextToken:
			if n := len(out); n > 0 && out[n-1].kind == chars {
				out[n-1].data += tok.Data
				continue
			}
			out = append(out, token{kind: chars, data: tok.Data})
		case html.CommentToken:
			out = append(out, token{kind: comment, data: tok.Data})
		case html.DoctypeToken:
			// Not part of block markup.
		}
	}
}

func isWhitespace(s string) bool {
	return strings.TrimLeft(s, "\t\n\r\v\f ") == ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\r', '\v', '\f', ' ':
		return true
	}
	return false
}
