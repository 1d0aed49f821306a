package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var (
	styleURL     = regexp.MustCompile(`^url\s*\(['"\s]*(.*?)['"\s]*\)$`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// equalStyles compares inline style declarations as unordered property maps.
func equalStyles(actual, expected string) bool {
	a, e := styleProperties(actual), styleProperties(expected)
	if len(a) != len(e) {
		return false
	}
	for prop, value := range a {
		if other, ok := e[prop]; !ok || other != value {
			return false
		}
	}
	return true
}

// styleProperties parses a style attribute into normalized property values.
// A later declaration of the same property wins. A declaration that does not
// parse is kept under its own raw text, so differing malformed styles stay
// different.
func styleProperties(style string) map[string]string {
	props := map[string]string{}
	p := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.HasParseError() {
				return props
			}
			if raw := tokenText(p.Values()); raw != "" {
				props[raw] = ""
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			props[strings.ToLower(string(data))] = normalizeStyleValue(tokenText(p.Values()))
		}
	}
}

// tokenText joins tokens, writing any whitespace as one space and leaving
// out declaration separators.
func tokenText(tokens []css.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.TokenType {
		case css.WhitespaceToken:
			b.WriteByte(' ')
		case css.SemicolonToken:
		default:
			b.Write(tok.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func normalizeStyleValue(value string) string {
	pieces := strings.FieldsFunc(value, isSpace)
	for i, piece := range pieces {
		pieces[i] = normalizeLength(piece)
	}
	return styleURL.ReplaceAllString(strings.Join(pieces, " "), "url($1)")
}

// normalizeLength writes zero lengths as "0" and gives fractions a leading
// zero.
func normalizeLength(value string) string {
	if m := leadingFloat.FindString(value); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil && f == 0 {
			return "0"
		}
	}
	if strings.HasPrefix(value, ".") {
		return "0" + value
	}
	return value
}
