package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// matcher reads a value from a parsed fragment; ok is false when undefined.
type matcher func(root *goquery.Selection) (any, bool)

func undefined(*goquery.Selection) (any, bool) { return nil, false }

// build compiles a schema into its matcher. Every markup source is handled
// here; adding a source means adding a case.
func (e *Extractor) build(id string, schema *core.AttributeSchema) matcher {
	switch schema.Source {
	case core.SourceAttribute:
		find := e.first(id, schema.Selector)
		name := strings.ToLower(schema.Attribute)
		m := func(root *goquery.Selection) (any, bool) {
			sel := find(root)
			if sel.Length() == 0 {
				return nil, false
			}
			return sel.Attr(name)
		}
		if schema.HasType(core.TypeBoolean) {
			// Presence is what matters: <input disabled> is true.
			return func(root *goquery.Selection) (any, bool) {
				_, present := m(root)
				return present, true
			}
		}
		return m

	case core.SourceHTML:
		find := e.first(id, schema.Selector)
		multiline := strings.ToLower(schema.Multiline)
		return func(root *goquery.Selection) (any, bool) {
			sel := find(root)
			if sel.Length() == 0 {
				return nil, false
			}
			if multiline == "" {
				out, err := sel.Html()
				if err != nil {
					return nil, false
				}
				return out, true
			}
			var b strings.Builder
			sel.Children().Each(func(_ int, child *goquery.Selection) {
				if goquery.NodeName(child) != multiline {
					return
				}
				if out, err := goquery.OuterHtml(child); err == nil {
					b.WriteString(out)
				}
			})
			return b.String(), true
		}

	case core.SourceText:
		find := e.first(id, schema.Selector)
		return func(root *goquery.Selection) (any, bool) {
			sel := find(root)
			if sel.Length() == 0 {
				return nil, false
			}
			return sel.Text(), true
		}

	case core.SourceChildren:
		find := e.first(id, schema.Selector)
		return func(root *goquery.Selection) (any, bool) {
			sel := find(root)
			if sel.Length() == 0 {
				return nil, false
			}
			return childrenOf(sel.Nodes[0]), true
		}

	case core.SourceQuery:
		all := e.all(id, schema.Selector)
		subs := make(map[string]matcher, len(schema.Query))
		for key, sub := range schema.Query {
			subs[key] = e.compile(id+"/"+key, sub)
		}
		return func(root *goquery.Selection) (any, bool) {
			records := []any{}
			all(root).Each(func(_ int, el *goquery.Selection) {
				record := map[string]any{}
				for key, m := range subs {
					if v, ok := m(el); ok {
						record[key] = v
					}
				}
				records = append(records, record)
			})
			return records, true
		}

	case core.SourceTag:
		find := e.first(id, schema.Selector)
		return func(root *goquery.Selection) (any, bool) {
			var sel *goquery.Selection
			if schema.Selector == "" {
				sel = root.Children().First()
			} else {
				sel = find(root)
			}
			if sel.Length() == 0 {
				return nil, false
			}
			return strings.ToLower(goquery.NodeName(sel)), true
		}
	}

	return undefined
}

// selectorFor compiles selector, or returns nil when it is empty or invalid.
func (e *Extractor) selectorFor(id, selector string) (cascadia.Selector, bool) {
	if selector == "" {
		return nil, true
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		e.log.Warn("invalid attribute selector",
			zap.String("schema", id), zap.String("selector", selector), zap.Error(err))
		return nil, false
	}
	return sel, true
}

// first returns a finder for the first element matching selector within
// the root, or the root itself when selector is empty.
func (e *Extractor) first(id, selector string) func(*goquery.Selection) *goquery.Selection {
	sel, valid := e.selectorFor(id, selector)
	switch {
	case !valid:
		return func(root *goquery.Selection) *goquery.Selection { return root.Slice(0, 0) }
	case sel == nil:
		return func(root *goquery.Selection) *goquery.Selection { return root }
	}
	return func(root *goquery.Selection) *goquery.Selection {
		return root.FindMatcher(sel).First()
	}
}

// all returns a finder for every element matching selector, or the root's
// element children when selector is empty.
func (e *Extractor) all(id, selector string) func(*goquery.Selection) *goquery.Selection {
	sel, valid := e.selectorFor(id, selector)
	switch {
	case !valid:
		return func(root *goquery.Selection) *goquery.Selection { return root.Slice(0, 0) }
	case sel == nil:
		return func(root *goquery.Selection) *goquery.Selection { return root.Children() }
	}
	return func(root *goquery.Selection) *goquery.Selection {
		return root.FindMatcher(sel)
	}
}

// childrenOf converts the child nodes of n into a rich-text tree: strings for
// text and {"type": tag, "props": {...attrs, "children": [...]}} for elements.
func childrenOf(n *html.Node) []any {
	out := []any{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			out = append(out, c.Data)
		case html.ElementNode:
			props := map[string]any{}
			for _, a := range c.Attr {
				props[a.Key] = a.Val
			}
			props["children"] = childrenOf(c)
			out = append(out, map[string]any{"type": c.Data, "props": props})
		}
	}
	return out
}
