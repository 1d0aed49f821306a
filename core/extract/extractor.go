// Package extract computes block attribute values from their schemas.
// Comment-sourced attributes are read from the delimiter JSON; every other
// source is matched against the block's inner markup, parsed once per call.
//
// Compiled matchers are cached for the process lifetime, keyed by schema id.
// An entry is only reused for the exact schema it was built from, so a block
// type registered again under the same name gets fresh matchers.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// CurrentVersion is the schema version of a block type's current attributes;
// deprecations use their index.
const CurrentVersion = -1

// SchemaID identifies an attribute schema within the registry.
func SchemaID(blockName, key string, version int) string {
	return fmt.Sprintf("%s|%s|%d", blockName, key, version)
}

// Extractor resolves attribute values. It is safe for concurrent use.
type Extractor struct {
	matchers *cache.Cache
	log      *zap.Logger
}

// New creates an Extractor with an empty matcher cache.
func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		// Entries never expire and there is no janitor: the cache only grows.
		matchers: cache.New(cache.NoExpiration, 0),
		log:      log.Named("extract"),
	}
}

// Cached reports how many compiled matchers are cached.
func (e *Extractor) Cached() int {
	return e.matchers.ItemCount()
}

// Attributes computes all attributes of bt for the given schema version.
func (e *Extractor) Attributes(bt *core.BlockType, version int, innerHTML string, commentAttrs core.Attributes) core.Attributes {
	out := make(core.Attributes, len(bt.Attributes))

	var root *goquery.Selection
	markup := func() *goquery.Selection {
		if root == nil {
			root = ParseFragment(innerHTML)
		}
		return root
	}

	for _, key := range sortedKeys(bt.Attributes) {
		schema := bt.Attributes[key]
		if v, ok := e.Attribute(SchemaID(bt.Name, key, version), key, schema, markup, commentAttrs); ok {
			out[key] = v
		}
	}
	return out
}

// Attribute computes one attribute value. The markup is only parsed when the
// schema reads from it. ok is false when the value and its default are
// both undefined.
func (e *Extractor) Attribute(id, key string, schema *core.AttributeSchema, markup func() *goquery.Selection, commentAttrs core.Attributes) (any, bool) {
	var (
		value any
		ok    bool
	)

	switch schema.Source {
	case core.SourceComment:
		if commentAttrs != nil {
			value, ok = commentAttrs[key]
		}
	case core.SourceAttribute, core.SourceHTML, core.SourceText,
		core.SourceChildren, core.SourceQuery, core.SourceTag:
		value, ok = e.compile(id, schema)(markup())
	case core.SourceMeta:
		// Resolved outside the parser.
	}

	if ok && (!ValidByType(value, schema.Type) || !ValidByEnum(value, schema.Enum)) {
		e.log.Debug("rejecting attribute value",
			zap.String("schema", id), zap.Any("value", value))
		value, ok = nil, false
	}

	if !ok {
		return schema.DefaultValue()
	}
	return value, true
}

// Extract parses markup and resolves a single schema that is not part of a
// registered block type.
func (e *Extractor) Extract(id string, schema *core.AttributeSchema, markup string, commentAttrs core.Attributes) (any, bool) {
	return e.Attribute(id, id, schema, func() *goquery.Selection { return ParseFragment(markup) }, commentAttrs)
}

type compiled struct {
	schema *core.AttributeSchema
	match  matcher
}

func (e *Extractor) compile(id string, schema *core.AttributeSchema) matcher {
	if item, found := e.matchers.Get(id); found {
		if c := item.(compiled); c.schema == schema {
			return c.match
		}
		e.log.Debug("schema replaced, recompiling matcher", zap.String("schema", id))
	}
	m := e.build(id, schema)
	e.matchers.Set(id, compiled{schema: schema, match: m}, cache.NoExpiration)
	return m
}

// ParseFragment parses markup as the children of a detached <body> element
// and returns a selection of that element.
func ParseFragment(markup string) *goquery.Selection {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err == nil {
		for _, n := range nodes {
			root.AppendChild(n)
		}
	}
	return goquery.NewDocumentFromNode(root).Selection
}

func sortedKeys(m map[string]*core.AttributeSchema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
