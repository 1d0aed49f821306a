package validate

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Attributes whose presence is meaningful even when empty.
var booleanAttributes = map[string]bool{
	"allowfullscreen": true, "allowpaymentrequest": true, "allowusermedia": true,
	"async": true, "autofocus": true, "autoplay": true, "checked": true,
	"controls": true, "default": true, "defer": true, "disabled": true,
	"download": true, "formnovalidate": true, "hidden": true, "ismap": true,
	"itemscope": true, "loop": true, "multiple": true, "muted": true,
	"nomodule": true, "novalidate": true, "open": true, "playsinline": true,
	"readonly": true, "required": true, "reversed": true, "selected": true,
	"typemustmatch": true,
}

var enumeratedAttributes = map[string]bool{
	"autocapitalize": true, "autocomplete": true, "charset": true,
	"contenteditable": true, "crossorigin": true, "decoding": true, "dir": true,
	"draggable": true, "enctype": true, "formenctype": true, "formmethod": true,
	"http-equiv": true, "inputmode": true, "kind": true, "method": true,
	"preload": true, "scope": true, "shape": true, "spellcheck": true,
	"translate": true, "type": true, "wrap": true,
}

// meaningful drops attributes whose omission cannot change the document.
func meaningful(attrs []html.Attribute) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Val != "" || strings.HasPrefix(key, "data-") || booleanAttributes[key] || enumeratedAttributes[key] {
			out = append(out, a)
		}
	}
	return out
}

type attributeComparator func(actual, expected string) bool

func comparatorFor(name string) attributeComparator {
	switch {
	case name == "class":
		return equalClasses
	case name == "style":
		return equalStyles
	case booleanAttributes[name]:
		return func(string, string) bool { return true }
	}
	return nil
}

// equalAttributes compares attribute lists as unordered multisets: every
// actual attribute must match a distinct expected one.
func equalAttributes(actual, expected []html.Attribute, t *trace) bool {
	if len(actual) != len(expected) {
		t.warning("Expected attributes %v, instead saw %v.", pairs(expected), pairs(actual))
		return false
	}

	want := make(map[string][]string, len(expected))
	for _, a := range expected {
		name := strings.ToLower(a.Key)
		want[name] = append(want[name], a.Val)
	}

	for _, a := range actual {
		name := strings.ToLower(a.Key)
		values := want[name]
		if len(values) == 0 {
			t.warning("Encountered unexpected attribute `%s`.", a.Key)
			return false
		}
		cmp := comparatorFor(name)
		if cmp == nil {
			cmp = func(actual, expected string) bool { return actual == expected }
		}
		i := slices.IndexFunc(values, func(v string) bool { return cmp(a.Val, v) })
		if i < 0 {
			t.warning("Expected attribute `%s` of value `%s`, saw `%s`.", a.Key, values[0], a.Val)
			return false
		}
		want[name] = slices.Delete(values, i, i+1)
	}
	return true
}

// equalClasses compares class lists as sets.
func equalClasses(actual, expected string) bool {
	a, e := classSet(actual), classSet(expected)
	if len(a) != len(e) {
		return false
	}
	for c := range a {
		if !e[c] {
			return false
		}
	}
	return true
}

func classSet(value string) map[string]bool {
	set := map[string]bool{}
	for _, c := range strings.FieldsFunc(value, isSpace) {
		set[c] = true
	}
	return set
}

func pairs(attrs []html.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Key+"="+a.Val)
	}
	return out
}
