package extract

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// IsOfType reports whether value satisfies the JSON schema type t. Both
// integer and number accept any numeric value.
func IsOfType(value any, t core.AttrType) bool {
	switch t {
	case core.TypeString:
		_, ok := value.(string)
		return ok
	case core.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case core.TypeObject:
		switch v := value.(type) {
		case map[string]any:
			return v != nil
		case core.Attributes:
			return v != nil
		}
		return false
	case core.TypeNull:
		return value == nil
	case core.TypeArray:
		if value == nil {
			return false
		}
		k := reflect.TypeOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case core.TypeInteger, core.TypeNumber:
		switch value.(type) {
		case float64, float32, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, json.Number:
			return true
		}
		return false
	}
	return true
}

// ValidByType reports whether value matches at least one of types. An empty
// type list accepts any value.
func ValidByType(value any, types []core.AttrType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if IsOfType(value, t) {
			return true
		}
	}
	return false
}

// ValidByEnum reports whether value is a member of enum. An empty enum
// accepts any value.
func ValidByEnum(value any, enum []any) bool {
	if len(enum) == 0 {
		return true
	}
	for _, allowed := range enum {
		if Equal(value, allowed) {
			return true
		}
	}
	return false
}

// Equal compares two attribute values by their JSON encoding, so 1 and 1.0
// are equal and map key order does not matter.
func Equal(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}
