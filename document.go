package sunburnt

import "reflect"

// Document is one flat index document: field name to scalar or collection
// value. Documents are sparse: a field that resolved to nothing is absent,
// not set to an empty value.
type Document map[string]any

// Set writes a field value, dropping empty values so that blank data never
// overwrites backend defaults. Callers needing explicit-empty semantics must
// use a sentinel value instead.
func (d Document) Set(name string, value any) {
	if isEmptyValue(value) {
		return
	}
	d[name] = value
}

// isEmptyValue reports whether a resolved value counts as "no value":
// nil, false, zero numbers, empty strings, and empty collections.
// Structs (time.Time included) are always considered set.
func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmptyValue(rv.Elem().Interface())
	default:
		return false
	}
}
