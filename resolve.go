package sunburnt

import (
	"reflect"
	"strings"
)

// AttributeGetter lets a record type take over attribute resolution instead
// of reflection. Attr reports (value, true) when the record has the
// attribute.
type AttributeGetter interface {
	Attr(name string) (any, bool)
}

// resolvePath walks a dotted attribute path from the record, one segment at a
// time. Each segment resolves either a plain attribute (map key, exported
// struct field, AttributeGetter hit) or a zero-argument accessor on the
// current value. A nil or missing intermediate fails with the segment named.
func resolvePath(record any, path string) (any, error) {
	value := record
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if isNilValue(value) {
			return nil, &FieldResolutionError{Record: record, Path: path, Segment: segment}
		}
		next, ok := lookupAttr(value, segment)
		if !ok {
			return nil, &FieldResolutionError{Record: record, Path: path, Segment: segment}
		}
		value = next
	}
	// A path ending in nil is an absent attribute, not a nil value.
	if isNilValue(value) {
		return nil, &FieldResolutionError{
			Record: record, Path: path, Segment: segments[len(segments)-1],
		}
	}
	return value, nil
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func lookupAttr(value any, name string) (any, bool) {
	if g, ok := value.(AttributeGetter); ok {
		return g.Attr(name)
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, false
	}

	elem := rv
	for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
		if elem.IsNil() {
			return nil, false
		}
		elem = elem.Elem()
	}

	switch elem.Kind() {
	case reflect.Map:
		if elem.Type().Key().Kind() == reflect.String {
			key := reflect.ValueOf(name).Convert(elem.Type().Key())
			if mv := elem.MapIndex(key); mv.IsValid() {
				return mv.Interface(), true
			}
		}
	case reflect.Struct:
		if fv, ok := structField(elem, name); ok {
			return fv, true
		}
	}

	// Zero-argument accessor, looked up on the value as passed so pointer
	// receivers stay reachable.
	if out, ok := callAccessor(rv, name); ok {
		return out, true
	}
	if elem != rv {
		return callAccessor(elem, name)
	}
	return nil, false
}

// structField matches an exported field by exact name, then case-insensitively
// (record attributes are frequently declared in lower_snake paths).
func structField(sv reflect.Value, name string) (any, bool) {
	t := sv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return sv.FieldByIndex(f.Index).Interface(), true
	}
	normalized := normalizeAttr(name)
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() && normalizeAttr(f.Name) == normalized {
			return sv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func callAccessor(rv reflect.Value, name string) (any, bool) {
	m := rv.MethodByName(name)
	if !m.IsValid() {
		normalized := normalizeAttr(name)
		t := rv.Type()
		for i := range t.NumMethod() {
			if normalizeAttr(t.Method(i).Name) == normalized {
				m = rv.Method(i)
				break
			}
		}
	}
	if !m.IsValid() {
		return nil, false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 {
		return nil, false
	}
	return m.Call(nil)[0].Interface(), true
}

// normalizeAttr folds case and underscores so the path segment "full_name"
// matches the Go identifier FullName.
func normalizeAttr(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
