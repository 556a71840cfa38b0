// Package redisearch implements the indexing backend on a RediSearch-enabled
// Redis store: a schema registry with Solr-style dynamic field patterns,
// index provisioning, document-to-hash serialization, and query translation.
package redisearch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WiserTogether/sunburnt"
	"github.com/WiserTogether/sunburnt/internal/db"
)

// Compile-time check: Schema implements sunburnt.Schema.
var _ sunburnt.Schema = (*Schema)(nil)

// FieldType enumerates index field types known to the schema.
type FieldType int

const (
	// FieldTag is an exact-match tag field.
	FieldTag FieldType = iota
	// FieldNumeric is a numeric field (timestamps are stored as epoch millis).
	FieldNumeric
	// FieldText is a full-text field.
	FieldText
)

// StaticField is one concretely named field of the index schema.
type StaticField struct {
	Name     string
	Type     FieldType
	Sortable bool
}

// DynamicPattern is a single-wildcard field name pattern such as "*_s" or
// "attr_*". A name matching the pattern resolves to a field whose display
// name is the text matched by the wildcard.
type DynamicPattern struct {
	Pattern string
	Type    FieldType
}

// Schema is a registry of static fields and dynamic field patterns. Static
// names win over patterns; patterns are tried in registration order.
type Schema struct {
	static  map[string]StaticField
	dynamic []DynamicPattern
}

// NewSchema creates an empty schema registry.
func NewSchema() *Schema {
	return &Schema{static: make(map[string]StaticField)}
}

// Tag registers a static tag field.
func (s *Schema) Tag(name string) *Schema {
	s.static[name] = StaticField{Name: name, Type: FieldTag}
	return s
}

// Numeric registers a static numeric field.
func (s *Schema) Numeric(name string) *Schema {
	s.static[name] = StaticField{Name: name, Type: FieldNumeric}
	return s
}

// SortableNumeric registers a static numeric sortable field.
func (s *Schema) SortableNumeric(name string) *Schema {
	s.static[name] = StaticField{Name: name, Type: FieldNumeric, Sortable: true}
	return s
}

// Text registers a static full-text field.
func (s *Schema) Text(name string) *Schema {
	s.static[name] = StaticField{Name: name, Type: FieldText}
	return s
}

// Dynamic registers a wildcard pattern. The pattern must contain exactly one
// "*", at either end.
func (s *Schema) Dynamic(pattern string, ft FieldType) *Schema {
	s.dynamic = append(s.dynamic, DynamicPattern{Pattern: pattern, Type: ft})
	return s
}

// MatchField resolves a field name against static fields first, then dynamic
// patterns. For a dynamic match the display name is the wildcard stem: the
// pattern "*_s" matched by "meta_type_s" yields display name "meta_type".
func (s *Schema) MatchField(name string) (sunburnt.FieldMeta, bool) {
	if _, ok := s.static[name]; ok {
		return sunburnt.FieldMeta{Name: name}, true
	}
	for _, p := range s.dynamic {
		stem, ok := matchPattern(p.Pattern, name)
		if !ok {
			continue
		}
		return sunburnt.FieldMeta{Name: name, Dynamic: true, DisplayName: stem}, true
	}
	return sunburnt.FieldMeta{}, false
}

// CheckFields fails if any of the names resolves to nothing.
func (s *Schema) CheckFields(names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := s.MatchField(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("fields not in schema: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// FieldType resolves the index type of a field name, static or dynamic.
func (s *Schema) FieldType(name string) (FieldType, bool) {
	if f, ok := s.static[name]; ok {
		return f.Type, true
	}
	for _, p := range s.dynamic {
		if _, ok := matchPattern(p.Pattern, name); ok {
			return p.Type, true
		}
	}
	return 0, false
}

// indexFields returns the FT schema fields for index creation: the static
// fields in name order. Dynamic patterns cannot be declared in FT.CREATE;
// concrete fields matching them are added by the backend as needed.
func (s *Schema) indexFields() []db.IndexField {
	names := make([]string, 0, len(s.static))
	for name := range s.static {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]db.IndexField, 0, len(names))
	for _, name := range names {
		f := s.static[name]
		fields = append(fields, db.IndexField{
			Name:     f.Name,
			Type:     indexFieldType(f.Type),
			Sortable: f.Sortable,
		})
	}
	return fields
}

func indexFieldType(ft FieldType) db.IndexFieldType {
	switch ft {
	case FieldNumeric:
		return db.IndexFieldNumeric
	case FieldText:
		return db.IndexFieldText
	default:
		return db.IndexFieldTag
	}
}

// matchPattern matches a single-wildcard pattern against name and returns the
// text matched by the wildcard. The stem must be non-empty.
func matchPattern(pattern, name string) (string, bool) {
	switch {
	case strings.HasPrefix(pattern, "*"):
		suffix := pattern[1:]
		if !strings.HasSuffix(name, suffix) {
			return "", false
		}
		stem := name[:len(name)-len(suffix)]
		return stem, stem != ""
	case strings.HasSuffix(pattern, "*"):
		prefix := pattern[:len(pattern)-1]
		if !strings.HasPrefix(name, prefix) {
			return "", false
		}
		stem := name[len(prefix):]
		return stem, stem != ""
	default:
		return "", false
	}
}
