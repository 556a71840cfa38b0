package sunburnt

// Field declares one mapping rule from a domain record into an index field.
// Attribute is a dotted path walked from the record; when empty, a hook
// registered under the field's name (or its schema display name for dynamic
// fields) supplies the value. Optional fields are silently omitted when the
// attribute path cannot be resolved.
type Field struct {
	Attribute string
	Optional  bool
}

// Fields maps index field names to their mapping rules.
type Fields map[string]Field

// Extend returns a copy of the field set with overrides merged in, child
// winning on name collisions. The receiver is not modified.
func (f Fields) Extend(overrides Fields) Fields {
	merged := make(Fields, len(f)+len(overrides))
	for name, field := range f {
		merged[name] = field
	}
	for name, field := range overrides {
		merged[name] = field
	}
	return merged
}

// Meta is per-indexer-type grouping metadata. The "type" key is required: it
// tags every written document and drives reconciliation.
type Meta map[string]string

// Extend returns a merged copy, child keys overriding parent keys.
func (m Meta) Extend(overrides Meta) Meta {
	merged := make(Meta, len(m)+len(overrides))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Hook computes a field value from a record.
type Hook func(record any) (any, error)

// Definition is an immutable indexer type: grouping metadata, declared
// fields, and the computed-value hook registry. Definitions are assembled
// once at startup; subtypes are built with Extend.
type Definition struct {
	meta   Meta
	fields Fields
	hooks  map[string]Hook
}

// NewDefinition validates and creates a Definition.
// A missing "type" meta tag is a configuration error.
func NewDefinition(meta Meta, fields Fields) (*Definition, error) {
	if meta["type"] == "" {
		return nil, ErrMissingTypeTag
	}
	return &Definition{
		meta:   Meta{}.Extend(meta),
		fields: Fields{}.Extend(fields),
		hooks:  map[string]Hook{},
	}, nil
}

// MustDefinition calls NewDefinition and panics on error. Intended for
// package-level indexer type declarations.
func MustDefinition(meta Meta, fields Fields) *Definition {
	def, err := NewDefinition(meta, fields)
	if err != nil {
		panic(err)
	}
	return def
}

// Extend derives a subtype: meta and fields are merged with the child
// overriding the parent by key, and hooks are inherited. The child must
// still end up with a "type" tag.
func (d *Definition) Extend(meta Meta, fields Fields) (*Definition, error) {
	merged := d.meta.Extend(meta)
	if merged["type"] == "" {
		return nil, ErrMissingTypeTag
	}
	child := &Definition{
		meta:   merged,
		fields: d.fields.Extend(fields),
		hooks:  make(map[string]Hook, len(d.hooks)),
	}
	for name, h := range d.hooks {
		child.hooks[name] = h
	}
	return child, nil
}

// WithHook registers a computed-value hook. For dynamic schema fields the
// name is the schema display name of the field; for static fields it is the
// field name itself. Registering under a built-in name (meta_type,
// meta_index_timestamp) shadows the built-in.
func (d *Definition) WithHook(name string, h Hook) *Definition {
	d.hooks[name] = h
	return d
}

// TypeTag returns the logical group tag stored in every document.
func (d *Definition) TypeTag() string { return d.meta["type"] }

// IDField returns the identifier field used by delete-by-id batches.
// Overridable with the "id_field" meta key; defaults to "id".
func (d *Definition) IDField() string {
	if f := d.meta["id_field"]; f != "" {
		return f
	}
	return "id"
}

// MetaValue returns an arbitrary meta key (flexible meta parameters are
// allowed beyond "type").
func (d *Definition) MetaValue(key string) string { return d.meta[key] }
