package sunburnt

import (
	"fmt"
	"sort"
	"time"
)

// FieldBinding is one declared field joined with its backend schema metadata
// and, for computed fields, the hook resolved once at bind time. Bindings are
// owned by the indexer instance and rebuilt on every construction, since the
// schema may change between runs.
type FieldBinding struct {
	Name  string
	Field Field
	Meta  FieldMeta

	hook Hook
}

// bindFields resolves the declared fields plus the two system fields against
// the backend schema. Unknown fields and computed fields without a hook fail
// here, before any write traffic.
func bindFields(
	schema Schema, def *Definition,
	clock func() time.Time, validate bool,
) ([]FieldBinding, error) {
	fields := def.fields.Extend(Fields{
		MetaTypeField:      {},
		MetaTimestampField: {},
	})

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	builtins := builtinHooks(def.TypeTag(), clock)

	bindings := make([]FieldBinding, 0, len(names))
	for _, name := range names {
		field := fields[name]

		meta, ok := schema.MatchField(name)
		if !ok {
			if validate {
				return nil, fmt.Errorf("field %q: %w", name, ErrUnknownField)
			}
			meta = FieldMeta{Name: name, DisplayName: name}
		}

		b := FieldBinding{Name: name, Field: field, Meta: meta}
		if field.Attribute == "" {
			hook, err := resolveHook(def, builtins, name, meta)
			if err != nil {
				return nil, err
			}
			b.hook = hook
		}
		bindings = append(bindings, b)
	}

	if validate {
		if err := schema.CheckFields(names); err != nil {
			return nil, err
		}
	}

	return bindings, nil
}

// resolveHook picks the computed-value hook for a field: the schema display
// name keys dynamic fields, the field name keys static ones. Declared hooks
// shadow the built-ins.
func resolveHook(
	def *Definition, builtins map[string]Hook,
	name string, meta FieldMeta,
) (Hook, error) {
	key := name
	if meta.Dynamic && meta.DisplayName != "" {
		key = meta.DisplayName
	}
	if h, ok := def.hooks[key]; ok {
		return h, nil
	}
	if h, ok := builtins[key]; ok {
		return h, nil
	}
	if h, ok := builtins[name]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("field %q (hook %q): %w", name, key, ErrMissingHook)
}

// builtinHooks supplies the two always-available computed fields. The
// timestamp is taken fresh per record: across a long reindex this keeps the
// watermark monotonically non-decreasing. Both the dynamic-field stems and
// the full field names are registered so static schemas resolve too.
func builtinHooks(typeTag string, clock func() time.Time) map[string]Hook {
	typeHook := Hook(func(any) (any, error) { return typeTag, nil })
	timestampHook := Hook(func(any) (any, error) { return clock(), nil })
	return map[string]Hook{
		"meta_type":            typeHook,
		MetaTypeField:          typeHook,
		"meta_index_timestamp": timestampHook,
		MetaTimestampField:     timestampHook,
	}
}
