package sunburnt

import (
	"errors"
	"fmt"
)

// Transform converts one domain record into a flat document using the bound
// fields. Required fields abort the record on resolution failure; optional
// fields are omitted. Empty resolved values are never written (see
// Document.Set).
func (ix *Indexer) Transform(record any) (Document, error) {
	doc := make(Document, len(ix.bindings))
	for _, b := range ix.bindings {
		value, err := ix.resolveBinding(b, record)
		if err != nil {
			if b.Field.Optional && errors.Is(err, ErrNoAttribute) {
				continue
			}
			return nil, err
		}
		doc.Set(b.Name, value)
	}
	return doc, nil
}

// resolveBinding applies the three value policies in fixed precedence:
// attribute path when declared, otherwise the hook resolved at bind time
// (keyed by display name for dynamic fields, field name for static ones).
func (ix *Indexer) resolveBinding(b FieldBinding, record any) (any, error) {
	if b.Field.Attribute != "" {
		return resolvePath(record, b.Field.Attribute)
	}
	value, err := b.hook(record)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", b.Name, err)
	}
	return value, nil
}
