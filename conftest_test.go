package sunburnt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// --- Shared test fixtures ---

// fakeSchema resolves static field names plus Solr-style dynamic suffixes.
type fakeSchema struct {
	static  []string
	dynamic map[string]bool // suffix ("_s") → present
}

func newFakeSchema(static ...string) *fakeSchema {
	return &fakeSchema{
		static:  static,
		dynamic: map[string]bool{"_s": true, "_dt": true, "_i": true},
	}
}

func (s *fakeSchema) MatchField(name string) (FieldMeta, bool) {
	for _, f := range s.static {
		if f == name {
			return FieldMeta{Name: name, DisplayName: name}, true
		}
	}
	for suffix := range s.dynamic {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return FieldMeta{
				Name:        name,
				Dynamic:     true,
				DisplayName: strings.TrimSuffix(name, suffix),
			}, true
		}
	}
	return FieldMeta{}, false
}

func (s *fakeSchema) CheckFields(names []string) error {
	for _, name := range names {
		if _, ok := s.MatchField(name); !ok {
			return fmt.Errorf("check fields: %q: %w", name, ErrUnknownField)
		}
	}
	return nil
}

// fakeBackend records calls and simulates an id-keyed document store so
// reconciliation behavior can be asserted end to end.
type fakeBackend struct {
	schema Schema

	adds    [][]Document
	commits int
	deleted [][]string
	queries []Query

	addErr    error
	commitErr error
	deleteErr error

	store map[string]Document // keyed by fmt.Sprint(doc["id"])
}

func newFakeBackend(schema Schema) *fakeBackend {
	return &fakeBackend{schema: schema, store: map[string]Document{}}
}

func (b *fakeBackend) Schema() Schema { return b.schema }

func (b *fakeBackend) Add(_ context.Context, docs []Document) error {
	if b.addErr != nil {
		return b.addErr
	}
	batch := make([]Document, len(docs))
	copy(batch, docs)
	b.adds = append(b.adds, batch)
	for _, doc := range docs {
		b.store[fmt.Sprint(doc["id"])] = doc
	}
	return nil
}

func (b *fakeBackend) Commit(context.Context) error {
	if b.commitErr != nil {
		return b.commitErr
	}
	b.commits++
	return nil
}

func (b *fakeBackend) DeleteIDs(_ context.Context, ids []string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deleted = append(b.deleted, ids)
	for _, id := range ids {
		delete(b.store, id)
	}
	return nil
}

func (b *fakeBackend) DeleteByQuery(_ context.Context, q Query) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.queries = append(b.queries, q)
	for id, doc := range b.store {
		if matchesQuery(doc, q) {
			delete(b.store, id)
		}
	}
	return nil
}

func matchesQuery(doc Document, q Query) bool {
	for _, p := range q.Predicates() {
		value, ok := doc[p.Field]
		if !ok {
			return false
		}
		switch p.Op {
		case OpEqual:
			if fmt.Sprint(value) != fmt.Sprint(p.Value) {
				return false
			}
		case OpLessThan:
			ts, tsOK := value.(time.Time)
			bound, boundOK := p.Value.(time.Time)
			if !tsOK || !boundOK || !ts.Before(bound) {
				return false
			}
		}
	}
	return true
}

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func articleDefinition() *Definition {
	return MustDefinition(
		Meta{"type": "article"},
		Fields{
			"id":    {Attribute: "id"},
			"title": {Attribute: "title"},
		},
	)
}

func articleSchema() *fakeSchema {
	return newFakeSchema("id", "title")
}
