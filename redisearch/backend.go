package redisearch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WiserTogether/sunburnt"
	"github.com/WiserTogether/sunburnt/internal/db"
)

// Compile-time check: Backend implements sunburnt.Backend.
var _ sunburnt.Backend = (*Backend)(nil)

const (
	defaultKeyPrefix      = "doc:"
	defaultIDField        = "id"
	defaultDeletePageSize = 500
	multiValueSeparator   = ","
)

// Config holds backend parameters.
type Config struct {
	// Index is the FT index name.
	Index string
	// KeyPrefix prefixes every document key (default "doc:").
	KeyPrefix string
	// IDField is the document field used as the key suffix (default "id").
	IDField string
	// DeletePageSize bounds each search page during delete-by-query
	// (default 500).
	DeletePageSize int
}

// Backend stores documents as Redis hashes under an FT index.
type Backend struct {
	store  db.Store
	schema *Schema
	cfg    Config
	log    *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBackend creates a backend over the given store and schema.
func NewBackend(store db.Store, schema *Schema, cfg Config, opts ...Option) (*Backend, error) {
	if cfg.Index == "" {
		return nil, errors.New("index name is required")
	}
	if !db.IsValidIdentifier(cfg.Index) {
		return nil, errors.New("index name contains invalid characters")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.IDField == "" {
		cfg.IDField = defaultIDField
	}
	if cfg.DeletePageSize < 1 {
		cfg.DeletePageSize = defaultDeletePageSize
	}

	b := &Backend{
		store:  store,
		schema: schema,
		cfg:    cfg,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Schema returns the backend schema registry.
func (b *Backend) Schema() sunburnt.Schema {
	return b.schema
}

// EnsureIndex creates the FT index if it does not exist. The two system
// fields are always declared so reconciliation queries can filter on them.
func (b *Backend) EnsureIndex(ctx context.Context) error {
	exists, err := b.store.IndexExists(ctx, b.cfg.Index)
	if err != nil {
		return fmt.Errorf("probe index %q: %w", b.cfg.Index, err)
	}
	if exists {
		return nil
	}

	builder := db.NewIndex(b.cfg.Index).Prefix(b.cfg.KeyPrefix)
	declared := map[string]bool{
		sunburnt.MetaTypeField:      true,
		sunburnt.MetaTimestampField: true,
	}
	builder.Tag(sunburnt.MetaTypeField)
	builder.SortableNumeric(sunburnt.MetaTimestampField)
	for _, f := range b.schema.indexFields() {
		if declared[f.Name] {
			continue
		}
		switch f.Type {
		case db.IndexFieldNumeric:
			if f.Sortable {
				builder.SortableNumeric(f.Name)
			} else {
				builder.Numeric(f.Name)
			}
		case db.IndexFieldText:
			builder.Text(f.Name)
		default:
			builder.Tag(f.Name)
		}
	}

	def, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build index %q: %w", b.cfg.Index, err)
	}
	if err := b.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %q: %w", b.cfg.Index, err)
	}

	b.log.Info("index created",
		zap.String("index", b.cfg.Index),
		zap.String("prefix", b.cfg.KeyPrefix))
	return nil
}

// Add writes one batch of documents as hashes in a single pipelined round-trip.
func (b *Backend) Add(ctx context.Context, docs []sunburnt.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for _, doc := range docs {
		key, err := b.documentKey(doc)
		if err != nil {
			return err
		}
		fields := make(map[string]string, len(doc))
		for name, value := range doc {
			fields[name] = encodeValue(value)
		}
		items = append(items, db.HashSetItem{Key: key, Fields: fields})
	}

	if err := b.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("add %d documents: %w", len(items), err)
	}
	return nil
}

// Commit is an acknowledged write barrier. RediSearch indexes hash writes
// synchronously, so by the time Add returns the documents are visible and
// there is nothing left to flush.
func (b *Backend) Commit(_ context.Context) error {
	return nil
}

// DeleteIDs removes documents by identifier.
func (b *Backend) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.cfg.KeyPrefix + id
	}
	if err := b.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete %d documents: %w", len(keys), err)
	}
	return nil
}

// DeleteByQuery removes every document matching the query, paging the search
// until it drains. Deleting a hash removes it from the index immediately, so
// each page is searched from offset zero.
func (b *Backend) DeleteByQuery(ctx context.Context, q sunburnt.Query) error {
	queryStr, err := b.translate(q)
	if err != nil {
		return fmt.Errorf("translate query: %w", err)
	}

	deleted := 0
	for {
		_, keys, err := b.store.SearchKeys(ctx, b.cfg.Index, queryStr, 0, b.cfg.DeletePageSize)
		if err != nil {
			return fmt.Errorf("search %q: %w", queryStr, err)
		}
		if len(keys) == 0 {
			break
		}
		if err := b.store.DelMulti(ctx, keys); err != nil {
			return fmt.Errorf("delete page of %d: %w", len(keys), err)
		}
		deleted += len(keys)
	}

	if deleted > 0 {
		b.log.Info("deleted by query",
			zap.String("query", queryStr),
			zap.Int("documents", deleted))
	}
	return nil
}

func (b *Backend) documentKey(doc sunburnt.Document) (string, error) {
	id, ok := doc[b.cfg.IDField]
	if !ok {
		return "", fmt.Errorf("document missing %q field", b.cfg.IDField)
	}
	return b.cfg.KeyPrefix + encodeValue(id), nil
}

// encodeValue serializes a document value into its hash field representation.
// Timestamps become epoch millis to match the NUMERIC index type; slices join
// their encoded elements for TAG fields.
func encodeValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return strconv.FormatInt(x.UnixMilli(), 10)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = encodeValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, multiValueSeparator)
	}

	return fmt.Sprint(v)
}
