package sunburnt

import "context"

// System fields written into every document.
const (
	// MetaTypeField carries the indexer's type tag.
	MetaTypeField = "meta_type_s"
	// MetaTimestampField carries the per-record transformation time.
	MetaTimestampField = "meta_index_timestamp_dt"
)

// FieldMeta is backend schema metadata for one resolved field name.
// DisplayName is the stem used for hook lookup on dynamic fields (for a
// dynamic field "*_s" matched by "meta_type_s" it is "meta_type").
type FieldMeta struct {
	Name        string
	Dynamic     bool
	DisplayName string
}

// Schema resolves declared field names against the backend's live schema.
type Schema interface {
	// MatchField resolves a field name to its schema metadata.
	MatchField(name string) (FieldMeta, bool)
	// CheckFields fails if any of the names is unresolvable.
	CheckFields(names []string) error
}

// Backend is the minimum search engine surface the indexer requires.
// Write calls block until the backend acknowledges them; timeouts and
// cancellation belong to the backend client via ctx.
type Backend interface {
	Schema() Schema
	// Add submits one batch of documents without committing.
	Add(ctx context.Context, docs []Document) error
	// Commit makes previously added documents durable and visible.
	Commit(ctx context.Context) error
	// DeleteIDs removes documents by identifier.
	DeleteIDs(ctx context.Context, ids []string) error
	// DeleteByQuery removes every document matching the query.
	DeleteByQuery(ctx context.Context, q Query) error
}

// RecordCursor is a lazy, finite, single-pass record stream.
// Next advances and reports whether a record is available; Err surfaces the
// terminal error, if any, once Next has returned false.
type RecordCursor interface {
	Next() bool
	Record() any
	Err() error
}

// RecordSource produces the record stream for a reindex pass. Restart is not
// required: each Records call may be consumed at most once.
type RecordSource interface {
	Records(ctx context.Context) RecordCursor
}
