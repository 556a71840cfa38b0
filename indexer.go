// Package sunburnt maps in-memory domain records into search-index documents
// through declarative field definitions, and reindexes record streams in
// chunked batches with timestamp-based reconciliation of stale documents.
package sunburnt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WiserTogether/sunburnt/internal/metrics"
)

// DefaultCommitChunkSize is the number of transformed documents accumulated
// before Reindex flushes a batch to the backend.
const DefaultCommitChunkSize = 1000

// Indexer drives transformation of domain records into documents and writes
// them to a search backend. Each instance resolves its own field bindings
// from the live schema at construction and holds its own reconciliation
// watermark; instances share no mutable state. Running more than one reindex
// per type tag at a time is a caller-enforced invariant.
type Indexer struct {
	backend   Backend
	def       *Definition
	bindings  []FieldBinding
	startedAt time.Time

	chunkSize int
	clock     func() time.Time
	log       *zap.Logger
	validate  bool
}

// NewIndexer binds the definition's fields against the backend schema and
// captures the reconciliation watermark. Unknown fields fail here unless
// WithoutValidation is given.
func NewIndexer(backend Backend, def *Definition, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		backend:   backend,
		def:       def,
		chunkSize: DefaultCommitChunkSize,
		clock:     time.Now,
		log:       zap.NewNop(),
		validate:  true,
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.startedAt = ix.clock()

	bindings, err := bindFields(backend.Schema(), def, ix.clock, ix.validate)
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", def.TypeTag(), err)
	}
	ix.bindings = bindings
	return ix, nil
}

// TypeTag returns the logical group tag of this indexer.
func (ix *Indexer) TypeTag() string { return ix.def.TypeTag() }

// StartedAt returns the reconciliation watermark captured at construction.
func (ix *Indexer) StartedAt() time.Time { return ix.startedAt }

// Bindings returns the resolved field bindings.
func (ix *Indexer) Bindings() []FieldBinding { return ix.bindings }

// Add transforms the records and submits them as one backend write,
// committing afterwards when commit is set. A document whose ID already
// exists in the index is overwritten by the backend.
func (ix *Indexer) Add(ctx context.Context, records []any, commit bool) error {
	tag := ix.def.TypeTag()

	docs := make([]Document, 0, len(records))
	for _, record := range records {
		doc, err := ix.Transform(record)
		if err != nil {
			metrics.TransformFailed(tag)
			return err
		}
		docs = append(docs, doc)
	}

	if err := ix.backend.Add(ctx, docs); err != nil {
		return fmt.Errorf("add %d documents: %w", len(docs), err)
	}
	metrics.DocumentsAdded(tag, len(docs))

	if commit {
		if err := ix.backend.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}

// Update is Add with an unconditional commit. Overwrite semantics are
// delegated entirely to the backend; no merge logic here.
func (ix *Indexer) Update(ctx context.Context, records []any) error {
	return ix.Add(ctx, records, true)
}

// Delete resolves each record to its identifier field value and submits one
// delete-by-id batch, committing afterwards when commit is set.
func (ix *Indexer) Delete(ctx context.Context, records []any, commit bool) error {
	idBinding, err := ix.binding(ix.def.IDField())
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		value, err := ix.resolveBinding(idBinding, record)
		if err != nil {
			return err
		}
		ids = append(ids, fmt.Sprint(value))
	}

	if err := ix.backend.DeleteIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete %d documents: %w", len(ids), err)
	}
	metrics.DocumentsDeleted(ix.def.TypeTag(), len(ids))

	if commit {
		if err := ix.backend.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}

// Reindex drains the record source in one linear pass: transformed documents
// accumulate into chunks flushed as uncommitted backend adds, one commit
// covers the whole run, and a final delete-by-query removes documents of this
// type tag whose index timestamp predates the watermark, which is anything
// the pass did not refresh. Returns the number of records transformed and added.
//
// Errors propagate immediately and leave the run incomplete; re-running the
// full reindex is safe because reconciliation only ever deletes documents
// older than the watermark.
func (ix *Indexer) Reindex(ctx context.Context, source RecordSource) (int, error) {
	tag := ix.def.TypeTag()
	begin := ix.clock()

	count := 0
	batch := make([]Document, 0, ix.chunkSize)

	cursor := source.Records(ctx)
	for cursor.Next() {
		doc, err := ix.Transform(cursor.Record())
		if err != nil {
			metrics.TransformFailed(tag)
			return count, err
		}
		batch = append(batch, doc)
		count++

		if len(batch) >= ix.chunkSize {
			if err := ix.flush(ctx, tag, batch, count); err != nil {
				return count, err
			}
			batch = make([]Document, 0, ix.chunkSize)
		}
	}
	if err := cursor.Err(); err != nil {
		return count, fmt.Errorf("record source: %w", err)
	}

	if len(batch) > 0 {
		if err := ix.flush(ctx, tag, batch, count); err != nil {
			return count, err
		}
	}

	if err := ix.backend.Commit(ctx); err != nil {
		return count, fmt.Errorf("commit: %w", err)
	}

	stale := Eq(MetaTypeField, tag).And(Lt(MetaTimestampField, ix.startedAt))
	if err := ix.backend.DeleteByQuery(ctx, stale); err != nil {
		return count, fmt.Errorf("reconcile stale documents: %w", err)
	}

	elapsed := ix.clock().Sub(begin)
	metrics.ReindexCompleted(tag, elapsed)
	ix.log.Info("reindex complete",
		zap.String("type", tag),
		zap.Int("records", count),
		zap.Time("watermark", ix.startedAt),
		zap.Duration("elapsed", elapsed),
	)
	return count, nil
}

func (ix *Indexer) flush(ctx context.Context, tag string, batch []Document, total int) error {
	if err := ix.backend.Add(ctx, batch); err != nil {
		return fmt.Errorf("flush batch of %d: %w", len(batch), err)
	}
	metrics.BatchFlushed(tag, len(batch))
	ix.log.Debug("flushed batch",
		zap.String("type", tag),
		zap.Int("documents", len(batch)),
		zap.Int("total", total),
	)
	return nil
}

func (ix *Indexer) binding(name string) (FieldBinding, error) {
	for _, b := range ix.bindings {
		if b.Name == name {
			return b, nil
		}
	}
	return FieldBinding{}, fmt.Errorf("field %q: %w", name, ErrUnknownField)
}
