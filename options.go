package sunburnt

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Indexer at construction.
type Option func(*Indexer)

// WithChunkSize overrides the commit chunk size used by Reindex. Chunk
// boundaries are purely a memory and payload-size control, not a durability
// boundary; values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.chunkSize = n
		}
	}
}

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(ix *Indexer) {
		if log != nil {
			ix.log = log
		}
	}
}

// WithClock overrides the time source used for the reindex watermark and the
// per-record index timestamps.
func WithClock(clock func() time.Time) Option {
	return func(ix *Indexer) {
		if clock != nil {
			ix.clock = clock
		}
	}
}

// WithoutValidation skips schema validation at bind time, for backends whose
// schema cannot be queried. Unmatched fields are then bound as static fields.
func WithoutValidation() Option {
	return func(ix *Indexer) {
		ix.validate = false
	}
}
