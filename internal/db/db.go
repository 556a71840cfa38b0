// Package db defines the narrow store surface the redisearch backend needs:
// pipelined hash writes, key deletion, FT index lifecycle, and key-paging
// search. Driver implementations live in subpackages.
package db

import (
	"context"
	"time"
)

// Store is the database facade consumed by the redisearch backend.
type Store interface {
	Pinger
	HashWriter
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashWriter provides batched hash writes and key deletion.
type HashWriter interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs FT.SEARCH queries for the backend. SearchKeys returns one
// page of matching keys without document content; the total is the full
// match count so callers can page until drained.
type Searcher interface {
	SearchKeys(ctx context.Context, index, query string, offset, limit int) (total int, keys []string, err error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
