package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/WiserTogether/sunburnt/internal/db"
)

// SearchKeys returns one page of matching keys via FT.SEARCH NOCONTENT.
// The returned total is the full match count so callers can page until drained.
func (s *Store) SearchKeys(ctx context.Context, index, query string, offset, limit int) (int, []string, error) {
	args := []string{
		index, query,
		"NOCONTENT",
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKeysResult(raw)
}

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func parseKeysResult(raw []rueidis.RedisMessage) (int, []string, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}

	// NOCONTENT reply: [total, key1, key2, ...]
	keys := make([]string, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	return int(total), keys, nil
}
