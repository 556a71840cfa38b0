package parquet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

type articleRow struct {
	ID    int64    `parquet:"id"`
	Title string   `parquet:"title"`
	Score float64  `parquet:"score"`
	Tags  []string `parquet:"tags,list"`
}

func writeParquet(t *testing.T, rows []articleRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[articleRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func drain(t *testing.T, s *FileSource) ([]map[string]any, error) {
	t.Helper()
	cur := s.Records(context.Background())
	var records []map[string]any
	for cur.Next() {
		records = append(records, cur.Record().(map[string]any))
	}
	return records, cur.Err()
}

func TestFileSource_ReadsRows(t *testing.T) {
	path := writeParquet(t, []articleRow{
		{ID: 1, Title: "first", Score: 0.5, Tags: []string{"go"}},
		{ID: 2, Title: "second", Score: 1.5, Tags: []string{"search", "index"}},
	})

	records, err := drain(t, NewFileSource(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first["id"] != int64(1) {
		t.Errorf("id = %v (%T), want 1", first["id"], first["id"])
	}
	if first["title"] != "first" {
		t.Errorf("title = %v", first["title"])
	}
	if first["score"] != 0.5 {
		t.Errorf("score = %v", first["score"])
	}

	second := records[1]
	tags, ok := second["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("tags = %v (%T), want 2-element slice", second["tags"], second["tags"])
	}
}

func TestFileSource_Empty(t *testing.T) {
	path := writeParquet(t, nil)

	records, err := drain(t, NewFileSource(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	cur := NewFileSource("/does/not/exist.parquet").Records(context.Background())
	if cur.Next() {
		t.Error("expected no records")
	}
	if cur.Err() == nil {
		t.Error("expected error")
	}
}

func TestFileSource_CancelledContext(t *testing.T) {
	path := writeParquet(t, []articleRow{{ID: 1, Title: "x"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cur := NewFileSource(path).Records(ctx)
	if cur.Next() {
		t.Error("expected no records after cancellation")
	}
	if cur.Err() == nil {
		t.Error("expected context error")
	}
}
