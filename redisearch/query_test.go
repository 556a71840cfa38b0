package redisearch

import (
	"testing"
	"time"

	"github.com/WiserTogether/sunburnt"
)

func TestTranslate_Empty(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	got, err := b.translate(sunburnt.Query{})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "*" {
		t.Errorf("got %q, want *", got)
	}
}

func TestTranslate_TagEquality(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	got, err := b.translate(sunburnt.Eq("meta_type_s", "article"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "@meta_type_s:{article}" {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_TagEscaping(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	got, err := b.translate(sunburnt.Eq("meta_type_s", "blog-post v2"))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != `@meta_type_s:{blog\-post\ v2}` {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_NumericEquality(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	got, err := b.translate(sunburnt.Eq("word_count_i", 42))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "@word_count_i:[42 42]" {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_TimestampLessThan(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	ts := time.Date(2014, 5, 2, 12, 0, 0, 0, time.UTC)
	got, err := b.translate(sunburnt.Lt("meta_index_timestamp_dt", ts))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "@meta_index_timestamp_dt:[-inf (1399032000000]" {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_Conjunction(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	ts := time.Date(2014, 5, 2, 12, 0, 0, 0, time.UTC)
	q := sunburnt.Eq("meta_type_s", "article").
		And(sunburnt.Lt("meta_index_timestamp_dt", ts))

	got, err := b.translate(q)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	want := "@meta_type_s:{article} @meta_index_timestamp_dt:[-inf (1399032000000]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTranslate_Errors(t *testing.T) {
	b := newTestBackend(t, &fakeStore{})

	if _, err := b.translate(sunburnt.Eq("not_in_schema", "x")); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := b.translate(sunburnt.Lt("meta_type_s", "x")); err == nil {
		t.Error("expected error for range on tag field")
	}
	if _, err := b.translate(sunburnt.Lt("word_count_i", "not a number")); err == nil {
		t.Error("expected error for non-numeric bound")
	}
}
