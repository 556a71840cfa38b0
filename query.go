package sunburnt

import (
	"fmt"
	"strings"
)

// Op enumerates supported predicate operators.
type Op int

const (
	// OpEqual is an exact-match predicate.
	OpEqual Op = iota
	// OpLessThan is an exclusive upper-bound range predicate.
	OpLessThan
)

// Predicate is one field condition of a query.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Query is an AND-composed set of field predicates. The zero value matches
// everything; backends translate predicates into their native query syntax.
type Query struct {
	preds []Predicate
}

// Eq builds an equality query on one field.
func Eq(field string, value any) Query {
	return Query{preds: []Predicate{{Field: field, Op: OpEqual, Value: value}}}
}

// Lt builds an exclusive less-than query on one field.
func Lt(field string, value any) Query {
	return Query{preds: []Predicate{{Field: field, Op: OpLessThan, Value: value}}}
}

// And returns the conjunction of q with the given queries.
func (q Query) And(others ...Query) Query {
	preds := make([]Predicate, len(q.preds), len(q.preds)+len(others))
	copy(preds, q.preds)
	for _, o := range others {
		preds = append(preds, o.preds...)
	}
	return Query{preds: preds}
}

// Predicates returns the conjunct predicates in composition order.
func (q Query) Predicates() []Predicate {
	out := make([]Predicate, len(q.preds))
	copy(out, q.preds)
	return out
}

// String returns a debug representation of the query.
func (q Query) String() string {
	if len(q.preds) == 0 {
		return "*"
	}
	parts := make([]string, len(q.preds))
	for i, p := range q.preds {
		op := "=="
		if p.Op == OpLessThan {
			op = "<"
		}
		parts[i] = fmt.Sprintf("%s %s %v", p.Field, op, p.Value)
	}
	return strings.Join(parts, " AND ")
}
