// Package docstore is the document store adapter: keyed documents grouped in
// collections, transactional read-modify-write, and simple ordered queries.
package docstore

import (
	"context"
	"errors"

	"joingo/internal/core"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrIndexNotFound is returned when a query names an index the store does not have.
	ErrIndexNotFound = errors.New("docstore: required index does not exist")
	// ErrNoDocument is returned by Snapshot.DataTo on a missing document.
	ErrNoDocument = errors.New("docstore: document does not exist")
)

type Op string

const (
	OpEqual Op = "=="
	OpLess  Op = "<"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query is a conjunction of filters with an optional ordering.
// When OrderBy is set, ties are broken by document key ascending.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int64
	// Index names the composite index the query requires.
	Index string
}

func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

type IndexField struct {
	Name       string
	Descending bool
}

type Index struct {
	Name   string
	Fields []IndexField
}

type Snapshot struct {
	Key    string
	Exists bool
	raw    bson.Raw
}

// DataTo decodes the document into v.
func (s *Snapshot) DataTo(v any) error {
	if s == nil || !s.Exists {
		return ErrNoDocument
	}
	return bson.Unmarshal(s.raw, v)
}

type setOptions struct {
	merge bool
}

type SetOption func(*setOptions)

// Merge writes only the top-level fields present in data and keeps the rest.
func Merge() SetOption {
	return func(o *setOptions) { o.merge = true }
}

func applySetOptions(opts []SetOption) setOptions {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Tx is the view of the store inside RunTransaction. Reads observe the
// transaction's own earlier writes.
type Tx interface {
	Get(collection core.Collection, key string) (*Snapshot, error)
	Set(collection core.Collection, key string, data any, opts ...SetOption) error
}

type Store interface {
	Get(ctx context.Context, collection core.Collection, key string) (*Snapshot, error)
	Set(ctx context.Context, collection core.Collection, key string, data any, opts ...SetOption) error
	Find(ctx context.Context, collection core.Collection, q Query) ([]*Snapshot, error)
	// RunTransaction runs fn atomically. The store may call fn more than once
	// on write conflicts, so fn must not have side effects outside tx.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	EnsureIndexes(ctx context.Context, collection core.Collection, indexes []Index) error
}

// toDocument marshals data into a top-level document without _id.
func toDocument(data any) (bson.D, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := doc[:0]
	for _, e := range doc {
		if e.Key == "_id" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
