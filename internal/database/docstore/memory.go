package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"joingo/internal/core"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is an in-process Store. Transactions are serialized and their
// writes are applied only when fn returns nil.
type MemoryStore struct {
	// txMu serializes writers; mu guards data and indexes.
	txMu    sync.Mutex
	mu      sync.RWMutex
	data    map[core.Collection]map[string]bson.Raw
	indexes map[core.Collection]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    map[core.Collection]map[string]bson.Raw{},
		indexes: map[core.Collection]map[string]struct{}{},
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection core.Collection, key string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(collection, key), nil
}

func (s *MemoryStore) snapshot(collection core.Collection, key string) *Snapshot {
	raw, ok := s.data[collection][key]
	if !ok {
		return &Snapshot{Key: key}
	}
	return &Snapshot{Key: key, Exists: true, raw: cloneRaw(raw)}
}

func (s *MemoryStore) Set(ctx context.Context, collection core.Collection, key string, data any, opts ...SetOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	current := s.data[collection][key]
	s.mu.RUnlock()

	next, err := buildDocument(current, data, applySetOptions(opts))
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	s.mu.Lock()
	s.put(collection, key, next)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) put(collection core.Collection, key string, raw bson.Raw) {
	if s.data[collection] == nil {
		s.data[collection] = map[string]bson.Raw{}
	}
	s.data[collection][key] = raw
}

func (s *MemoryStore) Find(ctx context.Context, collection core.Collection, q Query) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.Index != "" {
		if _, ok := s.indexes[collection][q.Index]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, q.Index)
		}
	}

	keys := make([]string, 0, len(s.data[collection]))
	for key := range s.data[collection] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	type row struct {
		snapshot *Snapshot
		doc      bson.M
	}
	var rows []row
	for _, key := range keys {
		raw := s.data[collection][key]
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		ok, err := matches(doc, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row{snapshot: &Snapshot{Key: key, Exists: true, raw: cloneRaw(raw)}, doc: doc})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareField(rows[i].doc[q.OrderBy], rows[j].doc[q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && int64(len(rows)) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]*Snapshot, len(rows))
	for i, r := range rows {
		out[i] = r.snapshot
	}
	return out, nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{store: s, writes: map[core.Collection]map[string]bson.Raw{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, docs := range tx.writes {
		for key, raw := range docs {
			s.put(collection, key, raw)
		}
	}
	return nil
}

func (s *MemoryStore) EnsureIndexes(ctx context.Context, collection core.Collection, indexes []Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexes[collection] == nil {
		s.indexes[collection] = map[string]struct{}{}
	}
	for _, index := range indexes {
		s.indexes[collection][index.Name] = struct{}{}
	}
	return nil
}

// DropIndex removes a registered index name.
func (s *MemoryStore) DropIndex(collection core.Collection, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes[collection], name)
}

type memoryTx struct {
	store  *MemoryStore
	writes map[core.Collection]map[string]bson.Raw
}

func (tx *memoryTx) current(collection core.Collection, key string) (bson.Raw, bool) {
	if raw, ok := tx.writes[collection][key]; ok {
		return raw, true
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	raw, ok := tx.store.data[collection][key]
	return raw, ok
}

func (tx *memoryTx) Get(collection core.Collection, key string) (*Snapshot, error) {
	raw, ok := tx.current(collection, key)
	if !ok {
		return &Snapshot{Key: key}, nil
	}
	return &Snapshot{Key: key, Exists: true, raw: cloneRaw(raw)}, nil
}

func (tx *memoryTx) Set(collection core.Collection, key string, data any, opts ...SetOption) error {
	current, _ := tx.current(collection, key)
	next, err := buildDocument(current, data, applySetOptions(opts))
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	if tx.writes[collection] == nil {
		tx.writes[collection] = map[string]bson.Raw{}
	}
	tx.writes[collection][key] = next
	return nil
}

// buildDocument applies data over current (merge) or replaces it.
func buildDocument(current bson.Raw, data any, o setOptions) (bson.Raw, error) {
	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	if o.merge && current != nil {
		var existing bson.D
		if err := bson.Unmarshal(current, &existing); err != nil {
			return nil, err
		}
		for _, e := range doc {
			replaced := false
			for i := range existing {
				if existing[i].Key == e.Key {
					existing[i].Value = e.Value
					replaced = true
					break
				}
			}
			if !replaced {
				existing = append(existing, e)
			}
		}
		doc = existing
	}
	return bson.Marshal(doc)
}

func cloneRaw(raw bson.Raw) bson.Raw {
	out := make(bson.Raw, len(raw))
	copy(out, raw)
	return out
}

func matches(doc bson.M, filters []Filter) (bool, error) {
	for _, f := range filters {
		value, present := doc[f.Field]
		switch f.Op {
		case OpEqual:
			if !present || compareField(value, f.Value) != 0 {
				return false, nil
			}
		case OpLess:
			if !present || !sameKind(value, f.Value) || compareField(value, f.Value) >= 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	return true, nil
}

// normalize 將字串衍生型別與各種數字統一成 string / float64
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}

func sameKind(a, b any) bool {
	return reflect.TypeOf(normalize(a)) == reflect.TypeOf(normalize(b))
}

// compareField orders missing values first, then by type-specific order.
func compareField(a, b any) int {
	na, nb := normalize(a), normalize(b)
	switch {
	case na == nil && nb == nil:
		return 0
	case na == nil:
		return -1
	case nb == nil:
		return 1
	}
	switch x := na.(type) {
	case string:
		if y, ok := nb.(string); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case float64:
		if y, ok := nb.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case bool:
		if y, ok := nb.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	if reflect.DeepEqual(na, nb) {
		return 0
	}
	return -1
}
