package docstore

import (
	"context"
	"errors"
	"testing"

	"joingo/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID        string `bson:"_id,omitempty"`
	HostUID   string `bson:"hostUid,omitempty"`
	Status    string `bson:"status,omitempty"`
	CreatedAt string `bson:"createdAt,omitempty"`
	Note      string `bson:"note,omitempty"`
}

const coll core.Collection = "things"

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	snap, err := store.Get(context.Background(), coll, "nope")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.ErrorIs(t, snap.DataTo(&doc{}), ErrNoDocument)
}

func TestMemoryStore_SetReplaceAndMerge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, coll, "a", doc{HostUID: "h1", Status: "active", Note: "x"}))
	require.NoError(t, store.Set(ctx, coll, "a", doc{Status: "closed"}, Merge()))

	var got doc
	snap, err := store.Get(ctx, coll, "a")
	require.NoError(t, err)
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, doc{HostUID: "h1", Status: "closed", Note: "x"}, got)

	require.NoError(t, store.Set(ctx, coll, "a", doc{Status: "active"}))
	snap, err = store.Get(ctx, coll, "a")
	require.NoError(t, err)
	got = doc{}
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, doc{Status: "active"}, got)
}

func TestMemoryStore_TransactionReadYourWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Set(coll, "a", doc{Note: "first"}); err != nil {
			return err
		}
		snap, err := tx.Get(coll, "a")
		if err != nil {
			return err
		}
		var got doc
		if err := snap.DataTo(&got); err != nil {
			return err
		}
		assert.Equal(t, "first", got.Note)
		return nil
	})
	require.NoError(t, err)

	snap, err := store.Get(ctx, coll, "a")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Set(coll, "a", doc{Note: "lost"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := store.Get(ctx, coll, "a")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func TestMemoryStore_Find(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed := map[string]doc{
		"m1": {HostUID: "h1", Status: "active", CreatedAt: "2024-01-01T00:00:00.000Z"},
		"m2": {HostUID: "h1", Status: "closed", CreatedAt: "2024-01-03T00:00:00.000Z"},
		"m3": {HostUID: "h1", Status: "active", CreatedAt: "2024-01-02T00:00:00.000Z"},
		"m4": {HostUID: "h2", Status: "active", CreatedAt: "2024-01-04T00:00:00.000Z"},
		"m0": {HostUID: "h1", Status: "active", CreatedAt: "2024-01-02T00:00:00.000Z"},
	}
	for key, d := range seed {
		require.NoError(t, store.Set(ctx, coll, key, d))
	}

	keys := func(snaps []*Snapshot) []string {
		out := make([]string, len(snaps))
		for i, s := range snaps {
			out[i] = s.Key
		}
		return out
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "equality with descending order and key tiebreak",
			query: Query{OrderBy: "createdAt", Descending: true}.Where("hostUid", OpEqual, "h1").Where("status", OpEqual, "active"),
			want:  []string{"m0", "m3", "m1"},
		},
		{
			name:  "less than",
			query: Query{OrderBy: "createdAt"}.Where("createdAt", OpLess, "2024-01-02T00:00:00.000Z"),
			want:  []string{"m1"},
		},
		{
			name:  "limit",
			query: Query{OrderBy: "createdAt", Descending: true, Limit: 2},
			want:  []string{"m4", "m2"},
		},
		{
			name:  "no order keeps key order",
			query: Query{}.Where("hostUid", OpEqual, "h1"),
			want:  []string{"m0", "m1", "m2", "m3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps, err := store.Find(ctx, coll, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(snaps))
		})
	}
}

func TestMemoryStore_FindRequiresRegisteredIndex(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := Query{Index: "idx_host_status"}.Where("hostUid", OpEqual, "h1")

	_, err := store.Find(ctx, coll, q)
	require.ErrorIs(t, err, ErrIndexNotFound)

	require.NoError(t, store.EnsureIndexes(ctx, coll, []Index{{Name: "idx_host_status"}}))
	_, err = store.Find(ctx, coll, q)
	require.NoError(t, err)

	store.DropIndex(coll, "idx_host_status")
	_, err = store.Find(ctx, coll, q)
	require.ErrorIs(t, err, ErrIndexNotFound)
}
