package repository

import (
	"context"
	"testing"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestUserRepository_PutTxKeepsForeignFields(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewUserRepository(zap.NewNop(), &telemetry.Trace{}, store)

	require.NoError(t, store.Set(ctx, core.CollectionUsers, "u1", bson.M{
		"uid":       "u1",
		"firstName": "Ann",
		"fcmToken":  "device-1",
	}))

	require.NoError(t, repo.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return repo.PutTx(tx, &model.User{UID: "u1", DisplayName: "Annie", Status: core.StatusActive})
	}))

	snapshot, err := store.Get(ctx, core.CollectionUsers, "u1")
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, snapshot.DataTo(&doc))
	assert.Equal(t, "device-1", doc["fcmToken"])
	assert.Equal(t, "Annie", doc["displayName"])
	assert.Equal(t, "", doc["firstName"])

	user, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Annie", user.DisplayName)
	assert.Empty(t, user.FirstName)
	assert.Equal(t, core.StatusActive, user.Status)
}
