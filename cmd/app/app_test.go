package main

import (
	"context"
	"testing"

	"joingo/config"
	"joingo/internal/core"
	"joingo/internal/database"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/repository"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApp_EnsureIndexesOnMemoryStore(t *testing.T) {
	conf := &config.Configuration{}
	conf.Store.Driver = string(core.StoreDriverMemory)
	logger := zap.NewNop()
	trace := &telemetry.Trace{}

	store, cleanup, err := database.NewDocumentStore(logger, conf)
	require.NoError(t, err)
	defer cleanup()

	meetings := repository.NewMeetingRepository(logger, trace, store)
	storeRepository := repository.NewStoreRepository(
		repository.NewUserRepository(logger, trace, store),
		meetings,
		repository.NewMessageRepository(logger, trace, store),
	)

	_, err = meetings.ListActiveByHost(context.Background(), "host-1")
	require.ErrorIs(t, err, docstore.ErrIndexNotFound)

	a := &App{logger: logger, store: storeRepository}
	require.NoError(t, a.ensureIndexes())

	got, err := meetings.ListActiveByHost(context.Background(), "host-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
