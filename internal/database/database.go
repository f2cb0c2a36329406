package database

import (
	"joingo/config"
	"joingo/internal/core"
	client "joingo/internal/database/client"
	"joingo/internal/database/docstore"
	fluentdRepo "joingo/internal/database/fluentd/repository"
	redisRepo "joingo/internal/database/redis/repository"
	storeRepo "joingo/internal/database/store/repository"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet 定義所有 DB Client 與 repository 的依賴
var ProviderSet = wire.NewSet(
	NewDocumentStore,
	client.NewRedisClient,
	client.NewFluentdClient,
	client.NewObjectStorage,
	storeRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)

// NewDocumentStore 依 STORE.DRIVER 選擇 MongoDB 或記憶體實作
func NewDocumentStore(logger *zap.Logger, config *config.Configuration) (docstore.Store, func(), error) {
	if core.StoreDriver(config.Store.Driver) == core.StoreDriverMemory {
		logger.Warn("using in-memory document store, data is lost on restart")
		return docstore.NewMemoryStore(), func() {}, nil
	}
	mongoClient, cleanup, err := client.NewMongoClient(logger, config)
	if err != nil {
		return nil, nil, err
	}
	database := config.MongoDB.Database
	if database == "" {
		database = string(core.MongoDBJoinGo)
	}
	return docstore.NewMongoStore(mongoClient.Client(), database), cleanup, nil
}
