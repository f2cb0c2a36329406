package repository

import (
	"context"
	"errors"

	"joingo/internal/core"
	"joingo/internal/database/docstore"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewUserRepository,
	NewMeetingRepository,
	NewMessageRepository,
	NewStoreRepository,
)

// StoreRepository 彙整所有 document store repository，供建立索引等管理命令使用
type StoreRepository struct {
	Users    *UserRepository
	Meetings *MeetingRepository
	Messages *MessageRepository
}

func NewStoreRepository(users *UserRepository, meetings *MeetingRepository, messages *MessageRepository) *StoreRepository {
	return &StoreRepository{Users: users, Meetings: meetings, Messages: messages}
}

// EnsureIndexes 建立所有 collection 的索引（冪等）
func (repository *StoreRepository) EnsureIndexes(ctx context.Context) error {
	return errors.Join(
		repository.Users.EnsureIndexes(ctx),
		repository.Meetings.EnsureIndexes(ctx),
		repository.Messages.EnsureIndexes(ctx),
	)
}

// decodeAll 將查詢結果解成 model slice
func decodeAll[T any](snapshots []*docstore.Snapshot) ([]*T, error) {
	out := make([]*T, 0, len(snapshots))
	for _, snapshot := range snapshots {
		var v T
		if err := snapshot.DataTo(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// decodeOne 不存在時回傳 nil, nil
func decodeOne[T any](snapshot *docstore.Snapshot, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if !snapshot.Exists {
		return nil, nil
	}
	var v T
	if err := snapshot.DataTo(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// findIndexed 先帶 index 查詢；索引尚未建立時改由 store 直接過濾排序
func findIndexed(ctx context.Context, logger *zap.Logger, store docstore.Store, collection core.Collection, q docstore.Query) ([]*docstore.Snapshot, error) {
	snapshots, err := store.Find(ctx, collection, q)
	if err == nil || q.Index == "" || !errors.Is(err, docstore.ErrIndexNotFound) {
		return snapshots, err
	}
	logger.Warn("index missing, querying without hint",
		zap.String("collection", string(collection)),
		zap.String("index", q.Index),
	)
	q.Index = ""
	return store.Find(ctx, collection, q)
}

func ensureIndexes(ctx context.Context, logger *zap.Logger, store docstore.Store, collection core.Collection, indexes []docstore.Index) error {
	if err := store.EnsureIndexes(ctx, collection, indexes); err != nil {
		logger.Warn("failed to ensure indexes", zap.String("collection", string(collection)), zap.Error(err))
		return err
	}
	return nil
}
