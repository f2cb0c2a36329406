package repository

import (
	"context"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type UserRepository struct {
	store  docstore.Store
	trace  *telemetry.Trace
	logger *zap.Logger
}

func NewUserRepository(logger *zap.Logger, trace *telemetry.Trace, store docstore.Store) *UserRepository {
	return &UserRepository{store: store, trace: trace, logger: logger}
}

func (repository *UserRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, repository.logger, repository.store, core.CollectionUsers, []docstore.Index{
		{Name: core.IndexUserStatus, Fields: []docstore.IndexField{{Name: "status"}}},
	})
}

// Get 不存在時回傳 nil, nil
func (repository *UserRepository) Get(ctx context.Context, uid string) (_ *model.User, returnedError error) {
	ctx, _, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	return decodeOne[model.User](repository.store.Get(ctx, core.CollectionUsers, uid))
}

// RunTransaction 在單一交易內讀寫使用者文件
func (repository *UserRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return repository.store.RunTransaction(ctx, fn)
}

func (repository *UserRepository) GetTx(tx docstore.Tx, uid string) (*model.User, error) {
	return decodeOne[model.User](tx.Get(core.CollectionUsers, uid))
}

// clearableUserFields 被清空時 omitempty 會省略，merge 寫入需明確帶空值
var clearableUserFields = []string{"displayName", "firstName", "lastName", "email", "avatarUrl", "phoneNumber", "locale"}

// PutTx 以 merge 寫入，保留 User 以外由其他服務寫入的欄位；uid 一律等於 key
func (repository *UserRepository) PutTx(tx docstore.Tx, user *model.User) error {
	doc, err := userDocument(user)
	if err != nil {
		return err
	}
	return tx.Set(core.CollectionUsers, user.UID, doc, docstore.Merge())
}

func userDocument(user *model.User) (bson.M, error) {
	raw, err := bson.Marshal(user)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, field := range clearableUserFields {
		if _, ok := doc[field]; !ok {
			doc[field] = ""
		}
	}
	return doc, nil
}
