package repository

import (
	"context"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

type MessageRepository struct {
	store  docstore.Store
	trace  *telemetry.Trace
	logger *zap.Logger
}

func NewMessageRepository(logger *zap.Logger, trace *telemetry.Trace, store docstore.Store) *MessageRepository {
	return &MessageRepository{store: store, trace: trace, logger: logger}
}

func (repository *MessageRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, repository.logger, repository.store, core.CollectionMeetingMessages, []docstore.Index{
		{
			Name:   core.IndexMeetingCreatedAt,
			Fields: []docstore.IndexField{{Name: "meetingId"}, {Name: "createdAt", Descending: true}},
		},
	})
}

func (repository *MessageRepository) Create(ctx context.Context, message *model.Message) (returnedError error) {
	ctx, _, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	return repository.store.Set(ctx, core.CollectionMeetingMessages, message.Key(), message)
}

// ListNewest 依建立時間倒序取最新 limit 筆，索引不存在時仍可查詢
func (repository *MessageRepository) ListNewest(ctx context.Context, meetingID string, limit int64) (_ []*model.Message, returnedError error) {
	ctx, span, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	q := docstore.Query{
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      limit,
		Index:      core.IndexMeetingCreatedAt,
	}.Where("meetingId", docstore.OpEqual, meetingID)

	snapshots, err := findIndexed(ctx, repository.logger, repository.store, core.CollectionMeetingMessages, q)
	if err != nil {
		return nil, err
	}
	repository.trace.ApplyTraceAttributes(span, core.TraceStoreQueryMeta{
		Collection: string(core.CollectionMeetingMessages),
		Index:      q.Index,
		Filters:    len(q.Filters),
		Limit:      limit,
		Count:      len(snapshots),
	})
	return decodeAll[model.Message](snapshots)
}
