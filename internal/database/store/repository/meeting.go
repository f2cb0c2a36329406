package repository

import (
	"context"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

type MeetingRepository struct {
	store  docstore.Store
	trace  *telemetry.Trace
	logger *zap.Logger
}

func NewMeetingRepository(logger *zap.Logger, trace *telemetry.Trace, store docstore.Store) *MeetingRepository {
	return &MeetingRepository{store: store, trace: trace, logger: logger}
}

func (repository *MeetingRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, repository.logger, repository.store, core.CollectionMeetings, []docstore.Index{
		{ // 房主的進行中會議，依建立時間倒序
			Name: core.IndexHostStatusCreatedAt,
			Fields: []docstore.IndexField{
				{Name: "hostUid"},
				{Name: "status"},
				{Name: "createdAt", Descending: true},
			},
		},
		{Name: core.IndexHostUID, Fields: []docstore.IndexField{{Name: "hostUid"}}},
		{ // 到期清理
			Name:   core.IndexStatusExpiresAt,
			Fields: []docstore.IndexField{{Name: "status"}, {Name: "expiresAt"}},
		},
	})
}

func (repository *MeetingRepository) Create(ctx context.Context, meeting *model.Meeting) (returnedError error) {
	ctx, span, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	repository.trace.ApplyTraceAttributes(span, core.TraceMeetingMeta{MeetingID: meeting.ID, HostUID: meeting.HostUID})
	return repository.store.Set(ctx, core.CollectionMeetings, meeting.ID, meeting)
}

// Get 不存在時回傳 nil, nil
func (repository *MeetingRepository) Get(ctx context.Context, id string) (_ *model.Meeting, returnedError error) {
	ctx, _, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	return decodeOne[model.Meeting](repository.store.Get(ctx, core.CollectionMeetings, id))
}

func (repository *MeetingRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return repository.store.RunTransaction(ctx, fn)
}

func (repository *MeetingRepository) GetTx(tx docstore.Tx, id string) (*model.Meeting, error) {
	return decodeOne[model.Meeting](tx.Get(core.CollectionMeetings, id))
}

func (repository *MeetingRepository) PutTx(tx docstore.Tx, meeting *model.Meeting) error {
	return tx.Set(core.CollectionMeetings, meeting.ID, meeting)
}

// ListActiveByHost 需要複合索引 idx_host_status_createdAt
func (repository *MeetingRepository) ListActiveByHost(ctx context.Context, hostUID string) ([]*model.Meeting, error) {
	q := docstore.Query{
		OrderBy:    "createdAt",
		Descending: true,
		Index:      core.IndexHostStatusCreatedAt,
	}.
		Where("hostUid", docstore.OpEqual, hostUID).
		Where("status", docstore.OpEqual, string(core.MeetingActive))
	return repository.find(ctx, q, false)
}

// ListByHost 只依單一欄位查詢，不指定排序
func (repository *MeetingRepository) ListByHost(ctx context.Context, hostUID string) ([]*model.Meeting, error) {
	return repository.find(ctx, docstore.Query{}.Where("hostUid", docstore.OpEqual, hostUID), false)
}

// ListExpired 找出 expiresAt 早於 now 的進行中會議，索引不存在時仍可查詢
func (repository *MeetingRepository) ListExpired(ctx context.Context, now string, limit int64) ([]*model.Meeting, error) {
	q := docstore.Query{
		OrderBy: "expiresAt",
		Limit:   limit,
		Index:   core.IndexStatusExpiresAt,
	}.
		Where("status", docstore.OpEqual, string(core.MeetingActive)).
		Where("expiresAt", docstore.OpLess, now)
	return repository.find(ctx, q, true)
}

// find 的 unindexedOK 為 false 時，索引錯誤原樣回傳給呼叫端處理
func (repository *MeetingRepository) find(ctx context.Context, q docstore.Query, unindexedOK bool) (_ []*model.Meeting, returnedError error) {
	ctx, span, end := repository.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceStoreQueryMeta{
		Collection: string(core.CollectionMeetings),
		Index:      q.Index,
		Filters:    len(q.Filters),
		Limit:      q.Limit,
	}
	var (
		snapshots []*docstore.Snapshot
		err       error
	)
	if unindexedOK {
		snapshots, err = findIndexed(ctx, repository.logger, repository.store, core.CollectionMeetings, q)
	} else {
		snapshots, err = repository.store.Find(ctx, core.CollectionMeetings, q)
	}
	if err != nil {
		repository.trace.ApplyTraceAttributes(span, meta)
		return nil, err
	}
	meta.Count = len(snapshots)
	repository.trace.ApplyTraceAttributes(span, meta)
	return decodeAll[model.Meeting](snapshots)
}
