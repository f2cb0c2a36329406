package service

import (
	"context"
	"time"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/service/profile"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

// upsert 來源，用於 metric 與 log
const (
	OriginDirect   = "direct"
	OriginSelf     = "self"
	OriginProvider = "provider"
	OriginUpdate   = "update"
)

type UserService struct {
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	logger   *zap.Logger
	userRepo *repository.UserRepository
	now      func() time.Time
}

func NewUserService(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, userRepo *repository.UserRepository) *UserService {
	return &UserService{trace: trace, metric: metric, logger: logger, userRepo: userRepo, now: time.Now}
}

// Upsert 在單一交易內讀取、合併、寫回；文件不存在時建立
func (s *UserService) Upsert(ctx context.Context, uid string, incoming profile.Partial, policy profile.Policy) (*model.User, error) {
	return s.upsert(ctx, uid, incoming, policy, OriginDirect, false)
}

// Sync 自助更新與註冊使用，新值優先
func (s *UserService) Sync(ctx context.Context, uid string, incoming profile.Partial) (*model.User, error) {
	return s.upsert(ctx, uid, incoming, profile.SelfServicePolicy, OriginSelf, false)
}

// SyncFromProvider 身分提供者同步，已完成的檔案不覆寫個人欄位
func (s *UserService) SyncFromProvider(ctx context.Context, uid string, incoming profile.Partial) (*model.User, error) {
	return s.upsert(ctx, uid, incoming, profile.ProviderSyncPolicy, OriginProvider, false)
}

// Update 與 Sync 相同，但文件必須已存在
func (s *UserService) Update(ctx context.Context, uid string, incoming profile.Partial) (*model.User, error) {
	return s.upsert(ctx, uid, incoming, profile.SelfServicePolicy, OriginUpdate, true)
}

func (s *UserService) upsert(ctx context.Context, uid string, incoming profile.Partial, policy profile.Policy, origin string, mustExist bool) (_ *model.User, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if uid == "" {
		return nil, cErr.BadRequest("uid is required")
	}
	incoming.UID = uid

	var (
		next    *model.User
		created bool
	)
	// 交易可能被 store 重跑，結果變數每次都重新指定
	err := s.userRepo.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		current, err := s.userRepo.GetTx(tx, uid)
		if err != nil {
			return err
		}
		if current == nil && mustExist {
			return cErr.NotFound("User not found", cErr.USER_NOT_FOUND)
		}
		next = profile.Merge(current, incoming, policy, s.now())
		next.UID = uid
		created = current == nil
		return s.userRepo.PutTx(tx, next)
	})
	if err != nil {
		s.metric.IncProfileUpsert(origin, "error")
		return nil, storeError(s.logger, err, "Failed to save user profile")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceProfileUpsertMeta{
		UID:               uid,
		Origin:            origin,
		IncomingWins:      policy.IncomingWins,
		PreserveCompleted: policy.PreserveCompleted,
		Created:           created,
		Completed:         next.ProfileCompleted,
	})
	result := "updated"
	if created {
		result = "created"
	}
	s.metric.IncProfileUpsert(origin, result)
	s.logger.Debug("profile upserted",
		zap.String("uid", uid),
		zap.String("origin", origin),
		zap.Bool("created", created),
		zap.Bool("hasPhone", incoming.PhoneNumber != nil),
	)
	return next, nil
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (_ *model.User, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	user, err := s.userRepo.Get(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to load user profile")
	}
	if user == nil {
		return nil, cErr.NotFound("User not found", cErr.USER_NOT_FOUND)
	}
	return user, nil
}

// SoftDelete 只改 status、deletedAt、updatedAt，文件保留
func (s *UserService) SoftDelete(ctx context.Context, uid string) (_ *model.User, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	var next *model.User
	err := s.userRepo.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		current, err := s.userRepo.GetTx(tx, uid)
		if err != nil {
			return err
		}
		if current == nil {
			return cErr.NotFound("User not found", cErr.USER_NOT_FOUND)
		}
		ts := core.FormatTime(s.now())
		deleted := *current
		deleted.Status = core.StatusDeleted
		deleted.DeletedAt = ts
		deleted.UpdatedAt = ts
		next = &deleted
		return s.userRepo.PutTx(tx, next)
	})
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to delete user profile")
	}
	s.logger.Info("user soft deleted", zap.String("uid", uid))
	return next, nil
}
