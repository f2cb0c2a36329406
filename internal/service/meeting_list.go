package service

import (
	"context"
	"sort"

	"joingo/internal/core"
	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

// listStrategy 回傳房主的進行中會議，依 createdAt 倒序、同時間依 id 正序
type listStrategy interface {
	Name() string
	List(ctx context.Context, hostUID string) ([]*model.Meeting, error)
}

// primaryListStrategy 交給 store 以複合索引查詢與排序
type primaryListStrategy struct {
	repo *repository.MeetingRepository
}

func (primaryListStrategy) Name() string { return "primary" }

func (s primaryListStrategy) List(ctx context.Context, hostUID string) ([]*model.Meeting, error) {
	return s.repo.ListActiveByHost(ctx, hostUID)
}

// fallbackListStrategy 只依 hostUid 查詢，在程式內過濾與排序
type fallbackListStrategy struct {
	repo *repository.MeetingRepository
}

func (fallbackListStrategy) Name() string { return "fallback" }

func (s fallbackListStrategy) List(ctx context.Context, hostUID string) ([]*model.Meeting, error) {
	all, err := s.repo.ListByHost(ctx, hostUID)
	if err != nil {
		return nil, err
	}
	return activeNewestFirst(all), nil
}

// activeNewestFirst 與 store 端排序一致：createdAt 字串倒序，相同時 id 正序
func activeNewestFirst(meetings []*model.Meeting) []*model.Meeting {
	active := make([]*model.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.Status == core.MeetingActive {
			active = append(active, m)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt != active[j].CreatedAt {
			return active[i].CreatedAt > active[j].CreatedAt
		}
		return active[i].ID < active[j].ID
	})
	return active
}

// meetingLister 先走 primary，只有查詢本身失敗時才改走 fallback
type meetingLister struct {
	logger   *zap.Logger
	metric   *telemetry.Metric
	primary  listStrategy
	fallback listStrategy
}

func newMeetingLister(logger *zap.Logger, metric *telemetry.Metric, repo *repository.MeetingRepository) *meetingLister {
	return &meetingLister{
		logger:   logger,
		metric:   metric,
		primary:  primaryListStrategy{repo: repo},
		fallback: fallbackListStrategy{repo: repo},
	}
}

func (l *meetingLister) List(ctx context.Context, hostUID string) ([]*model.Meeting, core.TraceMeetingListMeta, error) {
	meta := core.TraceMeetingListMeta{HostUID: hostUID, Strategy: l.primary.Name()}

	meetings, err := l.primary.List(ctx, hostUID)
	if err == nil {
		meta.ResultCount = len(meetings)
		return meetings, meta, nil
	}

	l.logger.Warn("meeting list primary query failed, using fallback",
		zap.String("hostUid", hostUID),
		zap.Error(err),
	)
	l.metric.IncMeetingListFallback()
	meta.Strategy = l.fallback.Name()
	meta.PrimaryErr = err.Error()

	meetings, err = l.fallback.List(ctx, hostUID)
	if err != nil {
		return nil, meta, err
	}
	meta.ResultCount = len(meetings)
	return meetings, meta, nil
}
