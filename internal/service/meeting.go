package service

import (
	"context"
	"time"

	"joingo/internal/core"
	"joingo/internal/database/docstore"
	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxParticipants = 10
	MinMaxParticipants     = 2
	expiredBatchSize       = 200
)

type CreateMeetingInput struct {
	MaxParticipants int
	TTLMinutes      int
	Metadata        map[string]any
}

type MeetingService struct {
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	logger      *zap.Logger
	meetingRepo *repository.MeetingRepository
	list        *meetingLister
	now         func() time.Time
	newID       func() string
}

func NewMeetingService(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, meetingRepo *repository.MeetingRepository) *MeetingService {
	return &MeetingService{
		trace:       trace,
		metric:      metric,
		logger:      logger,
		meetingRepo: meetingRepo,
		list:        newMeetingLister(logger, metric, meetingRepo),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *MeetingService) Create(ctx context.Context, hostUID string, input CreateMeetingInput) (_ *model.Meeting, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	maxParticipants := input.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = DefaultMaxParticipants
	}
	if maxParticipants < MinMaxParticipants || maxParticipants > DefaultMaxParticipants {
		return nil, cErr.BadRequest("maxParticipants must be between 2 and 10")
	}
	if input.TTLMinutes < 0 {
		return nil, cErr.BadRequest("ttlMinutes must be positive")
	}

	now := s.now()
	id := s.newID()
	voiceEnabled := true
	meeting := &model.Meeting{
		ID:              id,
		HostUID:         hostUID,
		CreatedAt:       core.FormatTime(now),
		Status:          core.MeetingActive,
		MaxParticipants: maxParticipants,
		Metadata:        input.Metadata,
		VoiceEnabled:    &voiceEnabled,
		VoiceRoomID:     id,
	}
	if input.TTLMinutes > 0 {
		meeting.ExpiresAt = core.FormatTime(now.Add(time.Duration(input.TTLMinutes) * time.Minute))
	}
	s.trace.ApplyTraceAttributes(span, core.TraceMeetingMeta{MeetingID: id, HostUID: hostUID, Status: string(meeting.Status)})

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, storeError(s.logger, err, "Failed to create meeting")
	}
	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (_ *model.Meeting, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meeting, err := s.meetingRepo.Get(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to load meeting")
	}
	if meeting == nil {
		return nil, cErr.NotFound("Meeting not found", cErr.MEETING_NOT_FOUND)
	}
	return meeting, nil
}

// UpdateStatus 只有房主可以變更狀態；inactive 同時寫入 deletedAt
func (s *MeetingService) UpdateStatus(ctx context.Context, id, callerUID string, status core.MeetingStatus) (_ *model.Meeting, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	s.trace.ApplyTraceAttributes(span, core.TraceMeetingMeta{MeetingID: id, CallerUID: callerUID, Status: string(status)})

	switch status {
	case core.MeetingActive, core.MeetingInactive, core.MeetingClosed:
	default:
		return nil, cErr.BadRequest("invalid meeting status")
	}

	var next *model.Meeting
	err := s.meetingRepo.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		current, err := s.meetingRepo.GetTx(tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return cErr.NotFound("Meeting not found", cErr.MEETING_NOT_FOUND)
		}
		if current.HostUID != callerUID {
			return cErr.Forbidden("Only the host can change meeting status", cErr.NOT_HOST)
		}
		ts := core.FormatTime(s.now())
		updated := *current
		updated.Status = status
		updated.UpdatedAt = ts
		if status == core.MeetingInactive {
			updated.DeletedAt = ts
		}
		next = &updated
		return s.meetingRepo.PutTx(tx, next)
	})
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to update meeting status")
	}
	return next, nil
}

// ListByHost 列出房主的進行中會議，新到舊
func (s *MeetingService) ListByHost(ctx context.Context, hostUID string) (_ []*model.Meeting, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meetings, meta, err := s.list.List(ctx, hostUID)
	s.trace.ApplyTraceAttributes(span, meta)
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to list meetings")
	}
	return meetings, nil
}

// CloseExpired 將 expiresAt 已過的進行中會議改為 closed，回傳關閉數量
func (s *MeetingService) CloseExpired(ctx context.Context, now time.Time) (closed int, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx, string(core.SpanMeetingExpiryJob))
	defer func() { end(returnedError) }()

	ts := core.FormatTime(now)
	expired, err := s.meetingRepo.ListExpired(ctx, ts, expiredBatchSize)
	if err != nil {
		return 0, storeError(s.logger, err, "Failed to list expired meetings")
	}
	for _, meeting := range expired {
		id := meeting.ID
		changed := false
		err := s.meetingRepo.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
			changed = false
			current, err := s.meetingRepo.GetTx(tx, id)
			if err != nil || current == nil {
				return err
			}
			// 交易內重新確認，避免覆寫剛被房主改過的狀態
			if current.Status != core.MeetingActive || current.ExpiresAt == "" || current.ExpiresAt >= ts {
				return nil
			}
			updated := *current
			updated.Status = core.MeetingClosed
			updated.UpdatedAt = ts
			changed = true
			return s.meetingRepo.PutTx(tx, &updated)
		})
		if err != nil {
			s.logger.Warn("failed to close expired meeting", zap.String("meetingId", id), zap.Error(err))
			continue
		}
		if changed {
			closed++
		}
	}
	s.metric.AddMeetingsExpired(closed)
	return closed, nil
}
