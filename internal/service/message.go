package service

import (
	"context"

	"joingo/internal/database/store/model"
	"joingo/internal/database/store/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

const (
	DefaultRecentMessages = 50
	MaxRecentMessages     = 200
)

type MessageService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	messageRepo *repository.MessageRepository
}

func NewMessageService(logger *zap.Logger, trace *telemetry.Trace, messageRepo *repository.MessageRepository) *MessageService {
	return &MessageService{trace: trace, logger: logger, messageRepo: messageRepo}
}

func (s *MessageService) Save(ctx context.Context, message *model.Message) (returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if message.MeetingID == "" || message.ID == "" {
		return cErr.BadRequest("meetingId and id are required")
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return storeError(s.logger, err, "Failed to save message")
	}
	return nil
}

// Recent 取最新 limit 筆，依時間正序回傳
func (s *MessageService) Recent(ctx context.Context, meetingID string, limit int) (_ []*model.Message, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if limit <= 0 {
		limit = DefaultRecentMessages
	}
	if limit > MaxRecentMessages {
		limit = MaxRecentMessages
	}
	messages, err := s.messageRepo.ListNewest(ctx, meetingID, int64(limit))
	if err != nil {
		return nil, storeError(s.logger, err, "Failed to load messages")
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
