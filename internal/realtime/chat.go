package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"joingo/config"
	"joingo/internal/core"
	fluentdModel "joingo/internal/database/fluentd/model"
	fluentdRepo "joingo/internal/database/fluentd/repository"
	"joingo/internal/database/store/model"
	"joingo/internal/realtime/socketio"
	"joingo/internal/service"
	"joingo/internal/telemetry"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

const (
	EventChatMessage = "chat:message"
	EventRoomEvent   = "room:event"
)

type messageSaver interface {
	Save(ctx context.Context, message *model.Message) error
}

// ChatBridge 將聊天服務的訊息寫入 meeting_messages
type ChatBridge struct {
	logger   *zap.Logger
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	messages messageSaver
	logs     realtimeLogger
	client   *socketio.Client
	newID    func() string
	now      func() time.Time
}

func NewChatBridge(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	messages *service.MessageService,
	logs *fluentdRepo.LogRepository,
) *ChatBridge {
	b := newChatBridge(logger.With(zap.String("bridge", BridgeChat)), trace, metric, messages, logs)
	if conf.Chat.ServiceURL == "" {
		return b
	}
	if conf.Chat.ServiceToken != "" {
		b.logger.Info("chat bridge will send service token", zap.String("token", maskToken(conf.Chat.ServiceToken)))
	} else {
		b.logger.Info("chat bridge has no service token configured")
	}
	b.client = socketio.NewClient(b.logger, socketio.Options{
		URL:     conf.Chat.ServiceURL,
		Token:   conf.Chat.ServiceToken,
		OnRetry: func(error, time.Duration) { metric.IncRealtimeReconnect(BridgeChat) },
	})
	b.client.On(EventChatMessage, func(ctx context.Context, p socketio.Packet) { b.HandleMessage(ctx, p.Arg(0)) })
	b.client.On(EventRoomEvent, func(ctx context.Context, p socketio.Packet) { b.handleRoomEvent(ctx, p.Arg(0)) })
	return b
}

func newChatBridge(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, messages messageSaver, logs realtimeLogger) *ChatBridge {
	return &ChatBridge{
		logger:   logger,
		trace:    trace,
		metric:   metric,
		messages: messages,
		logs:     logs,
		newID:    func() string { return xid.New().String() },
		now:      time.Now,
	}
}

func (b *ChatBridge) Name() string  { return BridgeChat }
func (b *ChatBridge) Enabled() bool { return b.client != nil }

func (b *ChatBridge) Run(ctx context.Context) error {
	return b.client.Run(ctx)
}

// HandleMessage 正規化並保存一則訊息；任何錯誤只記錄，不中斷連線
func (b *ChatBridge) HandleMessage(ctx context.Context, raw json.RawMessage) string {
	ctx, span, end := b.trace.WithSpan(ctx, string(core.SpanChatBridge))
	var spanErr error
	defer func() { end(spanErr) }()

	msg, reason := normalizeChatMessage(raw, b.now(), b.newID)
	result := ResultSaved
	if msg == nil {
		result = ResultDropped
		b.logger.Warn("dropping chat message", zap.String("reason", reason))
	} else if err := b.messages.Save(ctx, msg); err != nil {
		result, reason, spanErr = ResultError, "store", err
		b.logger.Error("failed to persist chat message", zap.String("meetingId", msg.MeetingID), zap.Error(err))
	}

	event := fluentdModel.RealtimeLog{Bridge: BridgeChat, Event: EventChatMessage, Result: result, Reason: reason}
	if msg != nil {
		event.MeetingID, event.UserID = msg.MeetingID, msg.SenderUID
	}
	b.trace.ApplyTraceAttributes(span, core.TraceRealtimeMeta{Bridge: BridgeChat, Event: EventChatMessage, MeetingID: event.MeetingID, Result: result})
	b.metric.IncRealtimeEvent(BridgeChat, EventChatMessage, result)
	if err := b.logs.LogRealtime(ctx, event); err != nil {
		b.logger.Debug("realtime log not sent", zap.Error(err))
	}
	return result
}

func (b *ChatBridge) handleRoomEvent(ctx context.Context, raw json.RawMessage) {
	b.logger.Info("room:event received", zap.ByteString("payload", truncate(raw, 512)))
	b.metric.IncRealtimeEvent(BridgeChat, EventRoomEvent, ResultLogged)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// pick 依序取第一個非空字串欄位；數字轉為字串
func pick(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := payload[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

var (
	minChatMillis = float64(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	maxChatMillis = float64(time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli())
)

// normalizeChatMessage 接受多種欄位命名；回傳 nil 時附上丟棄原因
func normalizeChatMessage(raw json.RawMessage, now time.Time, newID func() string) (*model.Message, string) {
	var payload map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil || payload == nil {
		return nil, "malformed payload"
	}
	meetingID := pick(payload, "meetingId")
	if meetingID == "" {
		return nil, "missing meetingId"
	}
	text := strings.TrimSpace(pick(payload, "message", "text"))
	if text == "" {
		return nil, "empty text"
	}

	createdAt := core.FormatTime(now)
	switch ts := payload["timestamp"].(type) {
	case float64:
		// 超出四位數年份的毫秒值視為無效，沿用收到時間
		if ts >= minChatMillis && ts <= maxChatMillis {
			createdAt = core.FormatTime(time.UnixMilli(int64(ts)))
		}
	default:
		if s := pick(payload, "timestamp", "createdAt"); s != "" {
			if t, err := core.ParseTime(s); err == nil {
				createdAt = core.FormatTime(t)
			}
		}
	}

	msg := &model.Message{
		ID:        pick(payload, "messageId", "id"),
		MeetingID: meetingID,
		SenderUID: pick(payload, "userId", "senderUid"),
		UserName:  pick(payload, "userName", "displayName"),
		Text:      text,
		CreatedAt: createdAt,
	}
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.SenderUID == "" {
		msg.SenderUID = "unknown"
	}
	return msg, ""
}
