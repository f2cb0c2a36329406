package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	fluentdModel "joingo/internal/database/fluentd/model"
	"joingo/internal/database/store/model"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSaver struct {
	saved []*model.Message
	err   error
}

func (s *recordingSaver) Save(ctx context.Context, message *model.Message) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, message)
	return nil
}

type recordingLogs struct {
	mu     sync.Mutex
	events []fluentdModel.RealtimeLog
}

func (l *recordingLogs) LogRealtime(ctx context.Context, event fluentdModel.RealtimeLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

var bridgeNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestChatBridge(saver *recordingSaver, logs *recordingLogs) *ChatBridge {
	b := newChatBridge(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, saver, logs)
	b.newID = func() string { return "generated" }
	b.now = func() time.Time { return bridgeNow }
	return b
}

func TestNormalizeChatMessage(t *testing.T) {
	newID := func() string { return "generated" }
	tests := []struct {
		name   string
		raw    string
		want   *model.Message
		reason string
	}{
		{
			name: "primary field names",
			raw:  `{"meetingId":"m1","messageId":"x1","userId":"u1","userName":"Amy","message":"  hi  ","timestamp":"2024-03-01T09:00:00Z"}`,
			want: &model.Message{ID: "x1", MeetingID: "m1", SenderUID: "u1", UserName: "Amy", Text: "hi", CreatedAt: "2024-03-01T09:00:00.000Z"},
		},
		{
			name: "alternate field names",
			raw:  `{"meetingId":"m1","id":"x2","senderUid":"u2","displayName":"Bo","text":"yo","createdAt":"2024-03-01T09:00:00.5+08:00"}`,
			want: &model.Message{ID: "x2", MeetingID: "m1", SenderUID: "u2", UserName: "Bo", Text: "yo", CreatedAt: "2024-03-01T01:00:00.500Z"},
		},
		{
			name: "defaults",
			raw:  `{"meetingId":"m1","text":"yo","timestamp":"yesterday"}`,
			want: &model.Message{ID: "generated", MeetingID: "m1", SenderUID: "unknown", Text: "yo", CreatedAt: "2024-03-01T10:00:00.000Z"},
		},
		{
			name: "epoch millis",
			raw:  `{"meetingId":"m1","text":"yo","timestamp":1709283600000}`,
			want: &model.Message{ID: "generated", MeetingID: "m1", SenderUID: "unknown", Text: "yo", CreatedAt: "2024-03-01T09:00:00.000Z"},
		},
		{
			name: "epoch millis beyond year 9999",
			raw:  `{"meetingId":"m1","text":"yo","timestamp":1e20}`,
			want: &model.Message{ID: "generated", MeetingID: "m1", SenderUID: "unknown", Text: "yo", CreatedAt: "2024-03-01T10:00:00.000Z"},
		},
		{
			name: "epoch millis before year 0",
			raw:  `{"meetingId":"m1","text":"yo","timestamp":-1e17}`,
			want: &model.Message{ID: "generated", MeetingID: "m1", SenderUID: "unknown", Text: "yo", CreatedAt: "2024-03-01T10:00:00.000Z"},
		},
		{name: "missing meeting", raw: `{"text":"yo"}`, reason: "missing meetingId"},
		{name: "blank text", raw: `{"meetingId":"m1","message":"   "}`, reason: "empty text"},
		{name: "not an object", raw: `"hello"`, reason: "malformed payload"},
		{name: "empty", raw: ``, reason: "malformed payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := normalizeChatMessage(json.RawMessage(tt.raw), bridgeNow, newID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestChatBridge_HandleMessage(t *testing.T) {
	saver := &recordingSaver{}
	logs := &recordingLogs{}
	b := newTestChatBridge(saver, logs)

	result := b.HandleMessage(context.Background(), json.RawMessage(`{"meetingId":"m1","userId":"u1","message":"hi"}`))
	assert.Equal(t, ResultSaved, result)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "m1/generated", saver.saved[0].Key())

	result = b.HandleMessage(context.Background(), json.RawMessage(`{"message":"hi"}`))
	assert.Equal(t, ResultDropped, result)
	assert.Len(t, saver.saved, 1)

	require.Len(t, logs.events, 2)
	assert.Equal(t, fluentdModel.RealtimeLog{Bridge: BridgeChat, Event: EventChatMessage, MeetingID: "m1", UserID: "u1", Result: ResultSaved}, logs.events[0])
	assert.Equal(t, "missing meetingId", logs.events[1].Reason)
}

func TestChatBridge_StoreFailureIsLogged(t *testing.T) {
	saver := &recordingSaver{err: errors.New("down")}
	logs := &recordingLogs{}
	b := newTestChatBridge(saver, logs)

	result := b.HandleMessage(context.Background(), json.RawMessage(`{"meetingId":"m1","message":"hi"}`))
	assert.Equal(t, ResultError, result)
	require.Len(t, logs.events, 1)
	assert.Equal(t, "store", logs.events[0].Reason)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}
