package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"joingo/config"
	"joingo/internal/realtime/presence"
	"joingo/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func args(raw ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(raw))
	for i, r := range raw {
		out[i] = json.RawMessage(r)
	}
	return out
}

func TestVoiceBridge_Handle(t *testing.T) {
	registry := presence.NewRegistry()
	logs := &recordingLogs{}
	b := newVoiceBridge(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, registry, logs)
	ctx := context.Background()

	assert.Equal(t, ResultApplied, b.Handle(ctx, EventIntroduction, args(`["p1","p2"]`, `"room-1"`)))
	assert.Equal(t, []string{"p1", "p2"}, registry.Peers("room-1"))

	assert.Equal(t, ResultApplied, b.Handle(ctx, EventNewUserConnected, args(`{"peerId":"p3","roomId":"room-1"}`)))
	assert.Equal(t, []string{"p1", "p2", "p3"}, registry.Peers("room-1"))

	assert.Equal(t, ResultApplied, b.Handle(ctx, EventNewUserConnected, args(`"p9"`)))
	assert.Equal(t, []string{"p9"}, registry.Peers(presence.DefaultRoom))

	assert.Equal(t, ResultApplied, b.Handle(ctx, EventUserDisconnected, args(`"p1"`)))
	assert.Equal(t, []string{"p2", "p3"}, registry.Peers("room-1"))

	assert.Equal(t, ResultApplied, b.Handle(ctx, EventIntroduction, args(`{"roomId":"room-2","peers":[{"id":"q1"},{"socketId":"q2"}]}`)))
	assert.Equal(t, []string{"q1", "q2"}, registry.Peers("room-2"))

	assert.Equal(t, ResultDropped, b.Handle(ctx, EventNewUserConnected, args(`42`)))
	assert.Equal(t, ResultDropped, b.Handle(ctx, EventUserDisconnected, nil))
	assert.Equal(t, ResultDropped, b.Handle(ctx, EventIntroduction, args(`"nope"`)))
	assert.Equal(t, ResultDropped, b.Handle(ctx, "whatever", nil))

	require.Len(t, logs.events, 9)
	assert.Equal(t, "p3", logs.events[1].UserID)
}

func TestManager_SkipsUnconfiguredBridges(t *testing.T) {
	conf := &config.Configuration{}
	chat := NewChatBridge(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, conf, nil, nil)
	voice := NewVoiceBridge(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, conf, presence.NewRegistry(), nil)
	assert.False(t, chat.Enabled())
	assert.False(t, voice.Enabled())

	m := NewManager(zap.NewNop(), chat, voice)
	m.Start()
	m.Stop(time.Second)
}
