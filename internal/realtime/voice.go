package realtime

import (
	"context"
	"encoding/json"
	"time"

	"joingo/config"
	"joingo/internal/core"
	fluentdModel "joingo/internal/database/fluentd/model"
	fluentdRepo "joingo/internal/database/fluentd/repository"
	"joingo/internal/realtime/presence"
	"joingo/internal/realtime/socketio"
	"joingo/internal/telemetry"

	"go.uber.org/zap"
)

const (
	EventIntroduction     = "introduction"
	EventNewUserConnected = "newUserConnected"
	EventUserDisconnected = "userDisconnected"
)

// VoiceBridge 監聽語音信令服務的進出事件並維護 presence
type VoiceBridge struct {
	logger   *zap.Logger
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	registry *presence.Registry
	logs     realtimeLogger
	client   *socketio.Client
}

func NewVoiceBridge(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	registry *presence.Registry,
	logs *fluentdRepo.LogRepository,
) *VoiceBridge {
	b := newVoiceBridge(logger.With(zap.String("bridge", BridgeVoice)), trace, metric, registry, logs)
	if conf.Voice.ServiceURL == "" || !conf.Voice.BridgeEnabled {
		return b
	}
	if conf.Voice.ServiceToken != "" {
		b.logger.Info("voice bridge will send service token", zap.String("token", maskToken(conf.Voice.ServiceToken)))
	}
	b.client = socketio.NewClient(b.logger, socketio.Options{
		URL:     conf.Voice.ServiceURL,
		Token:   conf.Voice.ServiceToken,
		OnRetry: func(error, time.Duration) { metric.IncRealtimeReconnect(BridgeVoice) },
	})
	b.client.OnConnect(func(ctx context.Context, sid string) { registry.Reset() })
	for _, event := range []string{EventIntroduction, EventNewUserConnected, EventUserDisconnected} {
		b.client.On(event, func(ctx context.Context, p socketio.Packet) { b.Handle(ctx, event, p.Args) })
	}
	return b
}

func newVoiceBridge(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, registry *presence.Registry, logs realtimeLogger) *VoiceBridge {
	return &VoiceBridge{logger: logger, trace: trace, metric: metric, registry: registry, logs: logs}
}

func (b *VoiceBridge) Name() string  { return BridgeVoice }
func (b *VoiceBridge) Enabled() bool { return b.client != nil }

func (b *VoiceBridge) Run(ctx context.Context) error {
	return b.client.Run(ctx)
}

// Registry 交給 HTTP handler 查詢
func (b *VoiceBridge) Registry() *presence.Registry {
	return b.registry
}

// peerRef 事件可能只帶 peer id 字串，或 {peerId, roomId} 物件
type peerRef struct {
	Peer string
	Room string
}

func (p *peerRef) UnmarshalJSON(raw []byte) error {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		p.Peer = id
		return nil
	}
	var obj struct {
		PeerID      string `json:"peerId"`
		SocketID    string `json:"socketId"`
		ID          string `json:"id"`
		RoomID      string `json:"roomId"`
		VoiceRoomID string `json:"voiceRoomId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	for _, v := range []string{obj.PeerID, obj.SocketID, obj.ID} {
		if v != "" {
			p.Peer = v
			break
		}
	}
	p.Room = obj.RoomID
	if p.Room == "" {
		p.Room = obj.VoiceRoomID
	}
	return nil
}

// introduction 可能是 [peers...]、[peers, roomId] 或 {roomId, peers}
func parseIntroduction(args []json.RawMessage) (room string, peers []string, err error) {
	if len(args) == 0 {
		return "", nil, nil
	}
	var list []peerRef
	if err := json.Unmarshal(args[0], &list); err != nil {
		var obj struct {
			RoomID string    `json:"roomId"`
			Peers  []peerRef `json:"peers"`
		}
		if err := json.Unmarshal(args[0], &obj); err != nil {
			return "", nil, err
		}
		room, list = obj.RoomID, obj.Peers
	}
	if room == "" && len(args) > 1 {
		_ = json.Unmarshal(args[1], &room)
	}
	for _, ref := range list {
		if ref.Peer == "" {
			continue
		}
		peers = append(peers, ref.Peer)
		if room == "" {
			room = ref.Room
		}
	}
	return room, peers, nil
}

// Handle 套用一個語音事件；格式錯誤只記錄
func (b *VoiceBridge) Handle(ctx context.Context, event string, args []json.RawMessage) string {
	ctx, span, end := b.trace.WithSpan(ctx, string(core.SpanVoiceBridge))
	defer end(nil)

	result, room, peer, reason := ResultApplied, "", "", ""
	switch event {
	case EventIntroduction:
		r, peers, err := parseIntroduction(args)
		if err != nil {
			result, reason = ResultDropped, "malformed payload"
			break
		}
		room = r
		b.registry.Replace(room, peers)
		b.logger.Info("voice introduction", zap.String("room", room), zap.Int("peers", len(peers)))
	case EventNewUserConnected, EventUserDisconnected:
		var ref peerRef
		if len(args) == 0 || json.Unmarshal(args[0], &ref) != nil || ref.Peer == "" {
			result, reason = ResultDropped, "malformed payload"
			break
		}
		room, peer = ref.Room, ref.Peer
		if event == EventNewUserConnected {
			b.registry.Join(room, peer)
		} else if room != "" {
			b.registry.Leave(room, peer)
		} else {
			b.registry.LeaveAll(peer)
		}
		b.logger.Info("voice presence changed", zap.String("event", event), zap.String("peer", peer), zap.String("room", room))
	default:
		result, reason = ResultDropped, "unknown event"
	}
	if result == ResultDropped {
		b.logger.Warn("dropping voice event", zap.String("event", event), zap.String("reason", reason))
	}

	b.trace.ApplyTraceAttributes(span, core.TraceRealtimeMeta{Bridge: BridgeVoice, Event: event, MeetingID: room, Result: result})
	b.metric.IncRealtimeEvent(BridgeVoice, event, result)
	if err := b.logs.LogRealtime(ctx, fluentdModel.RealtimeLog{
		Bridge: BridgeVoice, Event: event, MeetingID: room, UserID: peer, Result: result, Reason: reason,
	}); err != nil {
		b.logger.Debug("realtime log not sent", zap.Error(err))
	}
	return result
}
