// Package realtime bridges the external chat and voice Socket.IO services
// into this process.
package realtime

import (
	"context"
	"sync"
	"time"

	"joingo/internal/database/fluentd/model"
	"joingo/internal/realtime/presence"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	presence.NewRegistry,
	NewChatBridge,
	NewVoiceBridge,
	NewManager,
)

const (
	BridgeChat  = "chat"
	BridgeVoice = "voice"

	ResultSaved   = "saved"
	ResultDropped = "dropped"
	ResultError   = "error"
	ResultApplied = "applied"
	ResultLogged  = "logged"
)

type realtimeLogger interface {
	LogRealtime(ctx context.Context, event model.RealtimeLog) error
}

// Bridge 由 Manager 啟動；未設定時 Enabled 為 false
type Bridge interface {
	Name() string
	Enabled() bool
	Run(ctx context.Context) error
}

// Manager 隨 app 啟停所有 bridge
type Manager struct {
	logger  *zap.Logger
	bridges []Bridge
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewManager(logger *zap.Logger, chat *ChatBridge, voice *VoiceBridge) *Manager {
	return &Manager{logger: logger, bridges: []Bridge{chat, voice}}
}

func (m *Manager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	for _, b := range m.bridges {
		if !b.Enabled() {
			m.logger.Info("realtime bridge not configured, skipping", zap.String("bridge", b.Name()))
			continue
		}
		m.wg.Add(1)
		go func(b Bridge) {
			defer m.wg.Done()
			if err := b.Run(ctx); err != nil {
				m.logger.Error("realtime bridge stopped", zap.String("bridge", b.Name()), zap.Error(err))
			}
		}(b)
	}
}

// Stop 等待 bridge 結束，最多 timeout
func (m *Manager) Stop(timeout time.Duration) {
	if m.cancel == nil {
		return
	}
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		m.logger.Warn("realtime bridges did not stop in time")
	}
}

// maskToken 只保留頭尾各四碼
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
