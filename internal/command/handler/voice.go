package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"joingo/config"
	"joingo/internal/service/voice"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ErrVoiceSecretMissing = errors.New("VOICE__SERVICE_TOKEN is not configured")

type VoiceHandler struct {
	logger *zap.Logger
	config *config.Configuration
	now    func() time.Time
}

func NewVoiceHandler(logger *zap.Logger, config *config.Configuration) *VoiceHandler {
	return &VoiceHandler{logger: logger, config: config, now: time.Now}
}

// VerifyToken 驗證語音 token 並輸出 payload
func (handler *VoiceHandler) VerifyToken(cmd *cobra.Command, args []string) error {
	secret := handler.config.Voice.ServiceToken
	if secret == "" {
		return ErrVoiceSecretMissing
	}
	payload, err := voice.VerifyToken(args[0], secret, handler.now())
	if err != nil {
		handler.logger.Warn("voice token rejected", zap.Error(err))
		return err
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
