package service

import (
	"errors"

	cErr "joingo/internal/pkg/error"
	"joingo/internal/service/voice"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewHealthService,
	NewUserService,
	NewMeetingService,
	NewMessageService,
	NewAuthService,
	NewAvatarService,
	voice.NewIssuer,
)

// storeError 保留已分類的錯誤，其餘視為資料庫錯誤且不外洩細節
func storeError(logger *zap.Logger, err error, desc string) error {
	var appErr *cErr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.Error(desc, zap.Error(err))
	return cErr.DatabaseError(desc)
}
