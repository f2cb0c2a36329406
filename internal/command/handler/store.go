package command

import (
	"context"
	"time"

	"joingo/internal/database/store/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const ensureIndexesTimeout = 2 * time.Minute

// indexEnsurer 建立索引，需為冪等
type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

type StoreHandler struct {
	logger *zap.Logger
	store  indexEnsurer
}

func NewStoreHandler(logger *zap.Logger, storeRepository *repository.StoreRepository) *StoreHandler {
	return &StoreHandler{logger: logger, store: storeRepository}
}

// EnsureIndexes 建立 users、meetings、messages 的索引，包含會議列表的複合索引
func (handler *StoreHandler) EnsureIndexes(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), ensureIndexesTimeout)
	defer cancel()

	if err := handler.store.EnsureIndexes(ctx); err != nil {
		handler.logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	handler.logger.Info("store indexes ensured")
	cmd.Println("indexes ensured")
	return nil
}
