package cron

import (
	"context"
	"time"

	"joingo/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

const (
	meetingExpirySpec    = "@every 1m"
	meetingExpiryTimeout = 30 * time.Second
)

// meetingCloser 只需要關閉過期會議的能力
type meetingCloser interface {
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

type Cron struct {
	logger   *zap.Logger
	server   *cron.Cron
	meetings meetingCloser
	now      func() time.Time
}

// NewCron .
func NewCron(logger *zap.Logger, meetingService *service.MeetingService) *Cron {
	return newCron(logger, meetingService)
}

func newCron(logger *zap.Logger, meetings meetingCloser) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Cron{
		logger:   logger.With(zap.String("component", "cron")),
		server:   server,
		meetings: meetings,
		now:      time.Now,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddFunc(meetingExpirySpec, c.closeExpiredMeetings); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	stopped := c.server.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cron) closeExpiredMeetings() {
	ctx, cancel := context.WithTimeout(context.Background(), meetingExpiryTimeout)
	defer cancel()

	closed, err := c.meetings.CloseExpired(ctx, c.now())
	if err != nil {
		c.logger.Error("meeting expiry job failed", zap.Error(err))
		return
	}
	if closed > 0 {
		c.logger.Info("expired meetings closed", zap.Int("count", closed))
	}
}
