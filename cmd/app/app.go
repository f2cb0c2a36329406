package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"joingo/config"
	"joingo/internal/cron"
	storeRepo "joingo/internal/database/store/repository"
	"joingo/internal/realtime"
	"joingo/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	realtimeStopTimeout = 3 * time.Second
	ensureIndexTimeout  = 30 * time.Second
)

type RuntimeInfo struct {
	Env       string    `json:"env"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
	StartAt   time.Time `json:"start_at"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	httpSrv       *http.Server
	realtime      *realtime.Manager
	healthService *service.HealthService
	store         *storeRepo.StoreRepository

	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	httpSrv *http.Server,
	healthService *service.HealthService,
	cronSrv *cron.Cron,
	realtimeManager *realtime.Manager,
	store *storeRepo.StoreRepository,
) *App {
	return &App{
		conf:          conf,
		logger:        logger,
		httpSrv:       httpSrv,
		healthService: healthService,
		cronSrv:       cronSrv,
		realtime:      realtimeManager,
		store:         store,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   time.Now(),
		},
	}
}

func (a *App) Run() error {
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	if err := a.ensureIndexes(); err != nil {
		// 缺索引時查詢會退回無 hint 模式
		a.logger.Warn("ensure store indexes failed", zap.Error(err))
	}

	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	a.realtime.Start()

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	a.healthService.SetReady(true)
	return nil
}

// ensureIndexes 每次啟動都建立索引；memory driver 的索引只存在於本程序
func (a *App) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), ensureIndexTimeout)
	defer cancel()
	if err := a.store.EnsureIndexes(ctx); err != nil {
		return err
	}
	a.logger.Info("store indexes ensured")
	return nil
}

// Stop 先標記未就緒，再依序關閉 http、realtime、cron
func (a *App) Stop(ctx context.Context) error {
	a.healthService.SetReady(false)

	var errs []error
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("http server has been stop")

	a.realtime.Stop(realtimeStopTimeout)
	a.logger.Info("realtime bridges have been stop")

	if err := a.cronSrv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("cron server has been stop")

	return errors.Join(errs...)
}
