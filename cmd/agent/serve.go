package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"netadmin-agent/internal/application/polling"
	"netadmin-agent/internal/infrastructure/api"
	"netadmin-agent/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconcile loop and the administration API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withContainer(cmd, func(_ context.Context, c *container.Container, logger *logrus.Logger) error {
			return NewApplication(c, logger).Run(ctx)
		})
	},
}

// Application은 메인 애플리케이션 구조체입니다
type Application struct {
	container *container.Container
	logger    *logrus.Logger
	server    *api.Server
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(c *container.Container, logger *logrus.Logger) *Application {
	return &Application{container: c, logger: logger}
}

// Run은 API 서버를 띄우고 종료 신호까지 재조정 루프를 실행합니다
func (a *Application) Run(ctx context.Context) error {
	cfg := a.container.GetConfig()

	a.server = api.NewServer(cfg.Health.Port, a.container.HTTPHandler(), a.logger)
	a.server.Start()
	defer a.shutdown()

	strategy := polling.NewExponentialBackoffStrategy(
		cfg.Agent.ReconcileInterval,
		cfg.Agent.MaxReconcileInterval,
		cfg.Agent.BackoffMultiplier,
		a.logger,
	)
	a.logger.WithFields(logrus.Fields{
		"base_interval": cfg.Agent.ReconcileInterval,
		"max_interval":  cfg.Agent.MaxReconcileInterval,
		"multiplier":    cfg.Agent.BackoffMultiplier,
	}).Info("NetAdmin agent started")

	// 시작 직후 한 번 재조정하여 자동 연결 인터페이스를 올립니다
	a.reconcile(ctx)

	err := polling.NewPollingController(strategy, a.logger).Start(ctx, func(ctx context.Context) error {
		return a.reconcile(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reconcile은 저장소 상태를 확인한 뒤 인터페이스 재조정을 한 번 실행합니다
func (a *Application) reconcile(ctx context.Context) error {
	healthService := a.container.GetHealthService()
	healthService.CheckStore(ctx, a.container.GetConfigStore())

	output, err := a.container.GetReconcileUseCase().Execute(ctx)
	healthService.RecordReconcile(err)
	if err != nil {
		a.logger.WithError(err).Error("Failed to reconcile interfaces")
		return err
	}

	if output.EnabledCount > 0 || output.FailedCount > 0 {
		a.logger.WithFields(logrus.Fields{
			"checked": output.CheckedCount,
			"enabled": output.EnabledCount,
			"failed":  output.FailedCount,
		}).Info("Interface reconcile completed")
	}
	return nil
}

// shutdown은 API 서버를 정리합니다
func (a *Application) shutdown() {
	if a.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Failed to shutdown HTTP server")
	}
}
