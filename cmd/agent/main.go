package main

import (
	"context"
	"os"

	"netadmin-agent/internal/infrastructure/config"
	"netadmin-agent/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "netadmin-agent",
	Short:         "netadmin-agent reconciles Ethernet, Wi-Fi, DHCP and firewall state of an edge gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, enableCmd, disableCmd, scanCmd, verifyCmd, firewallCmd, rollbackCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// newLogger는 설정에 맞춘 로거를 생성합니다
func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// bootstrap은 설정을 읽고 의존성 주입 컨테이너를 생성합니다
func bootstrap(ctx context.Context) (*container.Container, *logrus.Logger, error) {
	cfg, err := config.NewEnvironmentConfigLoader().Load()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.Log)
	appContainer, err := container.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return appContainer, logger, nil
}

// withContainer는 컨테이너를 만든 뒤 fn을 실행하고 정리합니다
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container, logger *logrus.Logger) error) error {
	ctx := cmd.Context()
	appContainer, logger, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()
	return fn(ctx, appContainer, logger)
}
