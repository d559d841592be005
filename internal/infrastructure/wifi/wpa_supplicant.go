package wifi

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/process"

	"github.com/sirupsen/logrus"
)

var wpaStateRegex = regexp.MustCompile(`(?m)^wpa_state=(.+)$`)

// WpaSupplicantManager runs the production and temporary wpa_supplicant
// instances of each station interface.
type WpaSupplicantManager struct {
	executor   interfaces.CommandExecutor
	supervisor *process.Supervisor
	writer     *ConfigWriter
	logger     *logrus.Logger
}

// NewWpaSupplicantManager creates a new WpaSupplicantManager.
func NewWpaSupplicantManager(executor interfaces.CommandExecutor, supervisor *process.Supervisor, writer *ConfigWriter, logger *logrus.Logger) interfaces.WpaSupplicantManager {
	return &WpaSupplicantManager{executor: executor, supervisor: supervisor, writer: writer, logger: logger}
}

func (m *WpaSupplicantManager) Start(ctx context.Context, iface string, mode entities.WifiMode, driver string) error {
	return m.start(ctx, iface, mode, driver, wpaInstance(iface), m.writer.WpaConfigPath(iface))
}

func (m *WpaSupplicantManager) StartTemporary(ctx context.Context, iface string, mode entities.WifiMode, driver string) error {
	return m.start(ctx, iface, mode, driver, wpaTemporaryInstance(iface), m.writer.TemporaryWpaConfigPath(iface))
}

func (m *WpaSupplicantManager) start(ctx context.Context, iface string, mode entities.WifiMode, driver, instance, conf string) error {
	if mode != entities.WifiModeInfra && mode != entities.WifiModeAdhoc {
		return domainErrors.NewInternalError(fmt.Sprintf("wpa_supplicant cannot run %s on %s in %s mode", instance, iface, mode), nil)
	}
	if driver == "" {
		driver = constants.DefaultSupplicantDriver
	}

	args := []string{
		"-B",
		"-D", driver,
		"-i", iface,
		"-c", conf,
		"-C", m.writer.CtrlDir(),
		"-P", m.supervisor.PidFile(instance),
	}
	if _, err := m.executor.Execute(ctx, "wpa_supplicant", args...); err != nil {
		return domainErrors.NewInternalError("failed to start wpa_supplicant on "+iface, err)
	}

	m.logger.WithFields(logrus.Fields{
		"interface": iface,
		"instance":  instance,
		"mode":      mode,
		"driver":    driver,
	}).Info("wpa_supplicant started")
	return nil
}

// Stop terminates every wpa_supplicant bound to iface.
func (m *WpaSupplicantManager) Stop(ctx context.Context, iface string) error {
	if err := m.supervisor.Stop(ctx, wpaTemporaryInstance(iface), ""); err != nil {
		return domainErrors.NewInternalError("failed to stop temporary wpa_supplicant on "+iface, err)
	}
	if err := m.supervisor.Stop(ctx, wpaInstance(iface), "wpa_supplicant.*-i ?"+iface); err != nil {
		return domainErrors.NewInternalError("failed to stop wpa_supplicant on "+iface, err)
	}
	return nil
}

func (m *WpaSupplicantManager) IsRunning(ctx context.Context, iface string) (bool, error) {
	return m.supervisor.Running(wpaInstance(iface)), nil
}

func (m *WpaSupplicantManager) IsTemporaryRunning(ctx context.Context, iface string) (bool, error) {
	return m.supervisor.Running(wpaTemporaryInstance(iface)), nil
}

// State returns the wpa_state reported by wpa_cli, e.g. SCANNING or COMPLETED.
func (m *WpaSupplicantManager) State(ctx context.Context, iface string) (string, error) {
	output, err := m.executor.Execute(ctx, "wpa_cli", "-p", m.writer.CtrlDir(), "-i", iface, "status")
	if err != nil {
		return "", domainErrors.NewInternalError("wpa_cli status failed on "+iface, err)
	}
	match := wpaStateRegex.FindStringSubmatch(string(output))
	if match == nil {
		return "", domainErrors.NewInternalError("wpa_state missing from wpa_cli status on "+iface, nil)
	}
	return strings.TrimSpace(match[1]), nil
}

func (m *WpaSupplicantManager) WriteTemporaryConfig(ctx context.Context, iface string, cfg *entities.WifiConfig) error {
	return m.writer.WriteTemporaryWpaSupplicant(iface, cfg)
}

func wpaInstance(iface string) string {
	return "wpa_supplicant-" + iface
}

func wpaTemporaryInstance(iface string) string {
	return "wpa_supplicant-" + iface + "-tmp"
}
