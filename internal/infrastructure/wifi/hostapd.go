package wifi

import (
	"context"

	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/process"

	"github.com/sirupsen/logrus"
)

// HostapdManager runs one hostapd instance per access point interface.
type HostapdManager struct {
	executor   interfaces.CommandExecutor
	fs         interfaces.FileSystem
	supervisor *process.Supervisor
	writer     *ConfigWriter
	logger     *logrus.Logger
}

// NewHostapdManager creates a new HostapdManager.
func NewHostapdManager(executor interfaces.CommandExecutor, fs interfaces.FileSystem, supervisor *process.Supervisor, writer *ConfigWriter, logger *logrus.Logger) interfaces.HostapdManager {
	return &HostapdManager{executor: executor, fs: fs, supervisor: supervisor, writer: writer, logger: logger}
}

// Start launches hostapd with the config rendered at commit time.
func (m *HostapdManager) Start(ctx context.Context, iface string) error {
	conf := m.writer.HostapdConfigPath(iface)
	if !m.fs.Exists(conf) {
		return domainErrors.NewInternalError("hostapd config not found: "+conf, nil)
	}

	instance := hostapdInstance(iface)
	if _, err := m.executor.Execute(ctx, "hostapd", "-B", "-P", m.supervisor.PidFile(instance), conf); err != nil {
		return domainErrors.NewInternalError("failed to start hostapd on "+iface, err)
	}

	m.logger.WithField("interface", iface).Info("hostapd started")
	return nil
}

// Stop terminates hostapd on iface, including instances started outside the agent.
func (m *HostapdManager) Stop(ctx context.Context, iface string) error {
	if err := m.supervisor.Stop(ctx, hostapdInstance(iface), "hostapd.*"+iface); err != nil {
		return domainErrors.NewInternalError("failed to stop hostapd on "+iface, err)
	}
	return nil
}

func (m *HostapdManager) IsRunning(ctx context.Context, iface string) (bool, error) {
	return m.supervisor.Running(hostapdInstance(iface)), nil
}

func hostapdInstance(iface string) string {
	return "hostapd-" + iface
}
