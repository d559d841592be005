// Package dhcp manages DHCP clients and servers on agent interfaces.
package dhcp

import (
	"context"

	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/process"

	"github.com/sirupsen/logrus"
)

// DhclientManager drives ISC dhclient, one daemon per interface.
type DhclientManager struct {
	executor   interfaces.CommandExecutor
	supervisor *process.Supervisor
	logger     *logrus.Logger
}

// NewDhclientManager creates a new DhclientManager.
func NewDhclientManager(executor interfaces.CommandExecutor, supervisor *process.Supervisor, logger *logrus.Logger) interfaces.DhcpClientManager {
	return &DhclientManager{executor: executor, supervisor: supervisor, logger: logger}
}

// Enable starts dhclient in the background; the lease arrives asynchronously.
func (m *DhclientManager) Enable(ctx context.Context, name string) error {
	pidFile := m.supervisor.PidFile(dhclientInstance(name))
	if _, err := m.executor.Execute(ctx, "dhclient", "-nw", "-pf", pidFile, name); err != nil {
		return domainErrors.NewInternalError("failed to start dhclient on "+name, err)
	}
	m.logger.WithField("interface", name).Info("dhclient started")
	return nil
}

func (m *DhclientManager) Disable(ctx context.Context, name string) error {
	if err := m.supervisor.Stop(ctx, dhclientInstance(name), "dhclient.* "+name); err != nil {
		return domainErrors.NewInternalError("failed to stop dhclient on "+name, err)
	}
	return nil
}

// ReleaseCurrentLease sends DHCPRELEASE, which also terminates the running dhclient.
func (m *DhclientManager) ReleaseCurrentLease(ctx context.Context, name string) error {
	pidFile := m.supervisor.PidFile(dhclientInstance(name))
	if _, err := m.executor.Execute(ctx, "dhclient", "-r", "-pf", pidFile, name); err != nil {
		return domainErrors.NewInternalError("failed to release lease on "+name, err)
	}
	m.logger.WithField("interface", name).Info("dhcp lease released")
	return m.Disable(ctx, name)
}

func dhclientInstance(name string) string {
	return "dhclient-" + name
}
