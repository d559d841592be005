// Package process tracks the host daemons the agent starts (hostapd, wpa_supplicant,
// udhcpd, dhclient) through pid files under the agent's run directory.
package process

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const procDir = "/proc"

// Supervisor finds, and stops, daemon instances by pid file.
type Supervisor struct {
	executor interfaces.CommandExecutor
	fs       interfaces.FileSystem
	logger   *logrus.Logger
	runDir   string
}

// NewSupervisor creates a new Supervisor.
func NewSupervisor(executor interfaces.CommandExecutor, fs interfaces.FileSystem, logger *logrus.Logger, runDir string) *Supervisor {
	return &Supervisor{executor: executor, fs: fs, logger: logger, runDir: runDir}
}

// RunDir returns the directory holding pid files and runtime configs.
func (s *Supervisor) RunDir() string {
	return s.runDir
}

// PidFile returns the pid file path of an instance, e.g. "hostapd-wlan0".
func (s *Supervisor) PidFile(instance string) string {
	return filepath.Join(s.runDir, instance+".pid")
}

// Running reports whether the pid recorded for instance is alive.
func (s *Supervisor) Running(instance string) bool {
	pid, ok := s.pid(instance)
	if !ok {
		return false
	}
	return s.fs.Exists(filepath.Join(procDir, strconv.Itoa(pid)))
}

// Stop terminates instance. When pattern is set, stray processes matching it
// (started outside the agent) are killed too. Stopping a daemon that is not
// running is not an error.
func (s *Supervisor) Stop(ctx context.Context, instance, pattern string) error {
	log := s.logger.WithField("instance", instance)

	if pid, ok := s.pid(instance); ok {
		if _, err := s.executor.Execute(ctx, "kill", strconv.Itoa(pid)); err != nil {
			log.WithError(err).Debug("kill failed, process already gone")
		}
	}
	if pattern != "" {
		if _, err := s.executor.Execute(ctx, "pkill", "-f", pattern); err != nil {
			log.WithField("pattern", pattern).Trace("no stray process matched")
		}
	}
	return s.fs.Remove(s.PidFile(instance))
}

func (s *Supervisor) pid(instance string) (int, bool) {
	data, err := s.fs.ReadFile(s.PidFile(instance))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
