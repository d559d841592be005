package wifi

import (
	"context"
	"regexp"
	"strings"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var iwTypeRegex = regexp.MustCompile(`(?m)^\s*type (\S+)`)

// KernelModule names the Wi-Fi driver module reloaded on mode switches. Some
// chipsets (e.g. bcmdhd) only enter AP mode when loaded with extra options.
type KernelModule struct {
	Name          string
	MasterOptions []string
}

// Radio reads and switches the radio mode of Wi-Fi interfaces.
type Radio struct {
	executor interfaces.CommandExecutor
	module   KernelModule
	logger   *logrus.Logger
}

// NewRadio creates a new Radio.
func NewRadio(executor interfaces.CommandExecutor, module KernelModule, logger *logrus.Logger) interfaces.RadioManager {
	return &Radio{executor: executor, module: module, logger: logger}
}

// Mode maps the iw interface type onto a Wi-Fi mode.
func (r *Radio) Mode(ctx context.Context, iface string) (entities.WifiMode, error) {
	output, err := r.executor.Execute(ctx, "iw", "dev", iface, "info")
	if err != nil {
		return entities.WifiModeUnknown, domainErrors.NewInternalError("iw info failed on "+iface, err)
	}
	match := iwTypeRegex.FindStringSubmatch(string(output))
	if match == nil {
		return entities.WifiModeUnknown, nil
	}
	switch match[1] {
	case "managed":
		return entities.WifiModeInfra, nil
	case "AP":
		return entities.WifiModeMaster, nil
	case "IBSS":
		return entities.WifiModeAdhoc, nil
	}
	return entities.WifiModeUnknown, nil
}

// ReloadKernelModule unloads and loads the driver module for the given mode.
// Without a configured module the radio is assumed to switch modes on its own.
func (r *Radio) ReloadKernelModule(ctx context.Context, iface string, mode entities.WifiMode) error {
	log := r.logger.WithFields(logrus.Fields{"interface": iface, "mode": mode})
	if r.module.Name == "" {
		log.Debug("no wifi kernel module configured, skipping reload")
		return nil
	}

	log.WithField("module", r.module.Name).Info("reloading wifi kernel module")
	if _, err := r.executor.Execute(ctx, "modprobe", "-r", r.module.Name); err != nil {
		return domainErrors.NewInternalError("failed to unload "+r.module.Name, err)
	}

	args := []string{r.module.Name}
	if mode == entities.WifiModeMaster {
		args = append(args, r.module.MasterOptions...)
	}
	if _, err := r.executor.Execute(ctx, "modprobe", args...); err != nil {
		return domainErrors.NewInternalError("failed to load "+r.module.Name, err)
	}
	return nil
}

// SupportedDrivers checks nl80211 with iw and wext with iwconfig.
func (r *Radio) SupportedDrivers(ctx context.Context, iface string) ([]string, error) {
	var drivers []string
	if _, err := r.executor.Execute(ctx, "iw", "dev", iface, "info"); err == nil {
		drivers = append(drivers, constants.DriverNL80211)
	}

	output, err := r.executor.Execute(ctx, "iwconfig", iface)
	if err != nil {
		return nil, domainErrors.NewInternalError("iwconfig failed on "+iface, err)
	}
	if strings.Contains(string(output), "IEEE 802.11") {
		drivers = append(drivers, constants.DriverWext)
	}
	return drivers, nil
}
