package wifi

import (
	"context"
	"time"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// LinkController는 인터페이스를 올리고 내리며 DHCP 클라이언트/서버와 무선 데몬을 함께 제어합니다
type LinkController struct {
	store      interfaces.ConfigStore
	links      interfaces.LinkManager
	dhcpClient interfaces.DhcpClientManager
	dhcpServer interfaces.DhcpServerManager
	hostapd    interfaces.HostapdManager
	waiter     *supplicantWaiter
	logger     *logrus.Logger
}

// NewLinkController는 새로운 LinkController를 생성합니다
func NewLinkController(
	store interfaces.ConfigStore,
	links interfaces.LinkManager,
	dhcpClient interfaces.DhcpClientManager,
	dhcpServer interfaces.DhcpServerManager,
	hostapd interfaces.HostapdManager,
	wpa interfaces.WpaSupplicantManager,
	radio interfaces.RadioManager,
	logger *logrus.Logger,
	timings Timings,
) *LinkController {
	return &LinkController{
		store:      store,
		links:      links,
		dhcpClient: dhcpClient,
		dhcpServer: dhcpServer,
		hostapd:    hostapd,
		waiter:     &supplicantWaiter{wpa: wpa, radio: radio, logger: logger, timings: timings},
		logger:     logger,
	}
}

// Enable은 인터페이스를 활성화합니다.
// 주소가 없거나 무선 링크가 내려가 있으면 무선 데몬을 재시작한 뒤 DHCP 또는 링크 업을 수행하고,
// 이미 주소가 있으면 useDhcp일 때 임대만 갱신합니다.
func (c *LinkController) Enable(ctx context.Context, name string, useDhcp bool) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordInterfaceOperation(name, "enable", err, time.Since(start).Seconds())
	}()

	cfg, err := c.store.LoadNetwork(ctx)
	if err != nil {
		return errors.NewInternalError("enable interface failed: load configuration", err)
	}

	status := entities.StatusUnknown
	mode := entities.WifiModeUnknown
	var wifiCfg *entities.WifiConfig

	ifaceCfg, found := cfg.Interface(name)
	if !found {
		c.logger.WithField("interface", name).Warn("interface has no stored configuration")
	}
	isWifi := found && ifaceCfg.Kind == entities.KindWifi
	if found {
		if ipv4, ok := ifaceCfg.IPv4(); ok {
			status = ipv4.Status
		}
		if isWifi {
			mode = ifaceCfg.SelectedWifiMode()
			if w, ok := ifaceCfg.WifiConfigFor(mode); ok {
				wifiCfg = &w
			}
		}
	}

	hasAddress, err := c.links.HasAddress(ctx, name)
	if err != nil {
		return errors.NewInternalError("enable interface failed: query address", err)
	}

	linkDown := false
	if isWifi {
		up, err := c.links.IsLinkUp(ctx, name)
		if err != nil {
			return errors.NewInternalError("enable interface failed: query link state", err)
		}
		linkDown = !up
	}

	c.logger.WithFields(logrus.Fields{
		"interface":   name,
		"status":      status,
		"wifi_mode":   mode,
		"has_address": hasAddress,
		"use_dhcp":    useDhcp,
	}).Info("인터페이스 활성화 시작")

	if hasAddress && !linkDown {
		if useDhcp {
			if err := c.RenewDhcpLease(ctx, name); err != nil {
				return err
			}
		}
		return nil
	}

	if isWifi {
		if err := c.enableWifi(ctx, name, status, mode, wifiCfg); err != nil {
			return errors.NewInternalError("enable interface failed: wireless daemons", err)
		}
	}

	if useDhcp {
		if err := c.RenewDhcpLease(ctx, name); err != nil {
			return err
		}
	} else if err := c.links.SetLinkUp(ctx, name); err != nil {
		return errors.NewInternalError("enable interface failed: link up", err)
	}

	hasAddress, err = c.links.HasAddress(ctx, name)
	if err != nil {
		return errors.NewInternalError("enable interface failed: query address", err)
	}
	if !hasAddress {
		if err := c.links.BringUpDeletingAddress(ctx, name); err != nil {
			return errors.NewInternalError("enable interface failed: bring up deleting address", err)
		}
	}
	return nil
}

// enableWifi는 무선 데몬을 멈춘 뒤 상태와 모드 조합에 맞는 데몬을 시작합니다
func (c *LinkController) enableWifi(ctx context.Context, name string, status entities.InterfaceStatus, mode entities.WifiMode, wifiCfg *entities.WifiConfig) error {
	if !isDriverManaged(name) {
		c.logger.WithField("interface", name).Debug("skip wireless daemons for unmanaged radio")
		return nil
	}

	if err := c.stopWifiDaemons(ctx, name); err != nil {
		return err
	}

	switch {
	case status == entities.StatusEnabledLAN && mode == entities.WifiModeMaster:
		return c.hostapd.Start(ctx, name)

	case status.IsEnabled() && (mode == entities.WifiModeInfra || mode == entities.WifiModeAdhoc) && wifiCfg != nil:
		driver := wifiCfg.Driver
		if driver == "" {
			driver = constants.DefaultSupplicantDriver
		}
		if err := c.waiter.wpa.Start(ctx, name, mode, driver); err != nil {
			return err
		}
		if c.waiter.waitForConnection(ctx, name, c.waiter.timings.ConnectionTimeout) {
			c.logger.WithField("interface", name).Info("wpa_supplicant 연결 완료")
		} else {
			c.logger.WithField("interface", name).Error("wpa_supplicant failed to connect")
		}
		return nil

	default:
		c.logger.WithFields(logrus.Fields{
			"interface": name,
			"status":    status,
			"wifi_mode": mode,
		}).Error("invalid status and wireless mode combination")
		return nil
	}
}

func (c *LinkController) stopWifiDaemons(ctx context.Context, name string) error {
	if err := c.hostapd.Stop(ctx, name); err != nil {
		return err
	}
	return c.waiter.wpa.Stop(ctx, name)
}

// Disable은 인터페이스를 비활성화합니다. 루프백은 건드리지 않습니다.
func (c *LinkController) Disable(ctx context.Context, name string) (err error) {
	if name == entities.LoopbackInterfaceName {
		c.logger.Debug("루프백 인터페이스는 비활성화하지 않습니다")
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordInterfaceOperation(name, "disable", err, time.Since(start).Seconds())
	}()

	hasAddress, err := c.links.HasAddress(ctx, name)
	if err != nil {
		return errors.NewInternalError("disable interface failed: query address", err)
	}

	if err := c.ManageDhcpClient(ctx, name, false); err != nil {
		return err
	}
	if err := c.ManageDhcpServer(ctx, name, false); err != nil {
		return err
	}

	if !hasAddress {
		return nil
	}

	cfg, err := c.store.LoadNetwork(ctx)
	if err != nil {
		return errors.NewInternalError("disable interface failed: load configuration", err)
	}
	if ifaceCfg, ok := cfg.Interface(name); ok && ifaceCfg.Kind == entities.KindWifi && isDriverManaged(name) {
		if err := c.stopWifiDaemons(ctx, name); err != nil {
			return errors.NewInternalError("disable interface failed: wireless daemons", err)
		}
	}

	if err := c.links.SetLinkDown(ctx, name); err != nil {
		return errors.NewInternalError("disable interface failed: link down", err)
	}

	c.logger.WithField("interface", name).Info("인터페이스 비활성화 완료")
	return nil
}

// ManageDhcpClient는 DHCP 클라이언트를 멈추고, enable이면 새 임대를 요청합니다
func (c *LinkController) ManageDhcpClient(ctx context.Context, name string, enable bool) error {
	if err := c.dhcpClient.Disable(ctx, name); err != nil {
		return errors.NewInternalError("manage dhcp client failed", err)
	}
	if enable {
		return c.RenewDhcpLease(ctx, name)
	}
	return nil
}

// ManageDhcpServer는 DHCP 서버를 멈추고, enable이면 다시 시작합니다
func (c *LinkController) ManageDhcpServer(ctx context.Context, name string, enable bool) error {
	if err := c.dhcpServer.Disable(ctx, name); err != nil {
		return errors.NewInternalError("manage dhcp server failed", err)
	}
	if enable {
		if err := c.dhcpServer.Enable(ctx, name); err != nil {
			return errors.NewInternalError("manage dhcp server failed", err)
		}
	}
	return nil
}

// RenewDhcpLease는 현재 임대를 해제하고 DHCP 클라이언트를 다시 시작합니다
func (c *LinkController) RenewDhcpLease(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordInterfaceOperation(name, "renew", err, time.Since(start).Seconds())
	}()

	if err := c.dhcpClient.ReleaseCurrentLease(ctx, name); err != nil {
		return errors.NewInternalError("renew dhcp lease failed: release", err)
	}
	if err := c.dhcpClient.Enable(ctx, name); err != nil {
		return errors.NewInternalError("renew dhcp lease failed: request", err)
	}
	return nil
}

func isDriverManaged(name string) bool {
	ifaceName, err := entities.NewInterfaceName(name)
	if err != nil {
		return false
	}
	return ifaceName.IsDriverManaged()
}
