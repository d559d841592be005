package store

import (
	"context"
	stderrors "errors"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Applier는 커밋된 스냅샷을 호스트에 반영합니다
type Applier interface {
	ApplyNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error
	ApplyFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error
}

// WifiConfigWriter는 운영용 hostapd와 wpa_supplicant 설정 파일을 렌더링합니다
type WifiConfigWriter interface {
	WriteHostapd(iface string, cfg entities.WifiConfig) error
	WriteWpaSupplicant(iface string, cfg entities.WifiConfig) error
}

// DhcpServerConfigWriter는 인터페이스 하나의 DHCP 서버 설정 파일을 렌더링합니다
type DhcpServerConfigWriter interface {
	Write(iface string, cfg entities.DhcpServerConfig) error
}

// DaemonApplier는 네트워크 커밋 시 데몬 설정 파일을 렌더링하고
// 방화벽 커밋은 방화벽 어댑터에 넘깁니다. 프로세스 재시작은 링크 컨트롤러가 담당합니다.
type DaemonApplier struct {
	wifi     WifiConfigWriter
	dhcp     DhcpServerConfigWriter
	firewall interfaces.Firewall
	logger   *logrus.Logger
}

// NewDaemonApplier는 새로운 DaemonApplier를 생성합니다
func NewDaemonApplier(wifi WifiConfigWriter, dhcp DhcpServerConfigWriter, firewall interfaces.Firewall, logger *logrus.Logger) *DaemonApplier {
	return &DaemonApplier{wifi: wifi, dhcp: dhcp, firewall: firewall, logger: logger}
}

// ApplyNetwork는 변경된 인터페이스의 설정 파일을 렌더링합니다.
// 변경 목록이 없으면 모든 인터페이스가 대상이며 한 인터페이스가 실패해도 나머지는 계속 처리합니다.
func (a *DaemonApplier) ApplyNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error {
	scope := make(map[string]bool, len(cfg.ModifiedInterfaces))
	for _, name := range cfg.ModifiedInterfaces {
		scope[name] = true
	}

	var errs []error
	for _, iface := range cfg.Interfaces {
		if len(scope) > 0 && !scope[iface.Name] {
			continue
		}
		if err := a.applyInterface(iface); err != nil {
			a.logger.WithError(err).WithField("interface", iface.Name).Error("데몬 설정 렌더링 실패")
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (a *DaemonApplier) applyInterface(iface entities.InterfaceConfig) error {
	var errs []error

	name, err := entities.NewInterfaceName(iface.Name)
	if err != nil {
		return err
	}
	if iface.Kind == entities.KindWifi && name.IsDriverManaged() {
		if master, ok := iface.WifiConfigFor(entities.WifiModeMaster); ok {
			errs = append(errs, a.wifi.WriteHostapd(iface.Name, master))
		}

		// ADHOC이 선택된 경우에만 ADHOC 설정으로, 그 외에는 INFRA 설정으로 작성
		station, ok := iface.WifiConfigFor(entities.WifiModeInfra)
		if iface.SelectedWifiMode() == entities.WifiModeAdhoc {
			if adhoc, found := iface.WifiConfigFor(entities.WifiModeAdhoc); found {
				station, ok = adhoc, true
			}
		}
		if ok {
			errs = append(errs, a.wifi.WriteWpaSupplicant(iface.Name, station))
		}
	}

	for _, item := range iface.Items() {
		if server, ok := item.(entities.DhcpServerConfig); ok && server.Enabled {
			errs = append(errs, a.dhcp.Write(iface.Name, server))
		}
	}

	a.logger.WithFields(logrus.Fields{
		"interface": iface.Name,
		"kind":      iface.Kind,
	}).Debug("daemon configuration rendered")
	return stderrors.Join(errs...)
}

// ApplyFirewall은 설정된 방화벽 체인을 다시 구성합니다
func (a *DaemonApplier) ApplyFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	return a.firewall.Apply(ctx, cfg)
}
