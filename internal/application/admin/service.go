// Package admin은 HTTP API와 CLI가 공유하는 네트워크 관리 파사드를 제공합니다
package admin

import (
	"context"
	"time"

	"netadmin-agent/internal/application/usecases"
	"netadmin-agent/internal/application/wifi"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Service는 네트워크 관리 작업을 하나로 묶는 파사드입니다
type Service struct {
	update   *usecases.UpdateInterfaceConfigUseCase
	query    *usecases.GetInterfaceConfigsUseCase
	firewall *usecases.ManageFirewallUseCase
	rollback *usecases.RollbackDefaultsUseCase
	links    *wifi.LinkController
	scans    *wifi.ScanSession
	verifier *wifi.CredentialVerifier
	radio    interfaces.RadioManager
	logger   *logrus.Logger
}

// NewService는 새로운 Service를 생성합니다
func NewService(
	update *usecases.UpdateInterfaceConfigUseCase,
	query *usecases.GetInterfaceConfigsUseCase,
	firewall *usecases.ManageFirewallUseCase,
	rollback *usecases.RollbackDefaultsUseCase,
	links *wifi.LinkController,
	scans *wifi.ScanSession,
	verifier *wifi.CredentialVerifier,
	radio interfaces.RadioManager,
	logger *logrus.Logger,
) *Service {
	return &Service{
		update:   update,
		query:    query,
		firewall: firewall,
		rollback: rollback,
		links:    links,
		scans:    scans,
		verifier: verifier,
		radio:    radio,
		logger:   logger,
	}
}

// UpdateEthernetInterfaceConfig는 이더넷 인터페이스 설정을 병합하고 커밋합니다
func (s *Service) UpdateEthernetInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	_, err := s.update.UpdateEthernet(ctx, name, autoConnect, mtu, items)
	return err
}

// UpdateWifiInterfaceConfig는 Wi-Fi 인터페이스 설정을 병합하고 커밋합니다
func (s *Service) UpdateWifiInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	_, err := s.update.UpdateWifi(ctx, name, autoConnect, mtu, items)
	return err
}

// UpdateModemInterfaceConfig는 모뎀 인터페이스 설정을 병합하고 커밋합니다
func (s *Service) UpdateModemInterfaceConfig(ctx context.Context, name, modemIdentifier string, pppNumber int, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	_, err := s.update.UpdateModem(ctx, name, modemIdentifier, pppNumber, autoConnect, mtu, items)
	return err
}

// GetNetworkInterfaceConfigs는 인터페이스의 설정 항목을 반환합니다. name이 비면 전체를 반환합니다
func (s *Service) GetNetworkInterfaceConfigs(ctx context.Context, name string) ([]entities.ConfigItem, error) {
	return s.query.Execute(ctx, name)
}

// GetNetworkConfiguration은 현재 네트워크 설정 전체를 반환합니다
func (s *Service) GetNetworkConfiguration(ctx context.Context) (*entities.NetworkConfiguration, error) {
	return s.query.All(ctx)
}

// EnableInterface는 인터페이스를 활성화합니다
func (s *Service) EnableInterface(ctx context.Context, name string, useDhcp bool) error {
	return s.links.Enable(ctx, name, useDhcp)
}

// DisableInterface는 인터페이스를 비활성화합니다
func (s *Service) DisableInterface(ctx context.Context, name string) error {
	return s.links.Disable(ctx, name)
}

// ManageDhcpClient는 DHCP 클라이언트를 시작하거나 중지합니다
func (s *Service) ManageDhcpClient(ctx context.Context, name string, enable bool) error {
	return s.links.ManageDhcpClient(ctx, name, enable)
}

// ManageDhcpServer는 DHCP 서버를 시작하거나 중지합니다
func (s *Service) ManageDhcpServer(ctx context.Context, name string, enable bool) error {
	return s.links.ManageDhcpServer(ctx, name, enable)
}

// RenewDhcpLease는 DHCP 임대를 갱신합니다
func (s *Service) RenewDhcpLease(ctx context.Context, name string) error {
	return s.links.RenewDhcpLease(ctx, name)
}

// ManageFirewall은 gateway 방향의 자동 NAT 규칙을 다시 구성합니다
func (s *Service) ManageFirewall(ctx context.Context, gateway string) error {
	return s.firewall.Execute(ctx, gateway)
}

// GetFirewallConfiguration은 현재 방화벽 설정을 반환합니다
func (s *Service) GetFirewallConfiguration(ctx context.Context) (*entities.FirewallConfiguration, error) {
	return s.firewall.Get(ctx)
}

// SetFirewallOpenPortConfiguration은 개방 포트 규칙을 교체하고 커밋합니다
func (s *Service) SetFirewallOpenPortConfiguration(ctx context.Context, rules []entities.OpenPortRule) error {
	return s.firewall.SetOpenPorts(ctx, rules)
}

// SetFirewallPortForwardingConfiguration은 포트 포워딩 규칙을 교체하고 커밋합니다
func (s *Service) SetFirewallPortForwardingConfiguration(ctx context.Context, rules []entities.PortForwardRule) error {
	return s.firewall.SetPortForwards(ctx, rules)
}

// SetFirewallNatConfiguration은 NAT 규칙을 교체하고 커밋합니다
func (s *Service) SetFirewallNatConfiguration(ctx context.Context, rules []entities.NATRule) error {
	return s.firewall.SetNATs(ctx, rules)
}

// GetWifiHotspots는 스캔한 핫스팟을 SSID 기준 맵으로 반환합니다
func (s *Service) GetWifiHotspots(ctx context.Context, name string) (map[string]entities.WifiHotspotInfo, error) {
	return s.scans.Hotspots(ctx, name)
}

// ScanWifiHotspots는 중복을 제거한 핫스팟 목록을 반환합니다
func (s *Service) ScanWifiHotspots(ctx context.Context, name string) ([]entities.WifiHotspotInfo, error) {
	return s.scans.Scan(ctx, name)
}

// VerifyWifiCredentials는 candidate로 timeout 안에 연결되는지 확인합니다
func (s *Service) VerifyWifiCredentials(ctx context.Context, name string, candidate entities.WifiConfig, timeout time.Duration) bool {
	return s.verifier.Verify(ctx, name, candidate, timeout)
}

// GetSupportedWifiDrivers는 무선 장치가 지원하는 wpa_supplicant 드라이버를 조회합니다
func (s *Service) GetSupportedWifiDrivers(ctx context.Context, name string) ([]string, error) {
	drivers, err := s.radio.SupportedDrivers(ctx, name)
	if err != nil {
		return nil, errors.NewInternalError("failed to query wifi drivers", err)
	}
	s.logger.WithFields(logrus.Fields{
		"interface": name,
		"drivers":   drivers,
	}).Debug("지원 드라이버 조회 완료")
	return drivers, nil
}

// RollbackDefaultConfiguration은 네트워크 설정을 공장 기본값으로 되돌립니다
func (s *Service) RollbackDefaultConfiguration(ctx context.Context) error {
	return s.rollback.RollbackNetwork(ctx)
}

// RollbackDefaultFirewallConfiguration은 방화벽 설정을 공장 기본값으로 되돌립니다
func (s *Service) RollbackDefaultFirewallConfiguration(ctx context.Context) error {
	return s.rollback.RollbackFirewall(ctx)
}
