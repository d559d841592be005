package store

import (
	"context"
	"errors"
	"testing"

	"netadmin-agent/internal/domain/entities"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWifiConfigWriter struct {
	mock.Mock
}

func (m *MockWifiConfigWriter) WriteHostapd(iface string, cfg entities.WifiConfig) error {
	return m.Called(iface, cfg).Error(0)
}

func (m *MockWifiConfigWriter) WriteWpaSupplicant(iface string, cfg entities.WifiConfig) error {
	return m.Called(iface, cfg).Error(0)
}

type MockDhcpServerConfigWriter struct {
	mock.Mock
}

func (m *MockDhcpServerConfigWriter) Write(iface string, cfg entities.DhcpServerConfig) error {
	return m.Called(iface, cfg).Error(0)
}

type MockFirewall struct {
	mock.Mock
}

func (m *MockFirewall) ReplaceAllNatRules(ctx context.Context, rules []entities.NATRule) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockFirewall) DeleteAllAutoNatRules(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockFirewall) Enable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockFirewall) Apply(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

func wifiInterface(name string, selected entities.WifiMode, items ...entities.ConfigItem) entities.InterfaceConfig {
	return entities.InterfaceConfig{
		Name:      name,
		Kind:      entities.KindWifi,
		Addresses: []entities.AddressConfig{{WifiMode: selected, Items: items}},
	}
}

func TestDaemonApplier_ApplyNetwork(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	master := entities.WifiConfig{Mode: entities.WifiModeMaster, SSID: "gateway", Security: entities.WifiSecurityNone}
	infra := entities.WifiConfig{Mode: entities.WifiModeInfra, SSID: "uplink", Security: entities.WifiSecurityNone}
	adhoc := entities.WifiConfig{Mode: entities.WifiModeAdhoc, SSID: "mesh", Security: entities.WifiSecurityNone, Channels: []int{1}}
	server := entities.DhcpServerConfig{Enabled: true, RouterAddress: "172.16.1.1", Prefix: 24, RangeStart: "172.16.1.100", RangeEnd: "172.16.1.110"}

	tests := []struct {
		name       string
		cfg        *entities.NetworkConfiguration
		setupMocks func(*MockWifiConfigWriter, *MockDhcpServerConfigWriter)
		wantErr    bool
	}{
		{
			name: "MASTER와 INFRA 설정 및 DHCP 서버",
			cfg: &entities.NetworkConfiguration{Interfaces: []entities.InterfaceConfig{
				wifiInterface("wlan0", entities.WifiModeMaster, master, infra, server),
			}},
			setupMocks: func(w *MockWifiConfigWriter, d *MockDhcpServerConfigWriter) {
				w.On("WriteHostapd", "wlan0", master).Return(nil)
				w.On("WriteWpaSupplicant", "wlan0", infra).Return(nil)
				d.On("Write", "wlan0", server).Return(nil)
			},
		},
		{
			name: "ADHOC 선택 시 ADHOC 설정으로 wpa_supplicant 작성",
			cfg: &entities.NetworkConfiguration{Interfaces: []entities.InterfaceConfig{
				wifiInterface("wlan0", entities.WifiModeAdhoc, infra, adhoc),
			}},
			setupMocks: func(w *MockWifiConfigWriter, d *MockDhcpServerConfigWriter) {
				w.On("WriteWpaSupplicant", "wlan0", adhoc).Return(nil)
			},
		},
		{
			name: "변경된 인터페이스만 적용",
			cfg: &entities.NetworkConfiguration{
				Interfaces: []entities.InterfaceConfig{
					wifiInterface("wlan0", entities.WifiModeMaster, master),
					wifiInterface("wlan1", entities.WifiModeMaster, master),
				},
				ModifiedInterfaces: []string{"wlan1"},
			},
			setupMocks: func(w *MockWifiConfigWriter, d *MockDhcpServerConfigWriter) {
				w.On("WriteHostapd", "wlan1", master).Return(nil)
			},
		},
		{
			name: "드라이버 관리 대상이 아닌 인터페이스는 DHCP 서버만",
			cfg: &entities.NetworkConfiguration{Interfaces: []entities.InterfaceConfig{
				wifiInterface("mon.wlan0", entities.WifiModeMaster, master, server),
			}},
			setupMocks: func(w *MockWifiConfigWriter, d *MockDhcpServerConfigWriter) {
				d.On("Write", "mon.wlan0", server).Return(nil)
			},
		},
		{
			name: "한 인터페이스 실패가 다른 인터페이스를 막지 않음",
			cfg: &entities.NetworkConfiguration{Interfaces: []entities.InterfaceConfig{
				wifiInterface("wlan0", entities.WifiModeMaster, master),
				wifiInterface("wlan1", entities.WifiModeMaster, master),
			}},
			setupMocks: func(w *MockWifiConfigWriter, d *MockDhcpServerConfigWriter) {
				w.On("WriteHostapd", "wlan0", master).Return(errors.New("read-only file system"))
				w.On("WriteHostapd", "wlan1", master).Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wifi := new(MockWifiConfigWriter)
			dhcp := new(MockDhcpServerConfigWriter)
			tt.setupMocks(wifi, dhcp)

			err := NewDaemonApplier(wifi, dhcp, new(MockFirewall), logger).ApplyNetwork(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			wifi.AssertExpectations(t)
			dhcp.AssertExpectations(t)
		})
	}
}

func TestDaemonApplier_ApplyFirewall(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	cfg := &entities.FirewallConfiguration{OpenPorts: []entities.OpenPortRule{{Port: 22, Protocol: "tcp"}}}

	fw := new(MockFirewall)
	fw.On("Apply", ctx, cfg).Return(nil)

	assert.NoError(t, NewDaemonApplier(nil, nil, fw, logger).ApplyFirewall(ctx, cfg))
	fw.AssertExpectations(t)
}
