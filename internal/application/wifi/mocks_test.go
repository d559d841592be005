package wifi

import (
	"context"
	"time"

	"netadmin-agent/internal/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) LoadNetwork(ctx context.Context) (*entities.NetworkConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.NetworkConfiguration), args.Error(1)
}

func (m *MockConfigStore) CommitNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockConfigStore) LoadFirewall(ctx context.Context) (*entities.FirewallConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FirewallConfiguration), args.Error(1)
}

func (m *MockConfigStore) CommitFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockConfigStore) Checkpoint(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockConfigStore) NetworkDefaults(ctx context.Context) (*entities.NetworkConfiguration, error) {
	args := m.Called(ctx)
	return args.Get(0).(*entities.NetworkConfiguration), args.Error(1)
}

func (m *MockConfigStore) FirewallDefaults(ctx context.Context) (*entities.FirewallConfiguration, error) {
	args := m.Called(ctx)
	return args.Get(0).(*entities.FirewallConfiguration), args.Error(1)
}

type MockLinkManager struct {
	mock.Mock
}

func (m *MockLinkManager) HasAddress(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkManager) IsLinkUp(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkManager) SetLinkUp(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockLinkManager) SetLinkDown(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockLinkManager) BringUpDeletingAddress(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type MockDhcpClient struct {
	mock.Mock
}

func (m *MockDhcpClient) Enable(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockDhcpClient) Disable(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockDhcpClient) ReleaseCurrentLease(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type MockDhcpServer struct {
	mock.Mock
}

func (m *MockDhcpServer) Enable(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockDhcpServer) Disable(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockDhcpServer) IsRunning(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockHostapd struct {
	mock.Mock
}

func (m *MockHostapd) Start(ctx context.Context, iface string) error {
	return m.Called(ctx, iface).Error(0)
}

func (m *MockHostapd) Stop(ctx context.Context, iface string) error {
	return m.Called(ctx, iface).Error(0)
}

func (m *MockHostapd) IsRunning(ctx context.Context, iface string) (bool, error) {
	args := m.Called(ctx, iface)
	return args.Bool(0), args.Error(1)
}

type MockWpaSupplicant struct {
	mock.Mock
}

func (m *MockWpaSupplicant) Start(ctx context.Context, iface string, mode entities.WifiMode, driver string) error {
	return m.Called(ctx, iface, mode, driver).Error(0)
}

func (m *MockWpaSupplicant) StartTemporary(ctx context.Context, iface string, mode entities.WifiMode, driver string) error {
	return m.Called(ctx, iface, mode, driver).Error(0)
}

func (m *MockWpaSupplicant) Stop(ctx context.Context, iface string) error {
	return m.Called(ctx, iface).Error(0)
}

func (m *MockWpaSupplicant) IsRunning(ctx context.Context, iface string) (bool, error) {
	args := m.Called(ctx, iface)
	return args.Bool(0), args.Error(1)
}

func (m *MockWpaSupplicant) IsTemporaryRunning(ctx context.Context, iface string) (bool, error) {
	args := m.Called(ctx, iface)
	return args.Bool(0), args.Error(1)
}

func (m *MockWpaSupplicant) State(ctx context.Context, iface string) (string, error) {
	args := m.Called(ctx, iface)
	return args.String(0), args.Error(1)
}

func (m *MockWpaSupplicant) WriteTemporaryConfig(ctx context.Context, iface string, cfg *entities.WifiConfig) error {
	return m.Called(ctx, iface, cfg).Error(0)
}

type MockRadio struct {
	mock.Mock
}

func (m *MockRadio) Mode(ctx context.Context, iface string) (entities.WifiMode, error) {
	args := m.Called(ctx, iface)
	return args.Get(0).(entities.WifiMode), args.Error(1)
}

func (m *MockRadio) ReloadKernelModule(ctx context.Context, iface string, mode entities.WifiMode) error {
	return m.Called(ctx, iface, mode).Error(0)
}

func (m *MockRadio) SupportedDrivers(ctx context.Context, iface string) ([]string, error) {
	args := m.Called(ctx, iface)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockScanTool struct {
	mock.Mock
}

func (m *MockScanTool) Scan(ctx context.Context, iface string) ([]entities.WifiAccessPoint, error) {
	args := m.Called(ctx, iface)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.WifiAccessPoint), args.Error(1)
}

func fastTimings() Timings {
	return Timings{
		ConnectionPollInterval: time.Millisecond,
		ConnectionTimeout:      20 * time.Millisecond,
		ModeSwitchPollInterval: time.Millisecond,
		ModeSwitchTimeout:      20 * time.Millisecond,
	}
}

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func wifiInterface(name string, status entities.InterfaceStatus, mode entities.WifiMode, wifiCfgs ...entities.WifiConfig) entities.InterfaceConfig {
	items := []entities.ConfigItem{entities.IPv4Config{Status: status, DHCP: true}}
	for _, w := range wifiCfgs {
		items = append(items, w)
	}
	return entities.InterfaceConfig{
		Name:      name,
		Kind:      entities.KindWifi,
		Addresses: []entities.AddressConfig{{WifiMode: mode, Items: items}},
	}
}
