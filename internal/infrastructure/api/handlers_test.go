package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdmin struct {
	mock.Mock
}

func (m *MockAdmin) UpdateEthernetInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	return m.Called(ctx, name, autoConnect, mtu, items).Error(0)
}

func (m *MockAdmin) UpdateWifiInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	return m.Called(ctx, name, autoConnect, mtu, items).Error(0)
}

func (m *MockAdmin) UpdateModemInterfaceConfig(ctx context.Context, name, modemIdentifier string, pppNumber int, autoConnect bool, mtu int, items []entities.ConfigItem) error {
	return m.Called(ctx, name, modemIdentifier, pppNumber, autoConnect, mtu, items).Error(0)
}

func (m *MockAdmin) GetNetworkInterfaceConfigs(ctx context.Context, name string) ([]entities.ConfigItem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ConfigItem), args.Error(1)
}

func (m *MockAdmin) GetNetworkConfiguration(ctx context.Context) (*entities.NetworkConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.NetworkConfiguration), args.Error(1)
}

func (m *MockAdmin) EnableInterface(ctx context.Context, name string, useDhcp bool) error {
	return m.Called(ctx, name, useDhcp).Error(0)
}

func (m *MockAdmin) DisableInterface(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockAdmin) ManageDhcpClient(ctx context.Context, name string, enable bool) error {
	return m.Called(ctx, name, enable).Error(0)
}

func (m *MockAdmin) ManageDhcpServer(ctx context.Context, name string, enable bool) error {
	return m.Called(ctx, name, enable).Error(0)
}

func (m *MockAdmin) RenewDhcpLease(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockAdmin) ManageFirewall(ctx context.Context, gateway string) error {
	return m.Called(ctx, gateway).Error(0)
}

func (m *MockAdmin) GetFirewallConfiguration(ctx context.Context) (*entities.FirewallConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FirewallConfiguration), args.Error(1)
}

func (m *MockAdmin) SetFirewallOpenPortConfiguration(ctx context.Context, rules []entities.OpenPortRule) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockAdmin) SetFirewallPortForwardingConfiguration(ctx context.Context, rules []entities.PortForwardRule) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockAdmin) SetFirewallNatConfiguration(ctx context.Context, rules []entities.NATRule) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockAdmin) GetWifiHotspots(ctx context.Context, name string) (map[string]entities.WifiHotspotInfo, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entities.WifiHotspotInfo), args.Error(1)
}

func (m *MockAdmin) VerifyWifiCredentials(ctx context.Context, name string, candidate entities.WifiConfig, timeout time.Duration) bool {
	return m.Called(ctx, name, candidate, timeout).Bool(0)
}

func (m *MockAdmin) GetSupportedWifiDrivers(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAdmin) RollbackDefaultConfiguration(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdmin) RollbackDefaultFirewallConfiguration(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestRouter(admin *MockAdmin) http.Handler {
	logger, _ := test.NewNullLogger()
	return NewRouter(NewHandler(admin, logger), nil, logger)
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_UpdateInterface(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*MockAdmin)
		wantCode  int
	}{
		{
			name: "와이파이 마스터 설정",
			body: `{"kind": "WIFI", "auto_connect": true, "mtu": 1500, "items": [` +
				`{"kind": "ipv4", "spec": {"status": "lan", "address": "172.16.1.1/24"}},` +
				`{"kind": "wifi", "spec": {"mode": "master", "ssid": "gateway", "security": "wpa2", "passphrase": "secret123", "channels": [6]}}]}`,
			setupMock: func(m *MockAdmin) {
				m.On("UpdateWifiInterfaceConfig", mock.Anything, "wlan0", true, 1500, []entities.ConfigItem{
					entities.IPv4Config{Status: entities.StatusEnabledLAN, Address: "172.16.1.1/24"},
					entities.WifiConfig{Mode: entities.WifiModeMaster, SSID: "gateway", Security: entities.WifiSecurityWPA2, Passphrase: "secret123", Channels: []int{6}},
				}).Return(nil)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "모뎀 설정",
			body: `{"kind": "MODEM", "modem_identifier": "1-1.2", "ppp_number": 1, "items": [{"kind": "modem", "spec": {"apn": "internet"}}]}`,
			setupMock: func(m *MockAdmin) {
				m.On("UpdateModemInterfaceConfig", mock.Anything, "wlan0", "1-1.2", 1, false, 0, []entities.ConfigItem{
					entities.ModemConfig{APN: "internet"},
				}).Return(nil)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:      "알 수 없는 인터페이스 종류",
			body:      `{"kind": "BRIDGE"}`,
			setupMock: func(m *MockAdmin) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "알 수 없는 항목 종류",
			body:      `{"kind": "ETHERNET", "items": [{"kind": "vlan"}]}`,
			setupMock: func(m *MockAdmin) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "잘못된 JSON",
			body:      `{"kind":`,
			setupMock: func(m *MockAdmin) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "필수 속성 누락",
			body: `{"kind": "ETHERNET", "items": []}`,
			setupMock: func(m *MockAdmin) {
				m.On("UpdateEthernetInterfaceConfig", mock.Anything, "wlan0", false, 0, []entities.ConfigItem(nil)).
					Return(domainErrors.NewRequiredAttributeMissingError("ipv4"))
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(MockAdmin)
			tt.setupMock(admin)

			rec := serve(newTestRouter(admin), http.MethodPut, "/api/v1/interfaces/wlan0", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			admin.AssertExpectations(t)
		})
	}
}

func TestHandler_GetInterfaces(t *testing.T) {
	admin := new(MockAdmin)
	admin.On("GetNetworkConfiguration", mock.Anything).Return(&entities.NetworkConfiguration{
		Interfaces: []entities.InterfaceConfig{{
			Name:        "wlan0",
			Kind:        entities.KindWifi,
			AutoConnect: true,
			Addresses: []entities.AddressConfig{{
				WifiMode: entities.WifiModeMaster,
				Items: []entities.ConfigItem{
					entities.WifiConfig{Mode: entities.WifiModeMaster, SSID: "gateway", Security: entities.WifiSecurityNone},
				},
			}},
		}},
	}, nil)

	rec := serve(newTestRouter(admin), http.MethodGet, "/api/v1/interfaces", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []InterfaceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, entities.WifiModeMaster, views[0].WifiMode)
	require.Len(t, views[0].Items, 1)
	assert.Equal(t, entities.ItemKindWifi, views[0].Items[0].Kind)
	assert.Equal(t, "gateway", views[0].Items[0].Spec["ssid"])
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody ErrorCode
	}{
		{"인터페이스 없음", domainErrors.NewNotFoundError("interface wlan9 not found"), http.StatusNotFound, ErrCodeNotFound},
		{"설정 오류", domainErrors.NewConfigurationError("invalid", nil), http.StatusBadRequest, ErrCodeInvalidConfig},
		{"시간 초과", domainErrors.NewTimeoutError("commit"), http.StatusGatewayTimeout, ErrCodeTimeout},
		{"기타 오류", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(MockAdmin)
			admin.On("DisableInterface", mock.Anything, "wlan0").Return(tt.err)

			rec := serve(newTestRouter(admin), http.MethodPost, "/api/v1/interfaces/wlan0/disable", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Error.Code)
		})
	}
}

func TestHandler_EnableInterface(t *testing.T) {
	admin := new(MockAdmin)
	admin.On("EnableInterface", mock.Anything, "eth0", true).Return(nil)
	router := newTestRouter(admin)

	rec := serve(router, http.MethodPost, "/api/v1/interfaces/eth0/enable?dhcp=true", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/interfaces/eth0/enable?dhcp=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	admin.AssertExpectations(t)
}

func TestHandler_VerifyCredentials(t *testing.T) {
	admin := new(MockAdmin)
	candidate := entities.WifiConfig{Mode: entities.WifiModeInfra, SSID: "uplink", Security: entities.WifiSecurityWPA2, Passphrase: "password1"}
	admin.On("VerifyWifiCredentials", mock.Anything, "wlan0", candidate, 20*time.Second).Return(true)

	rec := serve(newTestRouter(admin), http.MethodPost, "/api/v1/interfaces/wlan0/verify",
		`{"config": {"mode": "infra", "ssid": "uplink", "security": "wpa2", "passphrase": "password1"}, "timeout_seconds": 20}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verified": true}`, rec.Body.String())
	admin.AssertExpectations(t)
}

func TestHandler_Firewall(t *testing.T) {
	admin := new(MockAdmin)
	admin.On("SetFirewallNatConfiguration", mock.Anything, []entities.NATRule{
		{SourceInterface: "wlan0", DestinationInterface: "eth0", Masquerade: true},
	}).Return(nil)
	admin.On("ManageFirewall", mock.Anything, "eth0").Return(nil)
	admin.On("GetFirewallConfiguration", mock.Anything).Return(&entities.FirewallConfiguration{
		OpenPorts: []entities.OpenPortRule{{Port: 22, Protocol: "tcp"}},
	}, nil)
	router := newTestRouter(admin)

	rec := serve(router, http.MethodPut, "/api/v1/firewall/nats",
		`[{"source_interface": "wlan0", "destination_interface": "eth0", "masquerade": true}]`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/firewall/manage", `{"gateway": "eth0"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/firewall", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"port":22`)

	admin.AssertExpectations(t)
}

func TestHandler_Hotspots(t *testing.T) {
	admin := new(MockAdmin)
	admin.On("GetWifiHotspots", mock.Anything, "wlan0").Return(map[string]entities.WifiHotspotInfo{
		"cafe": {SSID: "cafe", Channel: 6, Security: entities.WifiSecurityWPA2},
	}, nil)
	admin.On("GetSupportedWifiDrivers", mock.Anything, "wlan0").Return([]string{"nl80211", "wext"}, nil)
	router := newTestRouter(admin)

	rec := serve(router, http.MethodGet, "/api/v1/interfaces/wlan0/hotspots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hotspots map[string]entities.WifiHotspotInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hotspots))
	assert.Equal(t, 6, hotspots["cafe"].Channel)

	rec = serve(router, http.MethodGet, "/api/v1/interfaces/wlan0/drivers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["nl80211", "wext"]`, rec.Body.String())
}

func TestHandler_Recovery(t *testing.T) {
	admin := new(MockAdmin)
	admin.On("RollbackDefaultConfiguration", mock.Anything).Run(func(mock.Arguments) {
		panic("unexpected")
	})

	rec := serve(newTestRouter(admin), http.MethodPost, "/api/v1/rollback/network", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
