package services

import (
	"io"
	"testing"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerger() *ConfigMerger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewConfigMerger(logger)
}

var (
	dhcpWAN   = entities.IPv4Config{Status: entities.StatusEnabledWAN, DHCP: true}
	staticLAN = entities.IPv4Config{Status: entities.StatusEnabledLAN, Address: "1.2.3.4/24"}
	infraA    = entities.WifiConfig{Mode: entities.WifiModeInfra, SSID: "uplink", Security: entities.WifiSecurityWPA2, Passphrase: "uplink-secret"}
	masterB   = entities.WifiConfig{Mode: entities.WifiModeMaster, SSID: "gateway", Security: entities.WifiSecurityNone}
	masterB2  = entities.WifiConfig{Mode: entities.WifiModeMaster, SSID: "gateway-2", Security: entities.WifiSecurityNone}
)

func ethernetConfig(items ...entities.ConfigItem) *entities.NetworkConfiguration {
	return &entities.NetworkConfiguration{
		Interfaces: []entities.InterfaceConfig{
			{Name: "lo", Kind: entities.KindLoopback, MTU: 65536},
			{
				Name:        "eth0",
				Kind:        entities.KindEthernet,
				MTU:         1500,
				AutoConnect: true,
				Addresses:   []entities.AddressConfig{{Items: items}},
			},
		},
	}
}

func TestConfigMerger_Validate(t *testing.T) {
	merger := newTestMerger()

	tests := []struct {
		name      string
		update    InterfaceUpdate
		checkType func(error) bool
	}{
		{
			name:      "잘못된 항목은 설정 에러",
			update:    InterfaceUpdate{Name: "eth0", Kind: entities.KindEthernet, Items: []entities.ConfigItem{entities.IPv4Config{Status: entities.StatusEnabledLAN}}},
			checkType: errors.IsConfigurationError,
		},
		{
			name:      "IP 설정 없음",
			update:    InterfaceUpdate{Name: "eth0", Kind: entities.KindEthernet, Items: []entities.ConfigItem{entities.AutoNatConfig{}}},
			checkType: errors.IsRequiredAttributeMissingError,
		},
		{
			name:      "WIFI에 Wi-Fi 설정 없음",
			update:    InterfaceUpdate{Name: "wlan0", Kind: entities.KindWifi, Items: []entities.ConfigItem{dhcpWAN}},
			checkType: errors.IsRequiredAttributeMissingError,
		},
		{
			name:      "MODEM에 모뎀 설정 없음",
			update:    InterfaceUpdate{Name: "ppp0", Kind: entities.KindModem, Items: []entities.ConfigItem{dhcpWAN}},
			checkType: errors.IsRequiredAttributeMissingError,
		},
		{
			name:      "이더넷에 Wi-Fi 설정",
			update:    InterfaceUpdate{Name: "eth0", Kind: entities.KindEthernet, Items: []entities.ConfigItem{dhcpWAN, masterB}},
			checkType: errors.IsConfigurationError,
		},
		{
			name:      "중복 IPv4",
			update:    InterfaceUpdate{Name: "eth0", Kind: entities.KindEthernet, Items: []entities.ConfigItem{dhcpWAN, staticLAN}},
			checkType: errors.IsConfigurationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := merger.Validate(tt.update)
			require.Error(t, err)
			assert.True(t, tt.checkType(err), "unexpected error type: %v", err)

			// 검증 실패 시 병합도 실패하고 아무것도 반환하지 않아야 함
			result, modified, err := merger.Merge(tt.update, ethernetConfig(dhcpWAN))
			assert.Error(t, err)
			assert.Nil(t, result)
			assert.Nil(t, modified)
		})
	}
}

func TestConfigMerger_Merge_AppendsAllSlotsToEmptyAddressConfig(t *testing.T) {
	merger := newTestMerger()
	current := ethernetConfig()
	desired := []entities.ConfigItem{staticLAN, entities.IPv6Config{Status: entities.StatusDisabled}}

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name: "eth0", Kind: entities.KindEthernet, MTU: 1500, AutoConnect: true, Items: desired,
	}, current)

	require.NoError(t, err)
	assert.Equal(t, []string{"eth0"}, modified)

	eth0, ok := result.Interface("eth0")
	require.True(t, ok)
	assert.Equal(t, desired, eth0.Addresses[0].Items)

	// 원본은 변경되지 않아야 함
	assert.Empty(t, current.Interfaces[1].Addresses[0].Items)
}

func TestConfigMerger_Merge_NoAddressConfig(t *testing.T) {
	merger := newTestMerger()
	current := &entities.NetworkConfiguration{
		Interfaces: []entities.InterfaceConfig{{Name: "eth1", Kind: entities.KindEthernet}},
	}

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name: "eth1", Kind: entities.KindEthernet, Items: []entities.ConfigItem{dhcpWAN},
	}, current)

	require.NoError(t, err)
	assert.Equal(t, []string{"eth1"}, modified)
	require.Len(t, result.Interfaces[0].Addresses, 1)
	assert.Equal(t, []entities.ConfigItem{dhcpWAN}, result.Interfaces[0].Addresses[0].Items)
}

func TestConfigMerger_Merge_IdenticalIsNotModified(t *testing.T) {
	merger := newTestMerger()
	current := ethernetConfig(dhcpWAN, entities.AutoNatConfig{Masquerade: true})

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name:        "eth0",
		Kind:        entities.KindEthernet,
		MTU:         1500,
		AutoConnect: true,
		Items:       []entities.ConfigItem{dhcpWAN, entities.AutoNatConfig{Masquerade: true}},
	}, current)

	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Equal(t, current, result)
}

func TestConfigMerger_Merge_EthernetScenario(t *testing.T) {
	merger := newTestMerger()
	current := ethernetConfig(dhcpWAN, entities.AutoNatConfig{Masquerade: true})

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name:        "eth0",
		Kind:        entities.KindEthernet,
		MTU:         1500,
		AutoConnect: true,
		Items:       []entities.ConfigItem{staticLAN},
	}, current)

	require.NoError(t, err)
	assert.Equal(t, []string{"eth0"}, modified)

	eth0, _ := result.Interface("eth0")
	assert.Equal(t, []entities.ConfigItem{staticLAN}, eth0.Addresses[0].Items)
	assert.False(t, eth0.HasAutoNat())

	// 다른 인터페이스는 그대로 복사되어야 함
	lo, _ := result.Interface("lo")
	assert.Equal(t, current.Interfaces[0], lo)
}

func TestConfigMerger_Merge_ScalarOnlyChange(t *testing.T) {
	merger := newTestMerger()
	current := ethernetConfig(dhcpWAN)

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name: "eth0", Kind: entities.KindEthernet, MTU: 9000, AutoConnect: true, Items: []entities.ConfigItem{dhcpWAN},
	}, current)

	require.NoError(t, err)
	assert.Equal(t, []string{"eth0"}, modified)
	assert.Equal(t, 9000, result.Interfaces[1].MTU)
}

func TestConfigMerger_Merge_WifiKeepsOtherModes(t *testing.T) {
	merger := newTestMerger()
	current := &entities.NetworkConfiguration{
		Interfaces: []entities.InterfaceConfig{
			{
				Name: "wlan0",
				Kind: entities.KindWifi,
				MTU:  1500,
				Addresses: []entities.AddressConfig{
					{WifiMode: entities.WifiModeMaster, Items: []entities.ConfigItem{staticLAN, infraA, masterB}},
				},
			},
		},
	}

	t.Run("선택된 모드만 교체", func(t *testing.T) {
		result, modified, err := merger.Merge(InterfaceUpdate{
			Name: "wlan0", Kind: entities.KindWifi, MTU: 1500, Items: []entities.ConfigItem{staticLAN, masterB2},
		}, current)

		require.NoError(t, err)
		assert.Equal(t, []string{"wlan0"}, modified)

		wlan0, _ := result.Interface("wlan0")
		assert.Equal(t, []entities.ConfigItem{staticLAN, infraA, masterB2}, wlan0.Addresses[0].Items)
		assert.Equal(t, entities.WifiModeMaster, wlan0.Addresses[0].WifiMode)
	})

	t.Run("다른 모드의 존재는 변경으로 간주되지 않음", func(t *testing.T) {
		result, modified, err := merger.Merge(InterfaceUpdate{
			Name: "wlan0", Kind: entities.KindWifi, MTU: 1500, Items: []entities.ConfigItem{staticLAN, masterB},
		}, current)

		require.NoError(t, err)
		assert.Empty(t, modified)
		assert.Equal(t, current, result)
	})

	t.Run("새 모드 추가 및 모드 전환", func(t *testing.T) {
		adhoc := entities.WifiConfig{Mode: entities.WifiModeAdhoc, SSID: "mesh", Security: entities.WifiSecurityNone}
		result, modified, err := merger.Merge(InterfaceUpdate{
			Name: "wlan0", Kind: entities.KindWifi, MTU: 1500, Items: []entities.ConfigItem{staticLAN, adhoc},
		}, current)

		require.NoError(t, err)
		assert.Equal(t, []string{"wlan0"}, modified)

		wlan0, _ := result.Interface("wlan0")
		assert.Equal(t, []entities.ConfigItem{staticLAN, infraA, masterB, adhoc}, wlan0.Addresses[0].Items)
		assert.Equal(t, entities.WifiModeAdhoc, wlan0.Addresses[0].WifiMode)
	})
}

func TestConfigMerger_Merge_Modem(t *testing.T) {
	merger := newTestMerger()
	modem := entities.ModemConfig{DialString: "atd*99***1#", APN: "internet"}
	current := &entities.NetworkConfiguration{
		Interfaces: []entities.InterfaceConfig{
			{
				Name:            "ppp0",
				Kind:            entities.KindModem,
				ModemIdentifier: "HE910",
				PPPNumber:       0,
				Addresses:       []entities.AddressConfig{{Items: []entities.ConfigItem{dhcpWAN, modem}}},
			},
		},
	}

	tests := []struct {
		name         string
		modemID      string
		pppNumber    int
		wantModified bool
	}{
		{name: "동일한 모뎀 정보", modemID: "HE910", pppNumber: 0, wantModified: false},
		{name: "모뎀 식별자 변경", modemID: "LE910", pppNumber: 0, wantModified: true},
		{name: "PPP 번호 변경", modemID: "HE910", pppNumber: 1, wantModified: true},
		{name: "빈 모뎀 식별자", modemID: "", pppNumber: 0, wantModified: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, modified, err := merger.Merge(InterfaceUpdate{
				Name:            "ppp0",
				Kind:            entities.KindModem,
				ModemIdentifier: tt.modemID,
				PPPNumber:       tt.pppNumber,
				Items:           []entities.ConfigItem{dhcpWAN, modem},
			}, current)

			require.NoError(t, err)
			assert.Equal(t, tt.wantModified, len(modified) == 1)
			assert.Equal(t, tt.modemID, result.Interfaces[0].ModemIdentifier)
			assert.Equal(t, tt.pppNumber, result.Interfaces[0].PPPNumber)
		})
	}
}

func TestConfigMerger_Merge_UnknownInterfaceIsNoop(t *testing.T) {
	merger := newTestMerger()
	current := ethernetConfig(dhcpWAN)

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name: "eth9", Kind: entities.KindEthernet, Items: []entities.ConfigItem{staticLAN},
	}, current)

	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Equal(t, current, result)
}

func TestConfigMerger_Merge_KindMismatch(t *testing.T) {
	merger := newTestMerger()

	_, _, err := merger.Merge(InterfaceUpdate{
		Name: "eth0", Kind: entities.KindWifi, Items: []entities.ConfigItem{dhcpWAN, masterB},
	}, ethernetConfig(dhcpWAN))

	assert.True(t, errors.IsConfigurationError(err))
}

func TestConfigMerger_Merge_UnsupportedExistingItemCarried(t *testing.T) {
	merger := newTestMerger()
	stray := entities.ModemConfig{DialString: "atd*99#"}
	current := ethernetConfig(dhcpWAN, stray)

	result, modified, err := merger.Merge(InterfaceUpdate{
		Name: "eth0", Kind: entities.KindEthernet, MTU: 1500, AutoConnect: true, Items: []entities.ConfigItem{dhcpWAN},
	}, current)

	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Equal(t, []entities.ConfigItem{dhcpWAN, stray}, result.Interfaces[1].Addresses[0].Items)
}
