package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigItem_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		item  ConfigItem
		valid bool
	}{
		{
			name:  "DHCP IPv4",
			item:  IPv4Config{Status: StatusEnabledWAN, DHCP: true},
			valid: true,
		},
		{
			name:  "정적 IPv4",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "192.168.1.1/24", Gateway: "192.168.1.254", DNSServers: []string{"8.8.8.8"}},
			valid: true,
		},
		{
			name:  "호스트 주소 IPv4",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "1.2.3.4/24"},
			valid: true,
		},
		{
			name:  "네트워크 주소 IPv4",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "1.2.3.0/24"},
			valid: true,
		},
		{
			name:  "IPv4 항목에 IPv6 주소",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "fd00::1/64"},
			valid: false,
		},
		{
			name:  "프리픽스 없는 IPv4",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "1.2.3.4"},
			valid: false,
		},
		{
			name:  "주소 없는 정적 IPv4",
			item:  IPv4Config{Status: StatusEnabledLAN},
			valid: false,
		},
		{
			name:  "비활성 IPv4는 주소 불필요",
			item:  IPv4Config{Status: StatusDisabled},
			valid: true,
		},
		{
			name:  "잘못된 CIDR",
			item:  IPv4Config{Status: StatusEnabledLAN, Address: "300.1.1.1/24"},
			valid: false,
		},
		{
			name:  "잘못된 DNS 서버",
			item:  IPv4Config{Status: StatusEnabledWAN, DHCP: true, DNSServers: []string{"dns.example"}},
			valid: false,
		},
		{
			name:  "알 수 없는 상태",
			item:  IPv4Config{Status: "bogus", DHCP: true},
			valid: false,
		},
		{
			name:  "IPv6 정적",
			item:  IPv6Config{Status: StatusEnabledLAN, Address: "fd00::1/64"},
			valid: true,
		},
		{
			name:  "IPv6 항목에 IPv4 주소",
			item:  IPv6Config{Status: StatusEnabledLAN, Address: "1.2.3.4/24"},
			valid: false,
		},
		{
			name:  "개방형 Wi-Fi",
			item:  WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone},
			valid: true,
		},
		{
			name:  "WPA2 짧은 암호",
			item:  WifiConfig{Mode: WifiModeInfra, SSID: "office", Security: WifiSecurityWPA2, Passphrase: "short"},
			valid: false,
		},
		{
			name:  "WPA2 정상 암호",
			item:  WifiConfig{Mode: WifiModeInfra, SSID: "office", Security: WifiSecurityWPA2, Passphrase: "correcthorse"},
			valid: true,
		},
		{
			name:  "WEP 16진수 키",
			item:  WifiConfig{Mode: WifiModeAdhoc, SSID: "legacy", Security: WifiSecurityWEP, Passphrase: "0123456789"},
			valid: true,
		},
		{
			name:  "WEP 잘못된 키 길이",
			item:  WifiConfig{Mode: WifiModeAdhoc, SSID: "legacy", Security: WifiSecurityWEP, Passphrase: "0123"},
			valid: false,
		},
		{
			name:  "SSID 누락",
			item:  WifiConfig{Mode: WifiModeInfra, Security: WifiSecurityNone},
			valid: false,
		},
		{
			name:  "잘못된 채널",
			item:  WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone, Channels: []int{36}},
			valid: false,
		},
		{
			name:  "활성화된 DHCP 서버",
			item:  DhcpServerConfig{Enabled: true, RouterAddress: "172.16.1.1", Prefix: 24, RangeStart: "172.16.1.100", RangeEnd: "172.16.1.200", DefaultLeaseTime: 7200, MaxLeaseTime: 7200},
			valid: true,
		},
		{
			name:  "범위 없는 DHCP 서버",
			item:  DhcpServerConfig{Enabled: true, RouterAddress: "172.16.1.1", Prefix: 24},
			valid: false,
		},
		{
			name:  "비활성 DHCP 서버",
			item:  DhcpServerConfig{},
			valid: true,
		},
		{
			name:  "최대 임대 시간이 기본보다 짧음",
			item:  DhcpServerConfig{DefaultLeaseTime: 7200, MaxLeaseTime: 60},
			valid: false,
		},
		{
			name:  "AutoNat",
			item:  AutoNatConfig{Masquerade: true},
			valid: true,
		},
		{
			name:  "모뎀 다이얼 문자열",
			item:  ModemConfig{DialString: "atd*99***1#", APN: "internet", Auth: "chap"},
			valid: true,
		},
		{
			name:  "다이얼 문자열 없는 모뎀",
			item:  ModemConfig{APN: "internet"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.item.IsValid())
		})
	}
}

func TestItemsEqual(t *testing.T) {
	a := WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone, Channels: []int{1}}
	b := WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone, Channels: []int{1}}
	c := WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone, Channels: []int{6}}

	assert.True(t, ItemsEqual(a, b))
	assert.False(t, ItemsEqual(a, c))
	assert.False(t, ItemsEqual(a, IPv4Config{}))
}

func TestItemsEqual_EmptyAndNilSlices(t *testing.T) {
	assert.True(t, ItemsEqual(
		IPv4Config{Status: StatusEnabledLAN, Address: "1.2.3.4/24", DNSServers: []string{}},
		IPv4Config{Status: StatusEnabledLAN, Address: "1.2.3.4/24"},
	))
	assert.True(t, ItemsEqual(
		WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone, Channels: []int{}},
		WifiConfig{Mode: WifiModeMaster, SSID: "gateway", Security: WifiSecurityNone},
	))
	assert.True(t, ItemsEqual(nil, nil))
	assert.False(t, ItemsEqual(AutoNatConfig{}, nil))
}
