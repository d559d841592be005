package entities

import (
	"errors"
	"regexp"
	"strings"
)

// InterfaceKind는 인터페이스의 종류를 나타냅니다
type InterfaceKind string

const (
	KindEthernet InterfaceKind = "ETHERNET"
	KindWifi     InterfaceKind = "WIFI"
	KindModem    InterfaceKind = "MODEM"
	KindLoopback InterfaceKind = "LOOPBACK"
)

// InterfaceStatus는 IP 설정에 기록된 인터페이스 상태입니다
type InterfaceStatus string

const (
	StatusDisabled   InterfaceStatus = "disabled"
	StatusUnmanaged  InterfaceStatus = "unmanaged"
	StatusL2Only     InterfaceStatus = "l2only"
	StatusEnabledLAN InterfaceStatus = "lan"
	StatusEnabledWAN InterfaceStatus = "wan"
	StatusUnknown    InterfaceStatus = "unknown"
)

// LoopbackInterfaceName은 항상 관리 대상에서 제외되는 루프백 인터페이스입니다
const LoopbackInterfaceName = "lo"

// InterfaceConfig는 하나의 네트워크 인터페이스 설정 레코드입니다
type InterfaceConfig struct {
	Name        string
	Kind        InterfaceKind
	MTU         int
	AutoConnect bool

	// MODEM 전용
	ModemIdentifier string
	PPPNumber       int

	Addresses []AddressConfig
}

// AddressConfig는 인터페이스 주소 할당에 연결된 설정 항목 목록입니다
type AddressConfig struct {
	// WifiMode는 WIFI 인터페이스에서 현재 선택된 모드입니다
	WifiMode WifiMode
	Items    []ConfigItem
}

// InterfaceName은 리눅스 인터페이스 이름을 나타내는 값 객체입니다
type InterfaceName struct {
	value string
}

var (
	ErrInvalidMacAddress    = errors.New("유효하지 않은 MAC 주소 형식")
	ErrInvalidInterfaceName = errors.New("유효하지 않은 인터페이스 이름")
)

var (
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]{1,15}$`)
	macAddressRegex    = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
)

// NewInterfaceName은 새로운 인터페이스 이름을 생성합니다
func NewInterfaceName(name string) (InterfaceName, error) {
	if !interfaceNameRegex.MatchString(name) {
		return InterfaceName{}, ErrInvalidInterfaceName
	}
	return InterfaceName{value: name}, nil
}

// String은 인터페이스 이름의 문자열 표현을 반환합니다
func (n InterfaceName) String() string {
	return n.value
}

// IsLoopback은 루프백 인터페이스인지 확인합니다
func (n InterfaceName) IsLoopback() bool {
	return n.value == LoopbackInterfaceName
}

// IsDriverManaged는 hostapd/wpa_supplicant로 제어할 수 있는 무선 인터페이스인지 확인합니다.
// 모니터 인터페이스(mon.*)와 rpine 드라이버 인터페이스는 제외됩니다.
func (n InterfaceName) IsDriverManaged() bool {
	return !strings.HasPrefix(n.value, "mon.") && !strings.HasPrefix(n.value, "rpine")
}

// NormalizeMacAddress는 MAC 주소를 대문자 콜론 구분 형식으로 변환합니다
func NormalizeMacAddress(mac string) (string, error) {
	if !macAddressRegex.MatchString(mac) {
		return "", ErrInvalidMacAddress
	}
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":")), nil
}

// Clone은 인터페이스 설정의 복사본을 반환합니다.
// 설정 항목은 값 타입이므로 항목 슬라이스만 새로 만듭니다.
func (c InterfaceConfig) Clone() InterfaceConfig {
	clone := c
	if c.Addresses == nil {
		return clone
	}
	clone.Addresses = make([]AddressConfig, len(c.Addresses))
	for i, addr := range c.Addresses {
		clone.Addresses[i] = addr.Clone()
	}
	return clone
}

// Clone은 주소 설정의 복사본을 반환합니다
func (a AddressConfig) Clone() AddressConfig {
	if a.Items == nil {
		return AddressConfig{WifiMode: a.WifiMode}
	}
	items := make([]ConfigItem, len(a.Items))
	copy(items, a.Items)
	return AddressConfig{WifiMode: a.WifiMode, Items: items}
}

// Items는 모든 주소 설정의 항목을 순서대로 반환합니다
func (c InterfaceConfig) Items() []ConfigItem {
	var items []ConfigItem
	for _, addr := range c.Addresses {
		items = append(items, addr.Items...)
	}
	return items
}

// IPv4는 첫 번째 IPv4 설정을 반환합니다
func (c InterfaceConfig) IPv4() (IPv4Config, bool) {
	for _, item := range c.Items() {
		if cfg, ok := item.(IPv4Config); ok {
			return cfg, true
		}
	}
	return IPv4Config{}, false
}

// HasAutoNat은 AutoNat 설정이 있는지 확인합니다
func (c InterfaceConfig) HasAutoNat() bool {
	for _, item := range c.Items() {
		if _, ok := item.(AutoNatConfig); ok {
			return true
		}
	}
	return false
}

// SelectedWifiMode는 첫 번째 주소 설정에 기록된 Wi-Fi 모드를 반환합니다
func (c InterfaceConfig) SelectedWifiMode() WifiMode {
	if len(c.Addresses) == 0 || c.Addresses[0].WifiMode == "" {
		return WifiModeUnknown
	}
	return c.Addresses[0].WifiMode
}

// WifiConfigFor는 주어진 모드의 Wi-Fi 설정을 반환합니다
func (c InterfaceConfig) WifiConfigFor(mode WifiMode) (WifiConfig, bool) {
	for _, item := range c.Items() {
		if cfg, ok := item.(WifiConfig); ok && cfg.Mode == mode {
			return cfg, true
		}
	}
	return WifiConfig{}, false
}
