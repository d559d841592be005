package entities

import (
	"bytes"
	"encoding/hex"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ItemKind는 ConfigItem 변형의 태그입니다
type ItemKind string

const (
	ItemKindIPv4       ItemKind = "ipv4"
	ItemKindIPv6       ItemKind = "ipv6"
	ItemKindWifi       ItemKind = "wifi"
	ItemKindDhcpServer ItemKind = "dhcp_server"
	ItemKindAutoNat    ItemKind = "auto_nat"
	ItemKindModem      ItemKind = "modem"
)

// ConfigItem은 AddressConfig에 담기는 닫힌 합 타입입니다.
// 이 패키지 밖에서는 새로운 변형을 만들 수 없습니다.
type ConfigItem interface {
	Kind() ItemKind
	IsValid() bool
	configItem()
}

var validate = newValidator()

// newValidator는 인터페이스 주소용 host_cidrv4, host_cidrv6 태그를 등록합니다.
// 내장 cidrv4/cidrv6은 네트워크 주소만 허용하므로 1.2.3.4/24 같은 호스트 주소를 거부합니다
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("host_cidrv4", func(fl validator.FieldLevel) bool {
		ip, ok := parseHostCIDR(fl.Field().String())
		return ok && ip.To4() != nil
	})
	v.RegisterValidation("host_cidrv6", func(fl validator.FieldLevel) bool {
		ip, ok := parseHostCIDR(fl.Field().String())
		return ok && ip.To4() == nil && strings.Contains(fl.Field().String(), ":")
	})
	return v
}

func parseHostCIDR(value string) (net.IP, bool) {
	ip, _, err := net.ParseCIDR(value)
	if err != nil {
		return nil, false
	}
	return ip, true
}

// ItemsEqual은 두 설정 항목을 직렬화 형태로 비교합니다.
// 스냅샷을 거치면 빈 슬라이스가 nil이 되므로 둘을 같은 값으로 취급합니다
func ItemsEqual(a, b ConfigItem) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	left, errA := yaml.Marshal(a)
	right, errB := yaml.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(left, right)
}

// IPv4Config는 IPv4 주소 설정입니다
type IPv4Config struct {
	Status     InterfaceStatus `yaml:"status" validate:"oneof=disabled unmanaged l2only lan wan unknown"`
	DHCP       bool            `yaml:"dhcp"`
	Address    string          `yaml:"address,omitempty" validate:"omitempty,host_cidrv4"`
	Gateway    string          `yaml:"gateway,omitempty" validate:"omitempty,ipv4"`
	DNSServers []string        `yaml:"dns_servers,omitempty" validate:"omitempty,dive,ipv4"`
}

func (IPv4Config) Kind() ItemKind { return ItemKindIPv4 }
func (IPv4Config) configItem()    {}

// IsValid는 정적 주소 설정일 때 주소가 있는지까지 확인합니다
func (c IPv4Config) IsValid() bool {
	if validate.Struct(c) != nil {
		return false
	}
	return c.DHCP || !c.Status.IsEnabled() || c.Address != ""
}

// IPv6Config는 IPv6 주소 설정입니다
type IPv6Config struct {
	Status     InterfaceStatus `yaml:"status" validate:"oneof=disabled unmanaged l2only lan wan unknown"`
	DHCP       bool            `yaml:"dhcp"`
	Address    string          `yaml:"address,omitempty" validate:"omitempty,host_cidrv6"`
	DNSServers []string        `yaml:"dns_servers,omitempty" validate:"omitempty,dive,ipv6"`
}

func (IPv6Config) Kind() ItemKind { return ItemKindIPv6 }
func (IPv6Config) configItem()    {}

func (c IPv6Config) IsValid() bool {
	if validate.Struct(c) != nil {
		return false
	}
	return c.DHCP || !c.Status.IsEnabled() || c.Address != ""
}

// WifiConfig는 하나의 Wi-Fi 모드에 대한 설정입니다
type WifiConfig struct {
	Mode            WifiMode     `yaml:"mode" validate:"oneof=infra master adhoc"`
	SSID            string       `yaml:"ssid" validate:"required,max=32"`
	Driver          string       `yaml:"driver,omitempty"`
	Security        WifiSecurity `yaml:"security" validate:"oneof=none wep wpa wpa2 wpa_wpa2"`
	Passphrase      string       `yaml:"passphrase,omitempty"`
	PairwiseCiphers string       `yaml:"pairwise_ciphers,omitempty" validate:"omitempty,oneof=CCMP TKIP CCMP_TKIP"`
	GroupCiphers    string       `yaml:"group_ciphers,omitempty" validate:"omitempty,oneof=CCMP TKIP CCMP_TKIP"`
	Channels        []int        `yaml:"channels,omitempty" validate:"omitempty,dive,min=1,max=14"`
	HardwareMode    string       `yaml:"hardware_mode,omitempty" validate:"omitempty,oneof=a b g n"`
	Broadcast       bool         `yaml:"broadcast"`
}

func (WifiConfig) Kind() ItemKind { return ItemKindWifi }
func (WifiConfig) configItem()    {}

func (c WifiConfig) IsValid() bool {
	if validate.Struct(c) != nil {
		return false
	}
	switch c.Security {
	case WifiSecurityNone:
		return true
	case WifiSecurityWEP:
		return isValidWEPKey(c.Passphrase)
	default:
		return isValidPSK(c.Passphrase)
	}
}

// WEP 키는 ASCII 5/13자 또는 16진수 10/26자입니다
func isValidWEPKey(key string) bool {
	switch len(key) {
	case 5, 13:
		return true
	case 10, 26:
		_, err := hex.DecodeString(key)
		return err == nil
	}
	return false
}

func isValidPSK(psk string) bool {
	if len(psk) == 64 {
		_, err := hex.DecodeString(psk)
		return err == nil
	}
	return len(psk) >= 8 && len(psk) <= 63
}

// DhcpServerConfig는 인터페이스에서 제공하는 DHCP 서버 설정입니다
type DhcpServerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	RouterAddress    string `yaml:"router_address,omitempty" validate:"omitempty,ipv4"`
	Prefix           int    `yaml:"prefix" validate:"min=0,max=32"`
	RangeStart       string `yaml:"range_start,omitempty" validate:"omitempty,ipv4"`
	RangeEnd         string `yaml:"range_end,omitempty" validate:"omitempty,ipv4"`
	DefaultLeaseTime int    `yaml:"default_lease_time" validate:"min=0"`
	MaxLeaseTime     int    `yaml:"max_lease_time" validate:"min=0,gtefield=DefaultLeaseTime"`
	PassDNS          bool   `yaml:"pass_dns"`
}

func (DhcpServerConfig) Kind() ItemKind { return ItemKindDhcpServer }
func (DhcpServerConfig) configItem()    {}

func (c DhcpServerConfig) IsValid() bool {
	if validate.Struct(c) != nil {
		return false
	}
	if !c.Enabled {
		return true
	}
	return c.RouterAddress != "" && c.RangeStart != "" && c.RangeEnd != "" && c.Prefix > 0
}

// AutoNatConfig는 인터페이스 트래픽을 게이트웨이로 마스커레이드하도록 표시합니다
type AutoNatConfig struct {
	Masquerade bool `yaml:"masquerade"`
}

func (AutoNatConfig) Kind() ItemKind { return ItemKindAutoNat }
func (AutoNatConfig) configItem()    {}
func (AutoNatConfig) IsValid() bool  { return true }

// ModemConfig는 셀룰러 모뎀 PPP 설정입니다
type ModemConfig struct {
	APN                  string `yaml:"apn,omitempty"`
	DialString           string `yaml:"dial_string" validate:"required"`
	Username             string `yaml:"username,omitempty"`
	Password             string `yaml:"password,omitempty"`
	Auth                 string `yaml:"auth,omitempty" validate:"omitempty,oneof=none pap chap auto"`
	PersistentConnection bool   `yaml:"persistent_connection"`
	MaxFail              int    `yaml:"max_fail" validate:"min=0"`
	LcpEchoInterval      int    `yaml:"lcp_echo_interval" validate:"min=0"`
}

func (ModemConfig) Kind() ItemKind { return ItemKindModem }
func (ModemConfig) configItem()    {}

func (c ModemConfig) IsValid() bool {
	return validate.Struct(c) == nil
}

// IsEnabled는 주소 할당이 필요한 상태인지 확인합니다
func (s InterfaceStatus) IsEnabled() bool {
	return s == StatusEnabledLAN || s == StatusEnabledWAN
}
