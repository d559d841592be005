package entities

// WifiMode는 무선 인터페이스의 동작 모드입니다
type WifiMode string

const (
	WifiModeUnknown WifiMode = "unknown"
	WifiModeInfra   WifiMode = "infra"
	WifiModeMaster  WifiMode = "master"
	WifiModeAdhoc   WifiMode = "adhoc"
)

// WifiSecurity는 핫스팟 또는 설정의 보안 분류입니다
type WifiSecurity string

const (
	WifiSecurityNone    WifiSecurity = "none"
	WifiSecurityWEP     WifiSecurity = "wep"
	WifiSecurityWPA     WifiSecurity = "wpa"
	WifiSecurityWPA2    WifiSecurity = "wpa2"
	WifiSecurityWPAWPA2 WifiSecurity = "wpa_wpa2"
)

// SecurityFlag는 스캔 결과의 WPA/RSN IE에서 파싱한 개별 속성입니다
type SecurityFlag string

const (
	SecurityPairTKIP     SecurityFlag = "PAIR_TKIP"
	SecurityPairCCMP     SecurityFlag = "PAIR_CCMP"
	SecurityPairWEP40    SecurityFlag = "PAIR_WEP40"
	SecurityPairWEP104   SecurityFlag = "PAIR_WEP104"
	SecurityGroupTKIP    SecurityFlag = "GROUP_TKIP"
	SecurityGroupCCMP    SecurityFlag = "GROUP_CCMP"
	SecurityGroupWEP40   SecurityFlag = "GROUP_WEP40"
	SecurityGroupWEP104  SecurityFlag = "GROUP_WEP104"
	SecurityKeyMgmtPSK   SecurityFlag = "KEY_MGMT_PSK"
	SecurityKeyMgmt8021X SecurityFlag = "KEY_MGMT_802_1X"
)

// CapabilityPrivacy는 WPA/RSN 정보 없이 암호화를 요구하는 AP의 capability 문자열입니다
const CapabilityPrivacy = "Privacy"

// WifiAccessPoint는 스캔 한 번에서 관측된 AP입니다. 저장되지 않습니다.
type WifiAccessPoint struct {
	SSID            string
	HardwareAddress string
	FrequencyMHz    int
	SignalStrength  int
	WPASecurity     []SecurityFlag
	RSNSecurity     []SecurityFlag
	Capabilities    []string
}

// WifiHotspotInfo는 중복 제거와 보안 분류를 거친 스캔 결과 요약입니다
type WifiHotspotInfo struct {
	SSID         string         `json:"ssid"`
	MacAddress   string         `json:"mac_address"`
	SignalDBm    int            `json:"signal_dbm"`
	Channel      int            `json:"channel"`
	FrequencyMHz int            `json:"frequency_mhz"`
	Security     WifiSecurity   `json:"security"`
	PairCiphers  []SecurityFlag `json:"pair_ciphers"`
	GroupCiphers []SecurityFlag `json:"group_ciphers"`
}
