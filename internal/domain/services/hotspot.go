package services

import (
	"netadmin-agent/internal/domain/entities"
)

// 2.4GHz ISM 대역 채널 1의 기준 주파수에서 5MHz를 뺀 값
const channelBaseFrequencyMHz = 2407

// FrequencyToChannel은 2.4GHz 대역 주파수를 채널 번호로 변환합니다.
// 5GHz 대역은 올바르게 계산되지 않습니다.
func FrequencyToChannel(frequencyMHz int) int {
	return (frequencyMHz - channelBaseFrequencyMHz) / 5
}

// ClassifySecurity는 WPA/RSN 정보와 capability로 보안 방식을 분류합니다
func ClassifySecurity(ap entities.WifiAccessPoint) entities.WifiSecurity {
	security := entities.WifiSecurityNone
	if len(ap.WPASecurity) > 0 {
		security = entities.WifiSecurityWPA
	}
	if len(ap.RSNSecurity) > 0 {
		if security == entities.WifiSecurityWPA {
			security = entities.WifiSecurityWPAWPA2
		} else {
			security = entities.WifiSecurityWPA2
		}
	}
	if security == entities.WifiSecurityNone {
		for _, capability := range ap.Capabilities {
			if capability == entities.CapabilityPrivacy {
				return entities.WifiSecurityWEP
			}
		}
	}
	return security
}

var (
	pairCipherOrder  = []entities.SecurityFlag{entities.SecurityPairTKIP, entities.SecurityPairCCMP}
	groupCipherOrder = []entities.SecurityFlag{entities.SecurityGroupTKIP, entities.SecurityGroupCCMP}
)

// Ciphers는 분류에 사용된 보안 집합에서 pair/group 암호 목록을 추출합니다
func Ciphers(ap entities.WifiAccessPoint, security entities.WifiSecurity) (pair, group []entities.SecurityFlag) {
	var flags []entities.SecurityFlag
	switch security {
	case entities.WifiSecurityWPAWPA2:
		flags = append(append(flags, ap.WPASecurity...), ap.RSNSecurity...)
	case entities.WifiSecurityWPA:
		flags = ap.WPASecurity
	case entities.WifiSecurityWPA2:
		flags = ap.RSNSecurity
	}

	present := make(map[entities.SecurityFlag]bool, len(flags))
	for _, flag := range flags {
		present[flag] = true
	}

	pair = []entities.SecurityFlag{}
	for _, flag := range pairCipherOrder {
		if present[flag] {
			pair = append(pair, flag)
		}
	}
	group = []entities.SecurityFlag{}
	for _, flag := range groupCipherOrder {
		if present[flag] {
			group = append(group, flag)
		}
	}
	return pair, group
}

type hotspotKey struct {
	ssid    string
	channel int
}

// BuildHotspots는 스캔 결과를 (SSID, 채널) 기준으로 중복 제거하고 분류합니다.
// 숨겨진 SSID는 제외되며 먼저 관측된 항목이 유지됩니다.
func BuildHotspots(aps []entities.WifiAccessPoint) []entities.WifiHotspotInfo {
	seen := make(map[hotspotKey]bool, len(aps))
	hotspots := make([]entities.WifiHotspotInfo, 0, len(aps))

	for _, ap := range aps {
		if ap.SSID == "" {
			continue
		}
		channel := FrequencyToChannel(ap.FrequencyMHz)
		key := hotspotKey{ssid: ap.SSID, channel: channel}
		if seen[key] {
			continue
		}
		seen[key] = true

		mac, err := entities.NormalizeMacAddress(ap.HardwareAddress)
		if err != nil {
			mac = ap.HardwareAddress
		}
		security := ClassifySecurity(ap)
		pair, group := Ciphers(ap, security)

		hotspots = append(hotspots, entities.WifiHotspotInfo{
			SSID:         ap.SSID,
			MacAddress:   mac,
			SignalDBm:    -ap.SignalStrength,
			Channel:      channel,
			FrequencyMHz: ap.FrequencyMHz,
			Security:     security,
			PairCiphers:  pair,
			GroupCiphers: group,
		})
	}
	return hotspots
}

// HotspotsBySSID는 SSID를 키로 하는 맵을 만듭니다. 같은 SSID가 여러 채널에 있으면 첫 항목이 유지됩니다
func HotspotsBySSID(hotspots []entities.WifiHotspotInfo) map[string]entities.WifiHotspotInfo {
	result := make(map[string]entities.WifiHotspotInfo, len(hotspots))
	for _, hotspot := range hotspots {
		if _, exists := result[hotspot.SSID]; !exists {
			result[hotspot.SSID] = hotspot
		}
	}
	return result
}
