// Package wifi는 호스트 무선 도구를 제어합니다.
// MASTER 모드는 hostapd가, INFRA와 ADHOC 모드는 wpa_supplicant가 담당합니다.
package wifi

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/valyala/fasttemplate"
)

const hostapdTemplate = `interface={{interface}}
driver={{driver}}
ctrl_interface={{ctrl_dir}}
ssid={{ssid}}
hw_mode={{hw_mode}}
channel={{channel}}
ignore_broadcast_ssid={{ignore_broadcast}}
{{extra}}`

const wpaSupplicantTemplate = `ctrl_interface={{ctrl_dir}}
ap_scan={{ap_scan}}
network={
	ssid="{{ssid}}"
	scan_ssid={{scan_ssid}}
	mode={{mode}}
{{network}}}
`

const temporaryWpaSupplicantTemplate = `ctrl_interface={{ctrl_dir}}
ap_scan=1
`

// ConfigWriter는 호스트의 무선 데몬 설정 파일을 렌더링합니다
type ConfigWriter struct {
	fs         interfaces.FileSystem
	hostapdDir string
	wpaDir     string
	runDir     string
}

// NewConfigWriter는 새로운 ConfigWriter를 생성합니다
func NewConfigWriter(fs interfaces.FileSystem, hostapdDir, wpaDir, runDir string) *ConfigWriter {
	return &ConfigWriter{fs: fs, hostapdDir: hostapdDir, wpaDir: wpaDir, runDir: runDir}
}

// HostapdConfigPath는 iface의 hostapd 설정 파일 경로를 반환합니다
func (w *ConfigWriter) HostapdConfigPath(iface string) string {
	return filepath.Join(w.hostapdDir, fmt.Sprintf("hostapd-%s.conf", iface))
}

// WpaConfigPath는 iface의 운영용 wpa_supplicant 설정 파일 경로를 반환합니다
func (w *ConfigWriter) WpaConfigPath(iface string) string {
	return filepath.Join(w.wpaDir, fmt.Sprintf("wpa_supplicant-%s.conf", iface))
}

// TemporaryWpaConfigPath는 스캔과 자격 증명 검증에 쓰는 임시 설정 경로를 반환합니다
func (w *ConfigWriter) TemporaryWpaConfigPath(iface string) string {
	return filepath.Join(w.runDir, fmt.Sprintf("wpa_supplicant-%s-tmp.conf", iface))
}

// CtrlDir은 wpa_supplicant 제어 소켓 디렉토리를 반환합니다
func (w *ConfigWriter) CtrlDir() string {
	return filepath.Join(w.runDir, "wpa_supplicant")
}

// WriteHostapd는 iface의 AP 설정을 기록합니다
func (w *ConfigWriter) WriteHostapd(iface string, cfg entities.WifiConfig) error {
	content, err := RenderHostapd(iface, cfg, filepath.Join(w.runDir, "hostapd"))
	if err != nil {
		return err
	}
	return w.write(w.hostapdDir, w.HostapdConfigPath(iface), content)
}

// WriteWpaSupplicant는 iface의 운영용 스테이션 설정을 기록합니다
func (w *ConfigWriter) WriteWpaSupplicant(iface string, cfg entities.WifiConfig) error {
	content, err := RenderWpaSupplicant(cfg, w.CtrlDir())
	if err != nil {
		return err
	}
	return w.write(w.wpaDir, w.WpaConfigPath(iface), content)
}

// WriteTemporaryWpaSupplicant는 임시 설정을 기록합니다.
// cfg가 nil이면 network 블록 없는 스캔 전용 설정이 됩니다.
func (w *ConfigWriter) WriteTemporaryWpaSupplicant(iface string, cfg *entities.WifiConfig) error {
	var content string
	if cfg == nil {
		content = fasttemplate.New(temporaryWpaSupplicantTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
			"ctrl_dir": w.CtrlDir(),
		})
	} else {
		rendered, err := RenderWpaSupplicant(*cfg, w.CtrlDir())
		if err != nil {
			return err
		}
		content = rendered
	}
	return w.write(w.runDir, w.TemporaryWpaConfigPath(iface), content)
}

func (w *ConfigWriter) write(dir, path, content string) error {
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return domainErrors.NewInternalError("failed to create config directory "+dir, err)
	}
	if err := w.fs.WriteFile(path, []byte(content), constants.SecretFilePermission); err != nil {
		return domainErrors.NewInternalError("failed to write "+path, err)
	}
	return nil
}

// RenderHostapd는 MASTER 모드 Wi-Fi 설정으로 hostapd 설정을 렌더링합니다
func RenderHostapd(iface string, cfg entities.WifiConfig, ctrlDir string) (string, error) {
	if cfg.Mode != entities.WifiModeMaster {
		return "", domainErrors.NewConfigurationError(fmt.Sprintf("hostapd requires master mode, got %s", cfg.Mode), nil)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = constants.DriverNL80211
	}
	channel := 6
	if len(cfg.Channels) > 0 {
		channel = cfg.Channels[0]
	}
	hwMode := cfg.HardwareMode
	var extra []string
	switch hwMode {
	case "":
		hwMode = "g"
	case "n":
		hwMode = "g"
		extra = append(extra, "ieee80211n=1", "wmm_enabled=1")
	}
	ignoreBroadcast := "0"
	if !cfg.Broadcast {
		ignoreBroadcast = "1"
	}

	security, err := hostapdSecurity(cfg)
	if err != nil {
		return "", err
	}
	extra = append(extra, security...)

	return fasttemplate.New(hostapdTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
		"interface":        iface,
		"driver":           driver,
		"ctrl_dir":         ctrlDir,
		"ssid":             cfg.SSID,
		"hw_mode":          hwMode,
		"channel":          strconv.Itoa(channel),
		"ignore_broadcast": ignoreBroadcast,
		"extra":            joinLines(extra),
	}), nil
}

func hostapdSecurity(cfg entities.WifiConfig) ([]string, error) {
	switch cfg.Security {
	case entities.WifiSecurityNone, "":
		return nil, nil
	case entities.WifiSecurityWEP:
		return []string{"wep_default_key=0", "wep_key0=" + wepKey(cfg.Passphrase)}, nil
	}

	var lines []string
	switch cfg.Security {
	case entities.WifiSecurityWPA:
		lines = append(lines, "wpa=1", "wpa_pairwise="+cipherList(cfg.PairwiseCiphers, "TKIP"))
	case entities.WifiSecurityWPA2:
		lines = append(lines, "wpa=2", "rsn_pairwise="+cipherList(cfg.PairwiseCiphers, "CCMP"))
	case entities.WifiSecurityWPAWPA2:
		pairwise := cipherList(cfg.PairwiseCiphers, "CCMP TKIP")
		lines = append(lines, "wpa=3", "wpa_pairwise="+pairwise, "rsn_pairwise="+pairwise)
	default:
		return nil, domainErrors.NewConfigurationError("unsupported wifi security " + string(cfg.Security), nil)
	}
	lines = append(lines, "wpa_key_mgmt=WPA-PSK")
	if isHexPSK(cfg.Passphrase) {
		lines = append(lines, "wpa_psk="+cfg.Passphrase)
	} else {
		lines = append(lines, "wpa_passphrase="+cfg.Passphrase)
	}
	return lines, nil
}

// RenderWpaSupplicant는 INFRA 또는 ADHOC 모드 Wi-Fi 설정으로 wpa_supplicant 설정을 렌더링합니다
func RenderWpaSupplicant(cfg entities.WifiConfig, ctrlDir string) (string, error) {
	mode := "0"
	apScan := "1"
	var network []string
	switch cfg.Mode {
	case entities.WifiModeInfra:
	case entities.WifiModeAdhoc:
		mode = "1"
		apScan = "2"
		if len(cfg.Channels) > 0 {
			network = append(network, "frequency="+strconv.Itoa(2407+5*cfg.Channels[0]))
		}
	default:
		return "", domainErrors.NewConfigurationError(fmt.Sprintf("wpa_supplicant does not support %s mode", cfg.Mode), nil)
	}

	security, err := wpaSecurity(cfg)
	if err != nil {
		return "", err
	}
	network = append(network, security...)

	scanSSID := "0"
	if !cfg.Broadcast {
		scanSSID = "1"
	}

	var block strings.Builder
	for _, line := range network {
		block.WriteString("\t" + line + "\n")
	}

	return fasttemplate.New(wpaSupplicantTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
		"ctrl_dir":  ctrlDir,
		"ap_scan":   apScan,
		"ssid":      cfg.SSID,
		"scan_ssid": scanSSID,
		"mode":      mode,
		"network":   block.String(),
	}), nil
}

func wpaSecurity(cfg entities.WifiConfig) ([]string, error) {
	var proto string
	switch cfg.Security {
	case entities.WifiSecurityNone, "":
		return []string{"key_mgmt=NONE"}, nil
	case entities.WifiSecurityWEP:
		return []string{"key_mgmt=NONE", "wep_key0=" + wepKey(cfg.Passphrase), "wep_tx_keyidx=0"}, nil
	case entities.WifiSecurityWPA:
		proto = "WPA"
	case entities.WifiSecurityWPA2:
		proto = "RSN"
	case entities.WifiSecurityWPAWPA2:
		proto = "WPA RSN"
	default:
		return nil, domainErrors.NewConfigurationError("unsupported wifi security " + string(cfg.Security), nil)
	}

	psk := strconv.Quote(cfg.Passphrase)
	if isHexPSK(cfg.Passphrase) {
		psk = cfg.Passphrase
	}
	lines := []string{"key_mgmt=WPA-PSK", "proto=" + proto, "psk=" + psk}
	if cfg.PairwiseCiphers != "" {
		lines = append(lines, "pairwise="+cipherList(cfg.PairwiseCiphers, ""))
	}
	if cfg.GroupCiphers != "" {
		lines = append(lines, "group="+cipherList(cfg.GroupCiphers, ""))
	}
	return lines, nil
}

// cipherList는 CCMP_TKIP를 두 데몬이 받는 공백 구분 형식으로 바꿉니다
func cipherList(ciphers, fallback string) string {
	if ciphers == "" {
		return fallback
	}
	return strings.ReplaceAll(ciphers, "_", " ")
}

// ASCII WEP 키는 따옴표로 감싸고 16진수 키는 그대로 씁니다
func wepKey(key string) string {
	if len(key) == 10 || len(key) == 26 {
		if _, err := hex.DecodeString(key); err == nil {
			return key
		}
	}
	return strconv.Quote(key)
}

func isHexPSK(psk string) bool {
	if len(psk) != 64 {
		return false
	}
	_, err := hex.DecodeString(psk)
	return err == nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
