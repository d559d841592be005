package wifi

import (
	"bufio"
	"context"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const scanTimeout = 20 * time.Second

var (
	bssRegex       = regexp.MustCompile(`^BSS ([0-9a-fA-F:]{17})`)
	hexEscapeRegex = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
)

// IwScanner lists nearby access points with `iw dev <iface> scan`.
type IwScanner struct {
	executor interfaces.CommandExecutor
	logger   *logrus.Logger
}

// NewIwScanner creates a new IwScanner.
func NewIwScanner(executor interfaces.CommandExecutor, logger *logrus.Logger) interfaces.ScanTool {
	return &IwScanner{executor: executor, logger: logger}
}

func (s *IwScanner) Scan(ctx context.Context, iface string) ([]entities.WifiAccessPoint, error) {
	output, err := s.executor.ExecuteWithTimeout(ctx, scanTimeout, "iw", "dev", iface, "scan")
	if err != nil {
		return nil, domainErrors.NewInternalError("iw scan failed on "+iface, err)
	}

	aps := ParseIwScan(string(output))
	s.logger.WithFields(logrus.Fields{
		"interface":     iface,
		"access_points": len(aps),
	}).Debug("iw scan finished")
	return aps, nil
}

// ParseIwScan parses the output of `iw dev <iface> scan`.
func ParseIwScan(output string) []entities.WifiAccessPoint {
	var (
		aps     []entities.WifiAccessPoint
		current *entities.WifiAccessPoint
		ie      string
	)

	flush := func() {
		if current != nil {
			aps = append(aps, *current)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if match := bssRegex.FindStringSubmatch(line); match != nil {
			flush()
			current = &entities.WifiAccessPoint{HardwareAddress: strings.ToUpper(match[1])}
			ie = ""
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		// IE detail lines are nested one level deeper and start with "*"
		if !strings.HasPrefix(trimmed, "*") {
			ie = ""
		}

		switch {
		case strings.HasPrefix(trimmed, "freq:"):
			if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(trimmed, "freq:")), 64); err == nil {
				current.FrequencyMHz = int(f)
			}
		case strings.HasPrefix(trimmed, "signal:"):
			fields := strings.Fields(strings.TrimPrefix(trimmed, "signal:"))
			if len(fields) > 0 {
				if dbm, err := strconv.ParseFloat(fields[0], 64); err == nil {
					current.SignalStrength = int(math.Abs(math.Round(dbm)))
				}
			}
		case strings.HasPrefix(trimmed, "SSID:"):
			current.SSID = decodeSSID(strings.TrimSpace(strings.TrimPrefix(trimmed, "SSID:")))
		case strings.HasPrefix(trimmed, "capability:"):
			current.Capabilities = parseCapabilities(strings.TrimPrefix(trimmed, "capability:"))
		case strings.HasPrefix(trimmed, "RSN:"):
			ie = "RSN"
			applySecurity(current, ie, strings.TrimPrefix(trimmed, "RSN:"))
		case strings.HasPrefix(trimmed, "WPA:"):
			ie = "WPA"
			applySecurity(current, ie, strings.TrimPrefix(trimmed, "WPA:"))
		case ie != "":
			applySecurity(current, ie, trimmed)
		}
	}
	flush()
	return aps
}

func parseCapabilities(raw string) []string {
	var caps []string
	for _, field := range strings.Fields(raw) {
		if strings.HasPrefix(field, "(0x") {
			continue
		}
		caps = append(caps, field)
	}
	return caps
}

func applySecurity(ap *entities.WifiAccessPoint, ie, raw string) {
	item := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "*"))
	key, value, ok := strings.Cut(item, ":")
	if !ok {
		return
	}

	var flags []entities.SecurityFlag
	switch strings.TrimSpace(key) {
	case "Group cipher":
		flags = cipherFlags(value, "GROUP")
	case "Pairwise ciphers":
		flags = cipherFlags(value, "PAIR")
	case "Authentication suites":
		if strings.Contains(value, "PSK") {
			flags = append(flags, entities.SecurityKeyMgmtPSK)
		}
		if strings.Contains(value, "802.1X") {
			flags = append(flags, entities.SecurityKeyMgmt8021X)
		}
	default:
		return
	}

	for _, flag := range flags {
		if ie == "RSN" {
			ap.RSNSecurity = appendFlag(ap.RSNSecurity, flag)
		} else {
			ap.WPASecurity = appendFlag(ap.WPASecurity, flag)
		}
	}
}

func cipherFlags(value, prefix string) []entities.SecurityFlag {
	var flags []entities.SecurityFlag
	for _, cipher := range strings.Fields(value) {
		switch cipher {
		case "CCMP":
			flags = append(flags, entities.SecurityFlag(prefix+"_CCMP"))
		case "TKIP":
			flags = append(flags, entities.SecurityFlag(prefix+"_TKIP"))
		case "WEP-40":
			flags = append(flags, entities.SecurityFlag(prefix+"_WEP40"))
		case "WEP-104":
			flags = append(flags, entities.SecurityFlag(prefix+"_WEP104"))
		}
	}
	return flags
}

func appendFlag(flags []entities.SecurityFlag, flag entities.SecurityFlag) []entities.SecurityFlag {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}

// iw escapes non-printable SSID bytes as \xNN.
func decodeSSID(raw string) string {
	return hexEscapeRegex.ReplaceAllStringFunc(raw, func(m string) string {
		b, err := hex.DecodeString(m[2:])
		if err != nil {
			return m
		}
		return string(b)
	})
}
