package dhcp

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/process"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasttemplate"
)

const udhcpdTemplate = `start {{start}}
end {{end}}
interface {{interface}}
pidfile {{pidfile}}
lease_file {{lease_file}}
max_leases {{max_leases}}
auto_time 0
opt subnet {{subnet}}
opt router {{router}}
opt lease {{lease}}
min_lease {{min_lease}}
{{dns}}`

// UdhcpdConfigWriter는 busybox udhcpd 설정 파일을 렌더링합니다
type UdhcpdConfigWriter struct {
	fs        interfaces.FileSystem
	configDir string
	runDir    string
}

// NewUdhcpdConfigWriter는 새로운 UdhcpdConfigWriter를 생성합니다
func NewUdhcpdConfigWriter(fs interfaces.FileSystem, configDir, runDir string) *UdhcpdConfigWriter {
	return &UdhcpdConfigWriter{fs: fs, configDir: configDir, runDir: runDir}
}

// ConfigPath는 iface의 udhcpd 설정 파일 경로를 반환합니다
func (w *UdhcpdConfigWriter) ConfigPath(iface string) string {
	return filepath.Join(w.configDir, fmt.Sprintf("udhcpd-%s.conf", iface))
}

// Write는 iface의 cfg를 렌더링해 기록합니다
func (w *UdhcpdConfigWriter) Write(iface string, cfg entities.DhcpServerConfig) error {
	content, err := RenderUdhcpd(iface, cfg,
		filepath.Join(w.runDir, udhcpdInstance(iface)+".pid"),
		filepath.Join(w.runDir, udhcpdInstance(iface)+".leases"))
	if err != nil {
		return err
	}
	if err := w.fs.MkdirAll(w.configDir, 0755); err != nil {
		return domainErrors.NewInternalError("failed to create config directory "+w.configDir, err)
	}
	path := w.ConfigPath(iface)
	if err := w.fs.WriteFile(path, []byte(content), constants.ConfigFilePermission); err != nil {
		return domainErrors.NewInternalError("failed to write "+path, err)
	}
	return nil
}

// RenderUdhcpd는 udhcpd 설정을 렌더링합니다. PassDNS면 라우터 주소를 DNS 서버로 배포합니다
func RenderUdhcpd(iface string, cfg entities.DhcpServerConfig, pidFile, leaseFile string) (string, error) {
	start := net.ParseIP(cfg.RangeStart).To4()
	end := net.ParseIP(cfg.RangeEnd).To4()
	if start == nil || end == nil || cfg.Prefix <= 0 || cfg.Prefix > 32 {
		return "", domainErrors.NewConfigurationError("invalid dhcp server range on " + iface, nil)
	}
	if ipToUint(end) < ipToUint(start) {
		return "", domainErrors.NewConfigurationError("dhcp server range end precedes start on " + iface, nil)
	}
	maxLeases := ipToUint(end) - ipToUint(start) + 1

	dns := ""
	if cfg.PassDNS {
		dns = "opt dns " + cfg.RouterAddress + "\n"
	}

	return fasttemplate.New(udhcpdTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
		"start":      cfg.RangeStart,
		"end":        cfg.RangeEnd,
		"interface":  iface,
		"pidfile":    pidFile,
		"lease_file": leaseFile,
		"max_leases": strconv.FormatUint(uint64(maxLeases), 10),
		"subnet":     net.IP(net.CIDRMask(cfg.Prefix, 32)).String(),
		"router":     cfg.RouterAddress,
		"lease":      strconv.Itoa(cfg.MaxLeaseTime),
		"min_lease":  strconv.Itoa(cfg.DefaultLeaseTime),
		"dns":        dns,
	}), nil
}

func ipToUint(ip net.IP) uint32 {
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

// UdhcpdManager는 LAN 인터페이스마다 udhcpd 하나를 실행합니다
type UdhcpdManager struct {
	executor   interfaces.CommandExecutor
	fs         interfaces.FileSystem
	supervisor *process.Supervisor
	writer     *UdhcpdConfigWriter
	logger     *logrus.Logger
}

// NewUdhcpdManager는 새로운 UdhcpdManager를 생성합니다
func NewUdhcpdManager(executor interfaces.CommandExecutor, fs interfaces.FileSystem, supervisor *process.Supervisor, writer *UdhcpdConfigWriter, logger *logrus.Logger) interfaces.DhcpServerManager {
	return &UdhcpdManager{executor: executor, fs: fs, supervisor: supervisor, writer: writer, logger: logger}
}

// Enable은 커밋 시 렌더링된 설정으로 udhcpd를 시작합니다. pid 파일 경로는 설정에 포함됩니다
func (m *UdhcpdManager) Enable(ctx context.Context, name string) error {
	conf := m.writer.ConfigPath(name)
	if !m.fs.Exists(conf) {
		return domainErrors.NewInternalError("udhcpd config not found: "+conf, nil)
	}
	if _, err := m.executor.Execute(ctx, "udhcpd", conf); err != nil {
		return domainErrors.NewInternalError("failed to start udhcpd on "+name, err)
	}
	m.logger.WithField("interface", name).Info("DHCP 서버 시작")
	return nil
}

func (m *UdhcpdManager) Disable(ctx context.Context, name string) error {
	if err := m.supervisor.Stop(ctx, udhcpdInstance(name), "udhcpd "+m.writer.ConfigPath(name)); err != nil {
		return domainErrors.NewInternalError("failed to stop udhcpd on "+name, err)
	}
	return nil
}

func (m *UdhcpdManager) IsRunning(ctx context.Context, name string) (bool, error) {
	return m.supervisor.Running(udhcpdInstance(name)), nil
}

func udhcpdInstance(name string) string {
	return "udhcpd-" + name
}
