package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/infrastructure/store"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Admin은 HTTP로 노출되는 관리 파사드입니다
type Admin interface {
	UpdateEthernetInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error
	UpdateWifiInterfaceConfig(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) error
	UpdateModemInterfaceConfig(ctx context.Context, name, modemIdentifier string, pppNumber int, autoConnect bool, mtu int, items []entities.ConfigItem) error
	GetNetworkInterfaceConfigs(ctx context.Context, name string) ([]entities.ConfigItem, error)
	GetNetworkConfiguration(ctx context.Context) (*entities.NetworkConfiguration, error)
	EnableInterface(ctx context.Context, name string, useDhcp bool) error
	DisableInterface(ctx context.Context, name string) error
	ManageDhcpClient(ctx context.Context, name string, enable bool) error
	ManageDhcpServer(ctx context.Context, name string, enable bool) error
	RenewDhcpLease(ctx context.Context, name string) error
	ManageFirewall(ctx context.Context, gateway string) error
	GetFirewallConfiguration(ctx context.Context) (*entities.FirewallConfiguration, error)
	SetFirewallOpenPortConfiguration(ctx context.Context, rules []entities.OpenPortRule) error
	SetFirewallPortForwardingConfiguration(ctx context.Context, rules []entities.PortForwardRule) error
	SetFirewallNatConfiguration(ctx context.Context, rules []entities.NATRule) error
	GetWifiHotspots(ctx context.Context, name string) (map[string]entities.WifiHotspotInfo, error)
	VerifyWifiCredentials(ctx context.Context, name string, candidate entities.WifiConfig, timeout time.Duration) bool
	GetSupportedWifiDrivers(ctx context.Context, name string) ([]string, error)
	RollbackDefaultConfiguration(ctx context.Context) error
	RollbackDefaultFirewallConfiguration(ctx context.Context) error
}

// Handler는 관리 API 엔드포인트를 처리합니다
type Handler struct {
	admin  Admin
	logger *logrus.Logger
}

// NewHandler는 새로운 Handler를 생성합니다
func NewHandler(admin Admin, logger *logrus.Logger) *Handler {
	return &Handler{admin: admin, logger: logger}
}

// ItemView는 설정 항목 하나의 JSON 표현입니다
type ItemView struct {
	Kind entities.ItemKind     `json:"kind"`
	Spec map[string]interface{} `json:"spec,omitempty"`
}

// InterfaceView는 인터페이스 설정 하나의 JSON 표현입니다
type InterfaceView struct {
	Name            string                 `json:"name"`
	Kind            entities.InterfaceKind `json:"kind"`
	MTU             int                    `json:"mtu,omitempty"`
	AutoConnect     bool                   `json:"auto_connect"`
	ModemIdentifier string                 `json:"modem_identifier,omitempty"`
	PPPNumber       int                    `json:"ppp_number,omitempty"`
	WifiMode        entities.WifiMode      `json:"wifi_mode,omitempty"`
	Items           []ItemView             `json:"items"`
}

// UpdateInterfaceRequest는 PUT /interfaces/{name} 요청 본문입니다
type UpdateInterfaceRequest struct {
	Kind            entities.InterfaceKind   `json:"kind"`
	AutoConnect     bool                     `json:"auto_connect"`
	MTU             int                      `json:"mtu"`
	ModemIdentifier string                   `json:"modem_identifier"`
	PPPNumber       int                      `json:"ppp_number"`
	Items           []map[string]interface{} `json:"items"`
}

// VerifyRequest는 POST /interfaces/{name}/verify 요청 본문입니다
type VerifyRequest struct {
	Config         map[string]interface{} `json:"config"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
}

type toggleRequest struct {
	Enable bool `json:"enable"`
}

type manageFirewallRequest struct {
	Gateway string `json:"gateway"`
}

// GetInterfaces는 저장된 모든 인터페이스 설정을 반환합니다
func (h *Handler) GetInterfaces(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.admin.GetNetworkConfiguration(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	views := make([]InterfaceView, 0, len(cfg.Interfaces))
	for _, iface := range cfg.Interfaces {
		items, err := itemViews(iface.Items())
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		views = append(views, InterfaceView{
			Name:            iface.Name,
			Kind:            iface.Kind,
			MTU:             iface.MTU,
			AutoConnect:     iface.AutoConnect,
			ModemIdentifier: iface.ModemIdentifier,
			PPPNumber:       iface.PPPNumber,
			WifiMode:        selectedMode(iface),
			Items:           items,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// GetInterfaceItems는 인터페이스 하나의 설정 항목을 반환합니다
func (h *Handler) GetInterfaceItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.admin.GetNetworkInterfaceConfigs(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	views, err := itemViews(items)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// UpdateInterface는 인터페이스 설정을 병합하고 커밋합니다
func (h *Handler) UpdateInterface(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdateInterfaceRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	items, err := decodeItems(req.Items)
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	switch req.Kind {
	case entities.KindEthernet:
		err = h.admin.UpdateEthernetInterfaceConfig(ctx, name, req.AutoConnect, req.MTU, items)
	case entities.KindWifi:
		err = h.admin.UpdateWifiInterfaceConfig(ctx, name, req.AutoConnect, req.MTU, items)
	case entities.KindModem:
		err = h.admin.UpdateModemInterfaceConfig(ctx, name, req.ModemIdentifier, req.PPPNumber, req.AutoConnect, req.MTU, items)
	default:
		WriteInvalidRequest(w, fmt.Sprintf("unsupported interface kind %q", req.Kind))
		return
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnableInterface는 인터페이스를 활성화합니다. ?dhcp=true면 DHCP 클라이언트도 시작합니다
func (h *Handler) EnableInterface(w http.ResponseWriter, r *http.Request) {
	useDhcp := false
	if v := r.URL.Query().Get("dhcp"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteInvalidRequest(w, "dhcp must be a boolean")
			return
		}
		useDhcp = parsed
	}
	h.respond(w, h.admin.EnableInterface(r.Context(), chi.URLParam(r, "name"), useDhcp))
}

// DisableInterface는 인터페이스를 비활성화합니다
func (h *Handler) DisableInterface(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.admin.DisableInterface(r.Context(), chi.URLParam(r, "name")))
}

// ManageDhcpClient는 ?enable 값에 따라 DHCP 클라이언트를 시작하거나 중지합니다
func (h *Handler) ManageDhcpClient(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.ManageDhcpClient(r.Context(), chi.URLParam(r, "name"), req.Enable))
}

// ManageDhcpServer는 ?enable 값에 따라 DHCP 서버를 시작하거나 중지합니다
func (h *Handler) ManageDhcpServer(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.ManageDhcpServer(r.Context(), chi.URLParam(r, "name"), req.Enable))
}

// RenewDhcpLease는 DHCP 임대를 갱신합니다
func (h *Handler) RenewDhcpLease(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.admin.RenewDhcpLease(r.Context(), chi.URLParam(r, "name")))
}

// GetHotspots는 스캔한 핫스팟을 SSID 기준 맵으로 반환합니다
func (h *Handler) GetHotspots(w http.ResponseWriter, r *http.Request) {
	hotspots, err := h.admin.GetWifiHotspots(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotspots)
}

// VerifyCredentials는 후보 자격 증명으로 연결을 시도합니다
func (h *Handler) VerifyCredentials(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	items, err := decodeItems([]map[string]interface{}{{"kind": string(entities.ItemKindWifi), "spec": req.Config}})
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	candidate := items[0].(entities.WifiConfig)

	ok := h.admin.VerifyWifiCredentials(r.Context(), chi.URLParam(r, "name"), candidate, time.Duration(req.TimeoutSeconds)*time.Second)
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}

// GetDrivers는 지원되는 wpa_supplicant 드라이버 목록을 반환합니다
func (h *Handler) GetDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.admin.GetSupportedWifiDrivers(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

// GetFirewall은 현재 방화벽 설정을 반환합니다
func (h *Handler) GetFirewall(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.admin.GetFirewallConfiguration(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SetOpenPorts는 개방 포트 규칙을 교체합니다
func (h *Handler) SetOpenPorts(w http.ResponseWriter, r *http.Request) {
	var rules []entities.OpenPortRule
	if err := decodeJSON(r, &rules); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.SetFirewallOpenPortConfiguration(r.Context(), rules))
}

// SetPortForwards는 포트 포워딩 규칙을 교체합니다
func (h *Handler) SetPortForwards(w http.ResponseWriter, r *http.Request) {
	var rules []entities.PortForwardRule
	if err := decodeJSON(r, &rules); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.SetFirewallPortForwardingConfiguration(r.Context(), rules))
}

// SetNATs는 NAT 규칙을 교체합니다
func (h *Handler) SetNATs(w http.ResponseWriter, r *http.Request) {
	var rules []entities.NATRule
	if err := decodeJSON(r, &rules); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.SetFirewallNatConfiguration(r.Context(), rules))
}

// ManageFirewall은 주어진 게이트웨이 방향의 자동 NAT 규칙을 다시 구성합니다
func (h *Handler) ManageFirewall(w http.ResponseWriter, r *http.Request) {
	var req manageFirewallRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	h.respond(w, h.admin.ManageFirewall(r.Context(), req.Gateway))
}

// RollbackNetwork는 네트워크 설정을 공장 기본값으로 되돌립니다
func (h *Handler) RollbackNetwork(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.admin.RollbackDefaultConfiguration(r.Context()))
}

// RollbackFirewall은 방화벽 설정을 공장 기본값으로 되돌립니다
func (h *Handler) RollbackFirewall(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.admin.RollbackDefaultFirewallConfiguration(r.Context()))
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.WithError(err).Debug("관리 작업 실패")
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeItems는 JSON 항목을 YAML로 다시 인코딩해 저장소 코덱으로 파싱합니다
func decodeItems(raw []map[string]interface{}) ([]entities.ConfigItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return store.DecodeItems(data)
}

func itemViews(items []entities.ConfigItem) ([]ItemView, error) {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		spec, err := store.ItemSpec(item)
		if err != nil {
			return nil, err
		}
		views = append(views, ItemView{Kind: item.Kind(), Spec: spec})
	}
	return views, nil
}

func selectedMode(iface entities.InterfaceConfig) entities.WifiMode {
	if iface.Kind != entities.KindWifi {
		return ""
	}
	return iface.SelectedWifiMode()
}
