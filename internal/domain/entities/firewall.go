package entities

// FirewallConfiguration은 방화벽 도메인의 저장 단위입니다
type FirewallConfiguration struct {
	OpenPorts    []OpenPortRule    `yaml:"open_ports,omitempty" json:"open_ports"`
	PortForwards []PortForwardRule `yaml:"port_forwards,omitempty" json:"port_forwards"`
	NATs         []NATRule         `yaml:"nats,omitempty" json:"nats"`
}

// OpenPortRule은 INPUT 체인에서 허용할 포트입니다
type OpenPortRule struct {
	Port             int    `yaml:"port" json:"port" validate:"min=1,max=65535"`
	Protocol         string `yaml:"protocol" json:"protocol" validate:"oneof=tcp udp"`
	PermittedNetwork string `yaml:"permitted_network,omitempty" json:"permitted_network,omitempty" validate:"omitempty,cidrv4"`
	InboundInterface string `yaml:"inbound_interface,omitempty" json:"inbound_interface,omitempty"`
}

// PortForwardRule은 외부 포트를 내부 주소로 전달합니다
type PortForwardRule struct {
	InboundInterface  string `yaml:"inbound_interface" json:"inbound_interface" validate:"required"`
	OutboundInterface string `yaml:"outbound_interface" json:"outbound_interface" validate:"required"`
	Address           string `yaml:"address" json:"address" validate:"required,ipv4"`
	Protocol          string `yaml:"protocol" json:"protocol" validate:"oneof=tcp udp"`
	InPort            int    `yaml:"in_port" json:"in_port" validate:"min=1,max=65535"`
	OutPort           int    `yaml:"out_port" json:"out_port" validate:"min=1,max=65535"`
	Masquerade        bool   `yaml:"masquerade" json:"masquerade"`
}

// NATRule은 소스 인터페이스에서 목적지 인터페이스로 나가는 NAT 규칙입니다
type NATRule struct {
	SourceInterface      string `yaml:"source_interface" json:"source_interface" validate:"required"`
	DestinationInterface string `yaml:"destination_interface" json:"destination_interface" validate:"required"`
	Protocol             string `yaml:"protocol,omitempty" json:"protocol,omitempty" validate:"omitempty,oneof=tcp udp all"`
	SourceNetwork        string `yaml:"source_network,omitempty" json:"source_network,omitempty" validate:"omitempty,cidrv4"`
	Masquerade           bool   `yaml:"masquerade" json:"masquerade"`
}

// Validate는 모든 규칙을 검증합니다
func (f *FirewallConfiguration) Validate() error {
	for _, rule := range f.OpenPorts {
		if err := validate.Struct(rule); err != nil {
			return err
		}
	}
	for _, rule := range f.PortForwards {
		if err := validate.Struct(rule); err != nil {
			return err
		}
	}
	for _, rule := range f.NATs {
		if err := validate.Struct(rule); err != nil {
			return err
		}
	}
	return nil
}

// Clone은 방화벽 설정의 복사본을 반환합니다
func (f *FirewallConfiguration) Clone() *FirewallConfiguration {
	if f == nil {
		return &FirewallConfiguration{}
	}
	return &FirewallConfiguration{
		OpenPorts:    append([]OpenPortRule(nil), f.OpenPorts...),
		PortForwards: append([]PortForwardRule(nil), f.PortForwards...),
		NATs:         append([]NATRule(nil), f.NATs...),
	}
}
