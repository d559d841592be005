// Package store는 스냅샷 저장소 위에 ConfigStore를 구현합니다.
// 스냅샷은 YAML 문서이며 커밋 시 데몬 설정을 렌더링한 뒤 변경 이벤트를 발행합니다.
package store

import (
	"fmt"

	"netadmin-agent/internal/domain/entities"

	"gopkg.in/yaml.v3"
)

type networkDocument struct {
	Interfaces []interfaceDocument `yaml:"interfaces"`
}

type interfaceDocument struct {
	Name            string                 `yaml:"name"`
	Kind            entities.InterfaceKind `yaml:"kind"`
	MTU             int                    `yaml:"mtu,omitempty"`
	AutoConnect     bool                   `yaml:"auto_connect"`
	ModemIdentifier string                 `yaml:"modem_identifier,omitempty"`
	PPPNumber       int                    `yaml:"ppp_number,omitempty"`
	Addresses       []addressDocument      `yaml:"addresses,omitempty"`
}

type addressDocument struct {
	WifiMode entities.WifiMode `yaml:"wifi_mode,omitempty"`
	Items    []itemDocument    `yaml:"items,omitempty"`
}

// itemDocument는 ConfigItem 하나를 종류 태그와 함께 감싼 문서입니다
type itemDocument struct {
	Kind entities.ItemKind `yaml:"kind"`
	Spec yaml.Node         `yaml:"spec"`
}

type defaultsDocument struct {
	Network  networkDocument                `yaml:"network"`
	Firewall entities.FirewallConfiguration `yaml:"firewall"`
}

// EncodeNetwork는 ModifiedInterfaces를 제외하고 cfg를 직렬화합니다.
// 변경된 인터페이스 목록은 스냅샷과 별도 컬럼에 저장됩니다.
func EncodeNetwork(cfg *entities.NetworkConfiguration) ([]byte, error) {
	doc, err := toNetworkDocument(cfg)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// DecodeNetwork는 네트워크 스냅샷을 파싱합니다
func DecodeNetwork(data []byte) (*entities.NetworkConfiguration, error) {
	var doc networkDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse network configuration: %w", err)
	}
	return fromNetworkDocument(doc)
}

// EncodeFirewall은 방화벽 설정을 직렬화합니다
func EncodeFirewall(cfg *entities.FirewallConfiguration) ([]byte, error) {
	if cfg == nil {
		cfg = &entities.FirewallConfiguration{}
	}
	return yaml.Marshal(cfg)
}

// DecodeFirewall은 방화벽 스냅샷을 파싱합니다
func DecodeFirewall(data []byte) (*entities.FirewallConfiguration, error) {
	var cfg entities.FirewallConfiguration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse firewall configuration: %w", err)
	}
	return &cfg, nil
}

// DecodeDefaults는 네트워크와 방화벽 기본값을 함께 담은 공장 기본값 파일을 파싱합니다
func DecodeDefaults(data []byte) (*entities.NetworkConfiguration, *entities.FirewallConfiguration, error) {
	var doc defaultsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse defaults: %w", err)
	}
	network, err := fromNetworkDocument(doc.Network)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.Firewall.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid default firewall configuration: %w", err)
	}
	return network, &doc.Firewall, nil
}

func toNetworkDocument(cfg *entities.NetworkConfiguration) (networkDocument, error) {
	var doc networkDocument
	if cfg == nil {
		return doc, nil
	}
	for _, iface := range cfg.Interfaces {
		ifaceDoc := interfaceDocument{
			Name:            iface.Name,
			Kind:            iface.Kind,
			MTU:             iface.MTU,
			AutoConnect:     iface.AutoConnect,
			ModemIdentifier: iface.ModemIdentifier,
			PPPNumber:       iface.PPPNumber,
		}
		for _, addr := range iface.Addresses {
			addrDoc := addressDocument{WifiMode: addr.WifiMode}
			for _, item := range addr.Items {
				var spec yaml.Node
				if err := spec.Encode(item); err != nil {
					return doc, fmt.Errorf("failed to encode %s item of %s: %w", item.Kind(), iface.Name, err)
				}
				addrDoc.Items = append(addrDoc.Items, itemDocument{Kind: item.Kind(), Spec: spec})
			}
			ifaceDoc.Addresses = append(ifaceDoc.Addresses, addrDoc)
		}
		doc.Interfaces = append(doc.Interfaces, ifaceDoc)
	}
	return doc, nil
}

func fromNetworkDocument(doc networkDocument) (*entities.NetworkConfiguration, error) {
	cfg := &entities.NetworkConfiguration{}
	for _, ifaceDoc := range doc.Interfaces {
		iface := entities.InterfaceConfig{
			Name:            ifaceDoc.Name,
			Kind:            ifaceDoc.Kind,
			MTU:             ifaceDoc.MTU,
			AutoConnect:     ifaceDoc.AutoConnect,
			ModemIdentifier: ifaceDoc.ModemIdentifier,
			PPPNumber:       ifaceDoc.PPPNumber,
		}
		for _, addrDoc := range ifaceDoc.Addresses {
			addr := entities.AddressConfig{WifiMode: addrDoc.WifiMode}
			for _, itemDoc := range addrDoc.Items {
				item, err := decodeItem(itemDoc)
				if err != nil {
					return nil, fmt.Errorf("interface %s: %w", ifaceDoc.Name, err)
				}
				addr.Items = append(addr.Items, item)
			}
			iface.Addresses = append(iface.Addresses, addr)
		}
		cfg.Interfaces = append(cfg.Interfaces, iface)
	}
	return cfg, nil
}

func decodeItem(doc itemDocument) (entities.ConfigItem, error) {
	switch doc.Kind {
	case entities.ItemKindIPv4:
		return decodeSpec[entities.IPv4Config](doc)
	case entities.ItemKindIPv6:
		return decodeSpec[entities.IPv6Config](doc)
	case entities.ItemKindWifi:
		return decodeSpec[entities.WifiConfig](doc)
	case entities.ItemKindDhcpServer:
		return decodeSpec[entities.DhcpServerConfig](doc)
	case entities.ItemKindAutoNat:
		return decodeSpec[entities.AutoNatConfig](doc)
	case entities.ItemKindModem:
		return decodeSpec[entities.ModemConfig](doc)
	}
	return nil, fmt.Errorf("unknown config item kind %q", doc.Kind)
}

func decodeSpec[T entities.ConfigItem](doc itemDocument) (entities.ConfigItem, error) {
	var item T
	if doc.Spec.Kind == 0 {
		return item, nil
	}
	if err := doc.Spec.Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode %s item: %w", doc.Kind, err)
	}
	return item, nil
}

// DecodeItems는 종류 태그가 붙은 설정 항목 YAML 목록을 파싱합니다
func DecodeItems(data []byte) ([]entities.ConfigItem, error) {
	var docs []itemDocument
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse config items: %w", err)
	}
	items := make([]entities.ConfigItem, 0, len(docs))
	for _, doc := range docs {
		item, err := decodeItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ItemSpec은 항목의 필드를 직렬화 이름 기준 맵으로 반환합니다
func ItemSpec(item entities.ConfigItem) (map[string]interface{}, error) {
	var node yaml.Node
	if err := node.Encode(item); err != nil {
		return nil, err
	}
	spec := map[string]interface{}{}
	if err := node.Decode(&spec); err != nil {
		return nil, err
	}
	return spec, nil
}
