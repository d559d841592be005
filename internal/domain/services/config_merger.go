package services

import (
	"fmt"
	"sort"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"

	"github.com/sirupsen/logrus"
)

// InterfaceUpdate는 한 인터페이스에 대해 호출자가 원하는 상태입니다
type InterfaceUpdate struct {
	Name        string
	Kind        entities.InterfaceKind
	MTU         int
	AutoConnect bool

	// MODEM 전용 스칼라 필드
	ModemIdentifier string
	PPPNumber       int

	// Items는 원하는 설정 항목입니다. 빠진 종류는 기존 항목 삭제를 의미합니다
	Items []entities.ConfigItem
}

// 인터페이스 종류별로 병합 대상이 되는 항목 종류
var supportedItemKinds = map[entities.InterfaceKind]map[entities.ItemKind]bool{
	entities.KindEthernet: {
		entities.ItemKindIPv4:       true,
		entities.ItemKindIPv6:       true,
		entities.ItemKindDhcpServer: true,
		entities.ItemKindAutoNat:    true,
	},
	entities.KindWifi: {
		entities.ItemKindIPv4:       true,
		entities.ItemKindIPv6:       true,
		entities.ItemKindWifi:       true,
		entities.ItemKindDhcpServer: true,
		entities.ItemKindAutoNat:    true,
	},
	entities.KindModem: {
		entities.ItemKindIPv4:  true,
		entities.ItemKindIPv6:  true,
		entities.ItemKindModem: true,
	},
}

// ConfigMerger는 원하는 설정 항목을 현재 설정에 병합하는 순수 도메인 서비스입니다
type ConfigMerger struct {
	logger *logrus.Logger
}

// NewConfigMerger는 새로운 ConfigMerger를 생성합니다
func NewConfigMerger(logger *logrus.Logger) *ConfigMerger {
	return &ConfigMerger{logger: logger}
}

// desiredSlots는 종류별로 분류된 원하는 항목과 호출자가 준 순서입니다
type desiredSlots struct {
	items      map[entities.ItemKind]entities.ConfigItem
	order      []entities.ItemKind
	activeMode entities.WifiMode
}

// Validate는 병합 전에 모든 항목의 유효성과 필수 항목 존재를 확인합니다
func (m *ConfigMerger) Validate(update InterfaceUpdate) error {
	_, err := m.classify(update)
	return err
}

func (m *ConfigMerger) classify(update InterfaceUpdate) (*desiredSlots, error) {
	supported, ok := supportedItemKinds[update.Kind]
	if !ok {
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported interface kind %q", update.Kind), nil)
	}

	slots := &desiredSlots{
		items:      make(map[entities.ItemKind]entities.ConfigItem, len(update.Items)),
		activeMode: entities.WifiModeUnknown,
	}
	for i, item := range update.Items {
		if item == nil {
			continue
		}
		kind := item.Kind()
		if !item.IsValid() {
			return nil, errors.NewConfigurationError(fmt.Sprintf("invalid %s configuration at position %d", kind, i), nil)
		}
		if !supported[kind] {
			return nil, errors.NewConfigurationError(fmt.Sprintf("%s configuration is not supported on %s interfaces", kind, update.Kind), nil)
		}
		if _, dup := slots.items[kind]; dup {
			return nil, errors.NewConfigurationError(fmt.Sprintf("duplicate %s configuration", kind), nil)
		}
		slots.items[kind] = item
		slots.order = append(slots.order, kind)
		if wifi, ok := item.(entities.WifiConfig); ok {
			slots.activeMode = wifi.Mode
		}
	}

	_, hasIPv4 := slots.items[entities.ItemKindIPv4]
	_, hasIPv6 := slots.items[entities.ItemKindIPv6]
	if !hasIPv4 && !hasIPv6 {
		return nil, errors.NewRequiredAttributeMissingError("IPv4 or IPv6 configuration")
	}
	if update.Kind == entities.KindWifi {
		if _, ok := slots.items[entities.ItemKindWifi]; !ok {
			return nil, errors.NewRequiredAttributeMissingError("Wi-Fi configuration")
		}
	}
	if update.Kind == entities.KindModem {
		if _, ok := slots.items[entities.ItemKindModem]; !ok {
			return nil, errors.NewRequiredAttributeMissingError("modem configuration")
		}
	}
	return slots, nil
}

// Merge는 current를 복제하여 update를 적용한 새 설정과 변경된 인터페이스 이름 목록을 반환합니다.
// current와 update의 항목은 변경되지 않습니다.
func (m *ConfigMerger) Merge(update InterfaceUpdate, current *entities.NetworkConfiguration) (*entities.NetworkConfiguration, []string, error) {
	slots, err := m.classify(update)
	if err != nil {
		return nil, nil, err
	}

	result := current.Clone()
	result.ModifiedInterfaces = nil

	modified := make(map[string]bool)
	found := false
	for i := range result.Interfaces {
		iface := &result.Interfaces[i]
		if iface.Name != update.Name {
			continue
		}
		found = true
		if iface.Kind != update.Kind {
			return nil, nil, errors.NewConfigurationError(
				fmt.Sprintf("interface %s is %s, not %s", iface.Name, iface.Kind, update.Kind), nil)
		}

		changed := m.applyScalars(iface, update)
		if m.mergeAddresses(iface, slots) {
			changed = true
		}
		if changed {
			modified[iface.Name] = true
		}
	}

	if !found {
		m.logger.WithField("interface", update.Name).Warn("interface not present in current configuration, nothing merged")
	}

	names := make([]string, 0, len(modified))
	for name := range modified {
		names = append(names, name)
	}
	sort.Strings(names)
	return result, names, nil
}

func (m *ConfigMerger) applyScalars(iface *entities.InterfaceConfig, update InterfaceUpdate) bool {
	changed := false
	if iface.MTU != update.MTU {
		iface.MTU = update.MTU
		changed = true
	}
	if iface.AutoConnect != update.AutoConnect {
		iface.AutoConnect = update.AutoConnect
		changed = true
	}
	if update.Kind == entities.KindModem {
		if iface.ModemIdentifier != update.ModemIdentifier {
			iface.ModemIdentifier = update.ModemIdentifier
			changed = true
		}
		if iface.PPPNumber != update.PPPNumber {
			iface.PPPNumber = update.PPPNumber
			changed = true
		}
	}
	return changed
}

// mergeAddresses는 각 AddressConfig의 항목을 슬롯 기준으로 교체/삭제/추가합니다.
// matched는 주소 설정 사이에 공유되므로 새 슬롯은 한 번만 추가됩니다.
func (m *ConfigMerger) mergeAddresses(iface *entities.InterfaceConfig, slots *desiredSlots) bool {
	if len(iface.Addresses) == 0 {
		iface.Addresses = []entities.AddressConfig{{}}
	}

	supported := supportedItemKinds[iface.Kind]
	matched := make(map[entities.ItemKind]bool, len(slots.items))
	changed := false

	for a := range iface.Addresses {
		addr := &iface.Addresses[a]
		newItems := make([]entities.ConfigItem, 0, len(addr.Items)+len(slots.order))

		for _, existing := range addr.Items {
			kind := existing.Kind()
			if !supported[kind] {
				m.logger.WithFields(logrus.Fields{
					"interface": iface.Name,
					"kind":      kind,
				}).Warn("unsupported configuration item carried through")
				newItems = append(newItems, existing)
				continue
			}

			if wifi, ok := existing.(entities.WifiConfig); ok && wifi.Mode != slots.activeMode {
				newItems = append(newItems, existing)
				continue
			}

			desired, present := slots.items[kind]
			if !present {
				changed = true
				continue
			}
			if matched[kind] {
				// 같은 종류의 두 번째 항목은 단일 슬롯 불변식에 따라 제거됩니다
				changed = true
				continue
			}
			matched[kind] = true
			newItems = append(newItems, desired)
			if !entities.ItemsEqual(existing, desired) {
				changed = true
			}
		}

		for _, kind := range slots.order {
			if matched[kind] {
				continue
			}
			matched[kind] = true
			newItems = append(newItems, slots.items[kind])
			changed = true
		}

		addr.Items = newItems

		if iface.Kind == entities.KindWifi && addr.WifiMode != slots.activeMode {
			addr.WifiMode = slots.activeMode
			changed = true
		}
	}

	return changed
}
