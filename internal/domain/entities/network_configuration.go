package entities

// NetworkConfiguration은 원자적으로 저장되는 네트워크 설정 루트 집합입니다
type NetworkConfiguration struct {
	Interfaces []InterfaceConfig

	// ModifiedInterfaces는 커밋 시 재시작 범위를 제한하기 위해 첨부됩니다
	ModifiedInterfaces []string
}

// Clone은 깊은 복사본을 반환합니다
func (n *NetworkConfiguration) Clone() *NetworkConfiguration {
	if n == nil {
		return &NetworkConfiguration{}
	}
	clone := &NetworkConfiguration{}
	if n.Interfaces != nil {
		clone.Interfaces = make([]InterfaceConfig, len(n.Interfaces))
		for i, iface := range n.Interfaces {
			clone.Interfaces[i] = iface.Clone()
		}
	}
	if len(n.ModifiedInterfaces) > 0 {
		clone.ModifiedInterfaces = append([]string(nil), n.ModifiedInterfaces...)
	}
	return clone
}

// Interface는 이름으로 인터페이스 설정을 찾습니다
func (n *NetworkConfiguration) Interface(name string) (InterfaceConfig, bool) {
	if n == nil {
		return InterfaceConfig{}, false
	}
	for _, iface := range n.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return InterfaceConfig{}, false
}

// Names는 인터페이스 이름을 저장 순서대로 반환합니다
func (n *NetworkConfiguration) Names() []string {
	names := make([]string, 0, len(n.Interfaces))
	for _, iface := range n.Interfaces {
		names = append(names, iface.Name)
	}
	return names
}
