package interfaces

import (
	"context"

	"netadmin-agent/internal/domain/entities"
)

// LinkManager는 커널 링크 상태를 조회하고 변경합니다
type LinkManager interface {
	// HasAddress는 인터페이스에 IPv4 주소가 할당되어 있는지 확인합니다
	HasAddress(ctx context.Context, name string) (bool, error)

	// IsLinkUp은 링크가 올라와 있는지 확인합니다
	IsLinkUp(ctx context.Context, name string) (bool, error)

	SetLinkUp(ctx context.Context, name string) error
	SetLinkDown(ctx context.Context, name string) error

	// BringUpDeletingAddress는 주소를 지우고 링크를 강제로 올리는 복구 단계입니다
	BringUpDeletingAddress(ctx context.Context, name string) error
}

// DhcpClientManager는 인터페이스의 DHCP 클라이언트를 제어합니다
type DhcpClientManager interface {
	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error
	ReleaseCurrentLease(ctx context.Context, name string) error
}

// DhcpServerManager는 인터페이스에서 동작하는 DHCP 서버를 제어합니다
type DhcpServerManager interface {
	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error
	IsRunning(ctx context.Context, name string) (bool, error)
}

// Firewall은 NAT 및 방화벽 규칙을 적용합니다
type Firewall interface {
	// ReplaceAllNatRules는 자동 NAT 규칙 전체를 주어진 규칙으로 교체합니다
	ReplaceAllNatRules(ctx context.Context, rules []entities.NATRule) error

	// DeleteAllAutoNatRules는 자동 NAT 규칙을 모두 삭제합니다
	DeleteAllAutoNatRules(ctx context.Context) error

	// Enable은 포워딩을 켜고 관리 체인을 연결합니다
	Enable(ctx context.Context) error

	// Apply는 저장된 방화벽 설정(열린 포트, 포트 포워딩, NAT)을 적용합니다
	Apply(ctx context.Context, cfg *entities.FirewallConfiguration) error
}
