package interfaces

import (
	"context"
	"time"

	"netadmin-agent/internal/domain/entities"
)

// ConfigDomain은 스냅샷이 속한 설정 도메인입니다
type ConfigDomain string

const (
	DomainNetwork  ConfigDomain = "network"
	DomainFirewall ConfigDomain = "firewall"
)

// Snapshot은 저장소에 기록된 설정의 한 버전입니다
type Snapshot struct {
	ID                 int64
	Domain             ConfigDomain
	Version            int
	Payload            []byte
	ModifiedInterfaces []string
	Checkpoint         bool
	CreatedAt          time.Time
}

// SnapshotRepository는 버전별 설정 스냅샷 저장소입니다
type SnapshotRepository interface {
	// Save는 다음 버전 번호로 스냅샷을 저장하고 저장된 스냅샷을 반환합니다
	Save(ctx context.Context, snapshot *Snapshot) (*Snapshot, error)

	// Latest는 도메인의 최신 스냅샷을 조회합니다. 없으면 NOT_FOUND를 반환합니다
	Latest(ctx context.Context, domain ConfigDomain) (*Snapshot, error)

	// Version은 특정 버전의 스냅샷을 조회합니다
	Version(ctx context.Context, domain ConfigDomain, version int) (*Snapshot, error)

	// MarkCheckpoint는 스냅샷을 체크포인트로 표시합니다
	MarkCheckpoint(ctx context.Context, domain ConfigDomain, version int) error

	// Ping은 저장소 연결 상태를 확인합니다
	Ping(ctx context.Context) error
}

// ConfigStore는 네트워크/방화벽 설정의 권위 있는 저장소입니다.
// Commit은 하위 데몬 재설정을 비동기로 트리거하고 완료 후 변경 이벤트를 발행합니다.
type ConfigStore interface {
	LoadNetwork(ctx context.Context) (*entities.NetworkConfiguration, error)
	CommitNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error
	LoadFirewall(ctx context.Context) (*entities.FirewallConfiguration, error)
	CommitFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error
	Checkpoint(ctx context.Context) error

	// 공장 기본값 (각 도메인의 첫 번째 스냅샷)
	NetworkDefaults(ctx context.Context) (*entities.NetworkConfiguration, error)
	FirewallDefaults(ctx context.Context) (*entities.FirewallConfiguration, error)
}

// BackupService는 체크포인트 시점의 스냅샷을 파일로 보관합니다
type BackupService interface {
	CreateBackup(ctx context.Context, snapshot *Snapshot) error
	LatestBackup(ctx context.Context, domain ConfigDomain) (string, error)
}
