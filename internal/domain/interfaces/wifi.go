package interfaces

import (
	"context"

	"netadmin-agent/internal/domain/entities"
)

// HostapdManager는 인터페이스별 hostapd 프로세스를 제어합니다.
// Stop은 실행 중이 아니어도 에러를 반환하지 않습니다.
type HostapdManager interface {
	Start(ctx context.Context, iface string) error
	Stop(ctx context.Context, iface string) error
	IsRunning(ctx context.Context, iface string) (bool, error)
}

// WpaSupplicantManager는 인터페이스별 wpa_supplicant 프로세스를 제어합니다
type WpaSupplicantManager interface {
	// Start는 운영 설정 파일로 wpa_supplicant를 시작합니다
	Start(ctx context.Context, iface string, mode entities.WifiMode, driver string) error

	// StartTemporary는 임시 설정 파일로 wpa_supplicant를 시작합니다
	StartTemporary(ctx context.Context, iface string, mode entities.WifiMode, driver string) error

	// Stop은 인터페이스의 모든 wpa_supplicant 인스턴스를 종료합니다
	Stop(ctx context.Context, iface string) error

	IsRunning(ctx context.Context, iface string) (bool, error)
	IsTemporaryRunning(ctx context.Context, iface string) (bool, error)

	// State는 wpa_cli status의 wpa_state 값을 반환합니다
	State(ctx context.Context, iface string) (string, error)

	// WriteTemporaryConfig는 임시 설정 파일을 작성합니다. cfg가 nil이면 스캔 전용 최소 설정입니다
	WriteTemporaryConfig(ctx context.Context, iface string, cfg *entities.WifiConfig) error
}

// RadioManager는 무선 칩셋의 모드와 커널 모듈을 다룹니다
type RadioManager interface {
	// Mode는 무선 인터페이스가 실제로 보고하는 모드를 반환합니다
	Mode(ctx context.Context, iface string) (entities.WifiMode, error)

	// ReloadKernelModule은 주어진 모드로 드라이버 모듈을 다시 적재합니다
	ReloadKernelModule(ctx context.Context, iface string, mode entities.WifiMode) error

	// SupportedDrivers는 wpa_supplicant 드라이버 후보(nl80211, wext)를 반환합니다
	SupportedDrivers(ctx context.Context, iface string) ([]string, error)
}

// ScanTool은 주변 AP를 스캔합니다
type ScanTool interface {
	Scan(ctx context.Context, iface string) ([]entities.WifiAccessPoint, error)
}
