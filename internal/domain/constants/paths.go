package constants

import "time"

// 시스템 경로 상수들
const (
	// 데몬 설정 디렉토리
	DefaultHostapdConfigDir = "/etc/hostapd"
	DefaultWpaConfigDir     = "/etc/wpa_supplicant"
	DefaultDhcpdConfigDir   = "/etc"
	DefaultRunDir           = "/var/run/netadmin"

	// 스냅샷 저장소 기본 경로
	DefaultSQLitePath = "/var/lib/netadmin/snapshots.db"
	DefaultBackupDir  = "/var/lib/netadmin/backups"

	// 시스템 네트워크 경로
	SysClassNet = "/sys/class/net"
)

// 파일 권한
const (
	ConfigFilePermission = 0644
	SecretFilePermission = 0600
)

// 커밋 확인 대기
const (
	CommitConfirmationTimeout = 30 * time.Second
)

// Wi-Fi 폴링 간격과 상한
const (
	ConnectionPollInterval  = 2 * time.Second
	ConnectionTimeout       = 60 * time.Second
	ModeSwitchPollInterval  = 1 * time.Second
	ModeSwitchTimeout       = 10 * time.Second
	WpaStateCompleted       = "COMPLETED"
	DefaultSupplicantDriver = "nl80211"
)

// 드라이버 이름
const (
	DriverNL80211 = "nl80211"
	DriverWext    = "wext"
)
