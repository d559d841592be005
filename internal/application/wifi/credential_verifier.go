package wifi

import (
	"context"
	"time"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// CredentialVerifier는 후보 Wi-Fi 설정으로 실제 연결을 시도해 자격 증명을 확인합니다.
// 운영 중인 wpa_supplicant는 검증 후 원래 드라이버로 복원됩니다.
type CredentialVerifier struct {
	store      interfaces.ConfigStore
	dhcpClient interfaces.DhcpClientManager
	waiter     *supplicantWaiter
	logger     *logrus.Logger
}

// NewCredentialVerifier는 새로운 CredentialVerifier를 생성합니다
func NewCredentialVerifier(
	store interfaces.ConfigStore,
	dhcpClient interfaces.DhcpClientManager,
	wpa interfaces.WpaSupplicantManager,
	radio interfaces.RadioManager,
	logger *logrus.Logger,
	timings Timings,
) *CredentialVerifier {
	return &CredentialVerifier{
		store:      store,
		dhcpClient: dhcpClient,
		waiter:     &supplicantWaiter{wpa: wpa, radio: radio, logger: logger, timings: timings},
		logger:     logger,
	}
}

// Verify는 timeout 안에 연결이 완료되면 true를 반환합니다. 실패는 에러가 아니라 false입니다.
func (v *CredentialVerifier) Verify(ctx context.Context, name string, candidate entities.WifiConfig, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = v.waiter.timings.ConnectionTimeout
	}

	connected, err := v.verify(ctx, name, candidate, timeout)
	if err != nil {
		v.logger.WithError(err).WithField("interface", name).Error("wifi credential verification failed")
		connected = false
	}

	metrics.RecordCredentialVerification(connected)
	v.logger.WithFields(logrus.Fields{
		"interface": name,
		"ssid":      candidate.SSID,
		"connected": connected,
	}).Info("Wi-Fi 자격 증명 검증 완료")
	return connected
}

func (v *CredentialVerifier) verify(ctx context.Context, name string, candidate entities.WifiConfig, timeout time.Duration) (bool, error) {
	wpa := v.waiter.wpa

	if err := wpa.WriteTemporaryConfig(ctx, name, &candidate); err != nil {
		return false, err
	}

	running, err := wpa.IsRunning(ctx, name)
	if err != nil {
		return false, err
	}
	restart := false
	if running {
		if err := wpa.Stop(ctx, name); err != nil {
			return false, err
		}
		restart = true
	}
	defer v.restore(ctx, name, restart, timeout)

	driver := candidate.Driver
	if driver == "" {
		driver = constants.DefaultSupplicantDriver
	}
	if err := wpa.StartTemporary(ctx, name, entities.WifiModeInfra, driver); err != nil {
		return false, err
	}

	v.waiter.waitForMode(ctx, name, entities.WifiModeInfra)
	return v.waiter.waitForConnection(ctx, name, timeout), nil
}

// restore는 임시 인스턴스를 멈추고, 검증 전에 동작하던 wpa_supplicant를 다시 시작합니다.
// 재연결 대기에는 호출자의 timeout을 그대로 사용합니다.
func (v *CredentialVerifier) restore(ctx context.Context, name string, restart bool, timeout time.Duration) {
	ctx = context.WithoutCancel(ctx)
	wpa := v.waiter.wpa
	log := v.logger.WithField("interface", name)

	running, err := wpa.IsTemporaryRunning(ctx, name)
	if err != nil {
		log.WithError(err).Warn("failed to query temporary wpa_supplicant")
	}
	if running {
		if err := wpa.Stop(ctx, name); err != nil {
			log.WithError(err).Warn("failed to stop temporary wpa_supplicant")
		}
	}

	if !restart {
		return
	}

	driver := constants.DefaultSupplicantDriver
	if cfg, err := v.store.LoadNetwork(ctx); err != nil {
		log.WithError(err).Warn("failed to load configuration, restarting with default driver")
	} else {
		driver = infraDriver(cfg, name, driver)
	}

	if err := wpa.Start(ctx, name, entities.WifiModeInfra, driver); err != nil {
		log.WithError(err).Error("failed to restart wpa_supplicant after verification")
		return
	}
	if !v.waiter.waitForConnection(ctx, name, timeout) {
		return
	}
	if err := v.dhcpClient.ReleaseCurrentLease(ctx, name); err != nil {
		log.WithError(err).Warn("failed to release dhcp lease after verification")
	}
	if err := v.dhcpClient.Enable(ctx, name); err != nil {
		log.WithError(err).Warn("failed to renew dhcp lease after verification")
	}
}
