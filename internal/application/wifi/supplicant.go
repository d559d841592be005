// Package wifi는 인터페이스 단위로 hostapd와 wpa_supplicant, 무선 장치를 제어합니다
package wifi

import (
	"context"
	"time"

	"netadmin-agent/internal/application/polling"
	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// Timings는 외부 데몬 상태를 폴링하는 간격과 상한입니다
type Timings struct {
	ConnectionPollInterval time.Duration
	ConnectionTimeout      time.Duration
	ModeSwitchPollInterval time.Duration
	ModeSwitchTimeout      time.Duration
}

// DefaultTimings는 연결 2초/60초, 모드 전환 1초/10초를 반환합니다
func DefaultTimings() Timings {
	return Timings{
		ConnectionPollInterval: constants.ConnectionPollInterval,
		ConnectionTimeout:      constants.ConnectionTimeout,
		ModeSwitchPollInterval: constants.ModeSwitchPollInterval,
		ModeSwitchTimeout:      constants.ModeSwitchTimeout,
	}
}

// supplicantWaiter는 wpa_supplicant 연결 완료와 무선 모드 전환을 기다립니다.
// 시간 초과는 경고로만 남습니다.
type supplicantWaiter struct {
	wpa     interfaces.WpaSupplicantManager
	radio   interfaces.RadioManager
	logger  *logrus.Logger
	timings Timings
}

// waitForConnection은 wpa_state가 COMPLETED가 될 때까지 기다립니다
func (w *supplicantWaiter) waitForConnection(ctx context.Context, iface string, timeout time.Duration) bool {
	completed, err := polling.Until(ctx, w.timings.ConnectionPollInterval, timeout, func(ctx context.Context) (bool, error) {
		state, err := w.wpa.State(ctx, iface)
		if err != nil {
			w.logger.WithError(err).WithField("interface", iface).Debug("wpa_supplicant status not available yet")
			return false, nil
		}
		return state == constants.WpaStateCompleted, nil
	})
	if err != nil {
		w.logger.WithError(err).WithField("interface", iface).Warn("wait for wpa_supplicant connection aborted")
		return false
	}
	if !completed {
		metrics.RecordSoftTimeout("connection")
		w.logger.WithFields(logrus.Fields{
			"interface": iface,
			"timeout":   timeout,
		}).Warn("wpa_supplicant did not reach COMPLETED state")
	}
	return completed
}

// waitForMode는 무선 인터페이스가 주어진 모드를 보고할 때까지 기다립니다
func (w *supplicantWaiter) waitForMode(ctx context.Context, iface string, mode entities.WifiMode) bool {
	switched, err := polling.Until(ctx, w.timings.ModeSwitchPollInterval, w.timings.ModeSwitchTimeout, func(ctx context.Context) (bool, error) {
		current, err := w.radio.Mode(ctx, iface)
		if err != nil {
			w.logger.WithError(err).WithField("interface", iface).Debug("radio mode not available yet")
			return false, nil
		}
		return current == mode, nil
	})
	if err != nil {
		w.logger.WithError(err).WithField("interface", iface).Warn("wait for radio mode aborted")
		return false
	}
	if !switched {
		metrics.RecordSoftTimeout("radio_mode")
		w.logger.WithFields(logrus.Fields{
			"interface": iface,
			"mode":      mode,
		}).Warn("radio did not report the expected mode in time")
	}
	return switched
}

// infraDriver는 저장된 INFRA 설정의 드라이버를 찾고 없으면 기본값을 반환합니다
func infraDriver(cfg *entities.NetworkConfiguration, iface, fallback string) string {
	if ifaceCfg, ok := cfg.Interface(iface); ok {
		if wifiCfg, ok := ifaceCfg.WifiConfigFor(entities.WifiModeInfra); ok && wifiCfg.Driver != "" {
			return wifiCfg.Driver
		}
	}
	return fallback
}
