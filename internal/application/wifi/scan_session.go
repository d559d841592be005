package wifi

import (
	"context"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/domain/services"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// ScanSession은 주변 핫스팟을 스캔합니다.
// AP(MASTER) 모드에서는 임시 INFRA 세션을 열고, 스캔이 끝나면 항상 원래 모드로 되돌립니다.
type ScanSession struct {
	store   interfaces.ConfigStore
	radio   interfaces.RadioManager
	scanner interfaces.ScanTool
	waiter  *supplicantWaiter
	logger  *logrus.Logger
}

// NewScanSession은 새로운 ScanSession을 생성합니다
func NewScanSession(
	store interfaces.ConfigStore,
	radio interfaces.RadioManager,
	wpa interfaces.WpaSupplicantManager,
	scanner interfaces.ScanTool,
	logger *logrus.Logger,
	timings Timings,
) *ScanSession {
	return &ScanSession{
		store:   store,
		radio:   radio,
		scanner: scanner,
		waiter:  &supplicantWaiter{wpa: wpa, radio: radio, logger: logger, timings: timings},
		logger:  logger,
	}
}

// Scan은 중복이 제거된 핫스팟 목록을 반환합니다
func (s *ScanSession) Scan(ctx context.Context, name string) (hotspots []entities.WifiHotspotInfo, err error) {
	defer func() {
		metrics.RecordScan(name, len(hotspots), err)
	}()

	cfg, err := s.store.LoadNetwork(ctx)
	if err != nil {
		return nil, errors.NewInternalError("scan operation has failed", err)
	}

	mode := entities.WifiModeUnknown
	if ifaceCfg, ok := cfg.Interface(name); ok {
		mode = ifaceCfg.SelectedWifiMode()
	}

	if mode == entities.WifiModeMaster {
		release, err := s.acquireInfraSession(ctx, name, infraDriver(cfg, name, constants.DefaultSupplicantDriver))
		defer release()
		if err != nil {
			return nil, errors.NewInternalError("scan operation has failed", err)
		}
	}

	aps, err := s.scanner.Scan(ctx, name)
	if err != nil {
		return nil, errors.NewInternalError("scan operation has failed", err)
	}

	hotspots = services.BuildHotspots(aps)
	s.logger.WithFields(logrus.Fields{
		"interface":    name,
		"access_point": len(aps),
		"hotspots":     len(hotspots),
	}).Debug("무선 스캔 완료")
	return hotspots, nil
}

// Hotspots는 스캔 결과를 SSID 기준 맵으로 반환합니다
func (s *ScanSession) Hotspots(ctx context.Context, name string) (map[string]entities.WifiHotspotInfo, error) {
	hotspots, err := s.Scan(ctx, name)
	if err != nil {
		return nil, err
	}
	return services.HotspotsBySSID(hotspots), nil
}

// acquireInfraSession은 드라이버를 INFRA 모드로 다시 적재하고 스캔 전용 wpa_supplicant를 띄웁니다.
// 반환된 release는 실패한 경우에도 호출해야 합니다.
func (s *ScanSession) acquireInfraSession(ctx context.Context, name, driver string) (func(), error) {
	release := func() {
		restoreCtx := context.WithoutCancel(ctx)
		running, err := s.waiter.wpa.IsTemporaryRunning(restoreCtx, name)
		if err != nil {
			s.logger.WithError(err).WithField("interface", name).Warn("failed to query temporary wpa_supplicant")
		}
		if running {
			if err := s.waiter.wpa.Stop(restoreCtx, name); err != nil {
				s.logger.WithError(err).WithField("interface", name).Warn("failed to stop temporary wpa_supplicant")
			}
		}
		if err := s.radio.ReloadKernelModule(restoreCtx, name, entities.WifiModeMaster); err != nil {
			s.logger.WithError(err).WithField("interface", name).Error("failed to restore access point mode after scan")
		}
	}

	if err := s.radio.ReloadKernelModule(ctx, name, entities.WifiModeInfra); err != nil {
		return release, err
	}
	if err := s.waiter.wpa.WriteTemporaryConfig(ctx, name, nil); err != nil {
		return release, err
	}
	if err := s.waiter.wpa.StartTemporary(ctx, name, entities.WifiModeInfra, driver); err != nil {
		return release, err
	}
	s.waiter.waitForMode(ctx, name, entities.WifiModeInfra)
	return release, nil
}
