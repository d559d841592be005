package usecases

import (
	"context"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// InterfaceEnabler는 인터페이스를 활성화합니다
type InterfaceEnabler interface {
	Enable(ctx context.Context, name string, useDhcp bool) error
}

// ReconcileInterfacesUseCase는 자동 연결 인터페이스 중 링크가 내려가 있거나 주소가 없는 것을 다시 활성화합니다
type ReconcileInterfacesUseCase struct {
	store   interfaces.ConfigStore
	links   interfaces.LinkManager
	enabler InterfaceEnabler
	logger  *logrus.Logger
}

// NewReconcileInterfacesUseCase는 새로운 ReconcileInterfacesUseCase를 생성합니다
func NewReconcileInterfacesUseCase(
	store interfaces.ConfigStore,
	links interfaces.LinkManager,
	enabler InterfaceEnabler,
	logger *logrus.Logger,
) *ReconcileInterfacesUseCase {
	return &ReconcileInterfacesUseCase{
		store:   store,
		links:   links,
		enabler: enabler,
		logger:  logger,
	}
}

// ReconcileInterfacesOutput은 유스케이스의 출력 결과입니다
type ReconcileInterfacesOutput struct {
	CheckedCount int
	EnabledCount int
	FailedCount  int
}

// Execute는 재조정을 한 번 실행합니다
func (uc *ReconcileInterfacesUseCase) Execute(ctx context.Context) (*ReconcileInterfacesOutput, error) {
	cfg, err := uc.store.LoadNetwork(ctx)
	if err != nil {
		return nil, errors.NewInternalError("네트워크 설정 조회 실패", err)
	}

	output := &ReconcileInterfacesOutput{}
	for _, iface := range cfg.Interfaces {
		ipv4, ok := uc.candidate(iface)
		if !ok {
			continue
		}
		output.CheckedCount++

		healthy, err := uc.isHealthy(ctx, iface.Name)
		if err != nil {
			uc.logger.WithError(err).WithField("interface", iface.Name).Warn("링크 상태 조회 실패")
			output.FailedCount++
			continue
		}
		if healthy {
			continue
		}

		if err := uc.enabler.Enable(ctx, iface.Name, ipv4.DHCP); err != nil {
			uc.logger.WithError(err).WithField("interface", iface.Name).Error("인터페이스 재활성화 실패")
			output.FailedCount++
			continue
		}
		output.EnabledCount++
	}

	if output.EnabledCount > 0 || output.FailedCount > 0 {
		uc.logger.WithFields(logrus.Fields{
			"checked": output.CheckedCount,
			"enabled": output.EnabledCount,
			"failed":  output.FailedCount,
		}).Info("인터페이스 재조정 완료")
	}
	return output, nil
}

// candidate는 재조정 대상인지 판단합니다. 모뎀은 PPP 데몬이 관리합니다.
func (uc *ReconcileInterfacesUseCase) candidate(iface entities.InterfaceConfig) (entities.IPv4Config, bool) {
	if iface.Name == entities.LoopbackInterfaceName || !iface.AutoConnect || iface.Kind == entities.KindModem {
		return entities.IPv4Config{}, false
	}
	ipv4, ok := iface.IPv4()
	if !ok || !ipv4.Status.IsEnabled() {
		return entities.IPv4Config{}, false
	}
	return ipv4, true
}

func (uc *ReconcileInterfacesUseCase) isHealthy(ctx context.Context, name string) (bool, error) {
	up, err := uc.links.IsLinkUp(ctx, name)
	if err != nil || !up {
		return false, err
	}
	return uc.links.HasAddress(ctx, name)
}
