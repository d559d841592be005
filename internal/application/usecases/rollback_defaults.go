package usecases

import (
	"context"

	"netadmin-agent/internal/application/commit"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// RollbackDefaultsUseCase는 공장 기본 설정 스냅샷으로 되돌립니다
type RollbackDefaultsUseCase struct {
	store       interfaces.ConfigStore
	coordinator *commit.Coordinator
	locks       *ConfigLocks
	logger      *logrus.Logger
}

// NewRollbackDefaultsUseCase는 새로운 RollbackDefaultsUseCase를 생성합니다
func NewRollbackDefaultsUseCase(
	store interfaces.ConfigStore,
	coordinator *commit.Coordinator,
	locks *ConfigLocks,
	logger *logrus.Logger,
) *RollbackDefaultsUseCase {
	return &RollbackDefaultsUseCase{
		store:       store,
		coordinator: coordinator,
		locks:       locks,
		logger:      logger,
	}
}

// RollbackNetwork는 기본 네트워크 설정을 커밋합니다. 모든 인터페이스가 변경된 것으로 취급됩니다.
func (uc *RollbackDefaultsUseCase) RollbackNetwork(ctx context.Context) error {
	pending, err := uc.commitNetworkDefaults(ctx)
	if err != nil {
		return err
	}
	if err := pending.Wait(ctx); err != nil {
		return err
	}
	uc.logger.Info("기본 네트워크 설정으로 복원 완료")
	return nil
}

func (uc *RollbackDefaultsUseCase) commitNetworkDefaults(ctx context.Context) (*commit.Pending, error) {
	unlock := uc.locks.LockSnapshot()
	defer unlock()

	defaults, err := uc.store.NetworkDefaults(ctx)
	if err != nil {
		return nil, errors.NewInternalError("기본 네트워크 설정 조회 실패", err)
	}
	return uc.coordinator.CommitNetwork(ctx, defaults.Names(), defaults)
}

// RollbackFirewall은 기본 방화벽 설정을 커밋합니다
func (uc *RollbackDefaultsUseCase) RollbackFirewall(ctx context.Context) error {
	defaults, err := uc.store.FirewallDefaults(ctx)
	if err != nil {
		return errors.NewInternalError("기본 방화벽 설정 조회 실패", err)
	}
	if err := uc.coordinator.SubmitFirewall(ctx, defaults); err != nil {
		return err
	}
	uc.logger.Info("기본 방화벽 설정으로 복원 완료")
	return nil
}
