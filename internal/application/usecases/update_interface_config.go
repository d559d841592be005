package usecases

import (
	"context"
	"time"

	"netadmin-agent/internal/application/commit"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/domain/services"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// UpdateInterfaceConfigUseCase는 인터페이스 설정 항목을 병합하고 변경이 있으면 커밋합니다
type UpdateInterfaceConfigUseCase struct {
	store       interfaces.ConfigStore
	merger      *services.ConfigMerger
	coordinator *commit.Coordinator
	locks       *ConfigLocks
	logger      *logrus.Logger
}

// NewUpdateInterfaceConfigUseCase는 새로운 UpdateInterfaceConfigUseCase를 생성합니다
func NewUpdateInterfaceConfigUseCase(
	store interfaces.ConfigStore,
	merger *services.ConfigMerger,
	coordinator *commit.Coordinator,
	locks *ConfigLocks,
	logger *logrus.Logger,
) *UpdateInterfaceConfigUseCase {
	return &UpdateInterfaceConfigUseCase{
		store:       store,
		merger:      merger,
		coordinator: coordinator,
		locks:       locks,
		logger:      logger,
	}
}

// UpdateInterfaceConfigOutput은 유스케이스의 출력 결과입니다
type UpdateInterfaceConfigOutput struct {
	ModifiedInterfaces []string
	Committed          bool
}

// Execute는 인터페이스 설정 갱신을 실행합니다
func (uc *UpdateInterfaceConfigUseCase) Execute(ctx context.Context, update services.InterfaceUpdate) (out *UpdateInterfaceConfigOutput, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordInterfaceOperation(update.Name, "update", err, time.Since(start).Seconds())
	}()

	// 1. 잠금 전에 입력 검증
	if err := uc.merger.Validate(update); err != nil {
		return nil, err
	}

	unlock := uc.locks.LockInterface(update.Name)
	defer unlock()

	// 2. 읽기-병합-커밋
	pending, modified, err := uc.mergeAndCommit(ctx, update)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		uc.logger.WithField("interface", update.Name).Debug("인터페이스 설정 변경 없음")
		return &UpdateInterfaceConfigOutput{}, nil
	}

	// 3. 확인 이벤트 대기
	if err := pending.Wait(ctx); err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"interface":           update.Name,
		"modified_interfaces": modified,
	}).Info("인터페이스 설정 갱신 완료")

	return &UpdateInterfaceConfigOutput{ModifiedInterfaces: modified, Committed: true}, nil
}

func (uc *UpdateInterfaceConfigUseCase) mergeAndCommit(ctx context.Context, update services.InterfaceUpdate) (*commit.Pending, []string, error) {
	unlock := uc.locks.LockSnapshot()
	defer unlock()

	current, err := uc.store.LoadNetwork(ctx)
	if err != nil {
		return nil, nil, errors.NewInternalError("네트워크 설정 조회 실패", err)
	}

	merged, modified, err := uc.merger.Merge(update, current)
	if err != nil {
		return nil, nil, err
	}
	if len(modified) == 0 {
		return nil, nil, nil
	}

	pending, err := uc.coordinator.CommitNetwork(ctx, modified, merged)
	if err != nil {
		return nil, nil, err
	}
	return pending, modified, nil
}

// UpdateEthernet은 이더넷 인터페이스 설정을 갱신합니다
func (uc *UpdateInterfaceConfigUseCase) UpdateEthernet(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) (*UpdateInterfaceConfigOutput, error) {
	return uc.Execute(ctx, services.InterfaceUpdate{
		Name:        name,
		Kind:        entities.KindEthernet,
		MTU:         mtu,
		AutoConnect: autoConnect,
		Items:       items,
	})
}

// UpdateWifi는 무선 인터페이스 설정을 갱신합니다
func (uc *UpdateInterfaceConfigUseCase) UpdateWifi(ctx context.Context, name string, autoConnect bool, mtu int, items []entities.ConfigItem) (*UpdateInterfaceConfigOutput, error) {
	return uc.Execute(ctx, services.InterfaceUpdate{
		Name:        name,
		Kind:        entities.KindWifi,
		MTU:         mtu,
		AutoConnect: autoConnect,
		Items:       items,
	})
}

// UpdateModem은 모뎀 인터페이스 설정을 갱신합니다
func (uc *UpdateInterfaceConfigUseCase) UpdateModem(ctx context.Context, name, modemIdentifier string, pppNumber int, autoConnect bool, mtu int, items []entities.ConfigItem) (*UpdateInterfaceConfigOutput, error) {
	return uc.Execute(ctx, services.InterfaceUpdate{
		Name:            name,
		Kind:            entities.KindModem,
		MTU:             mtu,
		AutoConnect:     autoConnect,
		ModemIdentifier: modemIdentifier,
		PPPNumber:       pppNumber,
		Items:           items,
	})
}
