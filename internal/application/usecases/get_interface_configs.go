package usecases

import (
	"context"
	"fmt"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
)

// GetInterfaceConfigsUseCase는 저장된 인터페이스 설정을 조회합니다
type GetInterfaceConfigsUseCase struct {
	store interfaces.ConfigStore
}

// NewGetInterfaceConfigsUseCase는 새로운 GetInterfaceConfigsUseCase를 생성합니다
func NewGetInterfaceConfigsUseCase(store interfaces.ConfigStore) *GetInterfaceConfigsUseCase {
	return &GetInterfaceConfigsUseCase{store: store}
}

// Execute는 한 인터페이스의 모든 주소 설정 항목을 반환합니다
func (uc *GetInterfaceConfigsUseCase) Execute(ctx context.Context, name string) ([]entities.ConfigItem, error) {
	cfg, err := uc.store.LoadNetwork(ctx)
	if err != nil {
		return nil, errors.NewInternalError("네트워크 설정 조회 실패", err)
	}
	iface, ok := cfg.Interface(name)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("interface %s is not configured", name))
	}
	return iface.Items(), nil
}

// All은 전체 네트워크 설정을 반환합니다
func (uc *GetInterfaceConfigsUseCase) All(ctx context.Context) (*entities.NetworkConfiguration, error) {
	cfg, err := uc.store.LoadNetwork(ctx)
	if err != nil {
		return nil, errors.NewInternalError("네트워크 설정 조회 실패", err)
	}
	return cfg, nil
}
