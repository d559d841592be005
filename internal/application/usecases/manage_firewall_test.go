package usecases

import (
	"context"
	"errors"
	"testing"

	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func natConfig() *entities.NetworkConfiguration {
	withNat := func(name string) entities.InterfaceConfig {
		return entities.InterfaceConfig{
			Name: name,
			Kind: entities.KindEthernet,
			Addresses: []entities.AddressConfig{{Items: []entities.ConfigItem{
				staticLAN, entities.AutoNatConfig{Masquerade: true},
			}}},
		}
	}
	return &entities.NetworkConfiguration{Interfaces: []entities.InterfaceConfig{
		withNat("eth1"),
		{Name: "eth0", Kind: entities.KindEthernet, Addresses: []entities.AddressConfig{{Items: []entities.ConfigItem{dhcpWAN}}}},
		withNat("wlan0"),
		withNat("eth1"),
	}}
}

func TestManageFirewallUseCase_Execute(t *testing.T) {
	tests := []struct {
		name       string
		gateway    string
		setupMocks func(*MockConfigStore, *MockFirewall)
		wantError  bool
	}{
		{
			name:    "AutoNat 인터페이스마다 게이트웨이로 나가는 규칙을 순서대로 중복 없이 교체",
			gateway: "eth0",
			setupMocks: func(store *MockConfigStore, fw *MockFirewall) {
				store.On("LoadNetwork", mock.Anything).Return(natConfig(), nil).Once()
				fw.On("ReplaceAllNatRules", mock.Anything, []entities.NATRule{
					{SourceInterface: "eth1", DestinationInterface: "eth0", Masquerade: true},
					{SourceInterface: "wlan0", DestinationInterface: "eth0", Masquerade: true},
				}).Return(nil).Once()
				fw.On("Enable", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:    "게이트웨이가 없으면 자동 NAT 규칙을 모두 삭제",
			gateway: "",
			setupMocks: func(store *MockConfigStore, fw *MockFirewall) {
				fw.On("DeleteAllAutoNatRules", mock.Anything).Return(nil).Once()
				fw.On("Enable", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:    "AutoNat 인터페이스가 없으면 삭제",
			gateway: "eth0",
			setupMocks: func(store *MockConfigStore, fw *MockFirewall) {
				store.On("LoadNetwork", mock.Anything).Return(currentConfig(), nil).Once()
				fw.On("DeleteAllAutoNatRules", mock.Anything).Return(nil).Once()
				fw.On("Enable", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:    "방화벽 활성화 실패는 INTERNAL 에러",
			gateway: "",
			setupMocks: func(store *MockConfigStore, fw *MockFirewall) {
				fw.On("DeleteAllAutoNatRules", mock.Anything).Return(nil).Once()
				fw.On("Enable", mock.Anything).Return(errors.New("iptables: resource busy")).Once()
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockConfigStore)
			fw := new(MockFirewall)
			tt.setupMocks(store, fw)
			uc := NewManageFirewallUseCase(store, fw, newTestCoordinator(store), quietLogger())

			err := uc.Execute(context.Background(), tt.gateway)

			if tt.wantError {
				require.Error(t, err)
				assert.True(t, domainErrors.IsInternalError(err))
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
			fw.AssertExpectations(t)
		})
	}
}

func TestManageFirewallUseCase_Setters(t *testing.T) {
	current := &entities.FirewallConfiguration{
		OpenPorts: []entities.OpenPortRule{{Port: 22, Protocol: "tcp"}},
	}

	t.Run("열린 포트를 바꿔도 다른 규칙은 유지", func(t *testing.T) {
		store := new(MockConfigStore)
		store.On("LoadFirewall", mock.Anything).Return(current, nil).Once()
		store.On("CommitFirewall", mock.Anything, &entities.FirewallConfiguration{
			OpenPorts: []entities.OpenPortRule{{Port: 443, Protocol: "tcp"}},
		}).Return(nil).Once()
		store.On("Checkpoint", mock.Anything).Return(nil).Once()
		uc := NewManageFirewallUseCase(store, new(MockFirewall), newTestCoordinator(store), quietLogger())

		err := uc.SetOpenPorts(context.Background(), []entities.OpenPortRule{{Port: 443, Protocol: "tcp"}})

		assert.NoError(t, err)
		store.AssertExpectations(t)
		assert.Equal(t, 22, current.OpenPorts[0].Port)
	})

	t.Run("같은 설정이어도 항상 커밋", func(t *testing.T) {
		store := new(MockConfigStore)
		store.On("LoadFirewall", mock.Anything).Return(current, nil).Twice()
		store.On("CommitFirewall", mock.Anything, mock.Anything).Return(nil).Twice()
		store.On("Checkpoint", mock.Anything).Return(nil).Twice()
		uc := NewManageFirewallUseCase(store, new(MockFirewall), newTestCoordinator(store), quietLogger())

		require.NoError(t, uc.SetNATs(context.Background(), nil))
		require.NoError(t, uc.SetNATs(context.Background(), nil))
		store.AssertExpectations(t)
	})

	t.Run("잘못된 포트 포워딩 규칙은 설정 에러", func(t *testing.T) {
		store := new(MockConfigStore)
		store.On("LoadFirewall", mock.Anything).Return(current, nil).Once()
		uc := NewManageFirewallUseCase(store, new(MockFirewall), newTestCoordinator(store), quietLogger())

		err := uc.SetPortForwards(context.Background(), []entities.PortForwardRule{{InboundInterface: "eth0", Protocol: "tcp", InPort: 80, OutPort: 80}})

		require.Error(t, err)
		assert.True(t, domainErrors.IsConfigurationError(err))
		store.AssertNotCalled(t, "CommitFirewall", mock.Anything, mock.Anything)
	})

	t.Run("조회", func(t *testing.T) {
		store := new(MockConfigStore)
		store.On("LoadFirewall", mock.Anything).Return(current, nil).Once()
		uc := NewManageFirewallUseCase(store, new(MockFirewall), newTestCoordinator(store), quietLogger())

		cfg, err := uc.Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, current, cfg)
	})
}
