package usecases

import (
	"context"
	"time"

	"netadmin-agent/internal/application/commit"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

// Mock 구현체들
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) LoadNetwork(ctx context.Context) (*entities.NetworkConfiguration, error) {
	args := m.Called(ctx)
	if fn, ok := args.Get(0).(func(context.Context) *entities.NetworkConfiguration); ok {
		return fn(ctx), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.NetworkConfiguration), args.Error(1)
}

func (m *MockConfigStore) CommitNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockConfigStore) LoadFirewall(ctx context.Context) (*entities.FirewallConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FirewallConfiguration), args.Error(1)
}

func (m *MockConfigStore) CommitFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockConfigStore) Checkpoint(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockConfigStore) NetworkDefaults(ctx context.Context) (*entities.NetworkConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.NetworkConfiguration), args.Error(1)
}

func (m *MockConfigStore) FirewallDefaults(ctx context.Context) (*entities.FirewallConfiguration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FirewallConfiguration), args.Error(1)
}

type MockFirewall struct {
	mock.Mock
}

func (m *MockFirewall) ReplaceAllNatRules(ctx context.Context, rules []entities.NATRule) error {
	return m.Called(ctx, rules).Error(0)
}

func (m *MockFirewall) DeleteAllAutoNatRules(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockFirewall) Enable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockFirewall) Apply(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

type MockLinkManager struct {
	mock.Mock
}

func (m *MockLinkManager) HasAddress(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkManager) IsLinkUp(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkManager) SetLinkUp(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockLinkManager) SetLinkDown(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockLinkManager) BringUpDeletingAddress(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type MockEnabler struct {
	mock.Mock
}

func (m *MockEnabler) Enable(ctx context.Context, name string, useDhcp bool) error {
	return m.Called(ctx, name, useDhcp).Error(0)
}

// nopBus는 이벤트를 전달하지 않으므로 커밋 대기는 항상 짧은 시간 초과로 끝납니다
type nopBus struct{}

func (nopBus) Publish(interfaces.Event) {}

func (nopBus) Subscribe(string, interfaces.EventHandler) func() { return func() {} }

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newTestCoordinator(store interfaces.ConfigStore) *commit.Coordinator {
	return commit.NewCoordinator(store, nopBus{}, quietLogger(), 10*time.Millisecond)
}
