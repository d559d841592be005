package usecases

import (
	"context"

	"netadmin-agent/internal/application/commit"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ManageFirewallUseCase는 자동 NAT 규칙과 방화벽 설정을 관리합니다
type ManageFirewallUseCase struct {
	store       interfaces.ConfigStore
	firewall    interfaces.Firewall
	coordinator *commit.Coordinator
	logger      *logrus.Logger
}

// NewManageFirewallUseCase는 새로운 ManageFirewallUseCase를 생성합니다
func NewManageFirewallUseCase(
	store interfaces.ConfigStore,
	firewall interfaces.Firewall,
	coordinator *commit.Coordinator,
	logger *logrus.Logger,
) *ManageFirewallUseCase {
	return &ManageFirewallUseCase{
		store:       store,
		firewall:    firewall,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Execute는 AutoNat 항목이 있는 인터페이스마다 gateway로 나가는 MASQUERADE 규칙을 만들어 적용하고
// 방화벽을 활성화합니다. gateway가 비어 있으면 자동 NAT 규칙을 모두 지웁니다.
func (uc *ManageFirewallUseCase) Execute(ctx context.Context, gateway string) error {
	rules, err := uc.desiredNatRules(ctx, gateway)
	if err != nil {
		return err
	}

	if len(rules) > 0 {
		if err := uc.firewall.ReplaceAllNatRules(ctx, rules); err != nil {
			return errors.NewInternalError("자동 NAT 규칙 교체 실패", err)
		}
	} else if err := uc.firewall.DeleteAllAutoNatRules(ctx); err != nil {
		return errors.NewInternalError("자동 NAT 규칙 삭제 실패", err)
	}

	if err := uc.firewall.Enable(ctx); err != nil {
		return errors.NewInternalError("방화벽 활성화 실패", err)
	}

	uc.logger.WithFields(logrus.Fields{
		"gateway":   gateway,
		"nat_rules": len(rules),
	}).Info("방화벽 관리 완료")
	return nil
}

func (uc *ManageFirewallUseCase) desiredNatRules(ctx context.Context, gateway string) ([]entities.NATRule, error) {
	if gateway == "" {
		return nil, nil
	}

	cfg, err := uc.store.LoadNetwork(ctx)
	if err != nil {
		return nil, errors.NewInternalError("네트워크 설정 조회 실패", err)
	}

	var rules []entities.NATRule
	seen := make(map[entities.NATRule]bool)
	for _, iface := range cfg.Interfaces {
		if !iface.HasAutoNat() {
			continue
		}
		rule := entities.NATRule{
			SourceInterface:      iface.Name,
			DestinationInterface: gateway,
			Masquerade:           true,
		}
		if seen[rule] {
			continue
		}
		seen[rule] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

// Get은 저장된 방화벽 설정을 반환합니다
func (uc *ManageFirewallUseCase) Get(ctx context.Context) (*entities.FirewallConfiguration, error) {
	cfg, err := uc.store.LoadFirewall(ctx)
	if err != nil {
		return nil, errors.NewInternalError("방화벽 설정 조회 실패", err)
	}
	return cfg, nil
}

// SetOpenPorts는 열린 포트 규칙을 교체하고 커밋합니다
func (uc *ManageFirewallUseCase) SetOpenPorts(ctx context.Context, rules []entities.OpenPortRule) error {
	return uc.update(ctx, func(cfg *entities.FirewallConfiguration) {
		cfg.OpenPorts = rules
	})
}

// SetPortForwards는 포트 포워딩 규칙을 교체하고 커밋합니다
func (uc *ManageFirewallUseCase) SetPortForwards(ctx context.Context, rules []entities.PortForwardRule) error {
	return uc.update(ctx, func(cfg *entities.FirewallConfiguration) {
		cfg.PortForwards = rules
	})
}

// SetNATs는 NAT 규칙을 교체하고 커밋합니다
func (uc *ManageFirewallUseCase) SetNATs(ctx context.Context, rules []entities.NATRule) error {
	return uc.update(ctx, func(cfg *entities.FirewallConfiguration) {
		cfg.NATs = rules
	})
}

func (uc *ManageFirewallUseCase) update(ctx context.Context, apply func(*entities.FirewallConfiguration)) error {
	current, err := uc.store.LoadFirewall(ctx)
	if err != nil {
		return errors.NewInternalError("방화벽 설정 조회 실패", err)
	}

	next := current.Clone()
	apply(next)
	if err := next.Validate(); err != nil {
		return errors.NewConfigurationError("invalid firewall rule", err)
	}

	return uc.coordinator.SubmitFirewall(ctx, next)
}
