package store

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// defaultsVersion는 최초 기동 시 기록되는 공장 기본값 스냅샷 버전입니다
const defaultsVersion = 1

// ConfigStore는 SnapshotRepository 위에 구현된 interfaces.ConfigStore입니다.
// 커밋은 스냅샷 저장까지 동기로 끝나고, 호스트 적용과 변경 이벤트 발행은 비동기로 진행됩니다.
type ConfigStore struct {
	repo    interfaces.SnapshotRepository
	backups interfaces.BackupService
	applier Applier
	bus     interfaces.EventBus
	logger  *logrus.Logger

	// 적용은 커밋 순서대로 하나씩
	applyMu sync.Mutex
	wg      sync.WaitGroup
}

// NewConfigStore는 새로운 ConfigStore를 생성합니다
func NewConfigStore(
	repo interfaces.SnapshotRepository,
	backups interfaces.BackupService,
	applier Applier,
	bus interfaces.EventBus,
	logger *logrus.Logger,
) *ConfigStore {
	return &ConfigStore{
		repo:    repo,
		backups: backups,
		applier: applier,
		bus:     bus,
		logger:  logger,
	}
}

var _ interfaces.ConfigStore = (*ConfigStore)(nil)

// Seed는 도메인에 스냅샷이 하나도 없을 때 기본값을 버전 1 체크포인트로 기록합니다
func (s *ConfigStore) Seed(ctx context.Context, network *entities.NetworkConfiguration, firewall *entities.FirewallConfiguration) error {
	networkPayload, err := EncodeNetwork(network)
	if err != nil {
		return errors.NewInternalError("기본 네트워크 설정 직렬화 실패", err)
	}
	firewallPayload, err := EncodeFirewall(firewall)
	if err != nil {
		return errors.NewInternalError("기본 방화벽 설정 직렬화 실패", err)
	}

	for domain, payload := range map[interfaces.ConfigDomain][]byte{
		interfaces.DomainNetwork:  networkPayload,
		interfaces.DomainFirewall: firewallPayload,
	} {
		_, err := s.repo.Latest(ctx, domain)
		if err == nil {
			continue
		}
		if !errors.IsNotFoundError(err) {
			return err
		}

		saved, err := s.repo.Save(ctx, &interfaces.Snapshot{Domain: domain, Payload: payload, Checkpoint: true})
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"domain":  domain,
			"version": saved.Version,
		}).Info("기본 설정 스냅샷 기록 완료")
	}
	return nil
}

// LoadNetwork는 최신 네트워크 설정을 반환합니다. 스냅샷이 없으면 빈 설정입니다
func (s *ConfigStore) LoadNetwork(ctx context.Context) (*entities.NetworkConfiguration, error) {
	snapshot, err := s.repo.Latest(ctx, interfaces.DomainNetwork)
	if errors.IsNotFoundError(err) {
		return &entities.NetworkConfiguration{}, nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeNetwork(snapshot.Payload)
	if err != nil {
		return nil, errors.NewInternalError("네트워크 스냅샷 파싱 실패", err)
	}
	return cfg, nil
}

// CommitNetwork는 설정을 새 스냅샷으로 저장하고 비동기 적용을 시작합니다
func (s *ConfigStore) CommitNetwork(ctx context.Context, cfg *entities.NetworkConfiguration) error {
	payload, err := EncodeNetwork(cfg)
	if err != nil {
		return errors.NewInternalError("네트워크 설정 직렬화 실패", err)
	}
	saved, err := s.repo.Save(ctx, &interfaces.Snapshot{
		Domain:             interfaces.DomainNetwork,
		Payload:            payload,
		ModifiedInterfaces: cfg.ModifiedInterfaces,
	})
	if err != nil {
		return err
	}

	applied := cfg.Clone()
	s.applyAsync(ctx, saved, interfaces.TopicNetworkConfigChanged, func(ctx context.Context) error {
		return s.applier.ApplyNetwork(ctx, applied)
	})
	return nil
}

// LoadFirewall은 최신 방화벽 설정을 반환합니다
func (s *ConfigStore) LoadFirewall(ctx context.Context) (*entities.FirewallConfiguration, error) {
	snapshot, err := s.repo.Latest(ctx, interfaces.DomainFirewall)
	if errors.IsNotFoundError(err) {
		return &entities.FirewallConfiguration{}, nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeFirewall(snapshot.Payload)
	if err != nil {
		return nil, errors.NewInternalError("방화벽 스냅샷 파싱 실패", err)
	}
	return cfg, nil
}

// CommitFirewall은 규칙을 검증한 뒤 새 스냅샷으로 저장하고 비동기 적용을 시작합니다
func (s *ConfigStore) CommitFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	if cfg == nil {
		cfg = &entities.FirewallConfiguration{}
	}
	if err := cfg.Validate(); err != nil {
		return errors.NewConfigurationError("유효하지 않은 방화벽 규칙", err)
	}
	payload, err := EncodeFirewall(cfg)
	if err != nil {
		return errors.NewInternalError("방화벽 설정 직렬화 실패", err)
	}
	saved, err := s.repo.Save(ctx, &interfaces.Snapshot{Domain: interfaces.DomainFirewall, Payload: payload})
	if err != nil {
		return err
	}

	applied := cfg.Clone()
	s.applyAsync(ctx, saved, interfaces.TopicFirewallConfigChanged, func(ctx context.Context) error {
		return s.applier.ApplyFirewall(ctx, applied)
	})
	return nil
}

// applyAsync는 호출자 ctx가 취소되어도 적용을 끝까지 진행합니다.
// 적용이 실패해도 이벤트는 발행되며 실패는 로그로만 남습니다.
func (s *ConfigStore) applyAsync(ctx context.Context, saved *interfaces.Snapshot, topic string, apply func(context.Context) error) {
	applyCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.applyMu.Lock()
		err := apply(applyCtx)
		s.applyMu.Unlock()

		fields := logrus.Fields{
			"domain":  saved.Domain,
			"version": saved.Version,
		}
		if err != nil {
			s.logger.WithError(err).WithFields(fields).Error("설정 적용 실패")
		} else {
			s.logger.WithFields(fields).Info("설정 적용 완료")
		}

		s.bus.Publish(interfaces.Event{
			Topic: topic,
			Properties: map[string]string{
				"version":             strconv.Itoa(saved.Version),
				"modified_interfaces": strings.Join(saved.ModifiedInterfaces, ","),
			},
		})
	}()
}

// Checkpoint는 각 도메인의 최신 스냅샷을 체크포인트로 표시하고 백업 파일을 남깁니다.
// 백업 실패는 경고로만 기록됩니다.
func (s *ConfigStore) Checkpoint(ctx context.Context) error {
	for _, domain := range []interfaces.ConfigDomain{interfaces.DomainNetwork, interfaces.DomainFirewall} {
		snapshot, err := s.repo.Latest(ctx, domain)
		if errors.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return err
		}
		if snapshot.Checkpoint {
			continue
		}

		if err := s.repo.MarkCheckpoint(ctx, domain, snapshot.Version); err != nil {
			return err
		}
		snapshot.Checkpoint = true

		if err := s.backups.CreateBackup(ctx, snapshot); err != nil {
			s.logger.WithError(err).WithField("domain", domain).Warn("체크포인트 백업 생성 실패")
		}
	}
	return nil
}

// NetworkDefaults는 공장 기본 네트워크 설정을 반환합니다
func (s *ConfigStore) NetworkDefaults(ctx context.Context) (*entities.NetworkConfiguration, error) {
	snapshot, err := s.repo.Version(ctx, interfaces.DomainNetwork, defaultsVersion)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeNetwork(snapshot.Payload)
	if err != nil {
		return nil, errors.NewInternalError("기본 네트워크 스냅샷 파싱 실패", err)
	}
	return cfg, nil
}

// FirewallDefaults는 공장 기본 방화벽 설정을 반환합니다
func (s *ConfigStore) FirewallDefaults(ctx context.Context) (*entities.FirewallConfiguration, error) {
	snapshot, err := s.repo.Version(ctx, interfaces.DomainFirewall, defaultsVersion)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeFirewall(snapshot.Payload)
	if err != nil {
		return nil, errors.NewInternalError("기본 방화벽 스냅샷 파싱 실패", err)
	}
	return cfg, nil
}

// Wait는 진행 중인 비동기 적용이 모두 끝날 때까지 기다립니다
func (s *ConfigStore) Wait() {
	s.wg.Wait()
}

// Ping은 저장소 연결 상태를 확인합니다
func (s *ConfigStore) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
