package commit

import (
	"context"
	"time"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// Coordinator는 ConfigStore 커밋을 감싸고 비동기 확인 이벤트를 제한된 시간 동안 기다립니다.
// 대기는 읽기-쓰기 일관성을 위한 것이며 시간 초과는 호출자에게 에러로 전달되지 않습니다.
type Coordinator struct {
	store   interfaces.ConfigStore
	logger  *logrus.Logger
	timeout time.Duration

	network  PendingFlag
	firewall PendingFlag

	unsubscribe []func()
}

// NewCoordinator는 새로운 Coordinator를 생성하고 확인 이벤트를 구독합니다.
// timeout이 0이면 기본 30초를 사용합니다.
func NewCoordinator(
	store interfaces.ConfigStore,
	bus interfaces.EventBus,
	logger *logrus.Logger,
	timeout time.Duration,
) *Coordinator {
	if timeout <= 0 {
		timeout = constants.CommitConfirmationTimeout
	}
	c := &Coordinator{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
	c.unsubscribe = append(c.unsubscribe,
		bus.Subscribe(interfaces.TopicNetworkConfigChanged, c.HandleEvent),
		bus.Subscribe(interfaces.TopicFirewallConfigChanged, c.HandleEvent),
	)
	return c
}

// Close는 이벤트 구독을 해제합니다
func (c *Coordinator) Close() {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

// HandleEvent는 토픽에 해당하는 도메인의 대기 플래그를 해제합니다
func (c *Coordinator) HandleEvent(event interfaces.Event) {
	c.logger.WithField("topic", event.Topic).Debug("configuration change event received")

	switch event.Topic {
	case interfaces.TopicNetworkConfigChanged:
		c.network.Clear()
	case interfaces.TopicFirewallConfigChanged:
		c.firewall.Clear()
	}
}

// NetworkPending은 네트워크 커밋 확인을 기다리는 중인지 확인합니다
func (c *Coordinator) NetworkPending() bool {
	return c.network.IsSet()
}

// FirewallPending은 방화벽 커밋 확인을 기다리는 중인지 확인합니다
func (c *Coordinator) FirewallPending() bool {
	return c.firewall.IsSet()
}

// Submit은 변경된 인터페이스 목록을 첨부해 네트워크 설정을 커밋하고 확인을 기다립니다
func (c *Coordinator) Submit(ctx context.Context, modified []string, cfg *entities.NetworkConfiguration) error {
	pending, err := c.CommitNetwork(ctx, modified, cfg)
	if err != nil {
		return err
	}
	return pending.Wait(ctx)
}

// CommitNetwork는 커밋과 체크포인트까지만 수행하고 확인 대기 핸들을 반환합니다.
// 호출자는 저장소 쓰기 잠금을 푼 뒤 Wait를 호출할 수 있습니다.
func (c *Coordinator) CommitNetwork(ctx context.Context, modified []string, cfg *entities.NetworkConfiguration) (*Pending, error) {
	if len(modified) > 0 {
		cfg.ModifiedInterfaces = append([]string(nil), modified...)
	}

	done, generation := c.network.Set()
	if err := c.store.CommitNetwork(ctx, cfg); err != nil {
		c.network.ClearGeneration(generation)
		return nil, errors.NewInternalError("failed to commit network configuration", err)
	}
	if err := c.store.Checkpoint(ctx); err != nil {
		c.network.ClearGeneration(generation)
		return nil, errors.NewInternalError("failed to checkpoint network configuration", err)
	}

	c.logger.WithField("modified_interfaces", modified).Info("network configuration committed, waiting for change event")
	return &Pending{
		coordinator: c,
		domain:      string(interfaces.DomainNetwork),
		flag:        &c.network,
		done:        done,
		generation:  generation,
	}, nil
}

// SubmitFirewall은 방화벽 설정을 커밋하고 확인을 기다립니다.
// 이전 설정과 같더라도 항상 플래그를 올리고 전체 대기 경로를 거칩니다.
func (c *Coordinator) SubmitFirewall(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	done, generation := c.firewall.Set()
	if err := c.store.CommitFirewall(ctx, cfg); err != nil {
		c.firewall.ClearGeneration(generation)
		return errors.NewInternalError("failed to commit firewall configuration", err)
	}
	if err := c.store.Checkpoint(ctx); err != nil {
		c.firewall.ClearGeneration(generation)
		return errors.NewInternalError("failed to checkpoint firewall configuration", err)
	}

	c.logger.Info("firewall configuration committed, waiting for change event")
	return c.await(ctx, string(interfaces.DomainFirewall), &c.firewall, done, generation)
}

// Pending은 커밋 확인 이벤트를 기다리는 핸들입니다
type Pending struct {
	coordinator *Coordinator
	domain      string
	flag        *PendingFlag
	done        <-chan struct{}
	generation  uint64
}

// Wait는 확인 이벤트, 시간 초과, ctx 취소 중 먼저 오는 것까지 기다립니다.
// 시간 초과는 에러가 아닙니다.
func (p *Pending) Wait(ctx context.Context) error {
	return p.coordinator.await(ctx, p.domain, p.flag, p.done, p.generation)
}

// await는 확인 이벤트를 기다립니다. 시간 초과나 취소 시에는 자신의 세대일 때만 플래그를 내립니다
func (c *Coordinator) await(ctx context.Context, domain string, flag *PendingFlag, done <-chan struct{}, generation uint64) error {
	start := time.Now()
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-done:
		elapsed := time.Since(start)
		metrics.RecordCommit(domain, "confirmed", elapsed.Seconds())
		c.logger.WithFields(logrus.Fields{
			"domain":  domain,
			"elapsed": elapsed,
		}).Debug("configuration change confirmed")
		return nil

	case <-timer.C:
		cleared := flag.ClearGeneration(generation)
		metrics.RecordCommit(domain, "timeout", c.timeout.Seconds())
		metrics.RecordSoftTimeout("commit")
		c.logger.WithFields(logrus.Fields{
			"domain":  domain,
			"timeout": c.timeout,
			"cleared": cleared,
		}).Warn("did not receive a configuration change event")
		return nil

	case <-ctx.Done():
		flag.ClearGeneration(generation)
		metrics.RecordCommit(domain, "cancelled", time.Since(start).Seconds())
		return ctx.Err()
	}
}
