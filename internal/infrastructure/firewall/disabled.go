package firewall

import (
	"context"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Disabled is used when the host firewall is managed elsewhere. Every call
// succeeds without touching iptables.
type Disabled struct {
	logger *logrus.Logger
}

// NewDisabled creates a new Disabled firewall.
func NewDisabled(logger *logrus.Logger) interfaces.Firewall {
	return &Disabled{logger: logger}
}

func (d *Disabled) ReplaceAllNatRules(ctx context.Context, rules []entities.NATRule) error {
	d.logger.WithField("rules", len(rules)).Debug("firewall management disabled, skipping auto nat rules")
	return nil
}

func (d *Disabled) DeleteAllAutoNatRules(ctx context.Context) error {
	return nil
}

func (d *Disabled) Enable(ctx context.Context) error {
	return nil
}

func (d *Disabled) Apply(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	d.logger.Debug("firewall management disabled, skipping apply")
	return nil
}
