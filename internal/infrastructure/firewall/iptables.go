// Package firewall applies NAT, port forwarding and open port rules with iptables.
package firewall

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"netadmin-agent/internal/domain/entities"
	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/coreos/go-iptables/iptables"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasttemplate"
)

// Agent-owned chains. Auto NAT chains are rebuilt by ManageFirewall, the
// others by Apply from the stored firewall configuration.
const (
	chainAutoNat        = "NETADMIN-AUTONAT"
	chainAutoNatForward = "NETADMIN-AUTONAT-FWD"
	chainInput          = "NETADMIN-INPUT"
	chainForward        = "NETADMIN-FORWARD"
	chainPrerouting     = "NETADMIN-PREROUTING"
	chainPostrouting    = "NETADMIN-POSTROUTING"

	tableFilter = "filter"
	tableNat    = "nat"
)

type chainLink struct {
	table  string
	parent string
	chain  string
}

// Jump order matters: auto NAT chains are consulted after the configured ones.
var chainLinks = []chainLink{
	{tableFilter, "INPUT", chainInput},
	{tableFilter, "FORWARD", chainAutoNatForward},
	{tableFilter, "FORWARD", chainForward},
	{tableNat, "PREROUTING", chainPrerouting},
	{tableNat, "POSTROUTING", chainAutoNat},
	{tableNat, "POSTROUTING", chainPostrouting},
}

// Rule templates, rendered with fasttemplate and split on whitespace.
const (
	masqueradeTemplate     = "-o {{dst}} -j MASQUERADE"
	forwardOutTemplate     = "-i {{src}} -o {{dst}} -j ACCEPT"
	forwardReturnTemplate  = "-i {{dst}} -o {{src}} -m state --state RELATED,ESTABLISHED -j ACCEPT"
	portForwardDNAT        = "-i {{in}} -p {{proto}} --dport {{in_port}} -j DNAT --to-destination {{addr}}:{{out_port}}"
	portForwardAccept      = "-i {{in}} -o {{out}} -p {{proto}} -d {{addr}} --dport {{out_port}} -j ACCEPT"
	portForwardMasquerade  = "-o {{out}} -p {{proto}} -d {{addr}} --dport {{out_port}} -j MASQUERADE"
	ipForwardSysctlSetting = "net.ipv4.ip_forward=1"
)

// IPTables is the subset of *iptables.IPTables used here.
type IPTables interface {
	ChainExists(table, chain string) (bool, error)
	NewChain(table, chain string) error
	ClearChain(table, chain string) error
	AppendUnique(table, chain string, rulespec ...string) error
	InsertUnique(table, chain string, pos int, rulespec ...string) error
}

// NewSystemIPTables opens the host IPv4 iptables.
func NewSystemIPTables() (IPTables, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, domainErrors.NewInternalError("failed to initialise iptables", err)
	}
	return ipt, nil
}

// IPTablesFirewall implements interfaces.Firewall.
type IPTablesFirewall struct {
	ipt      IPTables
	executor interfaces.CommandExecutor
	logger   *logrus.Logger
	mu       sync.Mutex
}

// NewIPTablesFirewall creates a new IPTablesFirewall.
func NewIPTablesFirewall(ipt IPTables, executor interfaces.CommandExecutor, logger *logrus.Logger) interfaces.Firewall {
	return &IPTablesFirewall{ipt: ipt, executor: executor, logger: logger}
}

// ReplaceAllNatRules rebuilds the auto NAT chains from rules.
func (f *IPTablesFirewall) ReplaceAllNatRules(ctx context.Context, rules []entities.NATRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureChains(); err != nil {
		return err
	}
	if err := f.clear(tableNat, chainAutoNat, tableFilter, chainAutoNatForward); err != nil {
		return err
	}
	for _, rule := range rules {
		if err := f.appendNat(chainAutoNat, chainAutoNatForward, rule); err != nil {
			return err
		}
	}

	f.logger.WithField("rules", len(rules)).Info("auto nat rules replaced")
	return nil
}

// DeleteAllAutoNatRules flushes the auto NAT chains.
func (f *IPTablesFirewall) DeleteAllAutoNatRules(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.clear(tableNat, chainAutoNat, tableFilter, chainAutoNatForward); err != nil {
		return err
	}
	f.logger.Info("auto nat rules deleted")
	return nil
}

// Enable turns on IPv4 forwarding and links the agent chains into the
// built-in ones.
func (f *IPTablesFirewall) Enable(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.executor.Execute(ctx, "sysctl", "-w", ipForwardSysctlSetting); err != nil {
		return domainErrors.NewInternalError("failed to enable ip forwarding", err)
	}
	if err := f.ensureChains(); err != nil {
		return err
	}
	for _, link := range chainLinks {
		if err := f.ipt.InsertUnique(link.table, link.parent, 1, "-j", link.chain); err != nil {
			return domainErrors.NewInternalError(fmt.Sprintf("failed to link %s into %s/%s", link.chain, link.table, link.parent), err)
		}
	}
	return nil
}

// Apply rebuilds the configured chains from cfg.
func (f *IPTablesFirewall) Apply(ctx context.Context, cfg *entities.FirewallConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureChains(); err != nil {
		return err
	}
	if err := f.clear(
		tableFilter, chainInput,
		tableFilter, chainForward,
		tableNat, chainPrerouting,
		tableNat, chainPostrouting,
	); err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	for _, port := range cfg.OpenPorts {
		if err := f.append(tableFilter, chainInput, openPortSpec(port)); err != nil {
			return err
		}
	}
	for _, pf := range cfg.PortForwards {
		values := map[string]interface{}{
			"in":       pf.InboundInterface,
			"out":      pf.OutboundInterface,
			"proto":    pf.Protocol,
			"addr":     pf.Address,
			"in_port":  strconv.Itoa(pf.InPort),
			"out_port": strconv.Itoa(pf.OutPort),
		}
		if err := f.append(tableNat, chainPrerouting, render(portForwardDNAT, values)); err != nil {
			return err
		}
		if err := f.append(tableFilter, chainForward, render(portForwardAccept, values)); err != nil {
			return err
		}
		if pf.Masquerade {
			if err := f.append(tableNat, chainPostrouting, render(portForwardMasquerade, values)); err != nil {
				return err
			}
		}
	}
	for _, nat := range cfg.NATs {
		if err := f.appendNat(chainPostrouting, chainForward, nat); err != nil {
			return err
		}
	}

	f.logger.WithFields(logrus.Fields{
		"open_ports":    len(cfg.OpenPorts),
		"port_forwards": len(cfg.PortForwards),
		"nats":          len(cfg.NATs),
	}).Info("firewall configuration applied")
	return nil
}

func (f *IPTablesFirewall) appendNat(natChain, forwardChain string, rule entities.NATRule) error {
	values := map[string]interface{}{
		"src": rule.SourceInterface,
		"dst": rule.DestinationInterface,
	}

	if rule.Masquerade {
		spec := render(masqueradeTemplate, values)
		if rule.SourceNetwork != "" {
			spec = append([]string{"-s", rule.SourceNetwork}, spec...)
		}
		if rule.Protocol != "" && rule.Protocol != "all" {
			spec = append([]string{"-p", rule.Protocol}, spec...)
		}
		if err := f.append(tableNat, natChain, spec); err != nil {
			return err
		}
	}
	if err := f.append(tableFilter, forwardChain, render(forwardOutTemplate, values)); err != nil {
		return err
	}
	return f.append(tableFilter, forwardChain, render(forwardReturnTemplate, values))
}

func openPortSpec(port entities.OpenPortRule) []string {
	spec := []string{"-p", port.Protocol}
	if port.PermittedNetwork != "" {
		spec = append(spec, "-s", port.PermittedNetwork)
	}
	if port.InboundInterface != "" {
		spec = append(spec, "-i", port.InboundInterface)
	}
	return append(spec, "--dport", strconv.Itoa(port.Port), "-j", "ACCEPT")
}

func (f *IPTablesFirewall) ensureChains() error {
	for _, link := range chainLinks {
		exists, err := f.ipt.ChainExists(link.table, link.chain)
		if err != nil {
			return domainErrors.NewInternalError("failed to inspect chain "+link.chain, err)
		}
		if exists {
			continue
		}
		if err := f.ipt.NewChain(link.table, link.chain); err != nil {
			return domainErrors.NewInternalError("failed to create chain "+link.chain, err)
		}
	}
	return nil
}

// clear flushes (table, chain) pairs.
func (f *IPTablesFirewall) clear(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := f.ipt.ClearChain(pairs[i], pairs[i+1]); err != nil {
			return domainErrors.NewInternalError("failed to flush chain "+pairs[i+1], err)
		}
	}
	return nil
}

func (f *IPTablesFirewall) append(table, chain string, spec []string) error {
	if err := f.ipt.AppendUnique(table, chain, spec...); err != nil {
		return domainErrors.NewInternalError(fmt.Sprintf("failed to append rule to %s/%s: %s", table, chain, strings.Join(spec, " ")), err)
	}
	f.logger.WithFields(logrus.Fields{"table": table, "chain": chain, "rule": spec}).Debug("iptables rule added")
	return nil
}

func render(template string, values map[string]interface{}) []string {
	return strings.Fields(fasttemplate.New(template, "{{", "}}").ExecuteString(values))
}
