package dhcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/network"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

const (
	defaultLeaseTime    = 60 * time.Second
	defaultRenewalTime  = 30 * time.Second
	renewalRetryBackoff = 30 * time.Second
)

// LeaseClient performs the DHCPv4 exchanges for one interface.
type LeaseClient interface {
	Request(ctx context.Context, iface string) (*nclient4.Lease, error)
	Release(iface string, lease *nclient4.Lease) error
}

type nclient4LeaseClient struct {
	timeout time.Duration
}

// NewLeaseClient returns a LeaseClient backed by nclient4 raw sockets.
func NewLeaseClient(timeout time.Duration) LeaseClient {
	return &nclient4LeaseClient{timeout: timeout}
}

// Request performs the DISCOVER/OFFER/REQUEST/ACK sequence.
func (c *nclient4LeaseClient) Request(ctx context.Context, iface string) (*nclient4.Lease, error) {
	client, err := nclient4.New(iface, nclient4.WithTimeout(c.timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create DHCP client: %w", err)
	}
	defer client.Close()

	lease, err := client.Request(ctx)
	if err != nil {
		return nil, fmt.Errorf("DHCP lease request failed: %w", err)
	}
	return lease, nil
}

func (c *nclient4LeaseClient) Release(iface string, lease *nclient4.Lease) error {
	client, err := nclient4.New(iface, nclient4.WithTimeout(c.timeout))
	if err != nil {
		return fmt.Errorf("failed to create DHCP client: %w", err)
	}
	defer client.Close()
	return client.Release(lease)
}

type binding struct {
	lease  *nclient4.Lease
	cancel context.CancelFunc
	done   chan struct{}
}

// NativeClientManager runs an in-process DHCP client per interface and applies
// leases over netlink.
type NativeClientManager struct {
	leases LeaseClient
	nl     network.Netlink
	logger *logrus.Logger

	mu       sync.Mutex
	bindings map[string]*binding
}

// NewNativeClientManager creates a new NativeClientManager.
func NewNativeClientManager(leases LeaseClient, nl network.Netlink, logger *logrus.Logger) *NativeClientManager {
	return &NativeClientManager{
		leases:   leases,
		nl:       nl,
		logger:   logger,
		bindings: make(map[string]*binding),
	}
}

var _ interfaces.DhcpClientManager = (*NativeClientManager)(nil)

// Enable acquires a lease, applies it and keeps renewing it in the background.
func (m *NativeClientManager) Enable(ctx context.Context, name string) error {
	m.stop(name)

	lease, err := m.leases.Request(ctx, name)
	if err != nil {
		return domainErrors.NewInternalError("failed to obtain dhcp lease on "+name, err)
	}
	if err := m.apply(name, lease.ACK); err != nil {
		return err
	}

	renewCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b := &binding{lease: lease, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.bindings[name] = b
	m.mu.Unlock()

	go m.renew(renewCtx, name, b)
	return nil
}

// Disable stops renewing; the address stays until the lease expires.
func (m *NativeClientManager) Disable(ctx context.Context, name string) error {
	m.stop(name)
	return nil
}

// ReleaseCurrentLease sends DHCPRELEASE and removes the leased address.
func (m *NativeClientManager) ReleaseCurrentLease(ctx context.Context, name string) error {
	b := m.stop(name)
	if b == nil {
		m.logger.WithField("interface", name).Debug("no dhcp lease to release")
		return nil
	}

	if err := m.leases.Release(name, b.lease); err != nil {
		return domainErrors.NewInternalError("failed to release lease on "+name, err)
	}

	link, err := m.nl.LinkByName(name)
	if err != nil {
		return domainErrors.NewInternalError("link not found: "+name, err)
	}
	if err := m.nl.AddrDel(link, &netlink.Addr{IPNet: leaseNet(b.lease.ACK)}); err != nil {
		m.logger.WithError(err).WithField("interface", name).Warn("failed to remove released address")
	}

	m.logger.WithField("interface", name).Info("dhcp lease released")
	return nil
}

// Close stops every renewal loop.
func (m *NativeClientManager) Close() {
	m.mu.Lock()
	names := make([]string, 0, len(m.bindings))
	for name := range m.bindings {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		m.stop(name)
	}
}

func (m *NativeClientManager) stop(name string) *binding {
	m.mu.Lock()
	b, ok := m.bindings[name]
	delete(m.bindings, name)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	b.cancel()
	<-b.done
	return b
}

func (m *NativeClientManager) renew(ctx context.Context, name string, b *binding) {
	defer close(b.done)
	log := m.logger.WithField("interface", name)

	timer := time.NewTimer(b.lease.ACK.IPAddressRenewalTime(defaultRenewalTime))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			lease, err := m.leases.Request(ctx, name)
			if err != nil {
				log.WithError(err).Warn("dhcp renewal failed, retrying")
				timer.Reset(renewalRetryBackoff)
				continue
			}
			if err := m.apply(name, lease.ACK); err != nil {
				log.WithError(err).Error("failed to apply renewed lease")
			}
			// only this goroutine writes the lease until stop() has drained done
			b.lease = lease

			renewal := lease.ACK.IPAddressRenewalTime(defaultRenewalTime)
			log.WithField("renewal_time", renewal.String()).Debug("dhcp lease renewed")
			timer.Reset(renewal)
		}
	}
}

// apply assigns the leased address, replacing any other IPv4 address, and
// installs the default route when the server offers a router.
func (m *NativeClientManager) apply(name string, ack *dhcpv4.DHCPv4) error {
	log := m.logger.WithField("interface", name)

	link, err := m.nl.LinkByName(name)
	if err != nil {
		return domainErrors.NewInternalError("link not found: "+name, err)
	}
	existing, err := m.nl.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return domainErrors.NewInternalError("failed to list addresses of "+name, err)
	}

	ipNet := leaseNet(ack)
	configured := false
	for _, addr := range existing {
		if addr.IPNet.IP.Equal(ipNet.IP) && addr.IPNet.Mask.String() == ipNet.Mask.String() {
			configured = true
			break
		}
	}

	if !configured {
		for i := range existing {
			if err := m.nl.AddrDel(link, &existing[i]); err != nil {
				log.WithError(err).WithField("address", existing[i].IPNet.String()).Warn("failed to remove stale address")
			}
		}
		leaseTime := int(ack.IPAddressLeaseTime(defaultLeaseTime).Seconds())
		addr := &netlink.Addr{IPNet: ipNet, ValidLft: leaseTime, PreferedLft: leaseTime}
		if err := m.nl.AddrAdd(link, addr); err != nil {
			return domainErrors.NewInternalError("failed to add "+ipNet.String()+" to "+name, err)
		}
		log.WithField("ip", ipNet.String()).Info("dhcp address applied")
	}

	if routers := ack.Router(); len(routers) > 0 {
		route := &netlink.Route{LinkIndex: link.Attrs().Index, Gw: routers[0]}
		if err := m.nl.RouteReplace(route); err != nil {
			return domainErrors.NewInternalError("failed to set default route via "+routers[0].String(), err)
		}
	}
	return nil
}

func leaseNet(ack *dhcpv4.DHCPv4) *net.IPNet {
	mask := ack.SubnetMask()
	if mask == nil {
		mask = net.IPv4Mask(255, 255, 255, 0)
	}
	return &net.IPNet{IP: ack.YourIPAddr, Mask: mask}
}
