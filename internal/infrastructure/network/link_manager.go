package network

import (
	"context"
	"net"

	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// LinkManager implements interfaces.LinkManager on top of netlink.
type LinkManager struct {
	nl     Netlink
	logger *logrus.Logger
}

// NewLinkManager creates a new LinkManager.
func NewLinkManager(nl Netlink, logger *logrus.Logger) interfaces.LinkManager {
	return &LinkManager{nl: nl, logger: logger}
}

// HasAddress reports whether an IPv4 address is assigned to name.
func (m *LinkManager) HasAddress(ctx context.Context, name string) (bool, error) {
	link, err := m.link(name)
	if err != nil {
		return false, err
	}
	addrs, err := m.nl.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return false, domainErrors.NewInternalError("failed to list addresses of "+name, err)
	}
	return len(addrs) > 0, nil
}

// IsLinkUp reports whether name is administratively up with carrier. Drivers
// that never report an operational state (ppp, some Wi-Fi chipsets) are
// judged by the admin flag alone.
func (m *LinkManager) IsLinkUp(ctx context.Context, name string) (bool, error) {
	link, err := m.link(name)
	if err != nil {
		return false, err
	}
	attrs := link.Attrs()
	if attrs.Flags&net.FlagUp == 0 {
		return false, nil
	}
	return attrs.OperState == netlink.OperUp || attrs.OperState == netlink.OperUnknown, nil
}

func (m *LinkManager) SetLinkUp(ctx context.Context, name string) error {
	link, err := m.link(name)
	if err != nil {
		return err
	}
	if err := m.nl.LinkSetUp(link); err != nil {
		return domainErrors.NewInternalError("failed to bring up "+name, err)
	}
	m.logger.WithField("interface", name).Debug("link set up")
	return nil
}

func (m *LinkManager) SetLinkDown(ctx context.Context, name string) error {
	link, err := m.link(name)
	if err != nil {
		return err
	}
	if err := m.nl.LinkSetDown(link); err != nil {
		return domainErrors.NewInternalError("failed to bring down "+name, err)
	}
	m.logger.WithField("interface", name).Debug("link set down")
	return nil
}

// BringUpDeletingAddress flushes every IPv4 address and brings the link up.
func (m *LinkManager) BringUpDeletingAddress(ctx context.Context, name string) error {
	link, err := m.link(name)
	if err != nil {
		return err
	}
	addrs, err := m.nl.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return domainErrors.NewInternalError("failed to list addresses of "+name, err)
	}
	for i := range addrs {
		if err := m.nl.AddrDel(link, &addrs[i]); err != nil {
			return domainErrors.NewInternalError("failed to delete "+addrs[i].IPNet.String()+" from "+name, err)
		}
	}
	if err := m.nl.LinkSetUp(link); err != nil {
		return domainErrors.NewInternalError("failed to bring up "+name, err)
	}

	m.logger.WithFields(logrus.Fields{
		"interface": name,
		"deleted":   len(addrs),
	}).Info("link brought up without address")
	return nil
}

func (m *LinkManager) link(name string) (netlink.Link, error) {
	link, err := m.nl.LinkByName(name)
	if err != nil {
		return nil, domainErrors.NewInternalError("link not found: "+name, err)
	}
	return link, nil
}
