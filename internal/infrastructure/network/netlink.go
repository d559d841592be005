// Package network reads and changes kernel link state over netlink.
package network

import (
	"github.com/vishvananda/netlink"
)

// Netlink is the subset of rtnetlink operations the agent uses.
type Netlink interface {
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error
	RouteReplace(route *netlink.Route) error
}

// SystemNetlink talks to the kernel of the current network namespace.
type SystemNetlink struct{}

// NewSystemNetlink creates a new SystemNetlink.
func NewSystemNetlink() *SystemNetlink {
	return &SystemNetlink{}
}

func (SystemNetlink) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (SystemNetlink) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}

func (SystemNetlink) LinkSetDown(link netlink.Link) error {
	return netlink.LinkSetDown(link)
}

func (SystemNetlink) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

func (SystemNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrAdd(link, addr)
}

func (SystemNetlink) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrDel(link, addr)
}

func (SystemNetlink) RouteReplace(route *netlink.Route) error {
	return netlink.RouteReplace(route)
}
