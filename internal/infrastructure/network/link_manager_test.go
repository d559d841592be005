package network

import (
	"context"
	"errors"
	"net"
	"testing"

	domainErrors "netadmin-agent/internal/domain/errors"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

// MockNetlink는 테스트용 Netlink입니다
type MockNetlink struct {
	mock.Mock
}

func (m *MockNetlink) LinkByName(name string) (netlink.Link, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(netlink.Link), args.Error(1)
}

func (m *MockNetlink) LinkSetUp(link netlink.Link) error {
	return m.Called(link).Error(0)
}

func (m *MockNetlink) LinkSetDown(link netlink.Link) error {
	return m.Called(link).Error(0)
}

func (m *MockNetlink) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	args := m.Called(link, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]netlink.Addr), args.Error(1)
}

func (m *MockNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	return m.Called(link, addr).Error(0)
}

func (m *MockNetlink) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	return m.Called(link, addr).Error(0)
}

func (m *MockNetlink) RouteReplace(route *netlink.Route) error {
	return m.Called(route).Error(0)
}

func dummyLink(name string, flags net.Flags, state netlink.LinkOperState) *netlink.Dummy {
	return &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: name, Index: 3, Flags: flags, OperState: state}}
}

func mustAddr(t *testing.T, cidr string) netlink.Addr {
	addr, err := netlink.ParseAddr(cidr)
	require.NoError(t, err)
	return *addr
}

func TestLinkManager_HasAddress(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	link := dummyLink("eth0", net.FlagUp, netlink.OperUp)

	tests := []struct {
		name       string
		setupMocks func(*MockNetlink)
		want       bool
		wantErr    bool
	}{
		{
			name: "주소 있음",
			setupMocks: func(nl *MockNetlink) {
				nl.On("LinkByName", "eth0").Return(link, nil)
				nl.On("AddrList", link, netlink.FAMILY_V4).Return([]netlink.Addr{mustAddr(t, "10.0.0.2/24")}, nil)
			},
			want: true,
		},
		{
			name: "주소 없음",
			setupMocks: func(nl *MockNetlink) {
				nl.On("LinkByName", "eth0").Return(link, nil)
				nl.On("AddrList", link, netlink.FAMILY_V4).Return([]netlink.Addr{}, nil)
			},
			want: false,
		},
		{
			name: "링크 없음",
			setupMocks: func(nl *MockNetlink) {
				nl.On("LinkByName", "eth0").Return(nil, errors.New("Link not found"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl := new(MockNetlink)
			tt.setupMocks(nl)

			got, err := NewLinkManager(nl, logger).HasAddress(ctx, "eth0")
			if tt.wantErr {
				assert.True(t, domainErrors.IsInternalError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkManager_IsLinkUp(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name string
		link netlink.Link
		want bool
	}{
		{name: "UP + carrier", link: dummyLink("wlan0", net.FlagUp, netlink.OperUp), want: true},
		{name: "UP + 상태 미보고", link: dummyLink("wlan0", net.FlagUp, netlink.OperUnknown), want: true},
		{name: "UP + carrier 없음", link: dummyLink("wlan0", net.FlagUp, netlink.OperDown), want: false},
		{name: "관리상 DOWN", link: dummyLink("wlan0", 0, netlink.OperUp), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl := new(MockNetlink)
			nl.On("LinkByName", "wlan0").Return(tt.link, nil)

			got, err := NewLinkManager(nl, logger).IsLinkUp(ctx, "wlan0")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkManager_SetLink(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	link := dummyLink("eth0", 0, netlink.OperDown)

	nl := new(MockNetlink)
	nl.On("LinkByName", "eth0").Return(link, nil)
	nl.On("LinkSetUp", link).Return(nil).Once()
	nl.On("LinkSetDown", link).Return(errors.New("operation not permitted")).Once()

	manager := NewLinkManager(nl, logger)
	require.NoError(t, manager.SetLinkUp(ctx, "eth0"))
	assert.True(t, domainErrors.IsInternalError(manager.SetLinkDown(ctx, "eth0")))
	nl.AssertExpectations(t)
}

func TestLinkManager_BringUpDeletingAddress(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	link := dummyLink("wlan0", 0, netlink.OperDown)
	addrs := []netlink.Addr{mustAddr(t, "169.254.1.2/16"), mustAddr(t, "10.0.0.2/24")}

	nl := new(MockNetlink)
	nl.On("LinkByName", "wlan0").Return(link, nil)
	nl.On("AddrList", link, netlink.FAMILY_V4).Return(addrs, nil)
	nl.On("AddrDel", link, mock.AnythingOfType("*netlink.Addr")).Return(nil).Twice()
	nl.On("LinkSetUp", link).Return(nil).Once()

	require.NoError(t, NewLinkManager(nl, logger).BringUpDeletingAddress(ctx, "wlan0"))
	nl.AssertExpectations(t)
}
