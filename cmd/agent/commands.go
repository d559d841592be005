package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	enableDhcp bool

	verifySSID       string
	verifySecurity   string
	verifyPassphrase string
	verifyTimeout    time.Duration

	firewallGateway string
)

var enableCmd = &cobra.Command{
	Use:   "enable <interface>",
	Short: "Bring an interface up using its stored configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			return c.GetAdminService().EnableInterface(ctx, args[0], enableDhcp)
		})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <interface>",
	Short: "Bring an interface down and stop its daemons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			return c.GetAdminService().DisableInterface(ctx, args[0])
		})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <interface>",
	Short: "Scan for Wi-Fi hotspots visible from an interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			hotspots, err := c.GetAdminService().ScanWifiHotspots(ctx, args[0])
			if err != nil {
				return err
			}
			sort.Slice(hotspots, func(i, j int) bool { return hotspots[i].SignalDBm > hotspots[j].SignalDBm })

			out := cmd.OutOrStdout()
			for _, h := range hotspots {
				fmt.Fprintf(out, "%-32s %s  ch %-3d %4d dBm  %s\n", h.SSID, h.MacAddress, h.Channel, h.SignalDBm, h.Security)
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <interface>",
	Short: "Check whether Wi-Fi credentials associate with the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			candidate := entities.WifiConfig{
				Mode:       entities.WifiModeInfra,
				SSID:       verifySSID,
				Security:   entities.WifiSecurity(verifySecurity),
				Passphrase: verifyPassphrase,
			}
			ok := c.GetAdminService().VerifyWifiCredentials(ctx, args[0], candidate, verifyTimeout)
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]bool{"verified": ok})
		})
	},
}

var firewallCmd = &cobra.Command{
	Use:   "firewall",
	Short: "Rebuild auto NAT rules towards the gateway interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			return c.GetAdminService().ManageFirewall(ctx, firewallGateway)
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:       "rollback <network|firewall>",
	Short:     "Restore the factory default configuration",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"network", "firewall"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
			if args[0] == "firewall" {
				return c.GetAdminService().RollbackDefaultFirewallConfiguration(ctx)
			}
			return c.GetAdminService().RollbackDefaultConfiguration(ctx)
		})
	},
}

func init() {
	enableCmd.Flags().BoolVar(&enableDhcp, "dhcp", false, "start the DHCP client after bringing the link up")

	verifyCmd.Flags().StringVar(&verifySSID, "ssid", "", "network name")
	verifyCmd.Flags().StringVar(&verifySecurity, "security", string(entities.WifiSecurityWPA2), "none, wep, wpa, wpa2 or wpa_wpa2")
	verifyCmd.Flags().StringVar(&verifyPassphrase, "passphrase", "", "pre-shared key")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 30*time.Second, "how long to wait for association")
	verifyCmd.MarkFlagRequired("ssid")

	firewallCmd.Flags().StringVar(&firewallGateway, "gateway", "", "WAN interface used as the NAT destination")
}
