package config

import (
	"fmt"
	"time"

	"netadmin-agent/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by the loader.
const EnvPrefix = "NETADMIN"

// Config is a struct that holds application configuration
type Config struct {
	Store    StoreConfig
	Agent    AgentConfig
	Dhcp     DhcpConfig
	Wifi     WifiConfig
	Firewall FirewallConfig
	Health   HealthConfig
	Log      LogConfig
}

// StoreConfig is a struct that holds snapshot store configuration
type StoreConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite" validate:"oneof=sqlite mysql"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"/var/lib/netadmin/snapshots.db" validate:"required_if=Driver sqlite"`
	Host            string        `envconfig:"HOST" validate:"required_if=Driver mysql"`
	Port            string        `envconfig:"PORT" default:"3306"`
	User            string        `envconfig:"USER" validate:"required_if=Driver mysql"`
	Password        string        `envconfig:"PASSWORD"`
	Database        string        `envconfig:"NAME" default:"netadmin" validate:"required_if=Driver mysql"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10" validate:"min=1"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5" validate:"min=0"`
	MaxLifetime     time.Duration `envconfig:"MAX_LIFETIME" default:"5m"`
	BackupDirectory string        `envconfig:"BACKUP_DIR" default:"/var/lib/netadmin/backups" validate:"required"`
	BackupRetention int           `envconfig:"BACKUP_RETENTION" default:"10" validate:"min=0"`
	DefaultsFile    string        `envconfig:"DEFAULTS_FILE" default:"/etc/netadmin/defaults.yaml"`
}

// AgentConfig is a struct that holds agent configuration
type AgentConfig struct {
	ReconcileInterval    time.Duration `envconfig:"RECONCILE_INTERVAL" default:"30s" validate:"gt=0"`
	MaxReconcileInterval time.Duration `envconfig:"MAX_RECONCILE_INTERVAL" default:"5m" validate:"gtefield=ReconcileInterval"`
	BackoffMultiplier    float64       `envconfig:"BACKOFF_MULTIPLIER" default:"2.0" validate:"gte=1"`
	CommandTimeout       time.Duration `envconfig:"COMMAND_TIMEOUT" default:"30s" validate:"gt=0"`
	CommitTimeout        time.Duration `envconfig:"COMMIT_TIMEOUT" default:"30s" validate:"gt=0"`
	RunDirectory         string        `envconfig:"RUN_DIR" default:"/var/run/netadmin" validate:"required"`
}

// DhcpConfig is a struct that holds DHCP client and server configuration
type DhcpConfig struct {
	Client             string        `envconfig:"CLIENT" default:"dhclient" validate:"oneof=dhclient native"`
	NativeLeaseTimeout time.Duration `envconfig:"NATIVE_LEASE_TIMEOUT" default:"15s" validate:"gt=0"`
	ServerConfigDir    string        `envconfig:"SERVER_CONFIG_DIR" default:"/etc" validate:"required"`
}

// WifiConfig is a struct that holds wireless daemon configuration
type WifiConfig struct {
	HostapdConfigDir    string   `envconfig:"HOSTAPD_CONFIG_DIR" default:"/etc/hostapd" validate:"required"`
	WpaConfigDir        string   `envconfig:"WPA_CONFIG_DIR" default:"/etc/wpa_supplicant" validate:"required"`
	KernelModule        string   `envconfig:"KERNEL_MODULE"`
	KernelMasterOptions []string `envconfig:"KERNEL_MASTER_OPTIONS"`
}

// FirewallConfig is a struct that holds firewall configuration
type FirewallConfig struct {
	Enabled bool `envconfig:"ENABLED" default:"true"`
}

// HealthConfig is a struct that holds health check configuration
type HealthConfig struct {
	Port string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
}

// LogConfig is a struct that holds logging configuration
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct {
	validate *validator.Validate
}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{validate: validator.New()}
}

// Load loads configuration from NETADMIN_* environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	var config Config
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, errors.NewValidationError("failed to read environment", err)
	}

	if err := l.validate.Struct(&config); err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid configuration: %v", err), err)
	}
	return &config, nil
}
