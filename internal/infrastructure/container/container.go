package container

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"netadmin-agent/internal/application/admin"
	"netadmin-agent/internal/application/commit"
	"netadmin-agent/internal/application/usecases"
	"netadmin-agent/internal/application/wifi"
	"netadmin-agent/internal/domain/entities"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/domain/services"
	"netadmin-agent/internal/infrastructure/adapters"
	"netadmin-agent/internal/infrastructure/api"
	"netadmin-agent/internal/infrastructure/config"
	"netadmin-agent/internal/infrastructure/dhcp"
	"netadmin-agent/internal/infrastructure/events"
	"netadmin-agent/internal/infrastructure/firewall"
	"netadmin-agent/internal/infrastructure/health"
	"netadmin-agent/internal/infrastructure/network"
	"netadmin-agent/internal/infrastructure/persistence"
	"netadmin-agent/internal/infrastructure/process"
	infraServices "netadmin-agent/internal/infrastructure/services"
	"netadmin-agent/internal/infrastructure/store"
	infraWifi "netadmin-agent/internal/infrastructure/wifi"
	"netadmin-agent/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock

	// 저장소
	db          *sql.DB
	bus         *events.Bus
	configStore *store.ConfigStore

	// 시스템 관리자들
	links        interfaces.LinkManager
	dhcpClient   interfaces.DhcpClientManager
	nativeClient *dhcp.NativeClientManager
	dhcpServer   interfaces.DhcpServerManager
	firewall     interfaces.Firewall
	hostapd      interfaces.HostapdManager
	wpa          interfaces.WpaSupplicantManager
	radio        interfaces.RadioManager
	scanner      interfaces.ScanTool

	// 서비스들
	healthService *health.HealthService
	coordinator   *commit.Coordinator
	adminService  *admin.Service

	// 유스케이스
	reconcileUseCase *usecases.ReconcileInterfacesUseCase
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(ctx); err != nil {
		container.Close()
		return nil, err
	}

	if err := container.initializeSystemManagers(ctx); err != nil {
		container.Close()
		return nil, err
	}

	if err := container.initializeStore(ctx); err != nil {
		container.Close()
		return nil, err
	}

	container.initializeServices()
	return container, nil
}

// initializeInfrastructure는 어댑터와 스냅샷 저장소 연결을 초기화합니다
func (c *Container) initializeInfrastructure(ctx context.Context) error {
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor(c.logger, c.config.Agent.CommandTimeout)
	c.clock = adapters.NewRealClock()
	c.bus = events.NewBus(c.logger)

	storeCfg := c.config.Store
	open := func(ctx context.Context) error {
		var err error
		switch storeCfg.Driver {
		case persistence.DriverMySQL:
			c.db, err = persistence.OpenMySQL(persistence.MySQLConfig{
				Host:            storeCfg.Host,
				Port:            storeCfg.Port,
				User:            storeCfg.User,
				Password:        storeCfg.Password,
				Database:        storeCfg.Database,
				MaxOpenConns:    storeCfg.MaxOpenConns,
				MaxIdleConns:    storeCfg.MaxIdleConns,
				ConnMaxLifetime: storeCfg.MaxLifetime,
			}, c.logger)
		default:
			c.db, err = persistence.OpenSQLite(storeCfg.SQLitePath, c.logger)
		}
		return err
	}

	// 부팅 직후에는 DB나 스토리지가 아직 준비되지 않았을 수 있습니다
	return utils.RetryWithBackoff(ctx, utils.DefaultRetryConfig, open, func(attempt int, delay time.Duration, err error) {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"driver":  storeCfg.Driver,
			"attempt": attempt,
			"delay":   delay,
		}).Warn("스냅샷 저장소 연결 실패, 재시도합니다")
	})
}

// initializeSystemManagers는 링크, DHCP, 방화벽, 무선 데몬 관리자를 초기화합니다
func (c *Container) initializeSystemManagers(ctx context.Context) error {
	runDir := c.config.Agent.RunDirectory
	supervisor := process.NewSupervisor(c.commandExecutor, c.fileSystem, c.logger, runDir)
	nl := network.NewSystemNetlink()

	c.links = network.NewLinkManager(nl, c.logger)

	switch c.config.Dhcp.Client {
	case "native":
		c.nativeClient = dhcp.NewNativeClientManager(dhcp.NewLeaseClient(c.config.Dhcp.NativeLeaseTimeout), nl, c.logger)
		c.dhcpClient = c.nativeClient
	default:
		c.dhcpClient = dhcp.NewDhclientManager(c.commandExecutor, supervisor, c.logger)
	}

	udhcpdWriter := dhcp.NewUdhcpdConfigWriter(c.fileSystem, c.config.Dhcp.ServerConfigDir, runDir)
	c.dhcpServer = dhcp.NewUdhcpdManager(c.commandExecutor, c.fileSystem, supervisor, udhcpdWriter, c.logger)

	wifiWriter := infraWifi.NewConfigWriter(c.fileSystem, c.config.Wifi.HostapdConfigDir, c.config.Wifi.WpaConfigDir, runDir)
	c.hostapd = infraWifi.NewHostapdManager(c.commandExecutor, c.fileSystem, supervisor, wifiWriter, c.logger)
	c.wpa = infraWifi.NewWpaSupplicantManager(c.commandExecutor, supervisor, wifiWriter, c.logger)
	c.radio = infraWifi.NewRadio(c.commandExecutor, infraWifi.KernelModule{
		Name:          c.config.Wifi.KernelModule,
		MasterOptions: c.config.Wifi.KernelMasterOptions,
	}, c.logger)
	c.scanner = infraWifi.NewIwScanner(c.commandExecutor, c.logger)

	if c.config.Firewall.Enabled {
		ipt, err := firewall.NewSystemIPTables()
		if err != nil {
			return err
		}
		c.firewall = firewall.NewIPTablesFirewall(ipt, c.commandExecutor, c.logger)
	} else {
		c.firewall = firewall.NewDisabled(c.logger)
	}

	applier := store.NewDaemonApplier(wifiWriter, udhcpdWriter, c.firewall, c.logger)
	backups := infraServices.NewBackupService(c.fileSystem, c.clock, c.logger, c.config.Store.BackupDirectory, c.config.Store.BackupRetention)
	repo, err := persistence.NewSQLRepository(ctx, c.db, c.config.Store.Driver, c.clock, c.logger)
	if err != nil {
		return err
	}
	c.configStore = store.NewConfigStore(repo, backups, applier, c.bus, c.logger)
	return nil
}

// initializeStore는 공장 기본값을 읽어 빈 저장소에 기록합니다
func (c *Container) initializeStore(ctx context.Context) error {
	networkCfg := &entities.NetworkConfiguration{}
	firewallCfg := &entities.FirewallConfiguration{}

	path := c.config.Store.DefaultsFile
	if path != "" && c.fileSystem.Exists(path) {
		data, err := c.fileSystem.ReadFile(path)
		if err != nil {
			return err
		}
		networkCfg, firewallCfg, err = store.DecodeDefaults(data)
		if err != nil {
			return err
		}
		c.logger.WithField("path", path).Info("기본 설정 파일 로드 완료")
	} else {
		c.logger.WithField("path", path).Warn("기본 설정 파일이 없어 빈 설정을 기본값으로 사용합니다")
	}

	return c.configStore.Seed(ctx, networkCfg, firewallCfg)
}

// initializeServices는 애플리케이션 서비스와 유스케이스를 초기화합니다
func (c *Container) initializeServices() {
	c.coordinator = commit.NewCoordinator(c.configStore, c.bus, c.logger, c.config.Agent.CommitTimeout)
	c.healthService = health.NewHealthService(c.clock, c.coordinator, c.logger)
	c.healthService.SetDhcpClient(c.config.Dhcp.Client)

	locks := usecases.NewConfigLocks()
	timings := wifi.DefaultTimings()

	links := wifi.NewLinkController(c.configStore, c.links, c.dhcpClient, c.dhcpServer, c.hostapd, c.wpa, c.radio, c.logger, timings)
	scans := wifi.NewScanSession(c.configStore, c.radio, c.wpa, c.scanner, c.logger, timings)
	verifier := wifi.NewCredentialVerifier(c.configStore, c.dhcpClient, c.wpa, c.radio, c.logger, timings)

	c.reconcileUseCase = usecases.NewReconcileInterfacesUseCase(c.configStore, c.links, links, c.logger)

	c.adminService = admin.NewService(
		usecases.NewUpdateInterfaceConfigUseCase(c.configStore, services.NewConfigMerger(c.logger), c.coordinator, locks, c.logger),
		usecases.NewGetInterfaceConfigsUseCase(c.configStore),
		usecases.NewManageFirewallUseCase(c.configStore, c.firewall, c.coordinator, c.logger),
		usecases.NewRollbackDefaultsUseCase(c.configStore, c.coordinator, locks, c.logger),
		links,
		scans,
		verifier,
		c.radio,
		c.logger,
	)
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetConfigStore는 설정 저장소를 반환합니다
func (c *Container) GetConfigStore() *store.ConfigStore {
	return c.configStore
}

// GetAdminService는 관리 서비스를 반환합니다
func (c *Container) GetAdminService() *admin.Service {
	return c.adminService
}

// GetReconcileUseCase는 재조정 유스케이스를 반환합니다
func (c *Container) GetReconcileUseCase() *usecases.ReconcileInterfacesUseCase {
	return c.reconcileUseCase
}

// HTTPHandler는 관리 API, 헬스체크, 메트릭을 묶은 핸들러를 반환합니다
func (c *Container) HTTPHandler() http.Handler {
	return api.NewRouter(api.NewHandler(c.adminService, c.logger), c.healthService, c.logger)
}

// Close는 진행 중인 커밋 적용을 기다린 뒤 자원을 정리합니다
func (c *Container) Close() error {
	if c.coordinator != nil {
		c.coordinator.Close()
	}
	if c.configStore != nil {
		c.configStore.Wait()
	}
	if c.bus != nil {
		c.bus.Drain()
	}
	if c.nativeClient != nil {
		c.nativeClient.Close()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
