package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 커밋 관련 메트릭
	CommitsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_commits_submitted_total",
			Help: "Total number of configuration commits submitted",
		},
		[]string{"domain"}, // network, firewall
	)

	CommitConfirmationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netadmin_commit_confirmation_duration_seconds",
			Help:    "Time spent waiting for the configuration change event after a commit",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"domain", "outcome"}, // confirmed, timeout, cancelled
	)

	// 인터페이스 작업 메트릭
	InterfaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_interface_operations_total",
			Help: "Total number of interface operations executed",
		},
		[]string{"operation", "status"}, // enable/disable/update/renew, success/failed
	)

	InterfaceOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netadmin_interface_operation_duration_seconds",
			Help:    "Time spent executing each interface operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"interface_name", "operation"},
	)

	// Wi-Fi 관련 메트릭
	WifiScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_wifi_scans_total",
			Help: "Total number of Wi-Fi scans",
		},
		[]string{"status"},
	)

	WifiHotspotsVisible = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netadmin_wifi_hotspots_visible",
			Help: "Number of distinct hotspots seen in the last scan",
		},
		[]string{"interface_name"},
	)

	CredentialVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_wifi_credential_verifications_total",
			Help: "Total number of Wi-Fi credential verifications",
		},
		[]string{"result"}, // success, failed
	)

	SoftTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_soft_timeouts_total",
			Help: "Waits that reached their ceiling and were recovered locally",
		},
		[]string{"wait"}, // commit, connection, radio_mode
	)

	// 재조정 루프 메트릭
	ReconcileBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netadmin_reconcile_backoff_level",
			Help: "Current backoff level of the reconcile loop (0 = no backoff)",
		},
	)

	// 저장소 연결 상태
	StoreConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netadmin_store_connection_status",
			Help: "Snapshot store connection status (1 = connected, 0 = disconnected)",
		},
	)

	// 에러 메트릭
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netadmin_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"error_type"},
	)
)

// RecordCommit은 커밋 제출과 확인 대기 시간을 기록합니다
func RecordCommit(domain, outcome string, seconds float64) {
	CommitsSubmitted.WithLabelValues(domain).Inc()
	CommitConfirmationDuration.WithLabelValues(domain, outcome).Observe(seconds)
}

// RecordInterfaceOperation은 인터페이스 작업 결과를 기록합니다
func RecordInterfaceOperation(interfaceName, operation string, err error, seconds float64) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	InterfaceOperations.WithLabelValues(operation, status).Inc()
	InterfaceOperationDuration.WithLabelValues(interfaceName, operation).Observe(seconds)
}

// RecordScan은 스캔 결과를 기록합니다
func RecordScan(interfaceName string, hotspots int, err error) {
	if err != nil {
		WifiScans.WithLabelValues("failed").Inc()
		return
	}
	WifiScans.WithLabelValues("success").Inc()
	WifiHotspotsVisible.WithLabelValues(interfaceName).Set(float64(hotspots))
}

// RecordCredentialVerification은 자격 증명 검증 결과를 기록합니다
func RecordCredentialVerification(ok bool) {
	if ok {
		CredentialVerifications.WithLabelValues("success").Inc()
		return
	}
	CredentialVerifications.WithLabelValues("failed").Inc()
}

// RecordSoftTimeout은 로컬에서 복구된 대기 시간 초과를 기록합니다
func RecordSoftTimeout(wait string) {
	SoftTimeouts.WithLabelValues(wait).Inc()
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetReconcileBackoffLevel은 현재 백오프 레벨을 설정합니다
func SetReconcileBackoffLevel(level float64) {
	ReconcileBackoffLevel.Set(level)
}

// SetStoreConnectionStatus는 저장소 연결 상태를 설정합니다
func SetStoreConnectionStatus(connected bool) {
	if connected {
		StoreConnectionStatus.Set(1)
	} else {
		StoreConnectionStatus.Set(0)
	}
}
