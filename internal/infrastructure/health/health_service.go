package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// PendingReporter reports whether a commit is waiting for its change event.
type PendingReporter interface {
	NetworkPending() bool
	FirewallPending() bool
}

// Pinger checks store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	mu               sync.RWMutex
	clock            interfaces.Clock
	logger           *logrus.Logger
	pending          PendingReporter
	startTime        time.Time
	storeHealthy     bool
	storeError       error
	reconcileRuns    int64
	failedReconciles int64
	lastReconcile    time.Time
	dhcpClient       string
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	LastCheck  string                 `json:"last_check"`
	Components map[string]interface{} `json:"components"`
	Statistics map[string]interface{} `json:"statistics"`
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, pending PendingReporter, logger *logrus.Logger) *HealthService {
	return &HealthService{
		clock:     clock,
		logger:    logger,
		pending:   pending,
		startTime: clock.Now(),
	}
}

// CheckStore pings the snapshot store and records the result
func (h *HealthService) CheckStore(ctx context.Context, store Pinger) {
	err := store.Ping(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("snapshot store is unreachable")
	}
	h.UpdateStoreHealth(err == nil, err)
}

// UpdateStoreHealth updates the snapshot store health status
func (h *HealthService) UpdateStoreHealth(healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.storeHealthy = healthy
	h.storeError = err
}

// RecordReconcile counts one reconcile pass
func (h *HealthService) RecordReconcile(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reconcileRuns++
	if err != nil {
		h.failedReconciles++
	}
	h.lastReconcile = h.clock.Now()
}

// SetDhcpClient sets the DHCP client type in use
func (h *HealthService) SetDhcpClient(clientType string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dhcpClient = clientType
}

// ServeHTTP handles the HTTP health check endpoint
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := h.buildHealthResponse()

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("failed to encode health check response")
	}
}

func (h *HealthService) buildHealthResponse() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()

	components := map[string]interface{}{
		"store": map[string]interface{}{
			"healthy": h.storeHealthy,
			"error":   h.formatError(h.storeError),
		},
		"dhcp_client": map[string]interface{}{
			"type": h.dhcpClient,
		},
	}
	if h.pending != nil {
		components["commits"] = map[string]interface{}{
			"network_pending":  h.pending.NetworkPending(),
			"firewall_pending": h.pending.FirewallPending(),
		}
	}

	statistics := map[string]interface{}{
		"reconcile_runs":    h.reconcileRuns,
		"failed_reconciles": h.failedReconciles,
		"uptime":            h.formatUptime(now.Sub(h.startTime)),
	}
	if !h.lastReconcile.IsZero() {
		statistics["last_reconcile"] = h.lastReconcile.Format(time.RFC3339)
	}

	return HealthResponse{
		Status:     h.determineOverallStatus(),
		Timestamp:  now.Format(time.RFC3339),
		LastCheck:  now.Format(time.RFC3339),
		Components: components,
		Statistics: statistics,
	}
}

// determineOverallStatus determines the overall health status
func (h *HealthService) determineOverallStatus() HealthStatus {
	if !h.storeHealthy {
		return StatusUnhealthy
	}

	// If half or more reconcile passes failed, status is degraded
	if h.reconcileRuns > 0 && h.failedReconciles > 0 {
		failureRate := float64(h.failedReconciles) / float64(h.reconcileRuns)
		if failureRate >= 0.5 {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

func (h *HealthService) formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatUptime formats uptime duration to human-readable format
func (h *HealthService) formatUptime(duration time.Duration) string {
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
