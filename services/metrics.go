package services

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const resultSuccess = "success"

// MetricsService handles Prometheus metrics collection and exposition
type MetricsService struct {
	probesTotal   *prometheus.CounterVec
	connectsTotal *prometheus.CounterVec
	switchesTotal *prometheus.CounterVec
	connected     prometheus.Gauge
	activeChain   prometheus.Gauge

	mu       sync.RWMutex
	probes   map[string]int
	connects map[string]int
	switches map[string]int
	state    wallet.State

	logger   zerolog.Logger
	registry *prometheus.Registry
}

var _ wallet.Recorder = (*MetricsService)(nil)

// NewMetricsService creates a new metrics service
func NewMetricsService(logger zerolog.Logger) *MetricsService {
	registry := prometheus.NewRegistry()

	probesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagmi_connector_probes_total",
			Help: "Connector readiness probes by outcome",
		},
		[]string{"connector", "ready"},
	)

	connectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagmi_connect_attempts_total",
			Help: "Wallet connection attempts by connector and result",
		},
		[]string{"connector", "result"},
	)

	switchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagmi_chain_switches_total",
			Help: "Network switch requests by target chain and result",
		},
		[]string{"chain_id", "chain_name", "result"},
	)

	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wagmi_wallet_connected",
		Help: "Whether a wallet is connected (1 = connected, 0 = disconnected)",
	})

	activeChain := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wagmi_active_chain_id",
		Help: "Chain id the app currently operates on",
	})

	registry.MustRegister(probesTotal)
	registry.MustRegister(connectsTotal)
	registry.MustRegister(switchesTotal)
	registry.MustRegister(connected)
	registry.MustRegister(activeChain)

	return &MetricsService{
		probesTotal:   probesTotal,
		connectsTotal: connectsTotal,
		switchesTotal: switchesTotal,
		connected:     connected,
		activeChain:   activeChain,
		probes:        make(map[string]int),
		connects:      make(map[string]int),
		switches:      make(map[string]int),
		logger:        logger.With().Str(logging.FieldModule, "metrics").Logger(),
		registry:      registry,
	}
}

func (m *MetricsService) ProbeCompleted(connectorID string, ready bool) {
	m.probesTotal.WithLabelValues(connectorID, strconv.FormatBool(ready)).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if ready {
		m.probes[connectorID+"_ready"]++
	} else {
		m.probes[connectorID+"_not_ready"]++
	}
}

func (m *MetricsService) ConnectCompleted(connectorID string, err error) {
	result := resultOf(err)
	m.connectsTotal.WithLabelValues(connectorID, result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.connects[result]++
}

func (m *MetricsService) SwitchCompleted(chainID uint64, err error) {
	result := resultOf(err)
	m.switchesTotal.WithLabelValues(strconv.FormatUint(chainID, 10), config.ChainName(chainID), result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.switches[result]++
}

// ObserveState tracks the connection store. Subscribe it with Store.Subscribe.
func (m *MetricsService) ObserveState(state wallet.State) {
	if state.Connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}

	m.activeChain.Set(float64(state.ChainID))

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	m.logger.Debug().
		Bool("connected", state.Connected).
		Uint64(logging.FieldChain, state.ChainID).
		Msg("Connection state changed")
}

// GetHandler returns the Prometheus metrics HTTP handler
func (m *MetricsService) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// GetMetricsSummary returns a summary of all metrics for debugging
func (m *MetricsService) GetMetricsSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"connected":        m.state.Connected,
		"chain_id":         m.state.ChainID,
		"chain_name":       config.ChainName(m.state.ChainID),
		"probes":           copyCounts(m.probes),
		"connects":         copyCounts(m.connects),
		"connect_attempts": sumCounts(m.connects),
		"switches":         copyCounts(m.switches),
		"timestamp":        time.Now(),
	}
}

func resultOf(err error) string {
	if err == nil {
		return resultSuccess
	}

	return string(wallet.KindOf(err))
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func sumCounts(in map[string]int) int {
	total := 0
	for _, v := range in {
		total += v
	}

	return total
}
