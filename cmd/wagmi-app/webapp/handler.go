// Package webapp serves the wallet front end: server-rendered pages, the JSON API
// and the state event stream.
package webapp

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	web "github.com/kemsguy7/wagmi-app/http"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/services"
	"github.com/kemsguy7/wagmi-app/ui"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type handler struct {
	*gin.Engine

	deps   Dependencies
	logger zerolog.Logger
}

type Config struct {
	Dependencies

	Addr           string
	AllowedOrigins string
	LogRequests    bool
	RequestTimeout time.Duration

	Logger zerolog.Logger
}

type Dependencies struct {
	App     Frontend
	Events  EventSource
	Metrics *services.MetricsService
}

// Frontend is the view and action surface of the wallet front end.
type Frontend interface {
	Render(ctx context.Context, opts ui.RenderOptions) ui.Page
	State() wallet.State
	OpenModal(ctx context.Context) ui.ModalView
	CloseModal()
	Modal() ui.ModalView
	Connect(ctx context.Context, connectorID string, chainID *uint64) (bool, error)
	Disconnect(ctx context.Context) error
	Network(open bool) ui.NetworkView
	SwitchNetwork(ctx context.Context, chainID uint64) error
	Account(ctx context.Context) (services.Account, bool)
}

// EventSource publishes connection state changes.
type EventSource interface {
	Subscribe(obs wallet.Observer) (unsubscribe func())
}

const (
	defaultRequestTimeout = 2 * time.Minute
	readTimeout           = 15 * time.Second
)

var (
	ErrNotConnected     = errors.New("no wallet connected")
	ErrAlreadyConnected = errors.New("a wallet is already connected")
	ErrParamRequired    = errors.New("param required")
)

func New(cfg Config) (*http.Server, error) {
	h, err := newHandler(cfg, gin.New())
	if err != nil {
		return nil, err
	}

	// Shutdown does not cancel in-flight requests; event streams would hold it
	// until its deadline.
	baseCtx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h,

		BaseContext: func(net.Listener) context.Context { return baseCtx },

		// Time to read the request headers/body
		ReadTimeout: readTimeout,

		// no WriteTimeout: the event stream stays open

		// Time to keep connections alive
		IdleTimeout: 60 * time.Second,

		// Max header bytes (1MB)
		MaxHeaderBytes: 1024 * 1024,
	}

	srv.RegisterOnShutdown(cancel)

	return srv, nil
}

func newHandler(cfg Config, router *gin.Engine) (*handler, error) {
	h := &handler{
		Engine: router,
		deps:   cfg.Dependencies,
		logger: cfg.Logger.With().Str(logging.FieldModule, "webapp").Logger(),
	}

	logLevel := zerolog.DebugLevel
	if cfg.LogRequests {
		logLevel = zerolog.InfoLevel
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	h.Use(
		gin.Recovery(),
		web.RequestID(),
		web.Zerolog(cfg.Logger, logLevel),
		web.Timeout(requestTimeout),
		web.CORS(cfg.AllowedOrigins),
	)

	if err := h.setupPageRoutes(); err != nil {
		return nil, err
	}

	h.setupAPIRoutes()
	h.setupObservabilityRoutes()

	return h, nil
}

func (h *handler) setupAPIRoutes() {
	v1 := h.Group("/api/v1")

	h.setupWalletRoutes(v1)
	h.setupNetworkRoutes(v1)
	v1.GET("/events", h.streamEvents)
}

func (h *handler) setupObservabilityRoutes() {
	h.GET("/health", h.getHealthCheck)

	if h.deps.Metrics != nil {
		h.GET("/metrics", gin.WrapH(h.deps.Metrics.GetHandler()))
		h.GET("/api/v1/metrics", h.getMetricsSummary)
	}
}

func (h *handler) getHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) getMetricsSummary(c *gin.Context) {
	summary := h.deps.Metrics.GetMetricsSummary()
	c.JSON(http.StatusOK, summary)
}
