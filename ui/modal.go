package ui

import (
	"context"
	"sync"

	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/kemsguy7/wagmi-app/wallet/connectors"
	"github.com/rs/zerolog"
)

const (
	annotationNotInstalled = "(not installed)"
	annotationQR           = "(QR code)"
)

// ConnectorRow is one selectable wallet in the modal.
type ConnectorRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Ready      bool   `json:"ready"`
	Annotation string `json:"annotation,omitempty"`
}

// ModalView is what the connect modal shows.
type ModalView struct {
	Open         bool                     `json:"open"`
	Connecting   bool                     `json:"connecting"`
	Rows         []ConnectorRow           `json:"connectors"`
	Error        string                   `json:"error,omitempty"`
	ErrorKind    wallet.Kind              `json:"error_kind,omitempty"`
	Hint         string                   `json:"hint,omitempty"`
	InstallLinks []connectors.InstallLink `json:"install_links"`
}

// Modal is the wallet selection dialog. Every Open starts a new generation; results
// of older generations are dropped.
type Modal struct {
	registry   *wallet.Registry
	prober     *wallet.Prober
	negotiator *wallet.Negotiator
	logger     zerolog.Logger

	mu          sync.Mutex
	open        bool
	generation  uint64
	cancelProbe context.CancelFunc
	readiness   []wallet.Readiness
	err         *wallet.Error
}

func NewModal(
	registry *wallet.Registry,
	prober *wallet.Prober,
	negotiator *wallet.Negotiator,
	logger zerolog.Logger,
) *Modal {
	return &Modal{
		registry:   registry,
		prober:     prober,
		negotiator: negotiator,
		logger:     logger.With().Str(logging.FieldModule, "modal").Logger(),
	}
}

// Open shows the modal and probes every connector. Any probe or connect attempt of
// a previous generation is cancelled.
func (m *Modal) Open(ctx context.Context) ModalView {
	m.mu.Lock()
	m.stopProbeLocked()
	m.negotiator.Cancel()
	m.generation++
	generation := m.generation
	m.open = true
	m.err = nil
	m.readiness = nil

	probeCtx, cancel := context.WithCancel(ctx)
	m.cancelProbe = cancel
	m.mu.Unlock()

	readiness, err := m.prober.Probe(probeCtx, m.registry.Connectors())

	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		// closed or reopened meanwhile
		return m.viewLocked()
	}

	cancel()
	m.cancelProbe = nil

	if err != nil {
		m.logger.Error().Err(err).Msg(wallet.MsgProbeFailed)
		m.err = wallet.WrapError(wallet.KindUnknown, wallet.MsgProbeFailed, err)

		return m.viewLocked()
	}

	m.readiness = readiness

	return m.viewLocked()
}

// Close hides the modal, abandoning any probe or connect attempt in flight.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()
}

func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.open
}

// Select connects through the connector with the given id. Selecting an unknown or
// not-ready connector, or selecting while the modal is closed, does nothing and
// reports false. On success the modal closes.
func (m *Modal) Select(ctx context.Context, id string, chainID *uint64) (bool, error) {
	m.mu.Lock()

	connector, ok := m.readyConnectorLocked(id)
	if !m.open || !ok {
		m.mu.Unlock()
		return false, nil
	}

	m.err = nil
	generation := m.generation
	m.mu.Unlock()

	err := m.negotiator.Connect(ctx, connector, chainID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		walletErr := wallet.Classify(err, wallet.MsgConnectFailed)

		// a cancelled attempt belongs to a modal that is gone
		if walletErr.Kind != wallet.KindCancelled && generation == m.generation {
			m.err = walletErr
		}

		return false, walletErr
	}

	// a newer generation belongs to somebody else
	if generation == m.generation {
		m.closeLocked()
	}

	return true, nil
}

// View returns the current modal contents.
func (m *Modal) View() ModalView {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.viewLocked()
}

func (m *Modal) readyConnectorLocked(id string) (wallet.Connector, bool) {
	for _, r := range m.readiness {
		if r.Connector.ID() == id {
			return r.Connector, r.Ready
		}
	}

	return nil, false
}

func (m *Modal) closeLocked() {
	m.stopProbeLocked()
	m.generation++
	m.open = false
	m.err = nil
	m.readiness = nil
	m.negotiator.Cancel()
}

func (m *Modal) stopProbeLocked() {
	if m.cancelProbe != nil {
		m.cancelProbe()
		m.cancelProbe = nil
	}
}

func (m *Modal) viewLocked() ModalView {
	view := ModalView{
		Open:         m.open,
		Connecting:   m.negotiator.Pending(),
		Rows:         make([]ConnectorRow, 0, len(m.readiness)),
		InstallLinks: connectors.InstallLinks,
	}

	for _, r := range m.readiness {
		row := ConnectorRow{ID: r.Connector.ID(), Name: r.Connector.Name(), Ready: r.Ready}

		switch {
		case !r.Ready:
			row.Annotation = annotationNotInstalled
		case isQR(r.Connector):
			row.Annotation = annotationQR
		}

		view.Rows = append(view.Rows, row)
	}

	if m.err != nil {
		view.Error = m.err.Message
		view.ErrorKind = m.err.Kind
		view.Hint = m.err.Hint()
	}

	return view
}

func isQR(c wallet.Connector) bool {
	_, ok := c.(wallet.QRConnector)
	return ok
}
