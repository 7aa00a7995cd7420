package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/rs/zerolog"
)

// Negotiator issues connect and disconnect requests and writes their outcome into
// the Store. Only one connect attempt runs at a time.
type Negotiator struct {
	store    *Store
	recorder Recorder
	logger   zerolog.Logger

	mu         sync.Mutex
	seq        uint64
	pendingSeq uint64
	cancel     context.CancelFunc
	active     Connector
}

func NewNegotiator(store *Store, recorder Recorder, logger zerolog.Logger) *Negotiator {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Negotiator{
		store:    store,
		recorder: recorder,
		logger:   logger.With().Str(logging.FieldModule, "negotiator").Logger(),
	}
}

// Connect connects through c. chainID is optional.
func (n *Negotiator) Connect(ctx context.Context, c Connector, chainID *uint64) error {
	n.mu.Lock()
	if n.pendingSeq != 0 {
		n.mu.Unlock()
		return NewError(KindPending, "A connection request is already pending")
	}

	n.seq++
	seq := n.seq
	n.pendingSeq = seq

	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.mu.Unlock()

	defer cancel()

	logger := n.logger.With().
		Str(logging.FieldConnector, c.ID()).
		Str(logging.FieldAttempt, uuid.NewString()).
		Logger()

	logger.Info().Msg("Connecting wallet")

	session, err := c.Connect(ctx, chainID)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pendingSeq == seq {
		n.pendingSeq = 0
		n.cancel = nil
	}

	if seq != n.seq {
		logger.Info().Err(err).Msg("Discarding superseded connect result")

		// nobody is waiting for this session anymore, unless a newer attempt
		// reconnected the same wallet and owns it now
		if err == nil && !n.ownsLocked(c) {
			if dErr := c.Disconnect(context.WithoutCancel(ctx)); dErr != nil {
				logger.Debug().Err(dErr).Msg("Failed to release superseded session")
			}
		}

		return NewError(KindCancelled, "Connection request was cancelled")
	}

	if err != nil {
		walletErr := Classify(err, MsgConnectFailed)
		n.recorder.ConnectCompleted(c.ID(), walletErr)
		logger.Warn().Err(err).Str("kind", string(walletErr.Kind)).Msg("Wallet connection failed")

		return walletErr
	}

	if chainID != nil && session.ChainID == 0 {
		session.ChainID = *chainID
	}

	n.active = c
	n.store.connect(session.Address, session.ChainID, c.ID())
	n.recorder.ConnectCompleted(c.ID(), nil)

	logger.Info().
		Str(logging.FieldAddress, session.Address.Hex()).
		Uint64(logging.FieldChain, session.ChainID).
		Msg("Wallet connected")

	return nil
}

func (n *Negotiator) ownsLocked(c Connector) bool {
	return n.active != nil && n.active.ID() == c.ID()
}

// Pending reports whether a connect attempt is in flight.
func (n *Negotiator) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.pendingSeq != 0
}

// Cancel aborts the in-flight attempt, if any. Its result is discarded.
func (n *Negotiator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pendingSeq == 0 {
		return
	}

	n.seq++
	n.pendingSeq = 0

	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

// Active returns the connector of the current session.
func (n *Negotiator) Active() (Connector, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.active, n.active != nil
}

// Disconnect ends the current session. The store is reset even if the wallet fails
// to acknowledge.
func (n *Negotiator) Disconnect(ctx context.Context) error {
	n.mu.Lock()
	active := n.active
	n.active = nil
	n.mu.Unlock()

	n.store.disconnect()

	if active == nil {
		return nil
	}

	n.logger.Info().Str(logging.FieldConnector, active.ID()).Msg("Wallet disconnected")

	if err := active.Disconnect(ctx); err != nil {
		return Classify(err, "Failed to disconnect wallet")
	}

	return nil
}
