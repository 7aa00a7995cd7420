package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/rs/zerolog"
)

// ChainVerifier checks that the application can talk to a chain before it becomes
// the active one.
type ChainVerifier interface {
	VerifyChain(ctx context.Context, chainID uint64) error
}

// SwitchState is the state of the network switcher. PendingChainID is non-zero while
// a switch is in flight; Err holds the last failure until the next attempt.
type SwitchState struct {
	PendingChainID uint64
	Err            *Error
}

// Switching reports whether a switch request is in flight.
func (s SwitchState) Switching() bool {
	return s.PendingChainID != 0
}

// Switcher issues chain switch requests.
type Switcher struct {
	chains     []Chain
	store      *Store
	negotiator *Negotiator
	verifier   ChainVerifier
	recorder   Recorder
	logger     zerolog.Logger

	mu    sync.Mutex
	state SwitchState
}

func NewSwitcher(
	chains []Chain,
	store *Store,
	negotiator *Negotiator,
	verifier ChainVerifier,
	recorder Recorder,
	logger zerolog.Logger,
) *Switcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Switcher{
		chains:     chains,
		store:      store,
		negotiator: negotiator,
		verifier:   verifier,
		recorder:   recorder,
		logger:     logger.With().Str(logging.FieldModule, "switcher").Logger(),
	}
}

// Chains returns the configured chains in display order.
func (s *Switcher) Chains() []Chain {
	out := make([]Chain, len(s.chains))
	copy(out, s.chains)

	return out
}

// State returns the current switcher state.
func (s *Switcher) State() SwitchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Switch makes chainID the active chain. Selecting the active chain, or selecting
// anything while a switch is in flight, is a no-op.
func (s *Switcher) Switch(ctx context.Context, chainID uint64) error {
	s.mu.Lock()

	if s.state.Switching() || chainID == s.store.Snapshot().ChainID {
		s.mu.Unlock()
		return nil
	}

	if !s.known(chainID) {
		err := NewError(KindUnsupportedChain, fmt.Sprintf("Chain %d is not configured", chainID))
		s.state.Err = err
		s.mu.Unlock()
		s.recorder.SwitchCompleted(chainID, err)

		return err
	}

	s.state = SwitchState{PendingChainID: chainID}
	s.mu.Unlock()

	logger := s.logger.With().Uint64(logging.FieldChain, chainID).Logger()
	logger.Info().Msg("Switching chain")

	err := s.switchChain(ctx, chainID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PendingChainID = 0
	s.recorder.SwitchCompleted(chainID, err)

	if err != nil {
		walletErr := Classify(err, MsgSwitchFailed)
		s.state.Err = walletErr
		logger.Warn().Err(err).Str("kind", string(walletErr.Kind)).Msg("Chain switch failed")

		return walletErr
	}

	s.store.setChain(chainID)
	logger.Info().Msg("Chain switched")

	return nil
}

func (s *Switcher) switchChain(ctx context.Context, chainID uint64) error {
	if s.negotiator != nil {
		if active, ok := s.negotiator.Active(); ok {
			if switcher, ok := active.(ChainSwitcher); ok {
				if err := switcher.SwitchChain(ctx, chainID); err != nil {
					return err
				}
			}
		}
	}

	if s.verifier == nil {
		return nil
	}

	return s.verifier.VerifyChain(ctx, chainID)
}

func (s *Switcher) known(chainID uint64) bool {
	for _, c := range s.chains {
		if c.ID == chainID {
			return true
		}
	}

	return false
}
