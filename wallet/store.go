package wallet

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// State is the connection state of the application.
type State struct {
	Connected   bool   `json:"connected"`
	Address     string `json:"address,omitempty"`
	ChainID     uint64 `json:"chain_id"`
	ConnectorID string `json:"connector_id,omitempty"`
}

// Observer receives every state change, in order.
type Observer func(State)

// Store owns the connection state. It is only mutated by the Negotiator and the
// Switcher; everybody else reads snapshots or subscribes.
type Store struct {
	mu        sync.RWMutex
	state     State
	observers map[int]Observer
	nextID    int

	// serializes notifications so observers see changes in order
	notifyMu sync.Mutex
}

// NewStore creates a disconnected store on the given chain.
func NewStore(chainID uint64) *Store {
	return &Store{
		state:     State{ChainID: chainID},
		observers: make(map[int]Observer),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(obs Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = obs
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) connect(address common.Address, chainID uint64, connectorID string) {
	s.update(func(st *State) {
		st.Connected = true
		st.Address = address.Hex()
		st.ConnectorID = connectorID
		if chainID != 0 {
			st.ChainID = chainID
		}
	})
}

func (s *Store) disconnect() {
	s.update(func(st *State) {
		st.Connected = false
		st.Address = ""
		st.ConnectorID = ""
	})
}

func (s *Store) setChain(chainID uint64) {
	s.update(func(st *State) {
		st.ChainID = chainID
	})
}

func (s *Store) update(fn func(*State)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state
	fn(&s.state)
	next := s.state

	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	if prev == next {
		return
	}

	for _, obs := range observers {
		obs(next)
	}
}
