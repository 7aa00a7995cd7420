// Package ui builds the views of the wallet front end from the wallet layer state.
// It holds no rendering code; templates and the JSON API render these views.
package ui

import (
	"context"

	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/services"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/rs/zerolog"
)

// ConnectView is shown while no wallet is connected.
type ConnectView struct {
	Modal ModalView `json:"modal"`
}

// Page is a full render. Exactly one of Connect and Account is set.
type Page struct {
	Connected bool         `json:"connected"`
	Connect   *ConnectView `json:"connect,omitempty"`
	Account   *AccountView `json:"account,omitempty"`
}

// RenderOptions are per-request view toggles.
type RenderOptions struct {
	NetworksOpen bool
}

// App picks between the connect flow and the account panel and routes user
// actions to the wallet layer.
type App struct {
	store      *wallet.Store
	modal      *Modal
	switcher   *wallet.Switcher
	negotiator *wallet.Negotiator
	accounts   *services.AccountService
	logger     zerolog.Logger
}

func NewApp(
	store *wallet.Store,
	modal *Modal,
	switcher *wallet.Switcher,
	negotiator *wallet.Negotiator,
	accounts *services.AccountService,
	logger zerolog.Logger,
) *App {
	return &App{
		store:      store,
		modal:      modal,
		switcher:   switcher,
		negotiator: negotiator,
		accounts:   accounts,
		logger:     logger.With().Str(logging.FieldModule, "app").Logger(),
	}
}

// Render builds the page for the current connection state.
func (a *App) Render(ctx context.Context, opts RenderOptions) Page {
	state := a.store.Snapshot()

	if !state.Connected {
		return Page{Connect: &ConnectView{Modal: a.modal.View()}}
	}

	account, _ := a.accounts.Account(ctx, state)
	network := a.Network(opts.NetworksOpen)
	view := BuildAccountView(state, account, network)

	return Page{Connected: true, Account: &view}
}

// Network returns the network switcher for the current state.
func (a *App) Network(open bool) NetworkView {
	return BuildNetworkView(a.switcher.Chains(), a.store.Snapshot(), a.switcher.State(), open)
}

func (a *App) State() wallet.State {
	return a.store.Snapshot()
}

// OpenModal opens the connect modal. It does nothing once connected.
func (a *App) OpenModal(ctx context.Context) ModalView {
	if a.store.Snapshot().Connected {
		return a.modal.View()
	}

	return a.modal.Open(ctx)
}

func (a *App) CloseModal() {
	a.modal.Close()
}

func (a *App) Modal() ModalView {
	return a.modal.View()
}

// Connect selects a connector in the modal. It reports whether a session was
// established.
func (a *App) Connect(ctx context.Context, connectorID string, chainID *uint64) (bool, error) {
	return a.modal.Select(ctx, connectorID, chainID)
}

// Disconnect ends the session and forgets its cached account data.
func (a *App) Disconnect(ctx context.Context) error {
	state := a.store.Snapshot()

	a.modal.Close()

	err := a.negotiator.Disconnect(ctx)
	if state.Connected {
		a.accounts.Refresh(state)
	}

	return err
}

// SwitchNetwork asks the switcher to move to chainID.
func (a *App) SwitchNetwork(ctx context.Context, chainID uint64) error {
	return a.switcher.Switch(ctx, chainID)
}

// Account returns the account data without the surrounding page.
func (a *App) Account(ctx context.Context) (services.Account, bool) {
	return a.accounts.Account(ctx, a.store.Snapshot())
}
