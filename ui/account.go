package ui

import (
	"github.com/kemsguy7/wagmi-app/services"
	"github.com/kemsguy7/wagmi-app/wallet"
)

// AccountView is the connected-wallet panel.
type AccountView struct {
	Address        string      `json:"address"`
	DisplayAddress string      `json:"display_address"`
	Name           string      `json:"name,omitempty"`
	Balance        string      `json:"balance"`
	ConnectorID    string      `json:"connector_id"`
	Network        NetworkView `json:"network"`
}

// BuildAccountView combines the session with whatever account data is available.
func BuildAccountView(state wallet.State, account services.Account, network NetworkView) AccountView {
	return AccountView{
		Address:        state.Address,
		DisplayAddress: DisplayAddress(state.Address, account.Name),
		Name:           account.Name,
		Balance:        FormatBalance(account.Balance),
		ConnectorID:    state.ConnectorID,
		Network:        network,
	}
}
