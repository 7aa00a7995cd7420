package ui

import (
	"github.com/kemsguy7/wagmi-app/wallet"
)

const (
	unknownNetwork  = "Unknown Network"
	switchingSuffix = " (switching...)"
)

// ChainOption is one entry of the network dropdown.
type ChainOption struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

// NetworkView is the network switcher: the current chain plus, when open, the
// dropdown of configured chains.
type NetworkView struct {
	Open      bool          `json:"open"`
	CurrentID uint64        `json:"current_id"`
	Current   string        `json:"current"`
	Switching bool          `json:"switching"`
	Options   []ChainOption `json:"options"`
	Error     string        `json:"error,omitempty"`
	Hint      string        `json:"hint,omitempty"`
}

// BuildNetworkView lays out the switcher for the given state. The active chain and,
// while a switch is pending, every chain is disabled.
func BuildNetworkView(chains []wallet.Chain, state wallet.State, switchState wallet.SwitchState, open bool) NetworkView {
	view := NetworkView{
		Open:      open,
		CurrentID: state.ChainID,
		Current:   unknownNetwork,
		Switching: switchState.Switching(),
		Options:   make([]ChainOption, 0, len(chains)),
	}

	for _, c := range chains {
		active := c.ID == state.ChainID
		if active {
			view.Current = c.Name
		}

		label := c.Name
		if switchState.PendingChainID == c.ID {
			label += switchingSuffix
		}

		view.Options = append(view.Options, ChainOption{
			ID:       c.ID,
			Name:     c.Name,
			Label:    label,
			Active:   active,
			Disabled: active || view.Switching,
		})
	}

	if switchState.Err != nil {
		view.Error = switchState.Err.Message
		view.Hint = switchState.Err.Hint()
	}

	return view
}
