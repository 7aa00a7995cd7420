package models

// ConnectRequest represents the request body for connecting a wallet
type ConnectRequest struct {
	ConnectorID string  `json:"connector_id" binding:"required"`
	ChainID     *uint64 `json:"chain_id"`
}

// SwitchChainRequest represents the request body for switching the active network
type SwitchChainRequest struct {
	ChainID uint64 `json:"chain_id" binding:"required"`
}
