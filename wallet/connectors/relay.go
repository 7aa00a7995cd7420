package connectors

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/rs/zerolog"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
)

// relayRequestTimeout bounds a single relay round trip. Pairing waits for the user to
// scan the QR code, so it is generous.
const relayRequestTimeout = 2 * time.Minute

// Relay pairs with a remote wallet through a QR relay service.
type Relay struct {
	url       string
	projectID string
	client    *gentleman.Client
	logger    zerolog.Logger

	mu        sync.Mutex
	pairingID string
}

var (
	_ wallet.Connector   = (*Relay)(nil)
	_ wallet.QRConnector = (*Relay)(nil)
)

type pairingRequest struct {
	ID      string  `json:"id"`
	ChainID *uint64 `json:"chainId,omitempty"`
}

type pairingResponse struct {
	Accounts []common.Address `json:"accounts"`
	ChainID  uint64           `json:"chainId"`
}

type relayError struct {
	Error string `json:"error"`
}

func NewRelay(url, projectID string, logger zerolog.Logger) *Relay {
	client := gentleman.New().BaseURL(url)
	client.Use(timeout.Request(relayRequestTimeout))

	return &Relay{
		url:       url,
		projectID: projectID,
		client:    client,
		logger: logger.With().
			Str(logging.FieldModule, "relay_connector").
			Str(logging.FieldConnector, RelayID).
			Logger(),
	}
}

func (c *Relay) ID() string   { return RelayID }
func (c *Relay) Name() string { return "WalletConnect" }

// Configured reports whether both the relay URL and the project id are set.
func (c *Relay) Configured() bool {
	return c.url != "" && c.projectID != ""
}

func (c *Relay) Connect(ctx context.Context, chainID *uint64) (wallet.Session, error) {
	if !c.Configured() {
		return wallet.Session{}, wallet.NewError(wallet.KindNotReady, "WalletConnect relay is not configured")
	}

	pairingID := uuid.New().String()

	req := c.client.Request().
		Method(http.MethodPost).
		Path("/v1/pairings").
		AddQuery("projectId", c.projectID).
		JSON(pairingRequest{ID: pairingID, ChainID: chainID})

	res, err := withContext(ctx, req.Do)
	if err != nil {
		if wallet.KindOf(err) == wallet.KindTimeout {
			return wallet.Session{}, err
		}

		return wallet.Session{}, wallet.WrapError(wallet.KindProviderMissing, "WalletConnect relay is unreachable", err)
	}

	if !res.Ok {
		return wallet.Session{}, relayFailure(res)
	}

	var body pairingResponse
	if err := res.JSON(&body); err != nil {
		return wallet.Session{}, wallet.WrapError(wallet.KindUnknown, "WalletConnect relay sent an invalid response", err)
	}

	if len(body.Accounts) == 0 {
		return wallet.Session{}, wallet.NewError(wallet.KindUnauthorized, "WalletConnect session has no account")
	}

	c.mu.Lock()
	c.pairingID = pairingID
	c.mu.Unlock()

	c.logger.Debug().
		Str("pairing_id", pairingID).
		Str(logging.FieldAddress, body.Accounts[0].Hex()).
		Msg("Paired with remote wallet")

	return wallet.Session{Address: body.Accounts[0], ChainID: body.ChainID}, nil
}

// Disconnect deletes the active pairing on the relay.
func (c *Relay) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	pairingID := c.pairingID
	c.pairingID = ""
	c.mu.Unlock()

	if pairingID == "" {
		return nil
	}

	req := c.client.Request().
		Method(http.MethodDelete).
		Path("/v1/pairings/" + pairingID).
		AddQuery("projectId", c.projectID)

	res, err := withContext(ctx, req.Do)
	if err != nil {
		return err
	}

	if !res.Ok && res.StatusCode != http.StatusNotFound {
		return relayFailure(res)
	}

	return nil
}

func relayFailure(res *gentleman.Response) error {
	var body relayError
	_ = res.JSON(&body)

	message := body.Error
	if message == "" {
		message = fmt.Sprintf("WalletConnect relay answered %d", res.StatusCode)
	}

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return wallet.NewError(wallet.KindUnauthorized, message)
	case http.StatusGone:
		return wallet.NewError(wallet.KindUserRejected, message)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return wallet.NewError(wallet.KindTimeout, message)
	default:
		return wallet.NewError(wallet.KindUnknown, message)
	}
}
