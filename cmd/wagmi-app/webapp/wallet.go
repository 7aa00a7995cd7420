package webapp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	web "github.com/kemsguy7/wagmi-app/http"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/models"
	"github.com/kemsguy7/wagmi-app/ui"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
)

func (h *handler) setupWalletRoutes(rg *gin.RouterGroup) {
	rg.GET("/state", h.getState)
	rg.GET("/connectors", h.listConnectors)
	rg.POST("/connect", h.connect)
	rg.POST("/disconnect", h.disconnect)
	rg.GET("/account", h.getAccount)
}

func (h *handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.App.State())
}

// listConnectors opens the connect modal, probing every connector.
func (h *handler) listConnectors(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.App.OpenModal(c.Request.Context()))
}

func (h *handler) connect(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.ErrBadRequest(c, errors.Wrap(err, "invalid request"))
		return
	}

	if h.deps.App.State().Connected {
		web.Err(c, http.StatusConflict, ErrAlreadyConnected)
		return
	}

	if !h.deps.App.Modal().Open {
		h.deps.App.OpenModal(ctx)
	}

	h.logger.Debug().Str(logging.FieldConnector, req.ConnectorID).Msg("Connect request received")

	connected, err := h.deps.App.Connect(ctx, req.ConnectorID, req.ChainID)
	if err != nil {
		web.ErrWallet(c, err)
		return
	}

	if !connected {
		web.ErrWallet(c, wallet.NewError(wallet.KindNotReady, "Connector is not available: "+req.ConnectorID))
		return
	}

	c.JSON(http.StatusOK, h.deps.App.State())
}

func (h *handler) disconnect(c *gin.Context) {
	if err := h.deps.App.Disconnect(c.Request.Context()); err != nil {
		// the session is gone locally either way
		h.logger.Warn().Err(err).Msg("Wallet did not acknowledge disconnect")
	}

	c.JSON(http.StatusOK, h.deps.App.State())
}

func (h *handler) getAccount(c *gin.Context) {
	account, ok := h.deps.App.Account(c.Request.Context())
	if !ok {
		web.ErrNotFound(c, ErrNotConnected)
		return
	}

	view := ui.BuildAccountView(h.deps.App.State(), account, h.deps.App.Network(false))

	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"view":    view,
	})
}
