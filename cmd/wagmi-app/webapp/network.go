package webapp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	web "github.com/kemsguy7/wagmi-app/http"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/models"
	"github.com/pkg/errors"
)

func (h *handler) setupNetworkRoutes(rg *gin.RouterGroup) {
	rg.GET("/chains", h.listChains)
	rg.POST("/network", h.switchNetwork)
}

func (h *handler) listChains(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.App.Network(true))
}

func (h *handler) switchNetwork(c *gin.Context) {
	var req models.SwitchChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.ErrBadRequest(c, errors.Wrap(err, "invalid request"))
		return
	}

	h.logger.Debug().Uint64(logging.FieldChain, req.ChainID).Msg("Switch network request received")

	if err := h.deps.App.SwitchNetwork(c.Request.Context(), req.ChainID); err != nil {
		web.ErrWallet(c, err)
		return
	}

	c.JSON(http.StatusOK, h.deps.App.Network(false))
}
