package webapp

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	web "github.com/kemsguy7/wagmi-app/http"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/ui"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

const pageTemplate = "index.tmpl"

func (h *handler) setupPageRoutes() error {
	tmpl, err := template.New("").ParseFS(assets, "templates/*.tmpl")
	if err != nil {
		return errors.Wrap(err, "failed to parse templates")
	}

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return errors.Wrap(err, "failed to open static assets")
	}

	h.SetHTMLTemplate(tmpl)
	h.StaticFS("/static", http.FS(static))

	h.GET("/", h.renderPage)
	h.POST("/connect/:id", h.selectConnector)
	h.POST("/modal/close", h.closeModal)
	h.POST("/disconnect", h.disconnectPage)
	h.POST("/network/:chainID", h.switchNetworkPage)

	return nil
}

// renderPage shows the connect or the account view. ?modal=open opens the connect
// modal, ?networks=open unfolds the network dropdown.
func (h *handler) renderPage(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("modal") == "open" {
		h.deps.App.OpenModal(ctx)
	}

	page := h.deps.App.Render(ctx, ui.RenderOptions{
		NetworksOpen: c.Query("networks") == "open",
	})

	c.HTML(http.StatusOK, pageTemplate, page)
}

func (h *handler) selectConnector(c *gin.Context) {
	id := c.Param("id")

	connected, err := h.deps.App.Connect(c.Request.Context(), id, nil)
	if err != nil {
		// the modal keeps the error for the next render
		h.logger.Debug().Err(err).Str(logging.FieldConnector, id).Msg("Connect from page failed")
	}

	h.logger.Debug().Bool("connected", connected).Str(logging.FieldConnector, id).Msg("Connector selected")

	redirectHome(c)
}

func (h *handler) closeModal(c *gin.Context) {
	h.deps.App.CloseModal()
	redirectHome(c)
}

func (h *handler) disconnectPage(c *gin.Context) {
	if err := h.deps.App.Disconnect(c.Request.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Wallet did not acknowledge disconnect")
	}

	redirectHome(c)
}

func (h *handler) switchNetworkPage(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Param("chainID"), 10, 64)
	if err != nil {
		web.ErrBadRequest(c, errors.Wrap(ErrParamRequired, "chain id"))
		return
	}

	// the switcher keeps the error for the next render
	if err := h.deps.App.SwitchNetwork(c.Request.Context(), chainID); err != nil {
		h.logger.Debug().Err(err).Str("kind", string(wallet.KindOf(err))).Msg("Switch from page failed")
	}

	redirectHome(c)
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
