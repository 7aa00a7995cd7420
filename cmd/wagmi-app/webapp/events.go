package webapp

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/kemsguy7/wagmi-app/wallet"
)

const eventState = "state"

// streamEvents sends the current state, then every change, as server-sent events.
func (h *handler) streamEvents(c *gin.Context) {
	updates := make(chan wallet.State, 16)

	unsubscribe := h.deps.Events.Subscribe(func(s wallet.State) {
		select {
		case updates <- s:
		default:
			h.logger.Warn().Msg("Event stream is lagging, dropping state update")
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent(eventState, h.deps.App.State())
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case s := <-updates:
			c.SSEvent(eventState, s)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
