package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
)

var kindStatus = map[wallet.Kind]int{
	wallet.KindPending:          http.StatusConflict,
	wallet.KindNotReady:         http.StatusConflict,
	wallet.KindCancelled:        http.StatusConflict,
	wallet.KindUnsupportedChain: http.StatusBadRequest,
	wallet.KindUserRejected:     http.StatusForbidden,
	wallet.KindUnauthorized:     http.StatusForbidden,
	wallet.KindProviderMissing:  http.StatusBadGateway,
	wallet.KindDisconnected:     http.StatusBadGateway,
	wallet.KindTimeout:          http.StatusGatewayTimeout,
}

func ErrNotFound(c *gin.Context, err error) {
	Err(c, http.StatusNotFound, err)
}

func ErrBadRequest(c *gin.Context, err error) {
	Err(c, http.StatusBadRequest, err)
}

func ErrInternalServerError(c *gin.Context, err error) {
	Err(c, http.StatusInternalServerError, err)
}

// ErrWallet answers with the status matching the wallet error kind, plus the kind
// and its remediation hint.
func ErrWallet(c *gin.Context, err error) {
	var walletErr *wallet.Error
	if !errors.As(err, &walletErr) {
		ErrInternalServerError(c, err)
		return
	}

	code, ok := kindStatus[walletErr.Kind]
	if !ok {
		code = http.StatusInternalServerError
	}

	body := gin.H{
		"error": walletErr.Message,
		"kind":  walletErr.Kind,
	}

	if hint := walletErr.Hint(); hint != "" {
		body["hint"] = hint
	}

	c.JSON(code, body)
}

func Err(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}
