package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Kind classifies wallet failures so callers never have to match on message text.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindProviderMissing  Kind = "provider_missing"
	KindUserRejected     Kind = "user_rejected"
	KindUnauthorized     Kind = "unauthorized"
	KindUnsupportedChain Kind = "unsupported_chain"
	KindDisconnected     Kind = "disconnected"
	KindTimeout          Kind = "timeout"
	KindPending          Kind = "pending"
	KindNotReady         Kind = "not_ready"
	KindCancelled        Kind = "cancelled"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected      = 4001
	codeUnauthorized      = 4100
	codeUnsupported       = 4200
	codeDisconnected      = 4900
	codeChainDisconnected = 4901
	codeUnrecognizedChain = 4902
)

const (
	MsgConnectFailed = "Failed to connect to wallet"
	MsgProbeFailed   = "Failed to initialize wallet connectors"
	MsgSwitchFailed  = "Failed to switch network"
)

var hints = map[Kind]string{
	KindProviderMissing:  "Please make sure you have a wallet extension installed.",
	KindUserRejected:     "The request was rejected in your wallet. Try again and approve it.",
	KindUnauthorized:     "Unlock your wallet and authorize this application, then retry.",
	KindUnsupportedChain: "Add this network to your wallet before switching to it.",
	KindDisconnected:     "Your wallet lost its connection to the network. Reconnect it and retry.",
	KindTimeout:          "The wallet did not answer in time. Check that it is running.",
	KindPending:          "A request is already in progress. Wait for it to finish.",
}

// Error is a classified wallet failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Hint returns the remediation hint for the error kind, if any.
func (e *Error) Hint() string {
	return HintFor(e.Kind)
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// HintFor returns a one-line hint for the kind or an empty string.
func HintFor(kind Kind) string {
	return hints[kind]
}

// KindOf derives the kind of an arbitrary error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var walletErr *Error
	if errors.As(err, &walletErr) {
		return walletErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return KindUserRejected
		case codeUnauthorized:
			return KindUnauthorized
		case codeUnrecognizedChain, codeUnsupported:
			return KindUnsupportedChain
		case codeDisconnected, codeChainDisconnected:
			return KindDisconnected
		}
	}

	return KindUnknown
}

// Classify turns any error into an *Error. The message is the error text, or fallback
// when the error carries none.
func Classify(err error, fallback string) *Error {
	if err == nil {
		return nil
	}

	var walletErr *Error
	if errors.As(err, &walletErr) {
		if walletErr.Message != "" {
			return walletErr
		}

		return &Error{Kind: walletErr.Kind, Message: fallback, Cause: walletErr.Cause}
	}

	msg := err.Error()
	if msg == "" {
		msg = fallback
	}

	return &Error{Kind: KindOf(err), Message: msg, Cause: err}
}
