package api

import (
	"errors"
	"net/http"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/ledger"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeUnauthorized   = -32001
	CodeRejected       = -32010
	CodeNotFound       = -32004
	CodeConflict       = -32009
	CodeFunds          = -32020
)

var (
	// ErrSignatureRequired indicates a mutating call without a request signature.
	ErrSignatureRequired = errors.New("api: signed request required")

	// ErrInvalidAPIKey indicates a missing or wrong X-Ibom-Api-Key header.
	ErrInvalidAPIKey = errors.New("api: invalid api key")
)

// rpcCode groups ledger codes into JSON-RPC error codes. The exact ledger
// code is always carried in data.name.
func rpcCode(code string) int {
	switch code {
	case ledger.CodeUnauthorized:
		return CodeUnauthorized
	case ledger.CodeWorkNotFound, ledger.CodePoolNotFound:
		return CodeNotFound
	case ledger.CodeWorkExists, ledger.CodePoolExists:
		return CodeConflict
	case ledger.CodeInsufficientFunds, ledger.CodeBalanceOverflow:
		return CodeFunds
	case ledger.CodeInternal, ledger.CodeCanceled:
		return CodeInternalError
	}
	return CodeRejected
}

// errorObject converts a handler error into the wire form.
func errorObject(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ErrSignatureRequired) || isAuthFailure(err) {
		return &Error{Code: CodeUnauthorized, Message: err.Error(), Data: &ErrorData{Name: ledger.CodeUnauthorized}}
	}
	code := ledger.Code(err)
	msg := err.Error()
	if code == ledger.CodeInternal {
		msg = "internal error"
	}
	return &Error{Code: rpcCode(code), Message: msg, Data: &ErrorData{Name: code}}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrMissingSignature) ||
		errors.Is(err, auth.ErrInvalidSignature) ||
		errors.Is(err, auth.ErrInvalidPublicKey) ||
		errors.Is(err, auth.ErrStaleRequest) ||
		errors.Is(err, auth.ErrReplayedRequest)
}

// httpStatus is the transport status for a failed request. Ledger
// rejections are successful HTTP exchanges carrying an error object.
func httpStatus(e *Error) int {
	switch e.Code {
	case CodeParseError, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeInternalError:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func invalidParams(err error) *Error {
	return &Error{Code: CodeInvalidParams, Message: err.Error()}
}
