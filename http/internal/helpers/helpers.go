// Package helpers holds the request decoding and envelope writing shared by
// the stdlib, Chi and Gin front ends so they answer identically.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hawala-wallet/signcore"
)

// DefaultMaxBodyBytes bounds request bodies. Large PSBTs and Solana
// transactions stay well below it.
const DefaultMaxBodyBytes = 1 << 20

// DecodeJSON reads one JSON value from r into v. Unknown fields are
// rejected so that a misspelled field cannot silently drop a parameter.
//
// Every failure is a BridgeError: the request never reached the core.
func DecodeJSON(r *http.Request, maxBytes int64, v any) error {
	if r.Body == nil {
		return signcore.Errorf(signcore.ErrBridge, "request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return signcore.Errorf(signcore.ErrBridge, "request body is empty")
		}
		var coded *signcore.Error
		if errors.As(err, &coded) {
			// Field decoders such as HexBytes already classify their failure.
			return err
		}
		return signcore.NewError(signcore.ErrCodeBridgeError, "malformed request body", err)
	}
	if dec.More() {
		return signcore.Errorf(signcore.ErrBridge, "request body holds more than one JSON value")
	}
	if dec.InputOffset() > maxBytes {
		return signcore.Errorf(signcore.ErrBridge, "request body exceeds %d bytes", maxBytes)
	}
	return nil
}

// Status maps an error code to the HTTP status that carries it.
func Status(code signcore.ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case signcore.ErrCodeInvalidInput, signcore.ErrCodeUnsupportedCombination,
		signcore.ErrCodeUnknownURType, signcore.ErrCodeBridgeError:
		return http.StatusBadRequest
	case signcore.ErrCodeVerificationFailed, signcore.ErrCodeSignatureMismatch,
		signcore.ErrCodeIncompleteSignatureSet, signcore.ErrCodeIncompleteURStream:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignore encoding errors - the status line is already sent.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResult writes a {success,data,error} envelope with the status that
// matches its error code.
func WriteResult[T any](w http.ResponseWriter, res signcore.Result[T]) {
	status := http.StatusOK
	if res.Error != nil {
		status = Status(res.Error.Code)
	}
	WriteJSON(w, status, res)
}

// WriteError writes a failure envelope with an explicit status, for
// failures such as timeouts that have no natural code mapping.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, signcore.Fail[struct{}](err))
}
