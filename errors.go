package signcore

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure at the boundary of the signing core.
// The string values are stable and cross the {success,data,error} envelope.
type ErrorCode string

const (
	// ErrCodeInvalidInput covers malformed hex, wrong-length buffers and bad path syntax.
	ErrCodeInvalidInput ErrorCode = "InvalidInput"
	// ErrCodeUnsupportedCombination covers curve/chain mismatches and non-hardened Ed25519 segments.
	ErrCodeUnsupportedCombination ErrorCode = "UnsupportedCombination"
	// ErrCodeSigningFailed means a cryptographic signing operation was refused.
	ErrCodeSigningFailed ErrorCode = "SigningFailed"
	// ErrCodeVerificationFailed means a verification or recovery could not be performed.
	ErrCodeVerificationFailed ErrorCode = "VerificationFailed"
	// ErrCodeIncompleteSignatureSet means a required pre-image has no matching signature.
	ErrCodeIncompleteSignatureSet ErrorCode = "IncompleteSignatureSet"
	// ErrCodeSignatureMismatch means a supplied signature does not verify against its public key.
	ErrCodeSignatureMismatch ErrorCode = "SignatureMismatch"
	// ErrCodeIncompleteURStream means a UR result was requested before all fragments arrived.
	ErrCodeIncompleteURStream ErrorCode = "IncompleteURStream"
	// ErrCodeUnknownURType means a UR frame carries an unrecognised or conflicting type.
	ErrCodeUnknownURType ErrorCode = "UnknownURType"
	// ErrCodeBridgeError is a boundary-level decode failure, not a cryptographic one.
	ErrCodeBridgeError ErrorCode = "BridgeError"
)

var (
	// ErrInvalidInput indicates malformed request data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPrivateKey indicates a private key that is not a valid 32-byte scalar for its curve.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidPublicKey indicates a public key that cannot be parsed for its curve.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPath indicates a derivation path that cannot be parsed or used.
	ErrInvalidPath = errors.New("invalid derivation path")

	// ErrUnsupportedCombination indicates an unsupported curve, chain or mode pairing.
	ErrUnsupportedCombination = errors.New("unsupported combination")

	// ErrSigningFailed indicates signing could not be completed.
	ErrSigningFailed = errors.New("signing failed")

	// ErrVerificationFailed indicates verification could not be completed.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrIncompleteSignatureSet indicates compilation was attempted without every signature.
	ErrIncompleteSignatureSet = errors.New("incomplete signature set")

	// ErrSignatureMismatch indicates a signature failed local verification before compilation.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrIncompleteURStream indicates the UR decoder has not seen every fragment.
	ErrIncompleteURStream = errors.New("incomplete UR stream")

	// ErrUnknownURType indicates an unknown or conflicting UR type.
	ErrUnknownURType = errors.New("unknown UR type")

	// ErrBridge indicates a request or response could not be decoded at the boundary.
	ErrBridge = errors.New("bridge error")
)

// sentinels maps each sentinel error to its boundary code.
var sentinels = map[error]ErrorCode{
	ErrInvalidInput:           ErrCodeInvalidInput,
	ErrInvalidPrivateKey:      ErrCodeInvalidInput,
	ErrInvalidPublicKey:       ErrCodeInvalidInput,
	ErrInvalidPath:            ErrCodeInvalidInput,
	ErrUnsupportedCombination: ErrCodeUnsupportedCombination,
	ErrSigningFailed:          ErrCodeSigningFailed,
	ErrVerificationFailed:     ErrCodeVerificationFailed,
	ErrIncompleteSignatureSet: ErrCodeIncompleteSignatureSet,
	ErrSignatureMismatch:      ErrCodeSignatureMismatch,
	ErrIncompleteURStream:     ErrCodeIncompleteURStream,
	ErrUnknownURType:          ErrCodeUnknownURType,
	ErrBridge:                 ErrCodeBridgeError,
}

// Error is a coded error carrying a human readable message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError creates a coded error wrapping err.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a sentinel with the same code, so that
// errors.Is(err, ErrSignatureMismatch) holds for any *Error coded SignatureMismatch.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == e.Code
	}
	// Key and path sentinels are narrower than their code; they only match through Unwrap.
	if target == ErrInvalidPrivateKey || target == ErrInvalidPublicKey || target == ErrInvalidPath {
		return false
	}
	for sentinel, code := range sentinels {
		if sentinel == target {
			return code == e.Code
		}
	}
	return false
}

// CodeOf returns the boundary code for err. Errors that carry neither a code
// nor a known sentinel map to InvalidInput.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	for sentinel, code := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ErrCodeInvalidInput
}

// Errorf builds a coded error whose cause is sentinel, formatted like fmt.Errorf.
func Errorf(sentinel error, format string, args ...any) error {
	code := ErrCodeInvalidInput
	for s, c := range sentinels {
		if s == sentinel {
			code = c
			break
		}
	}
	return NewError(code, fmt.Sprintf(format, args...), sentinel)
}
