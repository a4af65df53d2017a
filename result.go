package signcore

import (
	"encoding/json"
	"errors"
)

// Result is the tagged {success, data, error} envelope used by callers that
// cross a process or language boundary. In-process callers use plain
// (value, error) returns instead.
type Result[T any] struct {
	Success bool       `json:"success"`
	Data    *T         `json:"data"`
	Error   *ErrorBody `json:"error"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{Success: true, Data: &v}
}

// Fail wraps an error, keeping its code when it has one.
func Fail[T any](err error) Result[T] {
	body := &ErrorBody{Code: CodeOf(err), Message: err.Error()}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		body.Message = coded.Message
	}
	return Result[T]{Error: body}
}

// From builds an envelope from a (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return OK(v)
}

// Unwrap converts an envelope back into a (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	var zero T
	if !r.Success {
		if r.Error == nil {
			return zero, NewError(ErrCodeBridgeError, "envelope reports failure without an error body", ErrBridge)
		}
		return zero, NewError(r.Error.Code, r.Error.Message, nil)
	}
	if r.Data == nil {
		return zero, NewError(ErrCodeBridgeError, "envelope reports success without data", ErrBridge)
	}
	return *r.Data, nil
}

// DecodeResult parses an envelope from JSON.
func DecodeResult[T any](data []byte) (Result[T], error) {
	var r Result[T]
	if err := json.Unmarshal(data, &r); err != nil {
		return r, NewError(ErrCodeBridgeError, "malformed result envelope", err)
	}
	return r, nil
}
