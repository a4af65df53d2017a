// Package mcp exposes the off-chain signing operations as MCP tools.
//
// Every tool answers with the same {success,data,error} envelope the HTTP
// front end uses, carried as structured content with a JSON text fallback.
// A failed operation sets IsError on the tool result; it is never a
// JSON-RPC error, so clients always see the error code.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hawala-wallet/signcore"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
)

// ErrEmptyResult indicates a tool result with no text content to decode.
var ErrEmptyResult = errors.New("tool result has no text content")

// ToolError ties an error to the tool that produced it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// SuccessResult wraps v in a success envelope.
func SuccessResult[T any](v T) *mcpproto.CallToolResult {
	return envelopeResult(signcore.OK(v), false)
}

// ErrorResult wraps err in a failure envelope and marks the result as an error.
func ErrorResult(err error) *mcpproto.CallToolResult {
	return envelopeResult(signcore.Fail[struct{}](err), true)
}

func envelopeResult(env any, isError bool) *mcpproto.CallToolResult {
	text, err := json.Marshal(env)
	if err != nil {
		// Envelopes hold only JSON-safe values.
		text = []byte(fmt.Sprintf(`{"success":false,"data":null,"error":{"code":%q,"message":%q}}`,
			signcore.ErrCodeBridgeError, err.Error()))
		isError = true
	}
	res := mcpproto.NewToolResultStructured(json.RawMessage(text), string(text))
	res.IsError = isError
	return res
}

// DecodeResult reads the envelope from a tool result's text content and
// returns its data or its coded error.
func DecodeResult[T any](res *mcpproto.CallToolResult) (*T, error) {
	if res == nil {
		return nil, signcore.NewError(signcore.ErrCodeBridgeError, "nil tool result", ErrEmptyResult)
	}
	for _, c := range res.Content {
		text, ok := mcpproto.AsTextContent(c)
		if !ok {
			continue
		}
		env, err := signcore.DecodeResult[T]([]byte(text.Text))
		if err != nil {
			return nil, err
		}
		v, err := env.Unwrap()
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	return nil, signcore.NewError(signcore.ErrCodeBridgeError, "decoding tool result", ErrEmptyResult)
}
