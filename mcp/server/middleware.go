package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/mcp"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// logging records the tool name, outcome and latency of every call.
func logging(logger *slog.Logger) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)

			attrs := []any{"tool", req.Params.Name, "duration", time.Since(start)}
			switch {
			case err != nil:
				logger.ErrorContext(ctx, "tool call failed", append(attrs, "error", err)...)
			case res != nil && res.IsError:
				logger.InfoContext(ctx, "tool call rejected", attrs...)
			default:
				logger.DebugContext(ctx, "tool call", attrs...)
			}
			return res, err
		}
	}
}

// timeout answers with a BridgeError envelope once d has elapsed. The
// operations are synchronous, so the abandoned call finishes in the
// background and its result is dropped.
func timeout(d time.Duration) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type outcome struct {
				res *mcpproto.CallToolResult
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				res, err := next(ctx, req)
				done <- outcome{res, err}
			}()

			select {
			case out := <-done:
				return out.res, out.err
			case <-ctx.Done():
				return mcp.ErrorResult(signcore.NewError(signcore.ErrCodeBridgeError, "tool call timed out", ctx.Err())), nil
			}
		}
	}
}
