// Package client calls the signing tools of a remote MCP server.
package client

import (
	"context"
	"fmt"

	"github.com/hawala-wallet/signcore/api"
	"github.com/hawala-wallet/signcore/eip712"
	"github.com/hawala-wallet/signcore/mcp"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ClientName is reported to the server during initialization.
const ClientName = "signcore-client"

// Client is an initialized MCP session.
type Client struct {
	session *mcpclient.Client
}

// Dial connects to a streamable HTTP MCP endpoint and initializes a session.
func Dial(ctx context.Context, serverURL string) (*Client, error) {
	session, err := mcpclient.NewStreamableHttpClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return start(ctx, session)
}

// NewInProcess opens a session on a server in the same process.
func NewInProcess(ctx context.Context, srv *mcpserver.MCPServer) (*Client, error) {
	session, err := mcpclient.NewInProcessClient(srv)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process client: %w", err)
	}
	return start(ctx, session)
}

func start(ctx context.Context, session *mcpclient.Client) (*Client, error) {
	if err := session.Start(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	initReq := mcpproto.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpproto.Implementation{Name: ClientName, Version: "0.1.0"}
	if _, err := session.Initialize(ctx, initReq); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return &Client{session: session}, nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}

// Tools lists the tool names the server offers.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	res, err := c.session.ListTools(ctx, mcpproto.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res.Tools))
	for _, t := range res.Tools {
		names = append(names, t.Name)
	}
	return names, nil
}

func call[Req, Resp any](ctx context.Context, c *Client, tool string, args Req) (*Resp, error) {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := c.session.CallTool(ctx, req)
	if err != nil {
		return nil, &mcp.ToolError{Tool: tool, Err: err}
	}
	out, err := mcp.DecodeResult[Resp](res)
	if err != nil {
		return nil, &mcp.ToolError{Tool: tool, Err: err}
	}
	return out, nil
}

// DeriveAddress calls mcp.ToolDeriveAddress.
func (c *Client) DeriveAddress(ctx context.Context, req api.DeriveKeyRequest) (*api.DeriveKeyResponse, error) {
	return call[api.DeriveKeyRequest, api.DeriveKeyResponse](ctx, c, mcp.ToolDeriveAddress, req)
}

// SignMessage calls mcp.ToolSignMessage.
func (c *Client) SignMessage(ctx context.Context, req api.SignMessageRequest) (*api.SignMessageResponse, error) {
	return call[api.SignMessageRequest, api.SignMessageResponse](ctx, c, mcp.ToolSignMessage, req)
}

// VerifyMessage calls mcp.ToolVerifyMessage.
func (c *Client) VerifyMessage(ctx context.Context, req api.VerifyMessageRequest) (*api.VerifyResponse, error) {
	return call[api.VerifyMessageRequest, api.VerifyResponse](ctx, c, mcp.ToolVerifyMessage, req)
}

// HashTypedData calls mcp.ToolHashTypedData.
func (c *Client) HashTypedData(ctx context.Context, req api.TypedDataRequest) (*eip712.Hashes, error) {
	return call[api.TypedDataRequest, eip712.Hashes](ctx, c, mcp.ToolHashTypedData, req)
}

// EncodeUR calls mcp.ToolEncodeUR.
func (c *Client) EncodeUR(ctx context.Context, req api.EncodeURRequest) (*api.EncodeURResponse, error) {
	return call[api.EncodeURRequest, api.EncodeURResponse](ctx, c, mcp.ToolEncodeUR, req)
}

// DecodeUR calls mcp.ToolDecodeUR.
func (c *Client) DecodeUR(ctx context.Context, req api.DecodeURRequest) (*api.DecodeURResponse, error) {
	return call[api.DecodeURRequest, api.DecodeURResponse](ctx, c, mcp.ToolDecodeUR, req)
}
