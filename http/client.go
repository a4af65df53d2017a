package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/api"
	"github.com/hawala-wallet/signcore/eip712"
	"github.com/hawala-wallet/signcore/retry"
)

// Client calls a remote signing service. Transport failures and gateway
// errors are retried; any answer carrying a signing error code is returned
// as is.
type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.Config
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, signcore.Errorf(signcore.ErrInvalidInput, "base URL cannot be empty")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		retry:   retry.DefaultConfig,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = httpClient
		return nil
	}
}

// WithRetry replaces the retry policy.
func WithRetry(config retry.Config) ClientOption {
	return func(c *Client) error {
		if err := config.Validate(); err != nil {
			return err
		}
		c.retry = config
		return nil
	}
}

// WithRequestTimeout bounds each attempt. Zero leaves only the caller's context.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative")
		}
		c.timeout = d
		return nil
	}
}

// RemoteError is a failure envelope returned by the service, with the HTTP
// status it came with.
type RemoteError struct {
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote status %d: %v", e.Status, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// retryable accepts transport failures and gateway statuses. A coded
// answer from the service is final even when its code is BridgeError.
func retryable(err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		switch remote.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return retry.Transient(err)
}

func call[Req, Resp any](ctx context.Context, c *Client, path string, req Req) (*Resp, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, signcore.NewError(signcore.ErrCodeBridgeError, "encoding request", err)
	}
	return retry.Do(ctx, c.retry, retryable, func(ctx context.Context) (*Resp, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeInvalidInput, "building request", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeBridgeError, "calling "+path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, signcore.NewError(signcore.ErrCodeBridgeError, "reading response", err)
		}
		res, err := signcore.DecodeResult[Resp](data)
		if err != nil {
			return nil, &RemoteError{Status: resp.StatusCode, Err: err}
		}
		out, err := res.Unwrap()
		if err != nil {
			return nil, &RemoteError{Status: resp.StatusCode, Err: err}
		}
		return &out, nil
	})
}

// DeriveKey calls PathDeriveKey.
func (c *Client) DeriveKey(ctx context.Context, req api.DeriveKeyRequest) (*api.DeriveKeyResponse, error) {
	return call[api.DeriveKeyRequest, api.DeriveKeyResponse](ctx, c, PathDeriveKey, req)
}

// PublicKey calls PathPublicKey.
func (c *Client) PublicKey(ctx context.Context, req api.PublicKeyRequest) (*api.PublicKeyResponse, error) {
	return call[api.PublicKeyRequest, api.PublicKeyResponse](ctx, c, PathPublicKey, req)
}

// Sign calls PathSign.
func (c *Client) Sign(ctx context.Context, req api.SignRequest) (*api.SignResponse, error) {
	return call[api.SignRequest, api.SignResponse](ctx, c, PathSign, req)
}

// Verify calls PathVerify.
func (c *Client) Verify(ctx context.Context, req api.VerifyRequest) (*api.VerifyResponse, error) {
	return call[api.VerifyRequest, api.VerifyResponse](ctx, c, PathVerify, req)
}

// SignMessage calls PathSignMessage.
func (c *Client) SignMessage(ctx context.Context, req api.SignMessageRequest) (*api.SignMessageResponse, error) {
	return call[api.SignMessageRequest, api.SignMessageResponse](ctx, c, PathSignMessage, req)
}

// VerifyMessage calls PathVerifyMessage.
func (c *Client) VerifyMessage(ctx context.Context, req api.VerifyMessageRequest) (*api.VerifyResponse, error) {
	return call[api.VerifyMessageRequest, api.VerifyResponse](ctx, c, PathVerifyMessage, req)
}

// HashTypedData calls PathHashTypedData.
func (c *Client) HashTypedData(ctx context.Context, req api.TypedDataRequest) (*eip712.Hashes, error) {
	return call[api.TypedDataRequest, eip712.Hashes](ctx, c, PathHashTypedData, req)
}

// SignTypedData calls PathSignTypedData.
func (c *Client) SignTypedData(ctx context.Context, req api.SignTypedDataRequest) (*api.SignTypedDataResponse, error) {
	return call[api.SignTypedDataRequest, api.SignTypedDataResponse](ctx, c, PathSignTypedData, req)
}

// RecoverTypedData calls PathRecoverTypedData.
func (c *Client) RecoverTypedData(ctx context.Context, req api.RecoverTypedDataRequest) (*api.RecoverTypedDataResponse, error) {
	return call[api.RecoverTypedDataRequest, api.RecoverTypedDataResponse](ctx, c, PathRecoverTypedData, req)
}

// TransferAuthorization calls PathTransferAuthorization.
func (c *Client) TransferAuthorization(ctx context.Context, req api.TransferAuthorizationRequest) (*api.TransferAuthorizationResponse, error) {
	return call[api.TransferAuthorizationRequest, api.TransferAuthorizationResponse](ctx, c, PathTransferAuthorization, req)
}

// BitcoinPreImages calls PathBitcoinPreImages.
func (c *Client) BitcoinPreImages(ctx context.Context, req api.BitcoinRequest) (*api.PreImagesResponse, error) {
	return call[api.BitcoinRequest, api.PreImagesResponse](ctx, c, PathBitcoinPreImages, req)
}

// BitcoinCompile calls PathBitcoinCompile.
func (c *Client) BitcoinCompile(ctx context.Context, req api.BitcoinRequest) (*signcore.BitcoinTransaction, error) {
	return call[api.BitcoinRequest, signcore.BitcoinTransaction](ctx, c, PathBitcoinCompile, req)
}

// EthereumPreImages calls PathEthereumPreImages.
func (c *Client) EthereumPreImages(ctx context.Context, req api.EthereumRequest) (*api.PreImagesResponse, error) {
	return call[api.EthereumRequest, api.PreImagesResponse](ctx, c, PathEthereumPreImages, req)
}

// EthereumCompile calls PathEthereumCompile.
func (c *Client) EthereumCompile(ctx context.Context, req api.EthereumRequest) (*signcore.EthereumTransaction, error) {
	return call[api.EthereumRequest, signcore.EthereumTransaction](ctx, c, PathEthereumCompile, req)
}

// RecoverAuthorizations calls PathRecoverAuthorizations.
func (c *Client) RecoverAuthorizations(ctx context.Context, req api.EthereumRequest) (*api.AuthoritiesResponse, error) {
	return call[api.EthereumRequest, api.AuthoritiesResponse](ctx, c, PathRecoverAuthorizations, req)
}

// CosmosPreImages calls PathCosmosPreImages.
func (c *Client) CosmosPreImages(ctx context.Context, req api.CosmosRequest) (*api.PreImagesResponse, error) {
	return call[api.CosmosRequest, api.PreImagesResponse](ctx, c, PathCosmosPreImages, req)
}

// CosmosCompile calls PathCosmosCompile.
func (c *Client) CosmosCompile(ctx context.Context, req api.CosmosRequest) (*signcore.CosmosTransaction, error) {
	return call[api.CosmosRequest, signcore.CosmosTransaction](ctx, c, PathCosmosCompile, req)
}

// SolanaPreImages calls PathSolanaPreImages.
func (c *Client) SolanaPreImages(ctx context.Context, req api.SolanaRequest) (*api.PreImagesResponse, error) {
	return call[api.SolanaRequest, api.PreImagesResponse](ctx, c, PathSolanaPreImages, req)
}

// SolanaCompile calls PathSolanaCompile.
func (c *Client) SolanaCompile(ctx context.Context, req api.SolanaRequest) (*signcore.SolanaTransaction, error) {
	return call[api.SolanaRequest, signcore.SolanaTransaction](ctx, c, PathSolanaCompile, req)
}

// EncodeUR calls PathEncodeUR.
func (c *Client) EncodeUR(ctx context.Context, req api.EncodeURRequest) (*api.EncodeURResponse, error) {
	return call[api.EncodeURRequest, api.EncodeURResponse](ctx, c, PathEncodeUR, req)
}

// DecodeUR calls PathDecodeUR.
func (c *Client) DecodeUR(ctx context.Context, req api.DecodeURRequest) (*api.DecodeURResponse, error) {
	return call[api.DecodeURRequest, api.DecodeURResponse](ctx, c, PathDecodeUR, req)
}
