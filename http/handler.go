// Package http serves the signing core over JSON/HTTP and calls a remote
// instance of it.
//
// Every endpoint takes a POST body from package api and answers with a
// signcore.Result envelope:
//
//	{"success": true,  "data": {...}, "error": null}
//	{"success": false, "data": null,  "error": {"code": "SignatureMismatch", "message": "..."}}
//
// The handler holds no keys or sessions; each request is independent.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hawala-wallet/signcore"
	"github.com/hawala-wallet/signcore/api"
	"github.com/hawala-wallet/signcore/http/internal/helpers"
)

// Paths served by Handler.
const (
	PathDeriveKey             = "/v1/keys/derive"
	PathPublicKey             = "/v1/keys/public"
	PathSign                  = "/v1/sign"
	PathVerify                = "/v1/verify"
	PathSignMessage           = "/v1/messages/sign"
	PathVerifyMessage         = "/v1/messages/verify"
	PathHashTypedData         = "/v1/typeddata/hash"
	PathSignTypedData         = "/v1/typeddata/sign"
	PathRecoverTypedData      = "/v1/typeddata/recover"
	PathTransferAuthorization = "/v1/typeddata/transfer-authorization"
	PathBitcoinPreImages      = "/v1/bitcoin/preimages"
	PathBitcoinCompile        = "/v1/bitcoin/compile"
	PathEthereumPreImages     = "/v1/ethereum/preimages"
	PathEthereumCompile       = "/v1/ethereum/compile"
	PathRecoverAuthorizations = "/v1/ethereum/authorizations/recover"
	PathCosmosPreImages       = "/v1/cosmos/preimages"
	PathCosmosCompile         = "/v1/cosmos/compile"
	PathSolanaPreImages       = "/v1/solana/preimages"
	PathSolanaCompile         = "/v1/solana/compile"
	PathEncodeUR              = "/v1/ur/encode"
	PathDecodeUR              = "/v1/ur/decode"
)

// Route is one endpoint. Router adapters mount Handler under these paths.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Handler serves the signing endpoints.
type Handler struct {
	logger       *slog.Logger
	maxBodyBytes int64
	timeout      time.Duration
	routes       []Route
	mux          *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler) error

// WithLogger sets the logger for request failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		h.logger = logger
		return nil
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive, got %d", n)
		}
		h.maxBodyBytes = n
		return nil
	}
}

// WithTimeout bounds the time spent on one request. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) error {
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative")
		}
		h.timeout = d
		return nil
	}
}

// DefaultTimeout bounds a request when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

// NewHandler builds a Handler serving every route in Routes.
func NewHandler(opts ...Option) (*Handler, error) {
	h := &Handler{
		logger:       slog.Default(),
		maxBodyBytes: helpers.DefaultMaxBodyBytes,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	h.routes = []Route{
		post(PathDeriveKey, endpoint(h, api.DeriveKey)),
		post(PathPublicKey, endpoint(h, api.PublicKey)),
		post(PathSign, endpoint(h, api.Sign)),
		post(PathVerify, endpoint(h, api.Verify)),
		post(PathSignMessage, endpoint(h, api.SignMessage)),
		post(PathVerifyMessage, endpoint(h, api.VerifyMessage)),
		post(PathHashTypedData, endpoint(h, api.HashTypedData)),
		post(PathSignTypedData, endpoint(h, api.SignTypedData)),
		post(PathRecoverTypedData, endpoint(h, api.RecoverTypedData)),
		post(PathTransferAuthorization, endpoint(h, api.TransferAuthorization)),
		post(PathBitcoinPreImages, endpoint(h, api.BitcoinPreImages)),
		post(PathBitcoinCompile, endpoint(h, api.BitcoinCompile)),
		post(PathEthereumPreImages, endpoint(h, api.EthereumPreImages)),
		post(PathEthereumCompile, endpoint(h, api.EthereumCompile)),
		post(PathRecoverAuthorizations, endpoint(h, api.RecoverAuthorizations)),
		post(PathCosmosPreImages, endpoint(h, api.CosmosPreImages)),
		post(PathCosmosCompile, endpoint(h, api.CosmosCompile)),
		post(PathSolanaPreImages, endpoint(h, api.SolanaPreImages)),
		post(PathSolanaCompile, endpoint(h, api.SolanaCompile)),
		post(PathEncodeUR, endpoint(h, api.EncodeUR)),
		post(PathDecodeUR, endpoint(h, api.DecodeUR)),
	}

	h.mux = http.NewServeMux()
	for _, rt := range h.routes {
		h.mux.HandleFunc(rt.Method+" "+rt.Path, rt.Handler)
	}
	return h, nil
}

// Routes lists every endpoint, for mounting on another router.
func (h *Handler) Routes() []Route {
	return append([]Route(nil), h.routes...)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func post(path string, fn http.HandlerFunc) Route {
	return Route{Method: http.MethodPost, Path: path, Handler: fn}
}

// endpoint adapts an api operation to HTTP: decode, run under the
// request's deadline, write the envelope.
func endpoint[Req, Resp any](h *Handler, op func(Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		var req Req
		if err := helpers.DecodeJSON(r, h.maxBodyBytes, &req); err != nil {
			h.logger.Warn("rejected request", "path", r.URL.Path, "error", err)
			helpers.WriteResult(w, signcore.Fail[Resp](err))
			return
		}

		type outcome struct {
			resp *Resp
			err  error
		}
		done := make(chan outcome, 1)
		go func() {
			resp, err := op(req)
			done <- outcome{resp, err}
		}()

		select {
		case out := <-done:
			if out.err != nil {
				h.logger.Info("operation failed", "path", r.URL.Path, "code", signcore.CodeOf(out.err), "error", out.err)
				helpers.WriteResult(w, signcore.Fail[Resp](out.err))
				return
			}
			helpers.WriteResult(w, signcore.OK(*out.resp))
		case <-ctx.Done():
			h.logger.Error("operation timed out", "path", r.URL.Path, "error", ctx.Err())
			helpers.WriteError(w, http.StatusServiceUnavailable, signcore.NewError(signcore.ErrCodeBridgeError, "request timed out", ctx.Err()))
		}
	}
}
