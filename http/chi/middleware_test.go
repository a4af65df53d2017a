package chi

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	signhttp "github.com/hawala-wallet/signcore/http"
)

const deriveBody = `{"mnemonic":"test test test test test test test test test test test junk","network":"ethereum"}`

func newHandler(t *testing.T) *signhttp.Handler {
	t.Helper()
	h, err := signhttp.NewHandler(signhttp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestNewRouter(t *testing.T) {
	var logs bytes.Buffer
	r := NewRouter(newHandler(t), slog.New(slog.NewJSONHandler(&logs, nil)))

	req := httptest.NewRequest(http.MethodPost, signhttp.PathDeriveKey, strings.NewReader(deriveBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), `"path":"/v1/keys/derive"`) {
		t.Errorf("request was not logged: %s", logs.String())
	}
}

func TestNewRouterStatuses(t *testing.T) {
	r := NewRouter(newHandler(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown path", http.MethodPost, "/v1/nothing", http.StatusNotFound},
		{"wrong method", http.MethodGet, signhttp.PathDeriveKey, http.StatusMethodNotAllowed},
		{"bad body", http.MethodPost, signhttp.PathSign, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{")))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMountUnderPrefix(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/signer", func(sub chi.Router) {
		Mount(sub, newHandler(t))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signer"+signhttp.PathDeriveKey, strings.NewReader(deriveBody)))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}
