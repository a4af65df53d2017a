// Package gin registers the signing endpoints on a Gin engine.
// It translates between gin.Context and the stdlib Handler, which does all
// decoding and envelope writing.
package gin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hawala-wallet/signcore"
	signhttp "github.com/hawala-wallet/signcore/http"
)

// Register adds every route of h to r.
//
// Example usage:
//
//	r := gin.New()
//	r.Use(gin.Recovery(), Logger(logger))
//	Register(r.Group("/signer"), h)
func Register(r gin.IRoutes, h *signhttp.Handler) {
	for _, rt := range h.Routes() {
		r.Handle(rt.Method, rt.Path, gin.WrapF(rt.Handler))
	}
}

// Logger logs one structured line per request.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
		)
	}
}

// New returns a Gin engine serving h with panic recovery and Logger.
func New(h *signhttp.Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panicked", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			signcore.Fail[struct{}](signcore.Errorf(signcore.ErrBridge, "internal error")))
	}))
	r.Use(Logger(logger))
	Register(r, h)
	return r
}
