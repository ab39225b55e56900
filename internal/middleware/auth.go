package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/modules/serializer"
)

// APIKeyAuth authenticates requests against the configured API key using a
// Bearer header. An empty configured key disables auth entirely, which is
// only meant for development.
func APIKeyAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.APIKey == "" {
			c.Next()
			return
		}

		ctx, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "api_key_auth",
			trace.WithAttributes(attribute.String("middleware", "api_key_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(raw), []byte(cfg.Auth.APIKey)) != 1 {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		authSpan.SetAttributes(attribute.Bool("authenticated", true))
		authSpan.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
