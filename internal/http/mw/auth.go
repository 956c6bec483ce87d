package mw

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/colorlightd/internal/apikey"
)

// extractKey pulls the API key out of the Authorization: Bearer header,
// falling back to X-API-Key.
func extractKey(authorization, xAPIKey string) string {
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(authorization, bearerPrefix) {
		return authorization[len(bearerPrefix):]
	}
	return xAPIKey
}

// HumaAuth returns a Huma middleware that validates API keys for operations
// carrying a Security requirement. Public operations (health, version,
// OpenAPI docs) have no Security set and pass through unauthenticated.
func HumaAuth(api huma.API, logger *slog.Logger, apikeyManager *apikey.Manager) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		key := extractKey(ctx.Header("Authorization"), ctx.Header("X-API-Key"))
		if key == "" {
			logger.Warn("API key missing",
				"method", ctx.Method(),
				"path", ctx.URL().Path,
				"remote_addr", ctx.RemoteAddr(),
			)
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized: API key required")
			return
		}

		validKey, err := apikeyManager.ValidateAPIKey(key)
		if err != nil {
			logger.Warn("invalid API key used",
				"key_prefix", keyPrefix(key),
				"error", err,
				"method", ctx.Method(),
				"path", ctx.URL().Path,
			)
			huma.WriteErr(api, ctx, http.StatusUnauthorized, fmt.Sprintf("Unauthorized: %s", err))
			return
		}

		logger.Debug("authenticated API key",
			"name", validKey.Name,
			"key_prefix", keyPrefix(validKey.Key),
		)
		next(ctx)
	}
}

// RawAPIKeyAuth returns a Chi middleware that validates API keys on every
// request. Used for routes that bypass Huma, like the websocket endpoint and
// the raw group state handler.
func RawAPIKeyAuth(logger *slog.Logger, apikeyManager *apikey.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r.Header.Get("Authorization"), r.Header.Get("X-API-Key"))
			if key == "" {
				logger.Warn("API key missing",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			validKey, err := apikeyManager.ValidateAPIKey(key)
			if err != nil {
				logger.Warn("invalid API key used",
					"key_prefix", keyPrefix(key),
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, fmt.Sprintf("Unauthorized: %s", err.Error()), http.StatusUnauthorized)
				return
			}

			logger.Debug("authenticated API key",
				"name", validKey.Name,
				"key_prefix", keyPrefix(validKey.Key),
			)
			next.ServeHTTP(w, r)
		})
	}
}

// keyPrefix returns the first 4 characters of a key for safe logging.
func keyPrefix(key string) string {
	if len(key) >= 4 {
		return key[:4]
	}
	return key
}
