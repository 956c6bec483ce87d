package routes

import (
	"context"

	"github.com/jmylchreest/colorlightd/internal/http/handlers"
)

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck  func(ctx context.Context, input *handlers.HealthInput) (*handlers.HealthOutput, error)
	VersionCheck func(ctx context.Context, input *handlers.VersionInput) (*handlers.VersionOutput, error)
	Light        handlers.LightHandlers
	Group        handlers.GroupHandlers
	APIKey       handlers.APIKeyHandlers
	Logging      handlers.LoggingHandlers
}
