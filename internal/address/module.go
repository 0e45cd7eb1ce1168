package address

import (
	apphttp "restockd_backend/internal/http"
	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"
)

// Module wires address resolution and live suggestion sessions.
type Module struct {
	resolver *Resolver
	handler  *Handler
	sessions *SessionHandler
}

// NewModule builds the module on top of the places provider. ready gates
// new sessions until the provider is initialised.
func NewModule(provider places.Provider, ready func() bool, cfg SessionConfig, log *logger.Logger) *Module {
	resolver := NewResolver(provider, log)
	return &Module{
		resolver: resolver,
		handler:  NewHandler(resolver),
		sessions: NewSessionHandler(provider, ready, resolver, cfg, log),
	}
}

// Resolver exposes the resolver for background geocoding.
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// Close ends the open suggestion sessions. The HTTP server does not track
// hijacked connections, so call it on shutdown.
func (m *Module) Close() {
	m.sessions.Close()
}

func (m *Module) Name() string {
	return "address"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	resolve := ctx.V1.Group("/places")
	if ctx.LookupRateLimiter != nil {
		resolve.Use(ctx.LookupRateLimiter.RateLimit())
	}
	resolve.POST("/resolve", m.handler.Resolve)

	ctx.V1.GET("/address/session", m.sessions.Serve)
}

var _ apphttp.Module = (*Module)(nil)
