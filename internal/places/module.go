package places

import (
	"context"

	apphttp "restockd_backend/internal/http"
	"restockd_backend/platform/config"
	"restockd_backend/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Module owns the place lookup provider and its HTTP routes. Other modules
// reach the provider through Provider().
type Module struct {
	loader   *Loader
	provider *InstrumentedProvider
	handler  *Handler
	log      *logger.Logger
}

// NewModule builds the module around the Google provider. The provider is
// not usable until Start ran and initialisation succeeded.
func NewModule(cfg config.PlacesConfig, reg prometheus.Registerer, log *logger.Logger) *Module {
	return NewModuleWithInit(GoogleInit(cfg, log), cfg.GetPlacesRegion(), reg, log)
}

// NewModuleWithInit is NewModule with a custom initialiser.
func NewModuleWithInit(initFn InitFunc, region string, reg prometheus.Registerer, log *logger.Logger) *Module {
	loader := NewLoader(initFn)
	provider := Instrument(loader, NewMetrics(reg), log)
	return &Module{
		loader:   loader,
		provider: provider,
		handler:  NewHandler(loader, provider, region),
		log:      log,
	}
}

// Start initialises the provider in the background and logs the outcome.
func (m *Module) Start(ctx context.Context) {
	m.loader.Start(ctx)
	go func() {
		if err := m.loader.Wait(ctx); err != nil {
			m.log.Warn("place lookup unavailable, address entry falls back to manual input", "error", err)
			return
		}
		m.log.Info("place lookup provider ready")
	}()
}

// Provider returns the instrumented provider shared by all consumers.
func (m *Module) Provider() Provider {
	return m.provider
}

// Wait blocks until initialisation finished and returns its error.
func (m *Module) Wait(ctx context.Context) error {
	return m.loader.Wait(ctx)
}

// Ready reports whether live suggestions can be offered.
func (m *Module) Ready() bool {
	return m.loader.Ready()
}

func (m *Module) Name() string {
	return "places"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/places")
	group.GET("/status", m.handler.Status)

	lookup := group.Group("")
	if ctx.LookupRateLimiter != nil {
		lookup.Use(ctx.LookupRateLimiter.RateLimit())
	}
	lookup.GET("/suggestions", m.handler.Suggestions)
}

var _ apphttp.Module = (*Module)(nil)
