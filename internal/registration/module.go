// Package registration provides the sign-up bounded context: form
// validation and profile creation for donors and food banks.
package registration

import (
	"restockd_backend/internal/events"
	apphttp "restockd_backend/internal/http"
	"restockd_backend/internal/registration/handler"
	"restockd_backend/internal/registration/repository"
	"restockd_backend/internal/registration/service"
	"restockd_backend/internal/registration/validation"
	"restockd_backend/platform/logger"
	"restockd_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the registration bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.ProfileRepository
}

// NewModule wires the repository, validation engine and service.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, eventBus events.Bus, log *logger.Logger) (*Module, error) {
	return NewModuleWithRepository(repository.New(pool), val, eventBus, log)
}

// NewModuleWithRepository is NewModule with a custom profile store.
func NewModuleWithRepository(repo repository.ProfileRepository, val *validator.Validator, eventBus events.Bus, log *logger.Logger) (*Module, error) {
	engine, err := validation.NewEngine(val)
	if err != nil {
		return nil, err
	}

	svc := service.New(repo, engine, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "registration"
}

// Service returns the registration service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the profile store, shared with the geocoding jobs.
func (m *Module) Repository() repository.ProfileRepository {
	return m.repo
}

// RegisterRoutes mounts registration routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1, ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
