// Package leads wires the lead lifecycle module: scored intake, pipeline
// management with an audit trail, derived views, and the activity timeline.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"terraflow_backend/internal/events"
	apphttp "terraflow_backend/internal/http"
	"terraflow_backend/internal/leads/handler"
	"terraflow_backend/internal/leads/repository"
	"terraflow_backend/internal/leads/scoring"
	"terraflow_backend/internal/leads/service"
	"terraflow_backend/platform/logger"
)

type Module struct {
	service *service.Service
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule assembles the leads module. matcher may be nil when the
// properties module is not mounted.
func NewModule(pool *pgxpool.Pool, matcher service.PropertyMatcher, bus events.Bus, weights scoring.Weights, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, matcher, bus, weights, log)

	return &Module{
		service: svc,
		handler: handler.New(svc),
		repo:    repo,
	}
}

func (m *Module) Name() string { return "leads" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Service exposes the lead service to sibling modules (property enquiries
// and chat capture create leads through it).
func (m *Module) Service() *service.Service { return m.service }

// Scanner exposes the cross-account stale-lead read for background jobs.
func (m *Module) Scanner() repository.Scanner { return m.repo }
