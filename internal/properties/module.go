// Package properties wires the listing module: owner-facing management, the
// public listing surface, media storage, and share QR codes.
package properties

import (
	"terraflow_backend/internal/adapters/storage"
	"terraflow_backend/internal/events"
	apphttp "terraflow_backend/internal/http"
	"terraflow_backend/internal/properties/handler"
	"terraflow_backend/internal/properties/repository"
	"terraflow_backend/internal/properties/service"
	"terraflow_backend/platform/logger"
)

type Module struct {
	service *service.Service
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule assembles the properties module around a pre-built repository.
// The repository is created by the composition root because the leads
// module's matcher adapter needs it before this module exists. store may be
// nil when object storage is not configured.
func NewModule(repo *repository.Repository, recorder service.LeadRecorder, store storage.Service, bus events.Bus, bucket, baseURL string, log *logger.Logger) *Module {
	svc := service.New(repo, recorder, store, bus, bucket, baseURL, log)

	return &Module{
		service: svc,
		handler: handler.New(svc),
		repo:    repo,
	}
}

func (m *Module) Name() string { return "properties" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterPublicRoutes(ctx.Public)
}

// Repository exposes listing reads to sibling modules (the leads module
// matches listings against a lead's stated interest through an adapter).
func (m *Module) Repository() *repository.Repository { return m.repo }
