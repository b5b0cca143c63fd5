package aiflows

import (
	apphttp "terraflow_backend/internal/http"
)

type Module struct {
	handler *Handler
}

// NewModule assembles the AI flows module. The service tolerates a nil
// generator; endpoints then report that generation is not configured.
func NewModule(svc *Service) *Module {
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string { return "aiflows" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterPublicRoutes(ctx.Public)
}
