// Package auth wires account registration, login, and token refresh.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"terraflow_backend/internal/auth/handler"
	"terraflow_backend/internal/auth/repository"
	"terraflow_backend/internal/auth/service"
	apphttp "terraflow_backend/internal/http"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/logger"
)

type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{handler: handler.New(svc), repo: repo}
}

func (m *Module) Name() string { return "auth" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Public, ctx.Protected, ctx.AuthRateLimiter)
}

// Repository exposes account lookups to sibling modules (notifications
// resolve recipients through an adapter over it).
func (m *Module) Repository() *repository.Repository { return m.repo }
