package adapters

import (
	"context"

	"github.com/google/uuid"

	authrepo "terraflow_backend/internal/auth/repository"
)

// AgentResolverAdapter implements the notification module's AgentResolver
// on top of the auth repository.
type AgentResolverAdapter struct {
	users *authrepo.Repository
}

func NewAgentResolverAdapter(users *authrepo.Repository) *AgentResolverAdapter {
	return &AgentResolverAdapter{users: users}
}

// ResolveAgent returns the notification recipient for an account.
func (a *AgentResolverAdapter) ResolveAgent(ctx context.Context, userID uuid.UUID) (string, string, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return user.Email, user.Name, nil
}
