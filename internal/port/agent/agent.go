package agent

import (
	"context"

	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
)

// Repository manages agent registrations in the database.
type Repository interface {
	// Upsert inserts the agent or, when (agent_type, host) is already registered, refreshes
	// its report fields while keeping id, admin state and description.
	Upsert(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainagent.Agent, error)
	List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error)

	Update(ctx context.Context, id uuid.UUID, u domainagent.Update) (domainagent.Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
