package agent

import (
	"context"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
)

// ZoneLister is the narrow interface the availability zone service needs.
type ZoneLister interface {
	List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error)
}
