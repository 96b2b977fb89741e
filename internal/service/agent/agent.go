package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
	"github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	"github.com/alanyang/agent-zones/internal/domain/event"
	portagent "github.com/alanyang/agent-zones/internal/port/agent"
	portcache "github.com/alanyang/agent-zones/internal/port/cache"
	portbus "github.com/alanyang/agent-zones/internal/port/eventbus"
)

// Service manages agent registrations: state reports, operator updates and removal.
type Service struct {
	repo  portagent.Repository
	bus   portbus.EventBus
	zones portcache.Invalidator
}

// NewService builds the service. zones, when non-nil, is invalidated after every
// committed write so reads on this instance never wait for the event round trip.
func NewService(repo portagent.Repository, bus portbus.EventBus, zones portcache.Invalidator) *Service {
	return &Service{repo: repo, bus: bus, zones: zones}
}

// Report describes one agent state report.
type Report struct {
	AgentType        string
	Binary           string
	Topic            string
	Host             string
	AvailabilityZone string
	Configurations   map[string]interface{}
}

// Register records a state report. The first report for (agent_type, host) creates the
// agent; later ones refresh it without touching the operator-controlled fields.
func (s *Service) Register(ctx context.Context, r Report) (domainagent.Agent, error) {
	if strings.TrimSpace(r.AgentType) == "" {
		return domainagent.Agent{}, fmt.Errorf("register agent: %w: agent_type is required", domainagent.ErrInvalidReport)
	}
	if strings.TrimSpace(r.Host) == "" {
		return domainagent.Agent{}, fmt.Errorf("register agent: %w: host is required", domainagent.ErrInvalidReport)
	}
	if err := availabilityzone.ValidateName(r.AvailabilityZone); err != nil {
		return domainagent.Agent{}, fmt.Errorf("register agent: %w", err)
	}

	a := domainagent.New(r.AgentType, r.Binary, r.Topic, r.Host, r.AvailabilityZone, r.Configurations)

	saved, err := s.repo.Upsert(ctx, a)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("register agent: %w", err)
	}

	s.invalidate()
	s.publish(ctx, event.TypeAgentRegistered, saved.ID)
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainagent.Agent, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error) {
	agents, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// Update applies operator changes. An empty update returns the current record unchanged.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u domainagent.Update) (domainagent.Agent, error) {
	if u.Empty() {
		return s.GetByID(ctx, id)
	}
	if err := u.Validate(); err != nil {
		return domainagent.Agent{}, fmt.Errorf("update agent: %w", err)
	}

	a, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("update agent: %w", err)
	}

	s.invalidate()
	s.publish(ctx, event.TypeAgentUpdated, a.ID)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	s.invalidate()
	s.publish(ctx, event.TypeAgentDeleted, id)
	return nil
}

func (s *Service) invalidate() {
	if s.zones != nil {
		s.zones.Invalidate()
	}
}

// publish failures are logged only; the write they describe has already committed.
func (s *Service) publish(ctx context.Context, t event.Type, id uuid.UUID) {
	if err := s.bus.Publish(ctx, event.New(t, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish agent event", "type", t, "agent_id", id, "error", err)
	}
}
