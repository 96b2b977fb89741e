package availabilityzone

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
	domainaz "github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	portagent "github.com/alanyang/agent-zones/internal/port/agent"
	portcache "github.com/alanyang/agent-zones/internal/port/cache"
)

const reportKey = "availability_zones"

// Service derives availability zone reports from the registered agents.
// It depends only on ZoneLister, not the full agent Repository.
type Service struct {
	agents portagent.ZoneLister
	cache  portcache.Cache

	// mu guards ttl and gen. gen counts invalidations; a report computed across one is
	// returned to its caller but never cached.
	mu  sync.Mutex
	ttl time.Duration
	gen uint64
}

var _ portcache.Invalidator = (*Service)(nil)

// NewService builds the service. A nil cache or non-positive ttl disables caching.
func NewService(agents portagent.ZoneLister, cache portcache.Cache, ttl time.Duration) *Service {
	return &Service{agents: agents, cache: cache, ttl: ttl}
}

// List returns the zones matching filters. The result is a set; callers must not rely on
// its order.
func (s *Service) List(ctx context.Context, filters domainaz.Filters) ([]domainaz.Zone, error) {
	report, err := s.report(ctx)
	if err != nil {
		return nil, fmt.Errorf("list availability zones: %w", err)
	}

	zones := make([]domainaz.Zone, 0, len(report))
	for _, z := range report {
		if filters.Match(z) {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

// Validate fails with an error matching domainaz.ErrZoneNotFound unless each requested
// zone is available for resource.
func (s *Service) Validate(ctx context.Context, resource domainaz.Resource, zones []string) error {
	if !resource.Valid() {
		return fmt.Errorf("validate availability zones: %w: %q", domainaz.ErrInvalidResourceType, resource)
	}
	if len(zones) == 0 {
		return nil
	}

	report, err := s.report(ctx)
	if err != nil {
		return fmt.Errorf("validate availability zones: %w", err)
	}
	if err := domainaz.Validate(report, resource, zones); err != nil {
		return fmt.Errorf("validate availability zones: %w", err)
	}
	return nil
}

// Invalidate drops the cached report so the next read recomputes it. A report being
// computed concurrently is not cached.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Delete(reportKey)
	}
}

// DisableCache turns caching off for good, e.g. when nothing would invalidate it.
func (s *Service) DisableCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = 0
	s.gen++
	if s.cache != nil {
		s.cache.Delete(reportKey)
	}
}

func (s *Service) report(ctx context.Context) ([]domainaz.Zone, error) {
	s.mu.Lock()
	enabled, gen := s.cachingEnabled(), s.gen
	s.mu.Unlock()

	if enabled {
		if v, ok := s.cache.Get(reportKey); ok {
			if zones, ok := v.([]domainaz.Zone); ok {
				return zones, nil
			}
		}
	}

	agents, err := s.agents.List(ctx, domainagent.ListFilters{})
	if err != nil {
		return nil, fmt.Errorf("loading agents: %w", err)
	}

	zones, err := domainaz.Compute(domainagent.ZoneRecords(agents))
	if err != nil {
		slog.ErrorContext(ctx, "agent records failed availability zone derivation", "error", err)
		return nil, err
	}

	if enabled {
		s.mu.Lock()
		if s.gen == gen && s.cachingEnabled() {
			s.cache.Set(reportKey, zones, s.ttl)
		}
		s.mu.Unlock()
	}
	return zones, nil
}

// cachingEnabled must be called with mu held.
func (s *Service) cachingEnabled() bool {
	return s.cache != nil && s.ttl > 0
}
