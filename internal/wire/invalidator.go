package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyang/agent-zones/internal/domain/event"
	portcache "github.com/alanyang/agent-zones/internal/port/cache"
	porteventbus "github.com/alanyang/agent-zones/internal/port/eventbus"
)

// zoneReports is the part of the availability zone service the subscription needs.
type zoneReports interface {
	portcache.Invalidator
	DisableCache()
}

// watchZoneCache keeps the zone cache coherent with writes made by other replicas. If the
// subscription cannot be made the cache is turned off rather than left to go stale.
func watchZoneCache(ctx context.Context, bus porteventbus.EventBus, zones zoneReports) porteventbus.Subscription {
	sub, err := startZoneInvalidator(ctx, bus, zones)
	if err != nil {
		zones.DisableCache()
		slog.ErrorContext(ctx, "availability zone cache disabled", "error", err)
		return nil
	}
	return sub
}

// startZoneInvalidator drops the cached zone report whenever any replica registers,
// updates or deletes an agent, so the next read reflects the change.
func startZoneInvalidator(ctx context.Context, bus porteventbus.EventBus, zones portcache.Invalidator) (porteventbus.Subscription, error) {
	sub, err := bus.Subscribe(ctx, event.ChannelAgent, func(ctx context.Context, e event.Event) {
		switch e.Type {
		case event.TypeAgentRegistered, event.TypeAgentUpdated, event.TypeAgentDeleted:
			zones.Invalidate()
			slog.DebugContext(ctx, "availability zone cache invalidated", "type", e.Type, "agent_id", e.EntityID)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing zone invalidator: %w", err)
	}
	return sub, nil
}
