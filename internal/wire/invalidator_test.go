package wire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/agent-zones/internal/adapter/memory"
	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
	domainaz "github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	"github.com/alanyang/agent-zones/internal/domain/event"
	"github.com/alanyang/agent-zones/internal/mocks"
	porteventbus "github.com/alanyang/agent-zones/internal/port/eventbus"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"
)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

func subscribeCapture(t *testing.T, bus *mocks.MockEventBus) *porteventbus.Handler {
	t.Helper()
	var handler porteventbus.Handler
	bus.EXPECT().Subscribe(gomock.Any(), event.ChannelAgent, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ event.Channel, h porteventbus.Handler) (porteventbus.Subscription, error) {
			handler = h
			return nil, nil
		})
	return &handler
}

func TestZoneInvalidator_InvalidatesOnAgentEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	handler := subscribeCapture(t, bus)
	inv := &countingInvalidator{}

	_, err := startZoneInvalidator(context.Background(), bus, inv)
	require.NoError(t, err)
	require.NotNil(t, *handler)

	for _, et := range []event.Type{event.TypeAgentRegistered, event.TypeAgentUpdated, event.TypeAgentDeleted} {
		(*handler)(context.Background(), event.New(et, uuid.New()))
	}
	(*handler)(context.Background(), event.Event{Type: "agent_unknown"})

	assert.Equal(t, 3, inv.n)
}

func TestZoneInvalidator_SubscribeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	bus.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("no connection"))

	_, err := startZoneInvalidator(context.Background(), bus, &countingInvalidator{})
	assert.ErrorContains(t, err, "subscribing zone invalidator")
}

func TestZoneInvalidator_RefreshesCachedReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	agentRepo := mocks.NewMockAgentRepository(ctrl)
	handler := subscribeCapture(t, bus)

	svc := azsvc.NewService(agentRepo, memory.NewCache(time.Minute), time.Minute)
	_, err := startZoneInvalidator(context.Background(), bus, svc)
	require.NoError(t, err)

	l3 := domainagent.New(domainagent.TypeL3, "bin", "l3_agent", "host3", "nova3", nil)
	disabled := l3
	disabled.AdminStateUp = false

	gomock.InOrder(
		agentRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{l3}, nil),
		agentRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{disabled}, nil),
	)

	ctx := context.Background()
	require.NoError(t, svc.Validate(ctx, domainaz.ResourceRouter, []string{"nova3"}))
	require.NoError(t, svc.Validate(ctx, domainaz.ResourceRouter, []string{"nova3"}), "cached")

	(*handler)(ctx, event.New(event.TypeAgentUpdated, l3.ID))

	err = svc.Validate(ctx, domainaz.ResourceRouter, []string{"nova3"})
	assert.ErrorIs(t, err, domainaz.ErrZoneNotFound)
}

func TestWatchZoneCache_SubscribeErrorDisablesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	agentRepo := mocks.NewMockAgentRepository(ctrl)
	bus.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("no connection"))

	svc := azsvc.NewService(agentRepo, memory.NewCache(time.Minute), time.Minute)
	sub := watchZoneCache(context.Background(), bus, svc)
	assert.Nil(t, sub)

	l3 := domainagent.New(domainagent.TypeL3, "bin", "l3_agent", "host3", "nova3", nil)
	disabled := l3
	disabled.AdminStateUp = false
	gomock.InOrder(
		agentRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{l3}, nil),
		agentRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{disabled}, nil),
	)

	ctx := context.Background()
	require.NoError(t, svc.Validate(ctx, domainaz.ResourceRouter, []string{"nova3"}))
	err := svc.Validate(ctx, domainaz.ResourceRouter, []string{"nova3"})
	assert.ErrorIs(t, err, domainaz.ErrZoneNotFound, "every read goes to the repository")
}

func TestWatchZoneCache_KeepsCacheWhenSubscribed(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	agentRepo := mocks.NewMockAgentRepository(ctrl)
	handler := subscribeCapture(t, bus)

	svc := azsvc.NewService(agentRepo, memory.NewCache(time.Minute), time.Minute)
	watchZoneCache(context.Background(), bus, svc)
	require.NotNil(t, *handler)

	agentRepo.EXPECT().List(gomock.Any(), gomock.Any()).
		Return([]domainagent.Agent{domainagent.New(domainagent.TypeDHCP, "bin", "dhcp_agent", "host1", "nova1", nil)}, nil).
		Times(1)

	ctx := context.Background()
	require.NoError(t, svc.Validate(ctx, domainaz.ResourceNetwork, []string{"nova1"}))
	require.NoError(t, svc.Validate(ctx, domainaz.ResourceNetwork, []string{"nova1"}))
}
