package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/agent-zones/internal/domain/event"
	"github.com/alanyang/agent-zones/internal/domain/schema"
	porteventbus "github.com/alanyang/agent-zones/internal/port/eventbus"
	agentsvc "github.com/alanyang/agent-zones/internal/service/agent"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"

	agenthandler "github.com/alanyang/agent-zones/internal/transport/agent"
	azhandler "github.com/alanyang/agent-zones/internal/transport/availabilityzone"
	exthandler "github.com/alanyang/agent-zones/internal/transport/extension"
	mcptransport "github.com/alanyang/agent-zones/internal/transport/mcp"
	wshandler "github.com/alanyang/agent-zones/internal/transport/ws"
)

// NewRouter mounts the HTTP API. Collections whose extension is not loaded in attrs
// are not routed.
func NewRouter(
	ctx context.Context,
	agentSvc *agentsvc.Service,
	azSvc *azsvc.Service,
	attrs schema.Map,
	exts []schema.Extension,
	mcpServer *mcptransport.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	exthandler.Register(api.Group("/extensions"), exts)
	if attrs.Has(schema.CollectionAgents) {
		agenthandler.Register(api.Group("/agents"), agentSvc, attrs)
	}
	if attrs.Has(schema.CollectionAvailabilityZones) {
		azhandler.Register(api.Group("/availability_zones"), azSvc, attrs)
	}

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	if mcpServer != nil {
		r.Any("/mcp", gin.WrapH(mcpServer.Handler()))
	}

	// Every agent event is pushed to websocket clients; event.Type lets them filter.
	if _, err := eventBus.Subscribe(ctx, event.ChannelAgent, func(_ context.Context, e event.Event) {
		hub.Broadcast(e)
	}); err != nil {
		slog.Error("failed to subscribe channel to WS hub", "channel", event.ChannelAgent, "error", err)
	}

	return r
}
