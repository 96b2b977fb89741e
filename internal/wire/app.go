package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/agent-zones/internal/adapter/memory"
	pgdb "github.com/alanyang/agent-zones/internal/adapter/postgres"
	pgagent "github.com/alanyang/agent-zones/internal/adapter/postgres/agent"
	pgeventbus "github.com/alanyang/agent-zones/internal/adapter/postgres/eventbus"
	pglocker "github.com/alanyang/agent-zones/internal/adapter/postgres/locker"
	"github.com/alanyang/agent-zones/internal/config"
	"github.com/alanyang/agent-zones/internal/domain/schema"
	porteventbus "github.com/alanyang/agent-zones/internal/port/eventbus"

	agentsvc "github.com/alanyang/agent-zones/internal/service/agent"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"

	"github.com/alanyang/agent-zones/internal/transport"
	mcptransport "github.com/alanyang/agent-zones/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Server    *http.Server
	AgentSvc  *agentsvc.Service
	ZoneSvc   *azsvc.Service
	MCPServer *mcptransport.Server

	invalidator porteventbus.Subscription
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pgdb.Migrate(ctx, pool, pglocker.New(pool)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	agentRepo := pgagent.New(pool)
	eventBus := pgeventbus.New(pool)
	zoneCache := memory.NewCache(cfg.Cache.TTL)

	// ── Services ─────────────────────────────────────────────────────────────
	zoneSvcInstance := azsvc.NewService(agentRepo, zoneCache, cfg.Cache.TTL)
	agentSvcInstance := agentsvc.NewService(agentRepo, eventBus, zoneSvcInstance)

	exts := schema.Extensions()
	attrs := schema.Build(exts)

	mcpServer := mcptransport.New(agentSvcInstance, zoneSvcInstance)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(
		ctx,
		agentSvcInstance,
		zoneSvcInstance,
		attrs,
		exts,
		mcpServer,
		eventBus,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	app := &App{
		Pool:      pool,
		Server:    server,
		AgentSvc:  agentSvcInstance,
		ZoneSvc:   zoneSvcInstance,
		MCPServer: mcpServer,
	}

	// ── Zone cache invalidation ──────────────────────────────────────────────
	if cfg.Cache.TTL > 0 {
		app.invalidator = watchZoneCache(ctx, eventBus, zoneSvcInstance)
	}

	slog.Info("application wired", "port", cfg.Server.Port, "cache_ttl", cfg.Cache.TTL, "extensions", len(exts))
	return app, nil
}

// Close stops background subscriptions and releases the pool.
func (a *App) Close() {
	if a.invalidator != nil {
		a.invalidator.Unsubscribe()
	}
	a.Pool.Close()
}
