package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
)

const columns = `id, agent_type, binary_name, topic, host, availability_zone, admin_state_up,
	description, configurations_jsonb, created_at, started_at, heartbeat_timestamp`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert registers the agent keyed by (agent_type, host). A re-registration refreshes the
// reported fields and heartbeat but keeps id, created_at, admin state and description.
func (r *Repository) Upsert(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error) {
	configJSON, err := json.Marshal(a.Configurations)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("marshaling configurations: %w", err)
	}

	query := `
		INSERT INTO agents (` + columns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (agent_type, host) DO UPDATE SET
			binary_name = EXCLUDED.binary_name,
			topic = EXCLUDED.topic,
			availability_zone = EXCLUDED.availability_zone,
			configurations_jsonb = EXCLUDED.configurations_jsonb,
			started_at = EXCLUDED.started_at,
			heartbeat_timestamp = EXCLUDED.heartbeat_timestamp
		RETURNING ` + columns

	return r.scanOne(ctx, query,
		a.ID, a.AgentType, a.Binary, a.Topic, a.Host, nullableZone(a.AvailabilityZone),
		a.AdminStateUp, a.Description, configJSON, a.CreatedAt, a.StartedAt, a.HeartbeatAt,
	)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainagent.Agent, error) {
	return r.scanOne(ctx, `SELECT `+columns+` FROM agents WHERE id = $1`, id)
}

func (r *Repository) List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error) {
	query := `SELECT ` + columns + ` FROM agents WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.Host != nil {
		query += fmt.Sprintf(" AND host = $%d", argIdx)
		args = append(args, *filters.Host)
		argIdx++
	}
	if filters.AgentType != nil {
		query += fmt.Sprintf(" AND agent_type = $%d", argIdx)
		args = append(args, *filters.AgentType)
		argIdx++
	}
	switch {
	case filters.AvailabilityZone == nil:
	case *filters.AvailabilityZone == "":
		// no zone is stored as NULL
		query += " AND availability_zone IS NULL"
	default:
		query += fmt.Sprintf(" AND availability_zone = $%d", argIdx)
		args = append(args, *filters.AvailabilityZone)
		argIdx++
	}
	if filters.AdminStateUp != nil {
		query += fmt.Sprintf(" AND admin_state_up = $%d", argIdx)
		args = append(args, *filters.AdminStateUp)
		argIdx++
	}

	query += " ORDER BY agent_type, host"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	return scanAgents(rows)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, u domainagent.Update) (domainagent.Agent, error) {
	query := `
		UPDATE agents SET
			admin_state_up = COALESCE($2, admin_state_up),
			description = COALESCE($3, description)
		WHERE id = $1
		RETURNING ` + columns

	return r.scanOne(ctx, query, id, u.AdminStateUp, u.Description)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", id, domainagent.ErrNotFound)
	}
	return nil
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...interface{}) (domainagent.Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainagent.Agent{}, domainagent.ErrNotFound
		}
		return domainagent.Agent{}, fmt.Errorf("querying agent: %w", err)
	}
	return a, nil
}

func scanAgents(rows pgx.Rows) ([]domainagent.Agent, error) {
	var agents []domainagent.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func scanAgent(row pgx.Row) (domainagent.Agent, error) {
	var a domainagent.Agent
	var zone *string
	var cfgBytes []byte

	if err := row.Scan(
		&a.ID, &a.AgentType, &a.Binary, &a.Topic, &a.Host, &zone, &a.AdminStateUp,
		&a.Description, &cfgBytes, &a.CreatedAt, &a.StartedAt, &a.HeartbeatAt,
	); err != nil {
		return domainagent.Agent{}, err
	}
	if zone != nil {
		a.AvailabilityZone = *zone
	}
	a.Configurations = map[string]interface{}{}
	if len(cfgBytes) > 0 {
		if err := json.Unmarshal(cfgBytes, &a.Configurations); err != nil {
			return domainagent.Agent{}, fmt.Errorf("unmarshaling configurations: %w", err)
		}
	}
	return a, nil
}

// nullableZone stores "no zone" as NULL.
func nullableZone(zone string) *string {
	if zone == "" {
		return nil
	}
	return &zone
}
