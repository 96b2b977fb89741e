package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAgentRegistered Type = "agent_registered"
	TypeAgentUpdated    Type = "agent_updated"
	TypeAgentDeleted    Type = "agent_deleted"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
type Channel string

const ChannelAgent Channel = "agent"

var typeToChannel = map[Type]Channel{
	TypeAgentRegistered: ChannelAgent,
	TypeAgentUpdated:    ChannelAgent,
	TypeAgentDeleted:    ChannelAgent,
}

func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
