package agent

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alanyang/agent-zones/internal/domain/availabilityzone"
)

const (
	TypeDHCP = "DHCP agent"
	TypeL3   = "L3 agent"
	TypeOVS  = "Open vSwitch agent"
)

// MaxDescriptionLength matches the width of the description column.
const MaxDescriptionLength = 255

var (
	ErrNotFound      = errors.New("agent not found")
	ErrInvalidReport = errors.New("invalid agent report")
	ErrInvalidUpdate = errors.New("invalid agent update")
)

// zoneResources maps the agent types that take part in availability zones to the
// resource they make available.
var zoneResources = map[string]availabilityzone.Resource{
	TypeDHCP: availabilityzone.ResourceNetwork,
	TypeL3:   availabilityzone.ResourceRouter,
}

type Agent struct {
	ID               uuid.UUID              `json:"id"`
	AgentType        string                 `json:"agent_type"`
	Binary           string                 `json:"binary"`
	Topic            string                 `json:"topic"`
	Host             string                 `json:"host"`
	AvailabilityZone string                 `json:"availability_zone"`
	AdminStateUp     bool                   `json:"admin_state_up"`
	Description      string                 `json:"description"`
	Configurations   map[string]interface{} `json:"configurations,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	StartedAt        time.Time              `json:"started_at"`
	HeartbeatAt      time.Time              `json:"heartbeat_timestamp"`
}

func New(agentType, binary, topic, host, zone string, configurations map[string]interface{}) Agent {
	now := time.Now().UTC()
	if configurations == nil {
		configurations = map[string]interface{}{}
	}
	return Agent{
		ID:               uuid.New(),
		AgentType:        agentType,
		Binary:           binary,
		Topic:            topic,
		Host:             host,
		AvailabilityZone: zone,
		AdminStateUp:     true,
		Configurations:   configurations,
		CreatedAt:        now,
		StartedAt:        now,
		HeartbeatAt:      now,
	}
}

// ZoneResource reports which availability zone resource the agent contributes to.
// Agent types outside the zone-aware set return false.
func (a *Agent) ZoneResource() (availabilityzone.Resource, bool) {
	r, ok := zoneResources[a.AgentType]
	return r, ok
}

func (a *Agent) ZoneRecord() (availabilityzone.Record, bool) {
	r, ok := a.ZoneResource()
	if !ok {
		return availabilityzone.Record{}, false
	}
	return availabilityzone.Record{
		Host:         a.Host,
		Zone:         a.AvailabilityZone,
		Resource:     r,
		AdminStateUp: a.AdminStateUp,
	}, true
}

// ZoneRecords projects the zone-aware agents of a listing.
func ZoneRecords(agents []Agent) []availabilityzone.Record {
	records := make([]availabilityzone.Record, 0, len(agents))
	for i := range agents {
		if rec, ok := agents[i].ZoneRecord(); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ListFilters narrows List. A non-nil empty AvailabilityZone selects agents without a zone.
type ListFilters struct {
	Host             *string
	AgentType        *string
	AvailabilityZone *string
	AdminStateUp     *bool
}

// Update carries the operator-editable fields. Nil fields are left unchanged.
type Update struct {
	AdminStateUp *bool
	Description  *string
}

func (u Update) Empty() bool {
	return u.AdminStateUp == nil && u.Description == nil
}

// Validate checks the update against the stored column bounds.
func (u Update) Validate() error {
	if u.Description != nil {
		if n := utf8.RuneCountInString(*u.Description); n > MaxDescriptionLength {
			return fmt.Errorf("%w: description is %d characters, at most %d allowed", ErrInvalidUpdate, n, MaxDescriptionLength)
		}
	}
	return nil
}

func (a *Agent) Apply(u Update) {
	if u.AdminStateUp != nil {
		a.AdminStateUp = *u.AdminStateUp
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
}
