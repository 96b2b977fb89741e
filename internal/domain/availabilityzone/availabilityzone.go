package availabilityzone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Resource string

const (
	ResourceNetwork Resource = "network"
	ResourceRouter  Resource = "router"
)

type State string

const (
	StateAvailable   State = "available"
	StateUnavailable State = "unavailable"
)

var (
	ErrInvalidResourceType = errors.New("invalid availability zone resource type")
	ErrZoneNotFound        = errors.New("availability zone not found")
)

func (r Resource) Valid() bool {
	return r == ResourceNetwork || r == ResourceRouter
}

// ParseResource converts a raw resource name, rejecting anything outside the closed set.
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceType, s)
	}
	return r, nil
}

func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateAvailable, StateUnavailable:
		return st, nil
	default:
		return "", fmt.Errorf("invalid availability zone state %q", s)
	}
}

// Record is the projection of one agent that availability is derived from.
type Record struct {
	Host         string
	Zone         string
	Resource     Resource
	AdminStateUp bool
}

type Zone struct {
	Name     string   `json:"name"`
	Resource Resource `json:"resource"`
	State    State    `json:"state"`
}

type zoneKey struct {
	name     string
	resource Resource
}

// Compute derives one Zone per distinct (zone, resource) pair among records that declare a
// zone. A pair is available when at least one of its records is administratively up.
// The result is a set; it is sorted only so that renderings are stable.
func Compute(records []Record) ([]Zone, error) {
	up := make(map[zoneKey]bool)
	for _, rec := range records {
		if !rec.Resource.Valid() {
			return nil, fmt.Errorf("%w: %q (host %s)", ErrInvalidResourceType, rec.Resource, rec.Host)
		}
		if rec.Zone == "" {
			continue
		}
		k := zoneKey{name: rec.Zone, resource: rec.Resource}
		up[k] = up[k] || rec.AdminStateUp
	}

	zones := make([]Zone, 0, len(up))
	for k, available := range up {
		state := StateUnavailable
		if available {
			state = StateAvailable
		}
		zones = append(zones, Zone{Name: k.name, Resource: k.resource, State: state})
	}
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Name != zones[j].Name {
			return zones[i].Name < zones[j].Name
		}
		return zones[i].Resource < zones[j].Resource
	})
	return zones, nil
}

// NotFoundError lists the requested zones that have no available entry for Resource.
type NotFoundError struct {
	Resource Resource
	Zones    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("availability zone(s) %s not available for resource %s",
		strings.Join(e.Zones, ", "), e.Resource)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrZoneNotFound }

// Validate checks that every requested zone has an available entry for resource.
// A zone whose agents are all administratively down does not pass.
func Validate(zones []Zone, resource Resource, requested []string) error {
	if !resource.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResourceType, resource)
	}

	available := make(map[string]bool, len(zones))
	for _, z := range zones {
		if z.Resource == resource && z.State == StateAvailable {
			available[z.Name] = true
		}
	}

	var missing []string
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if available[name] || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return &NotFoundError{Resource: resource, Zones: missing}
	}
	return nil
}

// Filters narrows a zone report. Nil fields match everything.
type Filters struct {
	Name     *string
	Resource *Resource
	State    *State
}

func (f Filters) Match(z Zone) bool {
	if f.Name != nil && z.Name != *f.Name {
		return false
	}
	if f.Resource != nil && z.Resource != *f.Resource {
		return false
	}
	if f.State != nil && z.State != *f.State {
		return false
	}
	return true
}
