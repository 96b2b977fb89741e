package availabilityzone_test

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainaz "github.com/alanyang/agent-zones/internal/domain/availabilityzone"
)

// registeredAgents mirrors the five-agent layout used throughout: two DHCP agents and three
// L3 agents spread over nova1..nova3.
func registeredAgents(l3Host2Up, l3Host3Up bool) []domainaz.Record {
	return []domainaz.Record{
		{Host: "host1", Zone: "nova1", Resource: domainaz.ResourceNetwork, AdminStateUp: true},
		{Host: "host2", Zone: "nova2", Resource: domainaz.ResourceNetwork, AdminStateUp: true},
		{Host: "host2", Zone: "nova2", Resource: domainaz.ResourceRouter, AdminStateUp: l3Host2Up},
		{Host: "host3", Zone: "nova3", Resource: domainaz.ResourceRouter, AdminStateUp: l3Host3Up},
		{Host: "host4", Zone: "nova2", Resource: domainaz.ResourceRouter, AdminStateUp: true},
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		records []domainaz.Record
		want    []domainaz.Zone
	}{
		{
			name:    "two L3 agents disabled",
			records: registeredAgents(false, false),
			want: []domainaz.Zone{
				{Name: "nova1", Resource: domainaz.ResourceNetwork, State: domainaz.StateAvailable},
				{Name: "nova2", Resource: domainaz.ResourceNetwork, State: domainaz.StateAvailable},
				{Name: "nova2", Resource: domainaz.ResourceRouter, State: domainaz.StateAvailable},
				{Name: "nova3", Resource: domainaz.ResourceRouter, State: domainaz.StateUnavailable},
			},
		},
		{
			name:    "empty input",
			records: nil,
			want:    []domainaz.Zone{},
		},
		{
			name: "agents without a zone contribute nothing",
			records: []domainaz.Record{
				{Host: "host1", Resource: domainaz.ResourceNetwork, AdminStateUp: true},
				{Host: "host2", Zone: "az1", Resource: domainaz.ResourceRouter, AdminStateUp: false},
			},
			want: []domainaz.Zone{{Name: "az1", Resource: domainaz.ResourceRouter, State: domainaz.StateUnavailable}},
		},
		{
			name: "duplicate host entries",
			records: []domainaz.Record{
				{Host: "host1", Zone: "az1", Resource: domainaz.ResourceNetwork, AdminStateUp: false},
				{Host: "host1", Zone: "az1", Resource: domainaz.ResourceNetwork, AdminStateUp: true},
			},
			want: []domainaz.Zone{{Name: "az1", Resource: domainaz.ResourceNetwork, State: domainaz.StateAvailable}},
		},
		{
			name: "same zone name is tracked per resource",
			records: []domainaz.Record{
				{Host: "host1", Zone: "az1", Resource: domainaz.ResourceNetwork, AdminStateUp: false},
				{Host: "host2", Zone: "az1", Resource: domainaz.ResourceRouter, AdminStateUp: true},
			},
			want: []domainaz.Zone{
				{Name: "az1", Resource: domainaz.ResourceNetwork, State: domainaz.StateUnavailable},
				{Name: "az1", Resource: domainaz.ResourceRouter, State: domainaz.StateAvailable},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domainaz.Compute(tt.records)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestCompute_InvalidResourceType(t *testing.T) {
	records := []domainaz.Record{
		{Host: "host1", Zone: "az1", Resource: domainaz.ResourceNetwork, AdminStateUp: true},
		{Host: "host2", Zone: "az1", Resource: domainaz.Resource("loadbalancer"), AdminStateUp: true},
	}

	got, err := domainaz.Compute(records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainaz.ErrInvalidResourceType))
	assert.Contains(t, err.Error(), "loadbalancer")
	assert.Nil(t, got)
}

func TestCompute_InvalidResourceWithoutZoneStillRejected(t *testing.T) {
	_, err := domainaz.Compute([]domainaz.Record{{Host: "host1", Resource: domainaz.Resource("")}})
	assert.ErrorIs(t, err, domainaz.ErrInvalidResourceType)
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	zones := []string{"", "az1", "az2", "az3"}
	resources := []domainaz.Resource{domainaz.ResourceNetwork, domainaz.ResourceRouter}

	for i := 0; i < 200; i++ {
		n := rng.Intn(12)
		records := make([]domainaz.Record, n)
		for j := range records {
			records[j] = domainaz.Record{
				Host:         fmt.Sprintf("host%d", rng.Intn(4)),
				Zone:         zones[rng.Intn(len(zones))],
				Resource:     resources[rng.Intn(len(resources))],
				AdminStateUp: rng.Intn(2) == 0,
			}
		}

		got, err := domainaz.Compute(records)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, z := range got {
			key := z.Name + "/" + string(z.Resource)
			assert.False(t, seen[key], "duplicate entry %s", key)
			seen[key] = true

			assert.Contains(t, resources, z.Resource)
			assert.Contains(t, []domainaz.State{domainaz.StateAvailable, domainaz.StateUnavailable}, z.State)
			assert.NotEmpty(t, z.Name)

			anyUp := false
			for _, r := range records {
				if r.Zone == z.Name && r.Resource == z.Resource && r.AdminStateUp {
					anyUp = true
				}
			}
			assert.Equal(t, anyUp, z.State == domainaz.StateAvailable, "state of %s", key)
		}

		shuffled := append([]domainaz.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		permuted, err := domainaz.Compute(shuffled)
		require.NoError(t, err)
		assert.ElementsMatch(t, got, permuted)

		again, err := domainaz.Compute(records)
		require.NoError(t, err)
		assert.ElementsMatch(t, got, again)
	}
}

func TestValidate(t *testing.T) {
	allUp, err := domainaz.Compute(registeredAgents(true, true))
	require.NoError(t, err)
	partlyDown, err := domainaz.Compute(registeredAgents(false, false))
	require.NoError(t, err)

	tests := []struct {
		name        string
		zones       []domainaz.Zone
		resource    domainaz.Resource
		requested   []string
		wantErr     error
		wantMissing []string
	}{
		{name: "network zones with agents", zones: allUp, resource: domainaz.ResourceNetwork, requested: []string{"nova1", "nova2"}},
		{name: "router zones with agents", zones: allUp, resource: domainaz.ResourceRouter, requested: []string{"nova2", "nova3"}},
		{name: "no router agent in nova1", zones: allUp, resource: domainaz.ResourceRouter, requested: []string{"nova1"}, wantErr: domainaz.ErrZoneNotFound, wantMissing: []string{"nova1"}},
		{name: "zone with only disabled agents", zones: partlyDown, resource: domainaz.ResourceRouter, requested: []string{"nova2", "nova3"}, wantErr: domainaz.ErrZoneNotFound, wantMissing: []string{"nova3"}},
		{name: "all missing zones reported once", zones: allUp, resource: domainaz.ResourceRouter, requested: []string{"nova1", "nova9", "nova1"}, wantErr: domainaz.ErrZoneNotFound, wantMissing: []string{"nova1", "nova9"}},
		{name: "empty request", zones: allUp, resource: domainaz.ResourceRouter},
		{name: "empty report", zones: nil, resource: domainaz.ResourceNetwork, requested: []string{"nova1"}, wantErr: domainaz.ErrZoneNotFound, wantMissing: []string{"nova1"}},
		{name: "unknown resource", zones: allUp, resource: domainaz.Resource("subnet"), requested: []string{"nova1"}, wantErr: domainaz.ErrInvalidResourceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domainaz.Validate(tt.zones, tt.resource, tt.requested)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMissing != nil {
				var nf *domainaz.NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, tt.resource, nf.Resource)
				assert.ElementsMatch(t, tt.wantMissing, nf.Zones)
				assert.Contains(t, err.Error(), strings.Join(tt.wantMissing, ", "))
			}
		})
	}
}

func TestParseResource(t *testing.T) {
	r, err := domainaz.ParseResource("router")
	require.NoError(t, err)
	assert.Equal(t, domainaz.ResourceRouter, r)

	_, err = domainaz.ParseResource("Router")
	assert.ErrorIs(t, err, domainaz.ErrInvalidResourceType)
}

func TestParseState(t *testing.T) {
	st, err := domainaz.ParseState("unavailable")
	require.NoError(t, err)
	assert.Equal(t, domainaz.StateUnavailable, st)

	_, err = domainaz.ParseState("down")
	assert.Error(t, err)
}

func TestFiltersMatch(t *testing.T) {
	name := "nova2"
	res := domainaz.ResourceRouter
	state := domainaz.StateUnavailable
	z := domainaz.Zone{Name: "nova2", Resource: domainaz.ResourceRouter, State: domainaz.StateAvailable}

	assert.True(t, domainaz.Filters{}.Match(z))
	assert.True(t, domainaz.Filters{Name: &name, Resource: &res}.Match(z))
	assert.False(t, domainaz.Filters{State: &state}.Match(z))
}
