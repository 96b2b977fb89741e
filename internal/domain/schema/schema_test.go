package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agent-zones/internal/domain/schema"
)

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := schema.Map{"agents": {"id": {IsVisible: true}}}
	ext := schema.Map{
		"agents":             {"availability_zone": {IsVisible: true}},
		"availability_zones": {"name": {IsVisible: true}},
	}

	merged := schema.Merge(base, ext)

	assert.Len(t, base["agents"], 1, "base must be left untouched")
	assert.NotContains(t, base, "availability_zones")
	assert.Contains(t, merged["agents"], "id")
	assert.Contains(t, merged["agents"], "availability_zone")
	assert.True(t, merged.Has("availability_zones"))

	merged["agents"]["host"] = schema.Attribute{}
	assert.NotContains(t, base["agents"], "host")
	assert.NotContains(t, ext["agents"], "host")
}

func TestMerge_LaterExtensionWins(t *testing.T) {
	base := schema.Map{"agents": {"description": {IsVisible: true}}}
	ext := schema.Map{"agents": {"description": {IsVisible: true, AllowPut: true}}}

	merged := schema.Merge(base, ext)
	assert.True(t, merged["agents"]["description"].AllowPut)
	assert.False(t, base["agents"]["description"].AllowPut)
}

func TestBuild(t *testing.T) {
	m := schema.Build(schema.Extensions())
	require.True(t, m.Has(schema.CollectionAgents))
	require.True(t, m.Has(schema.CollectionAvailabilityZones))
	assert.True(t, m[schema.CollectionAgents]["availability_zone"].IsVisible)

	withoutAZ := schema.Build(schema.Extensions()[:1])
	assert.NotContains(t, withoutAZ[schema.CollectionAgents], "availability_zone")
	assert.False(t, withoutAZ.Has(schema.CollectionAvailabilityZones))

	assert.Empty(t, schema.Build(nil))
}

func TestCheckUpdate(t *testing.T) {
	m := schema.Build(schema.Extensions())

	tests := []struct {
		name    string
		body    map[string]any
		wantErr bool
	}{
		{name: "admin state", body: map[string]any{"admin_state_up": false}},
		{name: "description", body: map[string]any{"description": "x"}},
		{name: "read-only zone", body: map[string]any{"availability_zone": "nova9"}, wantErr: true},
		{name: "unknown key", body: map[string]any{"alive": true}, wantErr: true},
		{name: "empty body", body: map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.CheckUpdate(schema.CollectionAgents, tt.body)
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrAttributeNotAllowed)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Error(t, m.CheckUpdate("ports", map[string]any{}))
}

func TestRender(t *testing.T) {
	type row struct {
		ID     string `json:"id"`
		Zone   string `json:"availability_zone"`
		Secret string `json:"secret"`
	}
	v := row{ID: "a1", Zone: "nova1", Secret: "s"}

	full := schema.Build(schema.Extensions())
	got, err := full.Render(schema.CollectionAgents, v, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "a1", "availability_zone": "nova1"}, got)

	narrowed, err := full.Render(schema.CollectionAgents, v, []string{"availability_zone"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"availability_zone": "nova1"}, narrowed)

	base := schema.Build(schema.Extensions()[:1])
	got, err = base.Render(schema.CollectionAgents, v, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "a1"}, got)

	_, err = full.Render("ports", v, nil)
	assert.Error(t, err)
}

func TestRenderList(t *testing.T) {
	type zone struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	m := schema.Build(schema.Extensions())
	got, err := schema.RenderList(m, schema.CollectionAvailabilityZones, []zone{{"nova1", "available"}, {"nova2", "unavailable"}}, []string{"name"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []map[string]any{{"name": "nova1"}, {"name": "nova2"}}, got)

	empty, err := schema.RenderList(m, schema.CollectionAvailabilityZones, []zone(nil), nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestParseFields(t *testing.T) {
	assert.Equal(t, []string{"id", "host", "availability_zone"}, schema.ParseFields([]string{"id, host", " ", "availability_zone,"}))
	assert.Empty(t, schema.ParseFields(nil))
}
