package schema

const (
	CollectionAgents            = "agents"
	CollectionAvailabilityZones = "availability_zones"
)

type Extension struct {
	Alias       string `json:"alias"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Updated     string `json:"updated"`
	Attributes  Map    `json:"-"`
}

func agentAttributes() Map {
	readOnly := Attribute{IsVisible: true}
	return Map{
		CollectionAgents: {
			"id":                  readOnly,
			"agent_type":          readOnly,
			"binary":              readOnly,
			"topic":               readOnly,
			"host":                readOnly,
			"admin_state_up":      {AllowPut: true, IsVisible: true},
			"description":         {AllowPost: true, AllowPut: true, IsVisible: true},
			"configurations":      readOnly,
			"created_at":          readOnly,
			"started_at":          readOnly,
			"heartbeat_timestamp": readOnly,
		},
	}
}

func availabilityZoneAttributes() Map {
	readOnly := Attribute{IsVisible: true}
	return Map{
		CollectionAgents: {
			"availability_zone": readOnly,
		},
		CollectionAvailabilityZones: {
			"name":     readOnly,
			"resource": readOnly,
			"state":    readOnly,
		},
	}
}

// Extensions returns the supported extensions in load order. Every call builds fresh
// attribute maps.
func Extensions() []Extension {
	return []Extension{
		{
			Alias:       "agent",
			Name:        "agent",
			Description: "The agent management extension.",
			Updated:     "2013-02-03T10:00:00-00:00",
			Attributes:  agentAttributes(),
		},
		{
			Alias:       "availability_zone",
			Name:        "Availability Zone",
			Description: "The availability zone extension.",
			Updated:     "2015-01-01T10:00:00-00:00",
			Attributes:  availabilityZoneAttributes(),
		},
	}
}

// Build merges the attribute maps of exts into one schema.
func Build(exts []Extension) Map {
	if len(exts) == 0 {
		return Map{}
	}
	rest := make([]Map, 0, len(exts)-1)
	for _, e := range exts[1:] {
		rest = append(rest, e.Attributes)
	}
	return Merge(exts[0].Attributes, rest...)
}
