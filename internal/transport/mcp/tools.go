package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
	domainaz "github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	agentsvc "github.com/alanyang/agent-zones/internal/service/agent"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"
)

// RegisterTools registers all MCP tools on the server.
func RegisterTools(s *mcpserver.MCPServer, agentSvc *agentsvc.Service, azSvc *azsvc.Service) {
	s.AddTool(mcpmcp.NewTool("list_availability_zones",
		mcpmcp.WithDescription("List availability zones derived from registered agents. Each entry is a (name, resource) pair with state available or unavailable."),
		mcpmcp.WithString("name", mcpmcp.Description("Only zones with this name")),
		mcpmcp.WithString("resource", mcpmcp.Description("Only zones for this resource: network or router")),
		mcpmcp.WithString("state", mcpmcp.Description("Only zones in this state: available or unavailable")),
	), listZonesHandler(azSvc))

	s.AddTool(mcpmcp.NewTool("validate_availability_zones",
		mcpmcp.WithDescription("Check that every requested zone is available for the resource before using them as scheduling hints."),
		mcpmcp.WithString("resource", mcpmcp.Required(), mcpmcp.Description("network or router")),
		mcpmcp.WithString("zones", mcpmcp.Required(), mcpmcp.Description("Comma-separated zone names, e.g. nova1,nova2")),
	), validateZonesHandler(azSvc))

	s.AddTool(mcpmcp.NewTool("list_agents",
		mcpmcp.WithDescription("List registered agents, optionally filtered."),
		mcpmcp.WithString("host", mcpmcp.Description("Only agents on this host")),
		mcpmcp.WithString("agent_type", mcpmcp.Description("Only agents of this type, e.g. \"L3 agent\"")),
		mcpmcp.WithString("availability_zone", mcpmcp.Description("Only agents in this zone")),
	), listAgentsHandler(agentSvc))

	s.AddTool(mcpmcp.NewTool("report_agent_state",
		mcpmcp.WithDescription("Report the state of an agent. The first report for an (agent_type, host) pair registers it; later reports refresh it. Returns the agent_id."),
		mcpmcp.WithString("agent_type", mcpmcp.Required(), mcpmcp.Description("Agent type, e.g. \"DHCP agent\" or \"L3 agent\"")),
		mcpmcp.WithString("host", mcpmcp.Required(), mcpmcp.Description("Host the agent runs on")),
		mcpmcp.WithString("binary", mcpmcp.Description("Agent binary name")),
		mcpmcp.WithString("topic", mcpmcp.Description("Agent RPC topic")),
		mcpmcp.WithString("availability_zone", mcpmcp.Description("Zone the agent belongs to")),
		mcpmcp.WithObject("configurations", mcpmcp.Description("Free-form agent configuration")),
	), reportAgentStateHandler(agentSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listZonesHandler(azSvc *azsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		var filters domainaz.Filters

		if v := mcpmcp.ParseString(req, "name", ""); v != "" {
			filters.Name = &v
		}
		if v := mcpmcp.ParseString(req, "resource", ""); v != "" {
			r, err := domainaz.ParseResource(v)
			if err != nil {
				return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
			}
			filters.Resource = &r
		}
		if v := mcpmcp.ParseString(req, "state", ""); v != "" {
			st, err := domainaz.ParseState(v)
			if err != nil {
				return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
			}
			filters.State = &st
		}

		zones, err := azSvc.List(ctx, filters)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(map[string]any{"availability_zones": zones})
	}
}

func validateZonesHandler(azSvc *azsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		resource := domainaz.Resource(mcpmcp.ParseString(req, "resource", ""))

		zones, err := domainaz.ParseHints(mcpmcp.ParseString(req, "zones", ""))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		err = azSvc.Validate(ctx, resource, zones)
		var nf *domainaz.NotFoundError
		switch {
		case err == nil:
			return jsonResult(map[string]any{"valid": true, "zones": zones})
		case errors.As(err, &nf):
			return jsonResult(map[string]any{"valid": false, "missing": nf.Zones, "error": nf.Error()})
		default:
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
	}
}

func listAgentsHandler(agentSvc *agentsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		var filters domainagent.ListFilters
		if v := mcpmcp.ParseString(req, "host", ""); v != "" {
			filters.Host = &v
		}
		if v := mcpmcp.ParseString(req, "agent_type", ""); v != "" {
			filters.AgentType = &v
		}
		if v := mcpmcp.ParseString(req, "availability_zone", ""); v != "" {
			filters.AvailabilityZone = &v
		}

		agents, err := agentSvc.List(ctx, filters)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if agents == nil {
			agents = []domainagent.Agent{}
		}
		return jsonResult(map[string]any{"agents": agents})
	}
}

func reportAgentStateHandler(agentSvc *agentsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := agentSvc.Register(ctx, agentsvc.Report{
			AgentType:        mcpmcp.ParseString(req, "agent_type", ""),
			Binary:           mcpmcp.ParseString(req, "binary", ""),
			Topic:            mcpmcp.ParseString(req, "topic", ""),
			Host:             mcpmcp.ParseString(req, "host", ""),
			AvailabilityZone: mcpmcp.ParseString(req, "availability_zone", ""),
			Configurations:   mcpmcp.ParseStringMap(req, "configurations", nil),
		})
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(map[string]any{
			"agent_id":          a.ID.String(),
			"admin_state_up":    a.AdminStateUp,
			"availability_zone": a.AvailabilityZone,
		})
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
	}
	return mcpmcp.NewToolResultText(string(result)), nil
}
