package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ExplainRouting handles GET /api/v1/routing/explain?description=...
// It returns the ranked classification for a description without
// dispatching any agent.
func (s *APIV1Service) ExplainRouting(c echo.Context) error {
	description := c.QueryParam("description")
	if description == "" {
		return fail(c, http.StatusBadRequest, "description is required")
	}
	return ok(c, s.Coordinator.ExplainRouting(description))
}

// AgentInfo is one registered agent's health entry.
type AgentInfo struct {
	Name         string   `json:"name"`
	Priority     int      `json:"priority"`
	Capabilities []string `json:"capabilities"`
	// Ready is false when the agent's backing tool binary is missing.
	Ready bool `json:"ready"`
}

// AgentHealth handles GET /api/v1/agents, listing registered agents with
// their capability profiles and tool readiness.
func (s *APIV1Service) AgentHealth(c echo.Context) error {
	var infos []AgentInfo
	for _, name := range s.Coordinator.AgentNames() {
		capability, err := s.Coordinator.Capability(name)
		if err != nil {
			continue
		}
		ready := true
		if agent, ok := s.Coordinator.Agent(name); ok {
			if probe, ok := agent.(interface{ Ready() bool }); ok {
				ready = probe.Ready()
			}
		}
		infos = append(infos, AgentInfo{
			Name:         name,
			Priority:     capability.RoutingPriority,
			Capabilities: capability.Capabilities,
			Ready:        ready,
		})
	}
	return ok(c, infos)
}
