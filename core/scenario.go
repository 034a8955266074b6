package core

import (
	"fmt"

	"github.com/routelab/ripsim/state"
)

// FromScenario assembles a simulator out of a validated scenario: one router
// per declaration, a metric-0 entry per attached network, and symmetric
// links for every graph edge.
func FromScenario(cfg *state.ScenarioCfg) (*Simulator, error) {
	edges, err := cfg.Edges()
	if err != nil {
		return nil, err
	}
	sim := New()
	for _, r := range cfg.Routers {
		rs := state.NewRouterState(r.Id)
		for _, p := range r.Networks {
			dest, mask := state.DestOf(p)
			DeclareDirectNetwork(rs, dest, mask)
		}
		sim.AddRouter(rs)
	}
	for _, edge := range edges {
		sim.Link(edge.V1, edge.V2)
	}
	return sim, nil
}

// ApplyScheduledEvents performs the topology mutations the scenario schedules
// before the given round. Returns a description per applied event, for the
// driver to report.
func ApplyScheduledEvents(sim *Simulator, cfg *state.ScenarioCfg, round int) ([]string, error) {
	applied := make([]string, 0)
	for _, ev := range cfg.Events {
		if ev.Round != round {
			continue
		}
		switch {
		case ev.Remove != "":
			if sim.RemoveRouter(ev.Remove) {
				applied = append(applied, fmt.Sprintf("router %s is now offline", ev.Remove))
			}
		case ev.Unlink != "":
			edge, err := state.ParseEdge(ev.Unlink, cfg.RouterIds())
			if err != nil {
				return applied, err
			}
			sim.Unlink(edge.V1, edge.V2)
			applied = append(applied, fmt.Sprintf("link %s <-> %s is down", edge.V1, edge.V2))
		}
	}
	return applied, nil
}
