package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/routelab/ripsim/state"
)

// RouterHarness records the event stream the algorithm functions emit so
// tests can assert on sequences instead of captured text.
type RouterHarness struct {
	events []state.RouteEvent
}

func (h *RouterHarness) RouteEvent(ev state.RouteEvent) {
	h.events = append(h.events, ev)
}

// Events drains and returns everything recorded so far.
func (h *RouterHarness) Events() []state.RouteEvent {
	evs := h.events
	h.events = nil
	return evs
}

func (h *RouterHarness) AssertContains(t *testing.T, want state.RouteEvent) {
	t.Helper()
	for _, ev := range h.events {
		if cmp.Equal(ev, want) {
			return
		}
	}
	t.Fatalf("expected event not found: %+v in %+v", want, h.events)
}

func (h *RouterHarness) AssertEmpty(t *testing.T) {
	t.Helper()
	if len(h.events) != 0 {
		t.Fatalf("unexpected events: %+v", h.events)
	}
}

func MakeRouter(id state.NodeId, neighbours ...state.NodeId) *state.RouterState {
	rs := state.NewRouterState(id)
	for _, n := range neighbours {
		rs.AddNeighbour(n)
	}
	return rs
}

// Adv delivers a single-destination update from a neighbour.
func (h *RouterHarness) Adv(rs *state.RouterState, from state.NodeId, dest state.Dest, metric uint16) bool {
	return ApplyUpdate(rs, h, from, state.Update{
		dest: {Metric: metric, Origin: from, Mask: "/24"},
	})
}
