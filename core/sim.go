package core

import (
	"slices"
	"sync"
	"time"

	"github.com/routelab/ripsim/perf"
	"github.com/routelab/ripsim/state"
)

// Simulator owns the router registry and drives the synchronous rounds. It
// is a plain value with an explicit lifecycle; independent simulations can
// run side by side.
type Simulator struct {
	routers map[state.NodeId]*state.RouterState
	round   int
}

func New() *Simulator {
	return &Simulator{
		routers: make(map[state.NodeId]*state.RouterState),
	}
}

// AddRouter registers a router. Adding a duplicate id is a caller bug.
func (s *Simulator) AddRouter(rs *state.RouterState) {
	if _, ok := s.routers[rs.Id]; ok {
		panic("router " + string(rs.Id) + " already registered")
	}
	s.routers[rs.Id] = rs
}

// Router returns the registered router, or nil.
func (s *Simulator) Router(id state.NodeId) *state.RouterState {
	return s.routers[id]
}

// Ids returns the registered router ids in sorted order.
func (s *Simulator) Ids() []state.NodeId {
	ids := make([]state.NodeId, 0, len(s.routers))
	for id := range s.routers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Round reports how many rounds have run.
func (s *Simulator) Round() int {
	return s.round
}

// Link records a symmetric adjacency between two registered routers.
func (s *Simulator) Link(a, b state.NodeId) {
	ra, rb := s.routers[a], s.routers[b]
	if ra == nil || rb == nil {
		panic("link references unregistered router")
	}
	ra.AddNeighbour(b)
	rb.AddNeighbour(a)
}

// Unlink removes the adjacency on both ends.
func (s *Simulator) Unlink(a, b state.NodeId) {
	if ra := s.routers[a]; ra != nil {
		ra.RemoveNeighbour(b)
	}
	if rb := s.routers[b]; rb != nil {
		rb.RemoveNeighbour(a)
	}
}

// RemoveRouter takes a router offline: it is dropped from the registry and
// stripped from every remaining router's neighbour set. Must only be called
// between rounds.
func (s *Simulator) RemoveRouter(id state.NodeId) bool {
	if _, ok := s.routers[id]; !ok {
		return false
	}
	delete(s.routers, id)
	for _, rs := range s.routers {
		rs.RemoveNeighbour(id)
	}
	return true
}

// collector gathers events behind a mutex so the aging phase can fan out
// across routers.
type collector struct {
	mu     sync.Mutex
	events []state.RouteEvent
}

func (c *collector) RouteEvent(ev state.RouteEvent) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

// RunRound executes one synchronous round: produce, deliver, age. Every
// router's outgoing updates are captured before any delivery, so no router
// observes another's mid-round state. The returned slice is the ordered
// event stream of the round.
func (s *Simulator) RunRound() []state.RouteEvent {
	start := time.Now()
	ids := s.Ids()

	// phase 1: snapshot all outgoing updates. Pure reads, safe to fan out.
	updates := make(map[state.NodeId]map[state.NodeId]state.Update, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(rs *state.RouterState) {
			defer wg.Done()
			out := BuildUpdates(rs)
			mu.Lock()
			updates[rs.Id] = out
			mu.Unlock()
		}(s.routers[id])
	}
	wg.Wait()

	events := make([]state.RouteEvent, 0)
	sink := &collector{}

	// phase 2: deliver each prepared slice to its addressed neighbour. A
	// neighbour that prepared nothing for us, or that no longer exists,
	// delivers an empty update.
	delivered := 0
	for _, id := range ids {
		rs := s.routers[id]
		for _, n := range rs.Neighbours {
			up := updates[n][id]
			ApplyUpdate(rs, sink, n, up)
			delivered += len(up)
		}
	}
	events = append(events, sink.events...)

	// phase 3: age every router. Tables are independent, safe to fan out;
	// events are re-collected per router to keep the stream deterministic.
	age := make(map[state.NodeId]*collector, len(ids))
	for _, id := range ids {
		age[id] = &collector{}
		wg.Add(1)
		go func(rs *state.RouterState, sink *collector) {
			defer wg.Done()
			AgeRoutes(rs, sink)
		}(s.routers[id], age[id])
	}
	wg.Wait()
	expired, removed := 0, 0
	for _, id := range ids {
		for _, ev := range age[id].events {
			switch ev.Kind {
			case state.RouteUnreachable:
				expired++
			case state.RouteRemoved:
				removed++
			}
			events = append(events, ev)
		}
	}

	s.round++
	perf.RoundsRun.Add(1)
	perf.UpdatesDelivered.Add(float64(delivered))
	perf.RoutesExpired.Add(float64(expired))
	perf.RoutesRemoved.Add(float64(removed))
	perf.RoundLatency.Add(float64(time.Since(start).Microseconds()))
	return events
}

// fingerprint captures all table contents for convergence detection.
func (s *Simulator) fingerprint() string {
	out := ""
	for _, id := range s.Ids() {
		out += string(id) + "{" + s.routers[id].StringTable() + "}"
	}
	return out
}

// RunToConvergence runs rounds until a round leaves every table unchanged
// and emits no events, or until maxRounds is exhausted. It returns the
// number of rounds executed and whether the network converged.
func (s *Simulator) RunToConvergence(maxRounds int) (int, bool) {
	prev := s.fingerprint()
	for i := 1; i <= maxRounds; i++ {
		events := s.RunRound()
		next := s.fingerprint()
		if len(events) == 0 && next == prev {
			return i, true
		}
		prev = next
	}
	return maxRounds, false
}
