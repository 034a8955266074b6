package core

// This file makes references to RFC 2453 (RIP-2) timer and metric
// conventions: https://datatracker.ietf.org/doc/html/rfc2453

import (
	"fmt"

	"github.com/routelab/ripsim/state"
)

// Observer receives the structured route lifecycle events emitted by the
// algorithm functions. The core never renders text of its own; observers
// decide what, if anything, to do with the stream.
type Observer interface {
	RouteEvent(ev state.RouteEvent)
}

// ClampMetric maps any advertised metric into [0, Infinity]. Out-of-range
// values are treated as unreachable, never rejected.
func ClampMetric(m uint16) uint16 {
	return min(m, state.Infinity)
}

// AddHop charges one hop of cost, saturating at Infinity.
func AddHop(m uint16) uint16 {
	if m >= state.Infinity {
		return state.Infinity
	}
	return m + 1
}

// DeclareDirectNetwork seeds a metric-0 entry for a network attached to this
// router. Direct entries never age and never arm the garbage timer.
func DeclareDirectNetwork(rs *state.RouterState, dest state.Dest, mask string) {
	rs.Table[dest] = &state.RouteEntry{
		Dest:    dest,
		Mask:    mask,
		Nh:      rs.Id,
		Metric:  0,
		Timeout: state.RouteTimeout,
	}
}

// BuildUpdates produces the per-neighbour advertisement slices for one
// round. An entry is withheld from the update sent to neighbour n iff it is
// a live route learned through n (split horizon). Unreachable entries are
// always included; that is how a retraction propagates. Pure read.
func BuildUpdates(rs *state.RouterState) map[state.NodeId]state.Update {
	updates := make(map[state.NodeId]state.Update, len(rs.Neighbours))
	for _, n := range rs.Neighbours {
		u := make(state.Update, len(rs.Table))
		for dest, e := range rs.Table {
			if e.Metric < state.Infinity && e.Nh == n {
				continue
			}
			u[dest] = state.UpdateEntry{
				Metric: e.Metric,
				Origin: rs.Id,
				Mask:   e.Mask,
			}
		}
		updates[n] = u
	}
	return updates
}

// ApplyUpdate merges a received update into the table (Bellman-Ford
// relaxation) and reports whether any destination was added or modified.
//
// For each advertised destination, the candidate metric is the advertised
// metric plus one hop, capped at Infinity. Then:
//
//   - if the current entry is already routed through the sender, its view is
//     adopted unconditionally, even when worse; a candidate of Infinity arms
//     the garbage timer, a finite candidate clears it (revival);
//   - a strictly better candidate via a different neighbour replaces the
//     entry wholesale; an equal one does not (ties keep the old route);
//   - an unknown destination with a finite candidate creates a fresh entry.
//     A retraction for a destination we never knew carries no information
//     and is ignored.
func ApplyUpdate(rs *state.RouterState, obs Observer, from state.NodeId, update state.Update) bool {
	changed := false
	for dest, adv := range update {
		cand := AddHop(ClampMetric(adv.Metric))
		cur, known := rs.Table[dest]
		switch {
		case known && cur.Nh == from:
			cur.Metric = cand
			cur.Timeout = state.RouteTimeout
			if cand == state.Infinity {
				cur.Gc = state.GcPeriod
				obs.RouteEvent(state.RouteEvent{Router: rs.Id, Dest: dest, Kind: state.RouteUnreachable})
			} else {
				cur.Gc = 0
			}
			changed = true
		case known:
			if cand < cur.Metric {
				rs.Table[dest] = &state.RouteEntry{
					Dest:    dest,
					Mask:    adv.Mask,
					Nh:      from,
					Metric:  cand,
					Timeout: state.RouteTimeout,
				}
				obs.RouteEvent(state.RouteEvent{Router: rs.Id, Dest: dest, Kind: state.RouteReplaced})
				changed = true
			}
		default:
			if cand == state.Infinity {
				continue
			}
			rs.Table[dest] = &state.RouteEntry{
				Dest:    dest,
				Mask:    adv.Mask,
				Nh:      from,
				Metric:  cand,
				Timeout: state.RouteTimeout,
			}
			obs.RouteEvent(state.RouteEvent{Router: rs.Id, Dest: dest, Kind: state.RouteLearned})
			changed = true
		}
	}
	return changed
}

// AgeRoutes advances every entry's lifecycle by one round. Live learned
// routes count down their timeout and are forced to Infinity when it runs
// out; unreachable routes count down their garbage timer and are deleted
// when it runs out. Direct networks are exempt. Expired destinations are
// collected during the scan and deleted afterwards.
func AgeRoutes(rs *state.RouterState, obs Observer) {
	expired := make([]state.Dest, 0)
	for _, dest := range rs.Dests() {
		e := rs.Table[dest]
		checkEntry(rs.Id, e)
		if e.Direct() {
			continue
		}
		if e.Metric < state.Infinity {
			e.Timeout--
			if e.Timeout <= 0 {
				e.Metric = state.Infinity
				e.Gc = state.GcPeriod
				obs.RouteEvent(state.RouteEvent{Router: rs.Id, Dest: dest, Kind: state.RouteUnreachable})
			}
		} else if e.Gc > 0 {
			e.Gc--
			if e.Gc <= 0 {
				expired = append(expired, dest)
			}
		}
	}
	for _, dest := range expired {
		delete(rs.Table, dest)
		obs.RouteEvent(state.RouteEvent{Router: rs.Id, Dest: dest, Kind: state.RouteRemoved})
	}
}

// checkEntry asserts the table invariants. A violation is a caller contract
// breach, not a runtime condition to recover from.
func checkEntry(id state.NodeId, e *state.RouteEntry) {
	if e.Metric > state.Infinity {
		panic(fmt.Sprintf("router %s: metric %d out of range for %s", id, e.Metric, e.Dest))
	}
	if e.Gc != 0 && e.Metric != state.Infinity {
		panic(fmt.Sprintf("router %s: garbage timer armed on reachable route %s", id, e.Dest))
	}
}
