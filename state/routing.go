package state

import (
	"fmt"
	"slices"
	"strings"
)

type NodeId string

// Dest identifies a destination network by its masked network address
// (e.g. "10.0.0.0"). The subnet mask is carried next to it for display and
// is never part of a comparison or a table key.
type Dest string

// RouteEntry is a single routing table record.
//
// Gc is the garbage collection countdown. Zero means the timer is not armed;
// it is armed (set to GcPeriod) the moment Metric reaches Infinity and
// cleared the moment the route is revived. A direct route (Metric == 0)
// never ages and never arms Gc.
type RouteEntry struct {
	Dest    Dest
	Mask    string
	Nh      NodeId // next hop; equal to the owning router for direct networks
	Metric  uint16
	Timeout int
	Gc      int
}

func (e *RouteEntry) Direct() bool {
	return e.Metric == 0
}

func (e *RouteEntry) Unreachable() bool {
	return e.Metric >= Infinity
}

func (e *RouteEntry) String() string {
	return fmt.Sprintf("%s%s via %s metric %d timeout %d", e.Dest, e.Mask, e.Nh, e.Metric, e.Timeout)
}

// UpdateEntry is one advertised route inside an update: the advertiser's own
// metric, its identity, and the display mask of the network.
type UpdateEntry struct {
	Metric uint16
	Origin NodeId
	Mask   string
}

// Update is the slice of a routing table a router prepares for one
// particular neighbour.
type Update map[Dest]UpdateEntry

// RouterState holds everything a single router owns: its identity, the ids
// of its adjacent routers, and its routing table. Neighbour entries are ids
// only; all interaction between routers goes through the simulator registry.
type RouterState struct {
	Id         NodeId
	Neighbours []NodeId
	Table      map[Dest]*RouteEntry
}

func NewRouterState(id NodeId) *RouterState {
	return &RouterState{
		Id:         id,
		Neighbours: make([]NodeId, 0),
		Table:      make(map[Dest]*RouteEntry),
	}
}

func (rs *RouterState) HasNeighbour(id NodeId) bool {
	return slices.Contains(rs.Neighbours, id)
}

func (rs *RouterState) AddNeighbour(id NodeId) {
	if id == rs.Id || rs.HasNeighbour(id) {
		return
	}
	rs.Neighbours = append(rs.Neighbours, id)
	slices.Sort(rs.Neighbours)
}

func (rs *RouterState) RemoveNeighbour(id NodeId) {
	rs.Neighbours = slices.DeleteFunc(rs.Neighbours, func(n NodeId) bool {
		return n == id
	})
}

// Dests returns the table keys in sorted order.
func (rs *RouterState) Dests() []Dest {
	dests := make([]Dest, 0, len(rs.Table))
	for dest := range rs.Table {
		dests = append(dests, dest)
	}
	slices.Sort(dests)
	return dests
}

// Snapshot returns a copy of the routing table, sorted by destination, for
// read-only display. The live table is never handed out.
func (rs *RouterState) Snapshot() []RouteEntry {
	entries := make([]RouteEntry, 0, len(rs.Table))
	for _, dest := range rs.Dests() {
		entries = append(entries, *rs.Table[dest])
	}
	return entries
}

func (rs *RouterState) StringTable() string {
	out := make([]string, 0, len(rs.Table))
	for _, dest := range rs.Dests() {
		out = append(out, rs.Table[dest].String())
	}
	return strings.Join(out, "\n")
}
