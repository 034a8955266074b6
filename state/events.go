package state

// route lifecycle events

type EventKind int

const (
	// RouteLearned is emitted when a previously unknown destination enters
	// the table.
	RouteLearned EventKind = iota
	// RouteReplaced is emitted when a strictly better path via a different
	// neighbour displaces the current entry.
	RouteReplaced
	// RouteUnreachable is emitted when an entry is forced to Infinity,
	// either by timeout expiry or by a poisoned update from its next hop.
	RouteUnreachable
	// RouteRemoved is emitted when the garbage timer expires and the entry
	// is deleted. A later update for the same destination creates a brand
	// new entry, not a resurrection.
	RouteRemoved
)

func (k EventKind) String() string {
	switch k {
	case RouteLearned:
		return "LEARNED"
	case RouteReplaced:
		return "REPLACED"
	case RouteUnreachable:
		return "UNREACHABLE"
	case RouteRemoved:
		return "REMOVED"
	}
	return "UNKNOWN"
}

// RouteEvent is the structured notification the core hands to observers in
// place of any rendering of its own.
type RouteEvent struct {
	Router NodeId
	Dest   Dest
	Kind   EventKind
}
