package state

// Infinity is the RIP unreachable sentinel. The maximum valid metric is
// Infinity - 1; any arithmetic that would exceed Infinity clamps to it.
const Infinity = (uint16)(16)

var (
	// RouteTimeout is the number of rounds a learned route survives without
	// being refreshed by its next hop before it is forced to Infinity.
	RouteTimeout = 3
	// GcPeriod is the number of rounds an unreachable route lingers in the
	// table, so the retraction can propagate, before it is deleted.
	GcPeriod = 2
)

var (
	ScenarioPath = "scenario.yaml"

	DBG_debug = false
	DebugBind = "127.0.0.1:6060"
)
