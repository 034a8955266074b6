package core

import (
	"testing"

	"github.com/routelab/ripsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareDirectNetwork(t *testing.T) {
	rs := MakeRouter("A", "B")
	DeclareDirectNetwork(rs, "10.0.0.0", "/24")

	e := rs.Table["10.0.0.0"]
	require.NotNil(t, e)
	assert.Equal(t, state.NodeId("A"), e.Nh)
	assert.Equal(t, uint16(0), e.Metric)
	assert.Equal(t, 0, e.Gc)
	assert.True(t, e.Direct())
}

func TestSplitHorizon(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B", "C")
	DeclareDirectNetwork(rs, "10.0.0.0", "/24")
	h.Adv(rs, "B", "20.0.0.0", 0) // learned through B
	h.Adv(rs, "B", "30.0.0.0", 2)
	rs.Table["30.0.0.0"].Metric = state.Infinity // poisoned
	rs.Table["30.0.0.0"].Gc = state.GcPeriod

	updates := BuildUpdates(rs)

	// live routes learned through B are withheld from B
	toB := updates["B"]
	assert.NotContains(t, toB, state.Dest("20.0.0.0"))
	// but poisoned ones are not; that is how a retraction propagates
	assert.Contains(t, toB, state.Dest("30.0.0.0"))
	assert.Equal(t, state.Infinity, toB["30.0.0.0"].Metric)
	assert.Contains(t, toB, state.Dest("10.0.0.0"))

	// a different neighbour sees everything
	toC := updates["C"]
	assert.Equal(t, uint16(0), toC["10.0.0.0"].Metric)
	assert.Equal(t, uint16(1), toC["20.0.0.0"].Metric)
	assert.Equal(t, state.Infinity, toC["30.0.0.0"].Metric)
	assert.Equal(t, state.NodeId("A"), toC["10.0.0.0"].Origin)
}

func TestBuildUpdatesIsPure(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	DeclareDirectNetwork(rs, "10.0.0.0", "/24")
	h.Adv(rs, "B", "20.0.0.0", 3)
	before := rs.StringTable()

	BuildUpdates(rs)
	BuildUpdates(rs)

	assert.Equal(t, before, rs.StringTable())
}

func TestRelaxationLearnsUnknownDestination(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "S")

	changed := h.Adv(rs, "S", "40.0.0.0", 3)

	require.True(t, changed)
	e := rs.Table["40.0.0.0"]
	require.NotNil(t, e)
	assert.Equal(t, uint16(4), e.Metric)
	assert.Equal(t, state.NodeId("S"), e.Nh)
	assert.Equal(t, state.RouteTimeout, e.Timeout)
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteLearned})
}

func TestRetractionOfUnknownDestinationIsIgnored(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "S")

	changed := h.Adv(rs, "S", "40.0.0.0", state.Infinity)

	assert.False(t, changed)
	assert.NotContains(t, rs.Table, state.Dest("40.0.0.0"))
	h.AssertEmpty(t)
}

func TestOutOfRangeMetricIsClamped(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "S")
	h.Adv(rs, "S", "40.0.0.0", 3)
	h.Events()

	// a wild metric from our current next hop poisons the route, it is
	// never rejected
	h.Adv(rs, "S", "40.0.0.0", 500)

	e := rs.Table["40.0.0.0"]
	assert.Equal(t, state.Infinity, e.Metric)
	assert.Equal(t, state.GcPeriod, e.Gc)
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteUnreachable})
}

func TestTieKeepsOldRoute(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B", "C")
	h.Adv(rs, "B", "40.0.0.0", 1) // via B, metric 2
	h.Events()

	changed := h.Adv(rs, "C", "40.0.0.0", 1) // same candidate metric

	assert.False(t, changed)
	assert.Equal(t, state.NodeId("B"), rs.Table["40.0.0.0"].Nh)
	h.AssertEmpty(t)
}

func TestStrictlyBetterPathReplacesWholesale(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B", "C")
	h.Adv(rs, "B", "40.0.0.0", 3) // via B, metric 4
	rs.Table["40.0.0.0"].Timeout = 1
	h.Events()

	changed := h.Adv(rs, "C", "40.0.0.0", 1) // via C, metric 2

	require.True(t, changed)
	e := rs.Table["40.0.0.0"]
	assert.Equal(t, state.NodeId("C"), e.Nh)
	assert.Equal(t, uint16(2), e.Metric)
	assert.Equal(t, state.RouteTimeout, e.Timeout, "replacement resets aging")
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteReplaced})
}

func TestCurrentNextHopIsTrustedEvenWhenWorse(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	h.Adv(rs, "B", "40.0.0.0", 1)
	rs.Table["40.0.0.0"].Timeout = 1
	h.Events()

	changed := h.Adv(rs, "B", "40.0.0.0", 9)

	require.True(t, changed)
	e := rs.Table["40.0.0.0"]
	assert.Equal(t, uint16(10), e.Metric)
	assert.Equal(t, state.RouteTimeout, e.Timeout)
	h.AssertEmpty(t)
}

func TestPoisonFromNextHopThenRevival(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	h.Adv(rs, "B", "40.0.0.0", 2)
	h.Events()

	h.Adv(rs, "B", "40.0.0.0", state.Infinity)
	e := rs.Table["40.0.0.0"]
	assert.Equal(t, state.Infinity, e.Metric)
	assert.Equal(t, state.GcPeriod, e.Gc)
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteUnreachable})
	h.Events()

	// a finite update from the same next hop revives the entry and clears
	// the garbage timer
	h.Adv(rs, "B", "40.0.0.0", 2)
	assert.Equal(t, uint16(3), e.Metric)
	assert.Equal(t, 0, e.Gc)
	h.AssertEmpty(t)
}

func TestDirectRoutesNeverAge(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	DeclareDirectNetwork(rs, "10.0.0.0", "/24")
	before := rs.StringTable()

	for i := 0; i < 10; i++ {
		AgeRoutes(rs, h)
	}

	assert.Equal(t, before, rs.StringTable())
	h.AssertEmpty(t)
}

func TestAgingLifecycle(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	h.Adv(rs, "B", "40.0.0.0", 2)
	h.Events()

	// ACTIVE: timeout counts 3 -> 2 -> 1 -> 0, then the route is poisoned
	AgeRoutes(rs, h)
	AgeRoutes(rs, h)
	h.AssertEmpty(t)
	AgeRoutes(rs, h)
	e := rs.Table["40.0.0.0"]
	assert.Equal(t, state.Infinity, e.Metric)
	assert.Equal(t, state.GcPeriod, e.Gc)
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteUnreachable})
	h.Events()

	// UNREACHABLE: garbage timer counts 2 -> 1 -> 0, then the entry is gone
	AgeRoutes(rs, h)
	h.AssertEmpty(t)
	AgeRoutes(rs, h)
	assert.NotContains(t, rs.Table, state.Dest("40.0.0.0"))
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteRemoved})
}

func TestRemovedIsTerminal(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	h.Adv(rs, "B", "40.0.0.0", 2)
	for i := 0; i < 5; i++ {
		AgeRoutes(rs, h)
	}
	require.NotContains(t, rs.Table, state.Dest("40.0.0.0"))
	h.Events()

	// a later update creates a brand new entry, not a resurrection
	h.Adv(rs, "B", "40.0.0.0", 2)
	e := rs.Table["40.0.0.0"]
	require.NotNil(t, e)
	assert.Equal(t, uint16(3), e.Metric)
	assert.Equal(t, state.RouteTimeout, e.Timeout)
	assert.Equal(t, 0, e.Gc)
	h.AssertContains(t, state.RouteEvent{Router: "A", Dest: "40.0.0.0", Kind: state.RouteLearned})
}

func TestInvariantViolationPanics(t *testing.T) {
	h := &RouterHarness{}
	rs := MakeRouter("A", "B")
	h.Adv(rs, "B", "40.0.0.0", 2)
	rs.Table["40.0.0.0"].Gc = 1 // armed while reachable: caller contract breach

	assert.Panics(t, func() {
		AgeRoutes(rs, h)
	})
}

func TestMetricNeverExceedsInfinity(t *testing.T) {
	assert.Equal(t, state.Infinity, AddHop(state.Infinity))
	assert.Equal(t, state.Infinity, AddHop(state.Infinity-1))
	assert.Equal(t, uint16(15), AddHop(14))
	assert.Equal(t, state.Infinity, ClampMetric(40000))
	assert.Equal(t, uint16(7), ClampMetric(7))
}
