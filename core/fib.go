package core

import (
	"fmt"
	"net/netip"

	"github.com/gaissmai/bart"
	"github.com/routelab/ripsim/state"
)

// Fib is a longest-prefix-match view over a router's table, answering
// "which neighbour would a packet to this address leave through". Routes at
// Infinity are not installed.
type Fib struct {
	table bart.Table[state.NodeId]
	size  int
}

// BuildFib compiles the current table into a forwarding view. It fails only
// if a table entry's destination/mask pair does not form a valid prefix,
// which the scenario validator rules out for config-seeded networks.
func BuildFib(rs *state.RouterState) (*Fib, error) {
	f := &Fib{}
	for dest, e := range rs.Table {
		if e.Unreachable() {
			continue
		}
		prefix, err := netip.ParsePrefix(string(dest) + e.Mask)
		if err != nil {
			return nil, fmt.Errorf("router %s: %s%s is not a prefix: %w", rs.Id, dest, e.Mask, err)
		}
		f.table.Insert(prefix.Masked(), e.Nh)
		f.size++
	}
	return f, nil
}

// Lookup returns the next hop for addr, longest prefix wins.
func (f *Fib) Lookup(addr netip.Addr) (state.NodeId, bool) {
	return f.table.Lookup(addr)
}

// Size reports how many reachable routes are installed.
func (f *Fib) Size() int {
	return f.size
}
