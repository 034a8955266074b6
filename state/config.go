package state

import (
	"cmp"
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// RouterCfg declares one router and the networks directly attached to it.
type RouterCfg struct {
	Id       NodeId
	Networks []netip.Prefix `yaml:",omitempty"`
}

// EventCfg is a topology change applied between rounds. Exactly one of
// Remove or Unlink must be set.
type EventCfg struct {
	Round  int
	Remove NodeId `yaml:",omitempty"`
	Unlink string `yaml:",omitempty"` // "a, b"
}

// ScenarioCfg is the full description of a simulation run.
type ScenarioCfg struct {
	Name    string `yaml:",omitempty"`
	Routers []RouterCfg
	Graph   []string
	Events  []EventCfg `yaml:",omitempty"`
	Rounds  int        `yaml:",omitempty"`
}

var namePattern = regexp.MustCompile("^[0-9A-Za-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(%q) = %d > 100 is too long", s, len(s))
	}
	return nil
}

// DestOf splits a prefix into the opaque destination id (masked network
// address) and its display mask.
func DestOf(p netip.Prefix) (Dest, string) {
	return Dest(p.Masked().Addr().String()), fmt.Sprintf("/%d", p.Bits())
}

func (c *ScenarioCfg) RouterIds() []string {
	ids := make([]string, 0, len(c.Routers))
	for _, r := range c.Routers {
		ids = append(ids, string(r.Id))
	}
	return ids
}

func (c *ScenarioCfg) IsRouter(id NodeId) bool {
	return slices.ContainsFunc(c.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
}

func (c *ScenarioCfg) GetRouter(id NodeId) RouterCfg {
	idx := slices.IndexFunc(c.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		panic("router " + string(id) + " not found")
	}
	return c.Routers[idx]
}

// Edges evaluates the graph description down to a deduplicated list of
// undirected adjacencies.
func (c *ScenarioCfg) Edges() ([]Pair[NodeId, NodeId], error) {
	return ParseGraph(c.Graph, c.RouterIds())
}

func parseSymbolList(s string, validSymbols []string) ([]string, error) {
	spl := strings.Split(strings.TrimSpace(s), ",")
	line := make([]string, 0)
	for _, sym := range spl {
		x := strings.TrimSpace(sym)
		if x == "" {
			continue
		}
		if !slices.Contains(validSymbols, x) {
			return nil, fmt.Errorf("%s is not a valid router/group", x)
		}
		line = append(line, x)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("router/group list must not be empty")
	}
	slices.Sort(line)
	return line, nil
}

/*
ParseGraph evaluates the scenario graph syntax:

	backbone = a, b, c

	backbone, backbone // every router in the group is connected to every other

	d, e // d and e are connected

	backbone, d // d is connected to every router in the group

Groups are flat lists of routers; a group may not reference another group.
nodes is the set of terminal router names the graph evaluates down to.
*/
func ParseGraph(graph []string, nodes []string) ([]Pair[NodeId, NodeId], error) {
	groups := make(map[string][]string)
	symbols := slices.Clone(nodes)

	// pass 1, collect group definitions
	for _, line := range graph {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "=") {
			continue
		}
		spl := strings.Split(line, "=")
		if len(spl) != 2 {
			return nil, fmt.Errorf("invalid graph: %s. group definition must contain one '='", line)
		}
		grp := strings.TrimSpace(spl[0])
		if slices.Contains(nodes, grp) {
			return nil, fmt.Errorf("group name must not be a router name: %s", grp)
		}
		if _, ok := groups[grp]; ok {
			return nil, fmt.Errorf("duplicate group name: %s", grp)
		}
		members, err := parseSymbolList(spl[1], nodes)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", grp, err)
		}
		groups[grp] = members
		symbols = append(symbols, grp)
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	expand := func(sym string) []string {
		if members, ok := groups[sym]; ok {
			return members
		}
		return []string{sym}
	}

	// pass 2, interconnect every pairing on each line
	pairings := make([]Pair[NodeId, NodeId], 0)
	for _, line := range graph {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "=") {
			continue
		}
		names, err := parseSymbolList(line, symbols)
		if err != nil {
			return nil, err
		}
		if len(names) < 2 {
			return nil, fmt.Errorf("invalid pairing, %v", names)
		}
		seen := make([]string, 0)
		for _, name := range names {
			for _, x := range expand(name) {
				for _, y := range seen {
					if x != y {
						pairings = append(pairings, MakeSortedPair(NodeId(x), NodeId(y)))
					}
				}
			}
			seen = append(seen, expand(name)...)
		}
	}
	SortPairs(pairings)
	return slices.Compact(pairings), nil
}

func MakeSortedPair[T cmp.Ordered](a, b T) Pair[T, T] {
	if a < b {
		return Pair[T, T]{a, b}
	}
	return Pair[T, T]{b, a}
}

func SortPairs[T cmp.Ordered](pairs []Pair[T, T]) {
	slices.SortFunc(pairs, func(a, b Pair[T, T]) int {
		if c := cmp.Compare(a.V1, b.V1); c != 0 {
			return c
		}
		return cmp.Compare(a.V2, b.V2)
	})
}

// ParseEdge parses an "a, b" unlink event target.
func ParseEdge(s string, nodes []string) (Pair[NodeId, NodeId], error) {
	names, err := parseSymbolList(s, nodes)
	if err != nil {
		return Pair[NodeId, NodeId]{}, err
	}
	if len(names) != 2 {
		return Pair[NodeId, NodeId]{}, fmt.Errorf("edge must name exactly two routers: %s", s)
	}
	return MakeSortedPair(NodeId(names[0]), NodeId(names[1])), nil
}

func ScenarioValidator(cfg *ScenarioCfg) error {
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("scenario declares no routers")
	}
	seenIds := make([]NodeId, 0, len(cfg.Routers))
	seenNets := make(map[Dest]NodeId)
	for _, r := range cfg.Routers {
		if err := NameValidator(string(r.Id)); err != nil {
			return err
		}
		if slices.Contains(seenIds, r.Id) {
			return fmt.Errorf("duplicate router id: %s", r.Id)
		}
		seenIds = append(seenIds, r.Id)
		for _, p := range r.Networks {
			if !p.IsValid() {
				return fmt.Errorf("router %s: invalid network prefix", r.Id)
			}
			dest, _ := DestOf(p)
			if owner, ok := seenNets[dest]; ok {
				return fmt.Errorf("network %s declared by both %s and %s", dest, owner, r.Id)
			}
			seenNets[dest] = r.Id
		}
	}
	if _, err := cfg.Edges(); err != nil {
		return err
	}
	for _, ev := range cfg.Events {
		if ev.Round < 1 {
			return fmt.Errorf("event round must be >= 1, got %d", ev.Round)
		}
		switch {
		case ev.Remove != "" && ev.Unlink != "":
			return fmt.Errorf("event at round %d sets both remove and unlink", ev.Round)
		case ev.Remove != "":
			if !cfg.IsRouter(ev.Remove) {
				return fmt.Errorf("event at round %d removes unknown router %s", ev.Round, ev.Remove)
			}
		case ev.Unlink != "":
			if _, err := ParseEdge(ev.Unlink, cfg.RouterIds()); err != nil {
				return fmt.Errorf("event at round %d: %w", ev.Round, err)
			}
		default:
			return fmt.Errorf("event at round %d sets neither remove nor unlink", ev.Round)
		}
	}
	if cfg.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative")
	}
	return nil
}

func LoadScenario(path string) (*ScenarioCfg, error) {
	var cfg ScenarioCfg
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := ScenarioValidator(&cfg); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &cfg, nil
}
