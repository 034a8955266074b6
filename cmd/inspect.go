package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/routelab/ripsim/core"
	"github.com/routelab/ripsim/state"
	"github.com/spf13/cobra"
)

const convergenceBudget = 64

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate a scenario and answer forwarding questions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := state.LoadScenario(state.ScenarioPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		edges, err := cfg.Edges()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("scenario: %s\n", cfg.Name)
		fmt.Printf("routers (%d):\n", len(cfg.Routers))
		for _, r := range cfg.Routers {
			fmt.Printf("  %s %v\n", r.Id, r.Networks)
		}
		fmt.Printf("links (%d):\n", len(edges))
		for _, e := range edges {
			fmt.Printf("  %s <-> %s\n", e.V1, e.V2)
		}

		converge, _ := cmd.Flags().GetBool("converge")
		lookup, _ := cmd.Flags().GetString("lookup")
		if !converge && lookup == "" {
			return
		}

		sim, err := core.FromScenario(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rounds, ok := sim.RunToConvergence(convergenceBudget)
		if !ok {
			fmt.Fprintf(os.Stderr, "no convergence within %d rounds\n", convergenceBudget)
			os.Exit(1)
		}
		fmt.Printf("converged after %d rounds\n\n", rounds)
		if converge {
			renderAllTables(os.Stdout, sim)
		}

		if lookup != "" {
			from, _ := cmd.Flags().GetString("from")
			rs := sim.Router(state.NodeId(from))
			if rs == nil {
				fmt.Fprintf(os.Stderr, "unknown router: %s\n", from)
				os.Exit(1)
			}
			addr, err := netip.ParseAddr(lookup)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fib, err := core.BuildFib(rs)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			nh, found := fib.Lookup(addr)
			if !found {
				fmt.Printf("%s: no route to %s\n", from, addr)
				return
			}
			fmt.Printf("%s -> %s via %s\n", from, addr, nh)
		}
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("converge", false, "Run to convergence and print the final tables")
	inspectCmd.Flags().String("lookup", "", "Resolve the next hop for this address")
	inspectCmd.Flags().String("from", "", "Router to resolve --lookup from")
}
