package cmd

import (
	"os"

	"github.com/routelab/ripsim/state"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ripsim",
	Short: "RIP distance-vector convergence simulator",
	Long: `ripsim models how a small network of RIP routers converges by exchanging
periodic updates in synchronous rounds: split-horizon update production,
Bellman-Ford relaxation with a metric cap of 16, and route aging with
garbage collection.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Scenario Setup",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&state.ScenarioPath, "scenario", "s", state.ScenarioPath, "scenario description file")
}
