package cmd

import (
	"fmt"
	"os"

	"github.com/routelab/ripsim/state"
	"github.com/spf13/cobra"
)

// exampleScenario is the classic five-router reference topology: A bridges
// B and C, D hangs off B, E hangs off D, and E goes offline at round 6.
const exampleScenario = `name: reference
routers:
  - id: A
    networks: [10.0.0.0/24]
  - id: B
    networks: [20.0.0.0/24]
  - id: C
    networks: [30.0.0.0/24]
  - id: D
    networks: [40.0.0.0/24]
  - id: E
    networks: [50.0.0.0/24]
graph:
  - A, B
  - A, C
  - B, D
  - D, E
events:
  - round: 6
    remove: E
rounds: 10
`

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Write the reference example scenario",
	Run: func(cmd *cobra.Command, args []string) {
		outPath := state.ScenarioPath
		if len(args) == 1 {
			outPath = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(outPath); err == nil && !force {
			fmt.Fprintf(os.Stderr, "%s already exists, use --force to overwrite\n", outPath)
			os.Exit(1)
		}
		err := os.WriteFile(outPath, []byte(exampleScenario), 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", outPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
