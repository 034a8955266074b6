package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/routelab/ripsim/core"
	"github.com/routelab/ripsim/state"
	"github.com/spf13/cobra"
)

const defaultRounds = 10

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario round by round",
	Long: `This drives the scenario one synchronous round at a time: every router
prepares its updates, the updates are delivered, and routes age. Between
rounds you are prompted to continue; pass --auto to free-run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := state.LoadScenario(state.ScenarioPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		logPath, _ := cmd.Flags().GetString("log")
		prefix := cfg.Name
		if prefix == "" {
			prefix = "ripsim"
		}
		log, err := newLogger(prefix, level, logPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if state.DBG_debug {
			go func() {
				log.Debug("debug listener", "bind", state.DebugBind)
				_ = http.ListenAndServe(state.DebugBind, nil)
			}()
		}

		sim, err := core.FromScenario(cfg)
		if err != nil {
			log.Error("failed to build simulator", "err", err)
			os.Exit(1)
		}

		rounds := cfg.Rounds
		if n, _ := cmd.Flags().GetInt("rounds"); n > 0 {
			rounds = n
		}
		if rounds == 0 {
			rounds = defaultRounds
		}
		auto, _ := cmd.Flags().GetBool("auto")

		fmt.Println(colored("=== Initial Routing Tables ===", ansiBold))
		renderAllTables(os.Stdout, sim)

		for round := 1; round <= rounds; round++ {
			applied, err := core.ApplyScheduledEvents(sim, cfg, round)
			if err != nil {
				log.Error("scenario event failed", "round", round, "err", err)
				os.Exit(1)
			}
			for _, a := range applied {
				log.Warn(a, "round", round)
			}

			if !auto {
				promptContinue(fmt.Sprintf("Press ENTER to simulate round %d", round))
			}

			events := sim.RunRound()
			for _, ev := range events {
				logEvent(log, ev)
			}

			fmt.Println(colored(fmt.Sprintf("=== Routing Tables After Round %d ===", round), ansiBold))
			renderAllTables(os.Stdout, sim)
		}
	},
	GroupID: "sim",
}

func logEvent(log *slog.Logger, ev state.RouteEvent) {
	switch ev.Kind {
	case state.RouteUnreachable:
		log.Warn("route marked unreachable", "router", ev.Router, "dest", ev.Dest)
	case state.RouteRemoved:
		log.Warn("route removed", "router", ev.Router, "dest", ev.Dest)
	default:
		log.Debug("route changed", "router", ev.Router, "dest", ev.Dest, "kind", ev.Kind.String())
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolP("auto", "a", false, "Run all rounds without prompting")
	runCmd.Flags().IntP("rounds", "r", 0, "Number of rounds to simulate (overrides the scenario)")
	runCmd.Flags().String("log", "", "Also append logs to this file")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	runCmd.Flags().BoolVarP(&state.DBG_debug, "debug", "d", false, "Expose expvar counters on "+state.DebugBind)
}
