package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/sched-sim/sched-sim/sim"
)

var (
	logLevel    string // Diagnostic log verbosity level (separate from the simulation log sink)
	summaryPath string // Optional YAML metrics summary file
)

// rootCmd is the base command for the CLI. The simulator takes exactly one
// positional argument: the path to the simulator configuration file.
var rootCmd = &cobra.Command{
	Use:           "sched-sim <config-file>",
	Short:         "Preemptive OS scheduling and resource-management simulator",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		runID := uuid.New().String()
		diag := logrus.WithField("run_id", runID)
		diag.Debugf("initializing simulation from %s", args[0])

		s, err := sim.NewSimulation(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		s.Run()
		diag.Infof("simulation complete: %d processes finished in %.6fs",
			s.Metrics.ProcessesCompleted, s.Metrics.WallTimeSeconds)

		if summaryPath != "" {
			if err := s.Metrics.WriteYAML(summaryPath); err != nil {
				return err
			}
		}
		return nil
	},
}

// Execute runs the CLI root command. Simulation failures print with the
// "Simulation error:" prefix; anything else prints as a plain error. Both
// exit nonzero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var simErr *sim.SimError
		if errors.As(err, &simErr) {
			fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// init sets up CLI flags
func init() {
	rootCmd.Flags().StringVar(&logLevel, "log", "error", "Diagnostic log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.Flags().StringVar(&summaryPath, "summary", "", "Write an end-of-run metrics summary to this YAML file")
}
