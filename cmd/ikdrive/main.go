package main

import (
	"fmt"
	"os"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir   string
	verbose   bool
	logFormat string
	logger    *zap.Logger

	// Run configuration
	configFile string
	preset     string
	dt         float64
	duration   float64
	damping    float64
	epsilon    float64
	stepSize   float64
	maxStep    float64
	refresh    int
	drain      int
	noSettle   bool
	realtime   bool
	trajKind   string
	frame      string
	failAfter  int

	// Output
	plane   string
	svgPath string
	dqSVG   string
	outPath string

	// Tuning
	tuneParams []string
	tuneMetric string
	parallel   int

	// Monte Carlo
	trials  int
	perturb float64
	seed    int64

	writePreset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ikdrive",
		Short:         "resolved-rate inverse kinematics for a simulated 7-joint arm",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logging.Options{Verbose: verbose, Format: logFormat})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ikdrive", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "drive the arm along the trajectory and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runController,
	}
	addRunFlags(runCmd)
	runCmd.Flags().Bool("save", true, "store the run under the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().Bool("save", false, "store the run under the data directory")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search loop parameters",
		Long: `Runs every combination of the given parameter values, each on its own
simulator, and reports the combination with the lowest metric.

  ikdrive tune --param damping=0.01,0.05,0.1 --param refresh_period=1,5,10`,
		Args: cobra.NoArgs,
		RunE: runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize")
	tuneCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent candidates (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot |dq| and the tip path of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plane, "plane", "xy", "tip plane (xy, xz)")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the tip path as SVG")
	plotCmd.Flags().StringVar(&dqSVG, "svg-dq", "", "also write |dq| as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&writePreset, "write", "", "write the named preset (argument) to this YAML file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "show the |dq| spectrum of a run and its refresh ripple",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the steps of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().Bool("save", true, "store every run under the data directory")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a run from randomly perturbed starting poses",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "largest joint offset in radians")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(runCmd, liveCmd, tuneCmd, listCmd, plotCmd, analyzeCmd, batchCmd, monteCarloCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "simulated seconds per tick")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "simulated duration")
	cmd.Flags().Float64Var(&damping, "damping", def.Control.Damping, "damping λ")
	cmd.Flags().Float64Var(&epsilon, "epsilon", def.Control.Epsilon, "Jacobian probe perturbation (rad)")
	cmd.Flags().Float64Var(&stepSize, "step", def.Control.StepSize, "tip displacement per tick (m)")
	cmd.Flags().Float64Var(&maxStep, "max-step", def.Control.MaxJointStep, "joint step cap per tick (rad)")
	cmd.Flags().IntVar(&refresh, "refresh", def.Control.RefreshPeriod, "ticks between Jacobian refreshes")
	cmd.Flags().IntVar(&drain, "drain", def.Control.DrainTicks, "advances before stopping")
	cmd.Flags().BoolVar(&noSettle, "no-settle", false, "read probes without advancing the simulation")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks against the wall clock")
	cmd.Flags().StringVar(&trajKind, "trajectory", def.Trajectory.Kind, "trajectory (circle, line)")
	cmd.Flags().StringVar(&frame, "frame", def.Robot.Frame, "reference frame body path, or world")
	cmd.Flags().IntVar(&failAfter, "fail-after", 0, "inject a simulator fault after this many advances")
}
