package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/experiment"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/storage"
	"github.com/san-kum/ikdrive/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig layers defaults, a preset, a config file and finally any flags
// given on the command line. The returned name labels the run.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := config.DefaultTrajectory

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("damping") {
		cfg.Control.Damping = damping
	}
	if flags.Changed("epsilon") {
		cfg.Control.Epsilon = epsilon
	}
	if flags.Changed("step") {
		cfg.Control.StepSize = stepSize
	}
	if flags.Changed("max-step") {
		cfg.Control.MaxJointStep = maxStep
		cfg.Control.MaxStepNorm = maxStep
	}
	if flags.Changed("refresh") {
		cfg.Control.RefreshPeriod = refresh
	}
	if flags.Changed("drain") {
		cfg.Control.DrainTicks = drain
	}
	if flags.Changed("no-settle") {
		cfg.Control.SettleProbes = !noSettle
	}
	if flags.Changed("realtime") {
		cfg.Realtime = realtime
	}
	if flags.Changed("trajectory") {
		cfg.Trajectory.Kind = trajKind
	}
	if flags.Changed("frame") {
		cfg.Robot.Frame = frame
	}
	if flags.Changed("fail-after") {
		cfg.Control.FailAfter = failAfter
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runController(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("starting control loop",
		zap.String("run", name),
		zap.String("tip", exp.Arm().TipPath),
		zap.Float64("duration", cfg.Duration),
		zap.Int("refresh_period", cfg.Control.RefreshPeriod),
		zap.Float64("damping", cfg.Control.Damping),
	)
	result, runErr := exp.Run(ctx)

	fmt.Println(viz.Report(cfg.Loop(), result, runErr))

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRun(name, cfg.Loop(), result, runErr); err != nil {
			return err
		}
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("realtime") {
		cfg.Realtime = true
	}

	feed := viz.NewFeed(256)
	// The terminal belongs to the live view; only warnings are logged.
	exp := experiment.New(cfg, logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err := exp.Setup(experiment.NewRegistry(), control.WithObserver(feed)); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	type outcome struct {
		result *control.Result
		err    error
	}
	finished := make(chan outcome, 1)
	go func() {
		result, err := exp.Run(ctx)
		feed.Finish(result, err)
		finished <- outcome{result, err}
	}()

	program := tea.NewProgram(viz.NewModel(feed, cancel, cfg.Loop()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		cancel()
		<-finished
		return err
	}

	out := <-finished
	fmt.Println(viz.Summary(cfg.Loop(), out.result, out.err))

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRun(name, cfg.Loop(), out.result, out.err); err != nil {
			return err
		}
	}
	return out.err
}

func saveRun(name string, cfg control.Config, result *control.Result, runErr error) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var samples []metrics.Sample
	if result != nil {
		samples = result.Samples
	}
	runID, err := st.Save(storage.NewMetadata(name, cfg, result, runErr), samples)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}
