package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/ikdrive/internal/automation"
	"github.com/san-kum/ikdrive/internal/experiment"
	"github.com/spf13/cobra"
)

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	save, _ := cmd.Flags().GetBool("save")
	runs, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger, func(r automation.Run) error {
		if !save {
			return nil
		}
		return saveRun(r.Label, r.Config.Loop(), r.Result, r.Err)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLABEL\tTICKS\t|DQ| MEAN\tTRACKING\tSTATUS")
	for i, r := range runs {
		ticks, mean, tracking := 0, 0.0, 0.0
		if r.Result != nil {
			ticks, mean, tracking = r.Result.Ticks, r.Result.Stats.Mean, r.Result.Metrics["tracking_error"]
		}
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.6f\t%.3e\t%s\n", i+1, r.Label, ticks, mean, tracking, status)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}, experiment.NewRegistry(), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tTRACKING\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3e\t%t\n", r.TrialID, r.TrackingError, r.Stable)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
	return err
}
