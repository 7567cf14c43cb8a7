package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/ikdrive/internal/analysis"
	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/export"
	"github.com/san-kum/ikdrive/internal/storage"
	"github.com/san-kum/ikdrive/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tELAPSED\tλ\tREFRESH\t|DQ| MEAN\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%g\t%d\t%.6f\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Elapsed,
			run.Damping,
			run.RefreshPeriod,
			run.Stats.Mean,
			status,
		)
	}

	return w.Flush()
}

func parsePlane(s string) (viz.Plane, error) {
	switch s {
	case "xy", "x-y":
		return viz.PlaneXY, nil
	case "xz", "x-z":
		return viz.PlaneXZ, nil
	}
	return 0, fmt.Errorf("unknown plane %q (xy, xz)", s)
}

func plotRun(cmd *cobra.Command, args []string) error {
	p, err := parsePlane(plane)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no ticks", args[0])
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.PlotSeries(viz.DqNorms(samples), 80, 10, "|dq| per tick"))
	fmt.Println()
	fmt.Println(viz.Subtle.Render("tip " + p.String()))
	fmt.Print(viz.TipPath(samples, p, 60, 20))

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.TipPathSVG(samples, p, 600, 600, "#00ff88")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if dqSVG != "" {
		if err := os.WriteFile(dqSVG, []byte(export.SeriesSVG(viz.DqNorms(samples), 800, 300, "#00ccff", "|dq|")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", dqSVG)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	norms := viz.DqNorms(samples)
	peak, ok := analysis.Dominant(norms)
	if !ok {
		return fmt.Errorf("run %s has too few ticks to analyze", args[0])
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.PlotSeries(analysis.Powers(analysis.Spectrum(norms)), 80, 10, "|dq| power, cycles/tick 0 to 0.5"))
	fmt.Println()
	fmt.Println(viz.Row("dominant", fmt.Sprintf("%.4f cycles/tick (every %.1f ticks)", peak.Freq, 1/peak.Freq)))
	if meta.RefreshPeriod > 1 {
		f := 1 / float64(meta.RefreshPeriod)
		fmt.Println(viz.Row("refresh ripple", fmt.Sprintf("%.1f%% of power at 1/%d", 100*analysis.PowerAt(norms, f), meta.RefreshPeriod)))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(outPath, storage.NewExport(*meta, samples))
}

func listPresets(cmd *cobra.Command, args []string) error {
	if writePreset != "" {
		if len(args) != 1 {
			return fmt.Errorf("--write needs a preset name argument")
		}
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", args[0])
		}
		if err := config.Save(writePreset, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePreset)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTRAJECTORY\tDURATION\tSTEP\tλ\tREFRESH\tREALTIME")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%g\t%g\t%d\t%t\n",
			name, p.Trajectory.Kind, p.Duration, p.Control.StepSize, p.Control.Damping, p.Control.RefreshPeriod, p.Realtime)
	}
	return w.Flush()
}
