package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/ikdrive/internal/config"
	"github.com/san-kum/ikdrive/internal/experiment"
	"github.com/san-kum/ikdrive/internal/optim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseParams turns "name=v1,v2" flags into grid axes.
func parseParams(args []string) ([]string, [][]float64, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("no --param given (tunable: %s)", strings.Join(config.Tunable, ", "))
	}

	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", arg)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			values = append(values, v)
		}
		if err := config.DefaultConfig().Set(name, values[0]); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	base, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseParams(tuneParams)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	build := func(params map[string]float64) (optim.Runner, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.Set(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg, nil)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp, nil
	}

	search := optim.NewGridSearch(names, ranges)
	if parallel > 0 {
		search.SetLimit(parallel)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("grid search", zap.Strings("params", names), zap.String("metric", tuneMetric))
	out, err := search.Search(ctx, build, tuneMetric)
	if out != nil {
		printTrials(names, out.Trials)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g with", tuneMetric, out.BestValue)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, out.Best[name])
	}
	fmt.Println()
	return nil
}

func printTrials(names []string, trials []optim.Trial) {
	sorted := append([]optim.Trial(nil), trials...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Value, sorted[j].Value
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric)+"\tERROR")
	for _, t := range sorted {
		cols := make([]string, 0, len(names)+2)
		for _, name := range names {
			cols = append(cols, strconv.FormatFloat(t.Params[name], 'g', -1, 64))
		}
		value, errText := strconv.FormatFloat(t.Value, 'g', 6, 64), ""
		if t.Err != nil {
			value, errText = "-", t.Err.Error()
		}
		cols = append(cols, value, errText)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	w.Flush()
}
