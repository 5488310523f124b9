package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/swsim/internal/analysis"
	"github.com/san-kum/swsim/internal/automation"
	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dump"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/export"
	"github.com/san-kum/swsim/internal/optim"
	"github.com/san-kum/swsim/internal/render"
	"github.com/san-kum/swsim/internal/sim"
	"github.com/san-kum/swsim/internal/storage"
	"github.com/san-kum/swsim/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd)
	if err != nil {
		return err
	}

	if liveFPS > 0 {
		r := tui.NewLiveRenderer(cfg.Name, liveFPS, os.Stdout)
		r.Start()
		defer r.Stop()
		exp.GetSimulator().AddObserver(r)
	}

	ctx, cancel := signalContext()
	defer cancel()

	rc := cfg.RunConfig()
	rc.KeepSnapshots = keep
	result, err := exp.RunWith(ctx, rc)
	if errors.Is(err, context.Canceled) && result != nil {
		log.Warn("interrupted, keeping partial result")
	} else if err != nil {
		return err
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("steps: %d (%.1f days)\n", result.StepsTaken, dynamo.Days(float64(result.StepsTaken)*cfg.TimeStep))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	if result.Diverged() {
		p, _ := cfg.Params()
		log.WithFields(logrus.Fields{
			"dt":      cfg.TimeStep,
			"courant": p.Courant(),
		}).Warn("fields diverged; try a smaller --dt")
	}
	return nil
}

func dumpFields(cmd *cobra.Command, args []string) error {
	_, exp, err := setup(cmd)
	if err != nil {
		return err
	}
	eng, grid := exp.Engine(), exp.GetSimulator().Grid()
	wind := eng.Forcing().Wind
	every = max(every, 1)

	if err := dump.Write(os.Stdout, grid.Fields(), wind); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		if err := eng.Advance(grid); err != nil {
			return err
		}
		if i%every == 0 {
			if err := dump.Write(os.Stdout, grid.Fields(), wind); err != nil {
				return err
			}
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tDT\tSTEPS\tDAYS\tDIVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%gs\t%d\t%.1f\t%v\n",
			run.ID,
			run.Config.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Rows, run.Config.Cols,
			run.Config.TimeStep,
			run.Steps,
			run.Days,
			run.Diverged,
		)
	}
	return w.Flush()
}

// loadSeries returns a stored run with its exact per-frame times in seconds.
func loadSeries(runID string) (*storage.RunMetadata, *storage.Series, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(series.Steps) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: no data", runID)
	}
	times := make([]float64, len(series.Steps))
	for i, step := range series.Steps {
		times[i] = float64(step) * meta.Config.TimeStep
	}
	return meta, series, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, times, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Config.Name)
	fmt.Printf("frames: %d (%.1f days)\n\n", len(series.Steps), meta.Days)

	energy := finitePrefix(series.Energy)
	plotSeries(energy, "energy (sum of squares)")
	plotSeries(finitePrefix(series.Probe), "probe (centre H)")

	if svgPath != "" {
		svg := export.SeriesToSVG(times, series.Energy, 640, 240, "#1f77b4")
		if svg == "" {
			return fmt.Errorf("run %s has no finite energy to plot", meta.ID)
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
	}

	if outPath == "" {
		return nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := render.SeriesPNG(f, meta.ID+" energy", times[:len(energy)], energy); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, times, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Config.Name)

	probe := finitePrefix(series.Probe)
	if len(probe) < len(series.Probe) {
		fmt.Printf("fields diverged after %d frames; analysing the finite part\n\n", len(probe))
	}

	ps := analysis.PowerSpectrum(probe)
	if len(ps) > 8 {
		ps = ps[:len(ps)/4]
	}
	plotSeries(ps, "power spectrum (probe)")

	spacing := meta.Config.TimeStep * float64(meta.Config.StepsPerFrame)
	if period := analysis.DominantPeriod(probe, spacing); period > 0 {
		fmt.Printf("dominant period: %.0f s (%.2f days)\n", period, period/dynamo.SecondsPerDay)
	} else {
		fmt.Println("dominant period: none")
	}
	fmt.Printf("energy growth: %.4g e-folds/day\n", analysis.GrowthRate(times, series.Energy))

	frames, err := storage.New(dataDir).LoadFrames(meta.ID)
	if err != nil || len(frames) == 0 {
		fmt.Println("\nno height frames stored (run with --keep for a Hovmöller diagram)")
		return nil
	}
	row := hovRow
	if row < 0 {
		row = meta.Config.Rows / 2
	}
	hov := analysis.HovmollerFrames(frames, row)
	if hov == nil {
		return fmt.Errorf("row %d outside %d-row grid", row, meta.Config.Rows)
	}
	fmt.Printf("\nhovmöller, row %d (time downward):\n", row)
	fmt.Print(analysis.HovmollerToASCII(hov))
	return nil
}

func sweepTimeSteps(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	points, err := analysis.StabilitySweep(p, sweepMin, sweepMax, sweepN, sweepSteps, experiment.DivergenceThreshold)
	if err != nil {
		return err
	}
	fmt.Print(analysis.SweepTable(points))
	if dt := analysis.CriticalTimeStep(points); dt > 0 {
		fmt.Printf("\nlargest stable time step: %gs (courant %.3g)\n", dt, p.Courant()*dt/p.TimeStep)
	} else {
		fmt.Println("\nno stable time step in range")
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	rc := cfg.RunConfig()
	rc.KeepSnapshots = keep
	result, err := exp.RunWith(ctx, rc)
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.WriteJSON(os.Stdout, cfg, result)
	}
	if err := storage.ExportJSON(outPath, cfg, result); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// advanceTo builds the configured grid and takes n steps.
func advanceTo(cmd *cobra.Command, n int) (dynamo.Snapshot, error) {
	_, exp, err := setup(cmd)
	if err != nil {
		return dynamo.Snapshot{}, err
	}
	eng, grid := exp.Engine(), exp.GetSimulator().Grid()
	for i := 0; i < n; i++ {
		if err := eng.Advance(grid); err != nil {
			return dynamo.Snapshot{}, err
		}
	}
	return grid.Snapshot(), nil
}

func writeSVG(cmd *cobra.Command, args []string) error {
	snap, err := advanceTo(cmd, steps)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(export.FieldSVG(snap, cellSize, arrowSize)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%.1f days)\n", outPath, snap.Days())
	return nil
}

func writePNG(cmd *cobra.Command, args []string) error {
	snap, err := advanceTo(cmd, steps)
	if err != nil {
		return err
	}
	if err := render.HeightPNG(snap, outPath, render.DefaultSize); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%.1f days)\n", outPath, snap.Days())
	return nil
}

func comparePresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	registry := experiment.NewRegistry()
	members := make([]sim.Member, 0, len(names))
	courants := make([]float64, 0, len(names))
	for _, name := range names {
		cfg, err := registry.GetPreset(name)
		if err != nil {
			return err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(nil, nil); err != nil {
			return err
		}
		members = append(members, sim.Member{Name: name, Engine: exp.Engine()})
		courants = append(courants, exp.Engine().Params().Courant())
	}

	ens := sim.NewEnsemble(registry.DefaultMetrics, members...)
	ens.SetLogger(log)

	ctx, cancel := signalContext()
	defer cancel()

	rc := dynamo.DefaultRunConfig()
	rc.Frames, rc.StepsPerFrame = frames, stepsPerFrame
	results, err := ens.Run(ctx, rc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOURANT\tENERGY\tPEAK\tGROWTH\tMASS DRIFT\tSTABILITY\tDIVERGED")
	for i, res := range results {
		m := res.Metrics
		fmt.Fprintf(w, "%s\t%.3g\t%.4g\t%.4g\t%.4g\t%.3g\t%.2f\t%v\n",
			names[i], courants[i], m["energy"], m["peak_height"], m["energy_growth"], m["mass_drift"], m["stability"], res.Diverged())
	}
	return w.Flush()
}

func finitePrefix(values []float64) []float64 {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return values[:i]
		}
	}
	return values
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, ids, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st, log)
	for i, res := range results {
		id := "-"
		if i < len(ids) {
			id = ids[i]
		}
		fmt.Printf("%d. %s steps=%d energy=%.4g diverged=%v\n", i+1, id, res.StepsTaken, res.Metrics["energy"], res.Diverged())
	}
	return err
}

func searchParams(cmd *cobra.Command, args []string) error {
	if len(searchRanges) == 0 {
		return fmt.Errorf("at least one --param is required (known: %v)", automation.FieldNames())
	}
	if _, err := experiment.NewRegistry().GetMetric(searchMetric); err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(searchRanges))
	ranges := make([][]float64, 0, len(searchRanges))
	for _, r := range searchRanges {
		name, values, err := automation.ParseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	trials, best, err := optim.NewGridSearch(names, ranges).Search(ctx, optim.ConfigBuilder(base, automation.Set), searchMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(searchMetric))
	for _, tr := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[name])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "error: %v\n", tr.Err)
		} else {
			fmt.Fprintf(w, "%.4g\n", tr.Value)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best.Params == nil {
		return fmt.Errorf("no combination ran successfully")
	}
	fmt.Printf("\nbest %s=%.4g at", searchMetric, best.Value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Println()
	return nil
}
