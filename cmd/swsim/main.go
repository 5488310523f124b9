package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/gui"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/san-kum/swsim/internal/storage"
	"github.com/san-kum/swsim/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.New()

var (
	dataDir  string
	logLevel string

	preset     string
	configFile string

	rows, cols       int
	timeStep         float64
	rotation, wind   string
	perturbation     string
	wrap             bool
	interpolate      bool
	frames           int
	stepsPerFrame    int
	stopOnDivergence bool

	keep      bool
	noSave    bool
	liveFPS   int
	steps     int
	every     int
	outPath   string
	svgPath   string
	cellSize  float64
	arrowSize float64
	menu      bool
	hovRow    int

	sweepMin, sweepMax float64
	sweepN, sweepSteps int

	searchRanges []string
	searchMetric string
)

func main() {
	v := viper.New()
	v.SetEnvPrefix("swsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "swsim",
		Short:         "shallow water on a staggered grid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dataDir = v.GetString("data")
			level, err := logrus.ParseLevel(v.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(log)
		},
	}

	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Out = os.Stderr

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	if err := bindPersistentFlags(v, rootCmd, "data", "log-level"); err != nil {
		log.Fatal(err)
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its series",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&keep, "keep", false, "keep every frame (writes height.csv)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&liveFPS, "live", 0, "draw frames in the terminal at this rate (0 disables)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the live terminal view",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a raylib window",
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)
	guiCmd.Flags().BoolVar(&menu, "menu", false, "start at the preset menu")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "preset menu in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(log)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "print every field and scratch array",
		RunE:  dumpFields,
	}
	addConfigFlags(dumpCmd)
	dumpCmd.Flags().IntVar(&steps, "steps", 0, "steps to take")
	dumpCmd.Flags().IntVar(&every, "every", 1, "dump every n steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and probe of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&outPath, "png", "", "also write the energy plot as PNG")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the energy plot as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "probe spectrum, energy growth and Hovmöller diagram",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&hovRow, "row", -1, "grid row for the Hovmöller diagram (default centre)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan time steps for the stability limit",
		RunE:  sweepTimeSteps,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 60, "smallest time step (s)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 6e6, "largest time step (s)")
	sweepCmd.Flags().IntVar(&sweepN, "n", 12, "number of time steps")
	sweepCmd.Flags().IntVar(&sweepSteps, "run-steps", 500, "steps per trial")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print stored run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "run and write the full result as JSON",
		RunE:  exportJSON,
	}
	addConfigFlags(exportJSONCmd)
	exportJSONCmd.Flags().BoolVar(&keep, "keep", false, "include every height frame")
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "write the field as an SVG heatmap with velocity arrows",
		RunE:  writeSVG,
	}
	addConfigFlags(svgCmd)
	svgCmd.Flags().IntVar(&steps, "steps", 0, "steps to take first")
	svgCmd.Flags().StringVar(&outPath, "out", "field.svg", "output file")
	svgCmd.Flags().Float64Var(&cellSize, "cell", 40, "cell size (px)")
	svgCmd.Flags().Float64Var(&arrowSize, "arrow-scale", 30, "arrow length per unit velocity, in cells")

	pngCmd := &cobra.Command{
		Use:   "png",
		Short: "write the height field as a PNG",
		RunE:  writePNG,
	}
	addConfigFlags(pngCmd)
	pngCmd.Flags().IntVar(&steps, "steps", 0, "steps to take first")
	pngCmd.Flags().StringVar(&outPath, "out", "field.png", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "run presets side by side",
		RunE:  comparePresets,
	}
	compareCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per member")
	compareCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", config.DefaultStepsPerFrame, "steps per frame")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search run parameters for the smallest metric",
		RunE:  searchParams,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchRanges, "param", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "energy_growth", "metric to minimise")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, tuiCmd, dumpCmd, listCmd, plotCmd, analyzeCmd, sweepCmd,
		exportCmd, exportJSONCmd, svgCmd, pngCmd, presetsCmd, compareCmd, scenarioCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&configFile, "config", "", "run file (yaml)")
	f.IntVar(&rows, "rows", physics.DefaultSize, "grid rows")
	f.IntVar(&cols, "cols", physics.DefaultSize, "grid columns")
	f.Float64Var(&timeStep, "dt", physics.DefaultTimeStep, "time step (s)")
	f.StringVar(&rotation, "rotation", "PlusMinus", "rotation scheme: None, WithLatitude, PlusMinus, Uniform")
	f.StringVar(&wind, "wind", "None", "wind scheme: None, Curled, Uniform")
	f.StringVar(&perturbation, "perturbation", "Tower", "initial perturbation: None, Tower, NSGradient, EWGradient")
	f.BoolVar(&wrap, "wrap", true, "periodic east-west boundary")
	f.BoolVar(&interpolate, "interpolate", false, "interpolate rotation onto cell centres")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	f.IntVar(&stepsPerFrame, "steps-per-frame", config.DefaultStepsPerFrame, "steps per frame")
	f.BoolVar(&stopOnDivergence, "stop-on-divergence", false, "end the run when a field goes NaN or Inf")
}

// resolveConfig layers the run: default, then preset, then run file, then
// any flag set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("rows") {
		cfg.Rows = rows
	}
	if f.Changed("cols") {
		cfg.Cols = cols
	}
	if f.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if f.Changed("rotation") {
		cfg.Rotation = rotation
	}
	if f.Changed("wind") {
		cfg.Wind = wind
	}
	if f.Changed("perturbation") {
		cfg.Perturbation = perturbation
	}
	if f.Changed("wrap") {
		cfg.HorizontalWrap = wrap
	}
	if f.Changed("interpolate") {
		cfg.InterpolateRotation = interpolate
	}
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("steps-per-frame") {
		cfg.StepsPerFrame = stepsPerFrame
	}
	if f.Changed("stop-on-divergence") {
		cfg.StopOnDivergence = stopOnDivergence
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*config.Config, *experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry().DefaultMetrics(), log); err != nil {
		return nil, nil, err
	}
	return cfg, exp, nil
}

// bindPersistentFlags binds each named persistent flag of cmd to the same
// viper key, stopping at the first failure.
func bindPersistentFlags(v *viper.Viper, cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("bind %q: no such persistent flag", name)
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind %q: %w", name, err)
		}
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(exp.Engine(), exp.GetSimulator().Grid(), cfg.Name, cfg.StepsPerFrame)
}

func runGUI(cmd *cobra.Command, args []string) error {
	if menu {
		gui.RunInteractive()
		return nil
	}
	cfg, exp, err := setup(cmd)
	if err != nil {
		return err
	}
	gui.Run(exp.Engine(), exp.GetSimulator().Grid(), cfg.Name, cfg.StepsPerFrame)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tDT\tROTATION\tWIND\tPERTURBATION\tWRAP\tCOURANT")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		courant := "-"
		if p, err := cfg.Params(); err == nil {
			courant = fmt.Sprintf("%.3g", p.Courant())
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%gs\t%s\t%s\t%s\t%v\t%s\n",
			name, cfg.Rows, cfg.Cols, cfg.TimeStep, cfg.Rotation, cfg.Wind, cfg.Perturbation, cfg.HorizontalWrap, courant)
	}
	return w.Flush()
}

func plotSeries(values []float64, caption string) {
	if len(values) < 2 {
		return
	}
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Println()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
