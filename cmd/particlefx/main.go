package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/particlefx/internal/automation"
	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/export"
	"github.com/san-kum/particlefx/internal/gui"
	"github.com/san-kum/particlefx/internal/metrics"
	"github.com/san-kum/particlefx/internal/optim"
	"github.com/san-kum/particlefx/internal/sim"
	"github.com/san-kum/particlefx/internal/storage"
	"github.com/san-kum/particlefx/internal/stream"
	"github.com/san-kum/particlefx/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	dt        float64
	duration  float64
	seed      int64
	effect    string
	intensity float64
	interval  float64
	noCollide bool
	noMagnet  bool

	gifPath  string
	menu     bool
	addr     string
	fps      int
	numRuns  int
	ticks    int
	outPath  string
	width    int
	height   int
	braille  bool
	replayID string
	frameIdx int
	svgPath  string
	sweepMin float64
	sweepMax float64
	steps    int
	axes     []string
	metric   string
	maximize bool
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("particlefx: ")

	rootCmd := &cobra.Command{
		Use:          "particlefx",
		Short:        "particle effects for interface interactions",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".particlefx", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")

	sceneFlags := func(cmd *cobra.Command) {
		f := cmd.Flags()
		f.Float64Var(&dt, "dt", config.DefaultDt, "frame step in seconds")
		f.Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
		f.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
		f.StringVar(&effect, "effect", "", "burst effect ("+strings.Join(effectNames(), ", ")+")")
		f.Float64Var(&intensity, "intensity", config.DefaultIntensity, "burst intensity")
		f.Float64Var(&interval, "interval", config.DefaultInterval, "seconds between automatic bursts (0 disables)")
		f.BoolVar(&noCollide, "no-collisions", false, "disable collisions for new bursts")
		f.BoolVar(&noMagnet, "no-magnetism", false, "disable magnetism for new bursts")
	}
	liveFlags := func(cmd *cobra.Command) {
		sceneFlags(cmd)
		cmd.Flags().StringVar(&gifPath, "gif", "particlefx.gif", "where G recordings are written")
		cmd.Flags().BoolVar(&menu, "menu", false, "start with the preset picker")
	}
	liveFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "terminal viewer",
		RunE:  runLive,
	}
	liveFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "desktop viewer",
		RunE:  runGUI,
	}
	sceneFlags(guiCmd)
	guiCmd.Flags().BoolVar(&menu, "menu", false, "start with the preset picker")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario or the configured burst headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	sceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the population curve as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Export(os.Stdout, args[0])
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the scene after a number of ticks, or a recorded frame, as SVG",
		RunE:  snapshot,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&ticks, "ticks", 30, "ticks to advance before rendering")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	snapshotCmd.Flags().IntVar(&width, "width", 600, "image width")
	snapshotCmd.Flags().IntVar(&height, "height", 600, "image height")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal view instead of a flat projection")
	snapshotCmd.Flags().StringVar(&replayID, "run", "", "render a frame recorded by this run instead of simulating")
	snapshotCmd.Flags().IntVar(&frameIdx, "frame", -1, "recorded frame index, negative counts from the end")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to websocket clients",
		RunE:  serve,
	}
	sceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&fps, "fps", 60, "frames per second")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the configured burst across seeds",
		RunE:  bench,
	}
	sceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&numRuns, "runs", 8, "parallel runs per configuration")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "replay the burst across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for the best metric value",
		RunE:  tune,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "axis", nil, "parameter grid as name=min:max:steps (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "peak_spin", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list tunable parameters and their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := sim.DefaultParams()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDEFAULT")
			for _, name := range sim.ParamNames() {
				v, _ := p.Get(name)
				fmt.Fprintf(w, "%s\t%g\n", name, v)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, exportCmd, snapshotCmd, serveCmd, benchCmd, sweepCmd, tuneCmd, presetsCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func effectNames() []string {
	names := make([]string, 0, len(emitter.Effects()))
	for _, e := range emitter.Effects() {
		names = append(names, e.String())
	}
	return names
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any scene flag set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("effect") {
		e, err := emitter.ParseEffect(effect)
		if err != nil {
			return nil, err
		}
		cfg.Effect = e
	}
	if f.Changed("intensity") {
		cfg.Intensity = intensity
	}
	if f.Changed("interval") {
		cfg.Interval = interval
	}
	if noCollide {
		cfg.Flags.Collisions = false
	}
	if noMagnet {
		cfg.Flags.Magnetism = false
	}
	return cfg, cfg.Validate()
}

func engineOptions() []sim.Option {
	if !verbose {
		return nil
	}
	return []sim.Option{sim.WithLogger(log.New(os.Stderr, "engine: ", log.Ltime|log.Lmicroseconds))}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLive(cmd *cobra.Command, args []string) error {
	if menu {
		return viz.RunInteractive(seed, gifPath)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := cfg.NewEngine(engineOptions()...)
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(eng, cfg).WithGIFPath(gifPath))
}

func runGUI(cmd *cobra.Command, args []string) error {
	if menu {
		gui.Run(nil)
		return nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gui.Run(cfg)
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	var sc *automation.Scenario
	if len(args) == 1 {
		if sc, err = automation.LoadScenario(args[0]); err != nil {
			return err
		}
	} else {
		sc = automation.FromConfig(cfg)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()
	result, err := automation.RunScenario(ctx, sc, cfg, os.Stdout)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := storage.RunInfo{
		Name:      sc.Name,
		Effect:    cfg.Effect.String(),
		Intensity: cfg.Intensity,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Params:    cfg.Params.Map(),
		Bounds:    &cfg.Bounds,
	}
	if sc.Seed != 0 {
		info.Seed = sc.Seed
	}
	if sc.Duration > 0 {
		info.Duration = sc.Duration
	}
	if sc.Dt > 0 {
		info.Dt = sc.Dt
	}
	st := storage.New(dataDir)
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  peak: %d\n", result.StepsTaken, result.Peak)
	fmt.Printf("collisions: %d  sparks: %d  magnetic pairs: %d\n",
		result.Interactions.Collisions, result.Interactions.Sparks, result.Interactions.MagneticPairs)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tEFFECT\tPEAK")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Effect,
			run.Peak,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	population := make([]float64, len(series.Population))
	for i, n := range series.Population {
		population[i] = float64(n)
	}

	fmt.Println(asciigraph.Plot(population,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("live particles"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(series.Energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean kinetic energy"),
	))

	if svgPath != "" {
		svg := export.SeriesToSVG(series.Times, population, 800, 240, "#00ffcc")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var (
		snap   dynamo.Snapshot
		bounds = cfg.Bounds
		label  string
	)
	if replayID != "" {
		snap, bounds, err = recordedFrame(replayID, frameIdx, bounds)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("frame %d of %s", frameIdx, replayID)
	} else {
		eng, err := cfg.NewEngine(engineOptions()...)
		if err != nil {
			return err
		}
		eng.Trigger(cfg.Effect, cfg.Intensity, cfg.Flags)
		for i := 0; i < ticks; i++ {
			eng.Advance(cfg.Dt)
		}
		snap = eng.Snapshot()
		label = fmt.Sprintf("%d ticks", ticks)
	}

	var svg string
	if braille {
		canvas := viz.NewCanvas(width/8, height/16)
		cam := viz.FitCamera(bounds)
		viz.Render3D(canvas, viz.BoxWireframe(bounds), cam)
		viz.RenderSnapshot(canvas, cam, snap, bounds.Center())
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg = export.SnapshotToSVG(snap, bounds, width, height)
	}

	if outPath == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	c := snap.Centroid()
	log.Printf("wrote %d sprites (%s, centroid %.2f %.2f %.2f) to %s", len(snap), label, c[0], c[1], c[2], outPath)
	return nil
}

// recordedFrame loads frame idx of a stored run. Runs saved without bounds
// fall back to the configured ones.
func recordedFrame(runID string, idx int, fallback dynamo.Bounds) (dynamo.Snapshot, dynamo.Bounds, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, fallback, err
	}
	if !meta.Frames {
		return nil, fallback, fmt.Errorf("run %s has no recorded frames", runID)
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, fallback, err
	}
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return nil, fallback, fmt.Errorf("frame index out of range: run %s has %d frames", runID, len(frames))
	}
	bounds := fallback
	if meta.Bounds != nil {
		bounds = *meta.Bounds
	}
	return frames[idx], bounds, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := cfg.NewEngine(engineOptions()...)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(eng.Bounds()) {
		eng.AddMetric(m)
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	hub := stream.NewHub(eng, cfg,
		stream.WithFrameInterval(time.Second/time.Duration(fps)),
		stream.WithLogger(log.New(os.Stderr, "stream: ", log.LstdFlags)),
	)
	// Opening burst so the first client sees the configured effect.
	hub.Trigger(stream.TriggerMsg{Effect: cfg.Effect.String(), Intensity: &cfg.Intensity})

	ctx, cancel := signalContext()
	defer cancel()
	return stream.Serve(ctx, addr, hub)
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("benchmarking %s x%.2f over %d seeds\n\n", cfg.Effect, cfg.Intensity, numRuns)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTENSITY\tFLAGS\tSTEPS\tTIME\tSTEPS/SEC\tPEAK")

	flagSets := []emitter.Flags{{}, {Collisions: true}, emitter.AllInteractions}
	for _, mult := range []float64{1, 4, 16} {
		for _, flags := range flagSets {
			level := cfg.Intensity * mult
			build := func(s int64) (*sim.Engine, error) {
				c := cfg.Clone()
				c.Seed = s
				eng, err := c.NewEngine()
				if err != nil {
					return nil, err
				}
				eng.Trigger(c.Effect, level, flags)
				return eng, nil
			}

			start := time.Now()
			results, err := sim.NewEnsemble(build, numRuns, 42).Run(ctx, sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			total, peak := 0, 0
			for _, r := range results {
				total += r.StepsTaken
				peak = max(peak, r.Peak)
			}
			fmt.Fprintf(w, "%.2f\t%s\t%d\t%v\t%.0f\t%d\n",
				level, flagLabel(flags), total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), peak)
		}
	}
	return w.Flush()
}

func flagLabel(f emitter.Flags) string {
	switch {
	case f.Collisions && f.Magnetism:
		return "all"
	case f.Collisions:
		return "collisions"
	case f.Magnetism:
		return "magnetism"
	}
	return "none"
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		ParamName: args[0],
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  steps,
	}, cfg, os.Stderr)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tENERGY\tCOLLISIONS\tSPIN\n", strings.ToUpper(args[0]))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.2f\t%.4f\n", r.ParamValue, r.PeakPopulation, r.MeanEnergy, r.Collisions, r.PeakSpin)
	}
	return w.Flush()
}

func tune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	grid := make([]optim.Axis, 0, len(axes))
	for _, a := range axes {
		axis, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		grid = append(grid, axis)
	}

	build := func(params map[string]float64) (*sim.Engine, error) {
		eng, err := cfg.NewEngine()
		if err != nil {
			return nil, err
		}
		for k, v := range params {
			if err := eng.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		for _, m := range metrics.Standard(eng.Bounds()) {
			eng.AddMetric(m)
		}
		eng.Trigger(cfg.Effect, cfg.Intensity, cfg.Flags)
		return eng, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	out, err := optim.NewGridSearch(metric, maximize, grid...).Search(ctx, build, sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration})
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points in %v\n", out.Evaluated, time.Since(start).Round(time.Millisecond))
	fmt.Printf("best %s: %.6g\n", metric, out.Value)
	for _, a := range grid {
		fmt.Printf("  %s = %g\n", a.Name, out.Params[a.Name])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tEFFECT\tINTENSITY\tINTERVAL\tFLAGS")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2fs\t%s\n", name, cfg.Effect, cfg.Intensity, cfg.Interval, flagLabel(cfg.Flags))
	}
	return w.Flush()
}
