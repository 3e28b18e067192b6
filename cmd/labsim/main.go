package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/labsim/internal/analysis"
	"github.com/san-kum/labsim/internal/audio"
	"github.com/san-kum/labsim/internal/automation"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/experiment"
	"github.com/san-kum/labsim/internal/export"
	"github.com/san-kum/labsim/internal/integrators"
	"github.com/san-kum/labsim/internal/logging"
	"github.com/san-kum/labsim/internal/metrics"
	"github.com/san-kum/labsim/internal/physics"
	"github.com/san-kum/labsim/internal/storage"
	"github.com/san-kum/labsim/internal/viz"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	sound      bool

	duration float64
	params   []string
	preset   string
	noStart  bool
	save     bool
	svgOut   string

	dt        float64
	window    float64
	sweep     string
	sweepLo   float64
	sweepHi   float64
	sweepStep int

	outFile string

	measure string
	workers int
	spanLo  float64
	spanHi  float64
	nPoints int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "labsim",
		Short:        "interactive physics teaching lab",
		SilenceUsage: true,
		RunE:         runInteractive,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.Flags().BoolVar(&sound, "sound", false, "play tones through the speaker")

	runCmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "run an experiment headless and print its measurements",
		Args:  cobra.ExactArgs(1),
		RunE:  runExperiment,
	}
	runCmd.Flags().Float64Var(&duration, "time", 0, "lab seconds to simulate (default from config)")
	runCmd.Flags().StringArrayVar(&params, "param", nil, "parameter override name=value (repeatable)")
	runCmd.Flags().StringVar(&preset, "preset", "", "apply a named preset first")
	runCmd.Flags().BoolVar(&noStart, "no-start", false, "do not fire the primary action")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the trail as SVG to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved trail",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a saved trail to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list presets for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for experiment: %s\n", args[0])
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tVALUES")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, config.GetPreset(args[0], name))
			}
			return w.Flush()
		},
	}

	challengesCmd := &cobra.Command{
		Use:   "challenges [experiment]",
		Short: "list challenges for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE:  listChallenges,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare pendulum energy drift across integrators",
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	compareCmd.Flags().Float64Var(&window, "time", 20, "duration")
	compareCmd.Flags().StringVar(&sweep, "sweep", "", "also sweep this pendulum parameter (e.g. length)")
	compareCmd.Flags().Float64Var(&sweepLo, "from", 0.5, "sweep start")
	compareCmd.Flags().Float64Var(&sweepHi, "to", 3, "sweep end")
	compareCmd.Flags().IntVar(&sweepStep, "steps", 11, "sweep points")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a YAML lab script",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep [experiment] [parameter]",
		Short: "run an experiment across a range of one parameter",
		Args:  cobra.ExactArgs(2),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&spanLo, "from", 15, "first value")
	sweepCmd.Flags().Float64Var(&spanHi, "to", 75, "last value")
	sweepCmd.Flags().IntVar(&nPoints, "steps", 13, "number of values")
	sweepCmd.Flags().StringVar(&measure, "measure", "measured-range", "measurement to tabulate and plot")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "lab seconds per run (default from config)")
	sweepCmd.Flags().StringArrayVar(&params, "param", nil, "fixed parameter name=value (repeatable)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default NumCPU)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, presetsCmd, challengesCmd, compareCmd, scriptCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config over the defaults and applies the persistent
// flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, w)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sound") {
		cfg.Sound = sound
	}

	// the terminal belongs to the lab, so logs go to a file
	var logOut io.Writer = io.Discard
	if err := os.MkdirAll(cfg.DataDir, 0755); err == nil {
		if f, err := os.OpenFile(filepath.Join(cfg.DataDir, "lab.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
			defer f.Close()
			logOut = f
		}
	}
	logger := newLogger(cfg, logOut)

	opts := []viz.LabOption{viz.WithLogger(logger)}
	if cfg.Sound {
		tones := audio.New(audio.WithLogger(logger))
		if err := tones.Init(); err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer tones.Close()
			opts = append(opts, viz.WithTones(tones))
		}
	}

	lab, err := viz.NewLab(cfg, experiment.NewRegistry(), opts...)
	if err != nil {
		return err
	}
	return viz.Run(lab)
}

func parseParams(pairs []string) (dynamo.Params, error) {
	out := dynamo.Params{}
	for _, kv := range pairs {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad --param %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --param %q: %w", kv, err)
		}
		out[name] = v
	}
	return out, nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrides, err := parseParams(params)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = cfg.Duration
	}

	sc := &automation.Scenario{
		Name:       args[0],
		Experiment: args[0],
		Duration:   duration,
		Preset:     preset,
		Params:     overrides,
		Start:      !noStart,
	}
	return execute(cfg, sc)
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	return execute(cfg, sc)
}

func execute(cfg *config.Config, sc *automation.Scenario) error {
	logger := newLogger(cfg, os.Stderr)
	journal := logging.OpenJournal(cfg.DataDir).WithLogger(logger)
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := automation.NewRunner(cfg, experiment.NewRegistry(), logger).Run(ctx, sc)
	if err != nil {
		return err
	}
	journal.Log(map[string]any{
		"event":      "run",
		"experiment": res.Experiment,
		"scenario":   res.Scenario,
		"phase":      string(res.Phase),
		"elapsed":    res.Elapsed,
	})

	printResult(res)

	if svgOut != "" {
		svg := export.TrailToSVG(storage.Points(res.Samples), 800, 500, string(viz.GetTheme(cfg.Theme).Bench.Trail))
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgOut)
	}

	if !save {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	labels := make(map[string]string, len(res.Labels))
	for _, v := range res.Labels {
		labels[v.ID] = v.String()
	}
	frame := sc.Frame
	if frame == 0 {
		frame = cfg.FrameInterval().Seconds()
	}
	id, err := st.Save(storage.RunMetadata{
		Experiment: res.Experiment,
		Seed:       cfg.Seed,
		Duration:   res.Elapsed,
		Frame:      frame,
		Integrator: integratorFor(res.Experiment, cfg),
		Phase:      string(res.Phase),
		Params:     res.Params,
		Measured:   res.Measured,
		Labels:     labels,
	}, res.Samples)
	if err != nil {
		return err
	}
	journal.Log(map[string]any{"event": "save", "run": id})
	fmt.Printf("run id: %s\n", id)
	return nil
}

func integratorFor(name string, cfg *config.Config) string {
	if name == "pendulum" {
		return cfg.Integrator
	}
	return ""
}

func printResult(res *automation.Result) {
	fmt.Printf("experiment: %s\n", res.Experiment)
	fmt.Printf("phase: %s after %.2fs (%d ticks)\n", res.Phase, res.Elapsed, res.Ticks)
	fmt.Printf("params: %s\n\n", res.Params)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEASUREMENT\tVALUE")
	for _, v := range res.Labels {
		fmt.Fprintf(w, "%s\t%s\n", v.ID, v.String())
	}
	w.Flush()

	for _, c := range res.Challenges {
		if c.Success {
			fmt.Printf("\nchallenge %s: passed, score %d in %.1fs\n", c.ID, c.Score, c.Elapsed)
		} else {
			fmt.Printf("\nchallenge %s: failed (%s)\n", c.ID, c.Reason)
		}
	}
	if len(res.Events) > 0 {
		fmt.Println("\nevents:")
		for _, e := range res.Events {
			fmt.Printf("  %6.2fs  %s\n", e.At, e.What)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEXPERIMENT\tTIME\tDURATION\tPHASE\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%s\t%d\n",
			run.ID,
			run.Experiment,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Phase,
			run.Samples,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrail(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("experiment: %s\n", meta.Experiment)
	fmt.Printf("samples: %d\n\n", len(samples))

	portrait := analysis.PortraitFromTrail(storage.Points(samples))
	xs, ys := portrait.Series()

	switch meta.Experiment {
	case "projectile":
		fmt.Println(asciigraph.Plot(ys,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("height (m) along the flight"),
		))
	case "pendulum":
		fmt.Println(portrait.TimeChart(80, 12, "bob x (yellow) and y (cyan)"))
		fmt.Println()
		fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 16))
		if meta.Frame > 0 {
			T, err := analysis.DominantPeriod(xs, meta.Frame)
			switch {
			case err != nil:
				fmt.Printf("spectral period: %v\n", err)
			default:
				fmt.Printf("spectral period: %.3f s\n", T)
			}
			if v, ok := meta.Measured["measured-period"]; ok {
				fmt.Printf("measured period: %.3f s\n", v)
			}
		}
	case "ohms-law":
		fmt.Println(asciigraph.Plot(ys,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("power (W)"),
		))
	default:
		fmt.Println(portrait.TimeChart(80, 12, "x and y"))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	samples, err := storage.New(cfg.DataDir).LoadTrail(args[0])
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = args[0] + ".svg"
	}
	svg := export.TrailToSVG(storage.Points(samples), 800, 500, string(viz.GetTheme(cfg.Theme).Bench.Trail))
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrail(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return storage.ExportJSON(outFile, *meta, samples)
	}
	return storage.WriteJSON(os.Stdout, *meta, samples)
}

func listChallenges(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	specs := cfg.ChallengesFor(args[0])
	if len(specs) == 0 {
		fmt.Printf("no challenges for experiment: %s\n", args[0])
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tLIMIT\tDESCRIPTION")
	for _, s := range specs {
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n", s.ID, s.Type, s.TimeLimit, s.Label)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	pend := physics.NewPendulum()
	pend.Length = cfg.Pendulum.Length
	pend.Gravity = cfg.Pendulum.Gravity
	pend.Mass = cfg.Pendulum.Mass
	x0 := dynamo.State{cfg.Pendulum.Amplitude * math.Pi / 180, 0}

	fmt.Printf("pendulum L=%.2fm g=%.2f amplitude=%.0f° dt=%g over %gs\n",
		pend.Length, pend.Gravity, cfg.Pendulum.Amplitude, dt, window)
	fmt.Printf("small-angle period: %.3f s\n\n", pend.NominalPeriod())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tMAX DRIFT\tFINAL ENERGY\tPERIOD\tSPECTRAL")
	for _, name := range names {
		integ, err := integrators.Get(name)
		if err != nil {
			return err
		}
		drift := metrics.NewEnergyDrift(pend)
		meter := metrics.NewPeriodMeter()
		angles := make([]float64, 0, int(window/dt)+1)

		x := x0.Clone()
		drift.Observe(x, 0)
		for t := 0.0; t < window; t += dt {
			x = integ.Step(pend, x, t, dt)
			drift.Observe(x, t+dt)
			meter.Observe(x, t+dt)
			angles = append(angles, x[0])
		}

		spectral := "-"
		if T, err := analysis.DominantPeriod(angles, dt); err == nil {
			spectral = fmt.Sprintf("%.3fs", T)
		}
		fmt.Fprintf(w, "%s\t%.3e\t%.5f J\t%.3fs\t%s\n",
			name, drift.Value(), drift.Current(), meter.Value(), spectral)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweep == "" {
		return nil
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}
	points, err := analysis.Sweep(pend, integ, sweep, sweepLo, sweepHi, sweepStep, x0, dt, window)
	if err != nil {
		return err
	}
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPERIOD\tSMALL-ANGLE\tCYCLES\n", strings.ToUpper(sweep))
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.3fs\t%.3fs\t%d\n", p.Param, p.Period, p.Nominal, p.Cycles)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(analysis.SweepChart(points, 60, 10, "period vs "+sweep))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fixed, err := parseParams(params)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = cfg.Duration
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := automation.NewRunner(cfg, experiment.NewRegistry(), newLogger(cfg, os.Stderr))
	results, err := runner.RunSweep(ctx, &automation.ParameterSweep{
		Base: automation.Scenario{
			Name:       args[0] + " sweep",
			Experiment: args[0],
			Duration:   duration,
			Params:     fixed,
			Start:      true,
		},
		Param:   args[1],
		Min:     spanLo,
		Max:     spanHi,
		Steps:   nPoints,
		Workers: workers,
	})
	if err != nil {
		return err
	}

	column := automation.Column(results, measure)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tPHASE\n", strings.ToUpper(args[1]), strings.ToUpper(measure))
	plotted := make([]float64, 0, len(column))
	for i, r := range results {
		val := "-"
		if !math.IsNaN(column[i]) {
			val = strconv.FormatFloat(column[i], 'f', 3, 64)
			plotted = append(plotted, column[i])
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\n", r.Value, val, r.Result.Phase)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(plotted) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(plotted,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("%s vs %s", measure, args[1])),
		))
	}
	return nil
}
