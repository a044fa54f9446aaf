package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odyn/internal/config"
	"github.com/san-kum/odyn/internal/export"
	"github.com/san-kum/odyn/internal/metrics"
	"github.com/san-kum/odyn/internal/models"
	"github.com/san-kum/odyn/internal/ode"
	"github.com/san-kum/odyn/internal/solver"
	"github.com/san-kum/odyn/internal/storage"
	"github.com/san-kum/odyn/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	method     string
	t0, tf     float64
	dt         float64
	absTol     float64
	relTol     float64
	component  int
	save       bool
	svgPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odyn",
		Short: "adaptive ODE integration lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odyn", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "integrate a model and plot the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "yaml run configuration")
	solveCmd.Flags().StringVar(&preset, "preset", "", "named preset configuration")
	solveCmd.Flags().StringVar(&method, "method", "", "stepping method")
	solveCmd.Flags().Float64Var(&t0, "t0", 0, "span start")
	solveCmd.Flags().Float64Var(&tf, "tf", 0, "span end (0 keeps the preset/default)")
	solveCmd.Flags().Float64Var(&dt, "dt", 0, "initial step size (0 keeps the default)")
	solveCmd.Flags().Float64Var(&absTol, "abstol", 0, "absolute tolerance")
	solveCmd.Flags().Float64Var(&relTol, "reltol", 0, "relative tolerance")
	solveCmd.Flags().IntVar(&component, "component", -1, "state component to plot")
	solveCmd.Flags().BoolVar(&save, "save", false, "persist the run")
	solveCmd.Flags().StringVar(&svgPath, "svg", "", "write the plotted component as an SVG file")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "integrate a model and replay it in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "named preset configuration")
	liveCmd.Flags().StringVar(&method, "method", "", "stepping method")
	liveCmd.Flags().Float64Var(&tf, "tf", 0, "span end (0 keeps the preset/default)")
	liveCmd.Flags().IntVar(&component, "component", -1, "state component to plot")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models, methods and presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("models:  oscillator, decay, kepler, heat, lif")
			fmt.Println("methods: euler, rk4, dopri5, leapfrog, rkn4, imex-euler, cnab2")
			fmt.Print("presets: ")
			for i, name := range config.PresetNames() {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(name)
			}
			fmt.Println()
		},
	}

	rootCmd.AddCommand(solveCmd, liveCmd, listCmd, modelsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig merges, in increasing priority: defaults, preset, config
// file, positional model, flags.
func buildConfig(args []string) (*config.Config, error) {
	cfg := config.Default()
	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		c := *p
		cfg = &c
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.Model = args[0]
		if preset == "" && configFile == "" {
			if p, ok := config.Presets[args[0]]; ok {
				c := *p
				cfg = &c
			}
		}
	}
	if method != "" {
		cfg.Method = method
	}
	if t0 != 0 {
		cfg.T0 = t0
	}
	if tf != 0 {
		cfg.TF = tf
	}
	if dt != 0 {
		cfg.Dt = dt
	}
	if absTol != 0 {
		cfg.AbsTol = absTol
	}
	if relTol != 0 {
		cfg.RelTol = relTol
	}
	if component >= 0 {
		cfg.Component = component
	}
	return cfg, nil
}

func solveConfig(cfg *config.Config) (*ode.Solution, error) {
	prob, cbs, err := cfg.Problem()
	if err != nil {
		return nil, err
	}
	m, err := cfg.NewMethod()
	if err != nil {
		return nil, err
	}
	return solver.Solve(prob, m, cfg.Options(), cbs, nil)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}
	sol, err := solveConfig(cfg)
	if err != nil {
		return err
	}

	if sol.Len() > 1 {
		series := sol.Components(cfg.Component)[0]
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(15),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("%s x[%d] (%s)", cfg.Model, cfg.Component, cfg.Method)),
		))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	tEnd, _ := sol.Last()
	fmt.Fprintf(w, "status\t%s\n", sol.Status)
	fmt.Fprintf(w, "span\t[%g, %g]\n", sol.Times[0], tEnd)
	fmt.Fprintf(w, "steps\t%d (rejected %d)\n", sol.Stats.Steps, sol.Stats.Rejected)
	fmt.Fprintf(w, "warnings\t%d\n", len(sol.Warnings))
	for name, v := range runMetrics(cfg.Model, sol) {
		fmt.Fprintf(w, "%s\t%.3e\n", name, v)
	}
	for k, v := range sol.FinalParams {
		fmt.Fprintf(w, "param %s\t%g\n", k, v)
	}
	w.Flush()

	if svgPath != "" && sol.Len() > 1 {
		svg := export.TimeSeriesSVG(sol, cfg.Component, 960, 480, "#00ff00")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	if save {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(cfg.Model, cfg.Method, sol)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", runID)
	}
	return nil
}

// runMetrics picks diagnostics suited to the model: invariant drift for the
// conservative systems, amplitude for the rest.
func runMetrics(model string, sol *ode.Solution) map[string]float64 {
	switch model {
	case "oscillator":
		o := models.NewOscillator()
		return metrics.Collect(sol, metrics.NewInvariantDrift("energy drift", o.Energy))
	case "kepler":
		k := models.NewKepler()
		return metrics.Collect(sol,
			metrics.NewInvariantDrift("energy drift", k.Energy),
			metrics.NewInvariantDrift("ang. momentum drift", k.AngularMomentum),
		)
	default:
		return metrics.Collect(sol, metrics.NewAmplitude(0))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}
	sol, err := solveConfig(cfg)
	if err != nil {
		return err
	}
	return tui.Run(cfg.Model, sol, cfg.Component)
}

func runList(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMETHOD\tSTATUS\tSTEPS\tWARNINGS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", r.ID, r.Model, r.Method, r.Status, r.Steps, r.Warnings)
	}
	return w.Flush()
}
