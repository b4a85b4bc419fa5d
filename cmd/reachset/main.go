package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/reachset/internal/bundle"
	"github.com/san-kum/reachset/internal/config"
	"github.com/san-kum/reachset/internal/dynamics"
	"github.com/san-kum/reachset/internal/geom"
	"github.com/san-kum/reachset/internal/models"
	"github.com/san-kum/reachset/internal/polytope"
	"github.com/san-kum/reachset/internal/reach"
	"github.com/san-kum/reachset/internal/store"
	"github.com/san-kum/reachset/internal/viz"
)

var (
	dataDir      string
	steps        int
	mode         string
	maxMagnitude float64
	splitRatio   float64
	decompWeight float64
	decompIters  int
	maxBundles   int
	configFile   string
	outFile      string
	timeout      time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reachset",
		Short: "reachability analysis for polynomial dynamical systems",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reachset", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "compute a flowpipe and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReach,
	}
	addReachFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "compute a flowpipe and step through it interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addReachFlags(liveCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE:  listModels,
	}

	exportCmd := &cobra.Command{
		Use:   "export [model]",
		Short: "compute a flowpipe and export it as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportReach,
	}
	addReachFlags(exportCmd)
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, modelsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addReachFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 uses the model default)")
	cmd.Flags().StringVar(&mode, "mode", "", "transform mode: ofo or afo")
	cmd.Flags().Float64Var(&maxMagnitude, "max-magnitude", 0, "split bundles wider than this")
	cmd.Flags().Float64Var(&splitRatio, "split-ratio", 0, "split target ratio")
	cmd.Flags().Float64Var(&decompWeight, "decomp-weight", 0, "template decomposition weight (0 disables)")
	cmd.Flags().IntVar(&decompIters, "decomp-iters", 0, "template decomposition iterations")
	cmd.Flags().IntVar(&maxBundles, "max-bundles", 0, "bundle cap after splitting")
	cmd.Flags().StringVar(&configFile, "config", "", "problem file (yaml) instead of a built-in model")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the run after this duration")
}

// resolveProblem picks either a yaml problem file or a built-in model and
// folds the CLI flags over its defaults.
func resolveProblem(cmd *cobra.Command, args []string) (string, *dynamics.System, *bundle.Bundle, *polytope.Polytope, reach.Options, error) {
	var (
		name     string
		sys      *dynamics.System
		init     *bundle.Bundle
		paramSet *polytope.Polytope
		opts     reach.Options
	)

	switch {
	case configFile != "":
		p, err := config.Load(configFile)
		if err != nil {
			return "", nil, nil, nil, opts, fmt.Errorf("failed to load problem: %w", err)
		}
		sys, init, paramSet, opts, err = p.Build()
		if err != nil {
			return "", nil, nil, nil, opts, err
		}
		name = p.Name
		if name == "" {
			name = "custom"
		}
	case len(args) == 1:
		m, err := models.NewRegistry().Get(args[0])
		if err != nil {
			return "", nil, nil, nil, opts, err
		}
		name = m.Name
		sys = m.System
		init = m.Initial
		paramSet = m.ParamSet
		opts = m.Defaults
	default:
		return "", nil, nil, nil, opts, fmt.Errorf("need a model name or --config")
	}

	if cmd.Flags().Changed("steps") {
		opts.Steps = steps
	}
	if cmd.Flags().Changed("mode") {
		m, err := config.ParseMode(mode)
		if err != nil {
			return "", nil, nil, nil, opts, err
		}
		opts.Mode = m
	}
	if cmd.Flags().Changed("max-magnitude") {
		opts.MaxMagnitude = maxMagnitude
	}
	if cmd.Flags().Changed("split-ratio") {
		opts.SplitRatio = splitRatio
	}
	if cmd.Flags().Changed("decomp-weight") {
		opts.DecompWeight = decompWeight
	}
	if cmd.Flags().Changed("decomp-iters") {
		opts.DecompIterations = decompIters
	}
	if cmd.Flags().Changed("max-bundles") {
		opts.MaxBundles = maxBundles
	}

	return name, sys, init, paramSet, opts, nil
}

func computePipe(cmd *cobra.Command, args []string) (string, *reach.Flowpipe, reach.Options, error) {
	name, sys, init, paramSet, opts, err := resolveProblem(cmd, args)
	if err != nil {
		return "", nil, opts, err
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var pipe *reach.Flowpipe
	if paramSet != nil {
		pipe, err = reach.ReachParam(ctx, sys, init, paramSet, opts)
	} else {
		pipe, err = reach.Reach(ctx, sys, init, opts)
	}
	return name, pipe, opts, err
}

func runReach(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	name, pipe, opts, err := computePipe(cmd, args)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, opts.Mode.String(), pipe)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n\n", len(pipe.Steps)-1)
	fmt.Print(viz.Summary(pipe))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tMODE\tVARS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Mode,
			len(run.Vars),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	stepIdx, lo, hi, err := st.LoadBounds(runID)
	if err != nil {
		return err
	}
	if len(stepIdx) == 0 {
		return fmt.Errorf("no data to plot")
	}

	pipe := &reach.Flowpipe{Vars: meta.Vars}
	for i, s := range stepIdx {
		pipe.Steps = append(pipe.Steps, reach.StepResult{
			Step:  s,
			BoxLo: geom.Vector(lo[i]),
			BoxHi: geom.Vector(hi[i]),
		})
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)
	fmt.Print(viz.PlotAll(pipe))

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	name, pipe, _, err := computePipe(cmd, args)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(pipe, name))
	_, err = p.Run()
	return err
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := models.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM\tPARAMETRIC\tDESCRIPTION")

	for _, name := range registry.List() {
		m, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%t\t%s\n", m.Name, m.System.Dim(), m.ParamSet != nil, m.Description)
	}

	return w.Flush()
}

func exportReach(cmd *cobra.Command, args []string) error {
	name, pipe, opts, err := computePipe(cmd, args)
	if err != nil {
		return err
	}

	if outFile != "" {
		return store.ExportJSON(outFile, name, opts.Mode.String(), pipe)
	}
	return store.ExportJSONStdout(name, opts.Mode.String(), pipe)
}
