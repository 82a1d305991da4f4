package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/export"
	"github.com/san-kum/battsim/internal/lab"
	"github.com/san-kum/battsim/internal/metrics"
	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/series"
	"github.com/san-kum/battsim/internal/solver"
	"github.com/san-kum/battsim/internal/store"
	"github.com/san-kum/battsim/internal/viz"
	"github.com/san-kum/battsim/internal/web"
)

var (
	dataDir    string
	configFile string
	addr       string
	cycles     int
	temp       float64
	silicon    float64
	battery    string
	rates      []float64
	mode       string
	live       bool
	svg        bool
)

// main registers the battsim commands and executes the root command. It
// exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "battsim",
		Short: "battery cycling and rate sweep simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation HTTP API",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an aging cycling experiment",
		RunE:  runCycling,
	}
	runCmd.Flags().IntVar(&cycles, "cycles", 0, "number of cycles (overrides config)")
	runCmd.Flags().Float64Var(&temp, "temp", 0, "ambient temperature [K]")
	runCmd.Flags().Float64Var(&silicon, "silicon", 0, "silicon percentage of the negative electrode")
	runCmd.Flags().BoolVar(&live, "live", false, "stream samples into a live terminal view")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a C-rate sweep",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&battery, "battery", "", "battery chemistry")
	sweepCmd.Flags().Float64SliceVar(&rates, "rates", nil, "C rates to sweep")
	sweepCmd.Flags().StringVar(&mode, "mode", "Discharge", "sweep mode (Charge or Discharge)")
	sweepCmd.Flags().Float64Var(&temp, "temp", 0, "ambient temperature [K]")
	sweepCmd.Flags().BoolVar(&live, "live", false, "stream samples into a live terminal view")

	chemistriesCmd := &cobra.Command{
		Use:   "chemistries",
		Short: "list supported battery chemistries",
		RunE:  listChemistries,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&svg, "svg", false, "emit SVG charts instead of JSON")

	rootCmd.AddCommand(serveCmd, runCmd, sweepCmd, chemistriesCmd, listCmd, showCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	env, err := web.LoadEnv()
	if err != nil {
		return err
	}
	if env.Addr != "" {
		cfg.Addr = env.Addr
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = addr
	}

	l := lab.New(solver.NewCell(), cfg)
	srv := web.NewServer(cfg.Addr, l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

func runCycling(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cycles") {
		cfg.Cycles = cycles
	}
	cfg.DataDir = dataDir

	req := lab.Request{
		AmbientTemperatureK: temp,
		SiliconPercentage:   silicon,
	}

	cell := solver.NewCell()
	summary := metrics.Defaults()
	for _, m := range summary {
		cell.AddObserver(m)
	}
	l := lab.New(cell, cfg)

	var result series.Result
	if live {
		err = viz.Live(cmd.Context(), "cycling", func(o solver.Observer) error {
			cell.AddObserver(o)
			result = l.Cycling(cmd.Context(), req)
			return result.Err
		})
	} else {
		fmt.Println("running cycling experiment...")
		start := time.Now()
		result = l.Cycling(cmd.Context(), req)
		if result.Err == nil {
			fmt.Printf("completed in %v\n", time.Since(start))
		}
		err = result.Err
	}
	if err != nil {
		return err
	}

	return report(cfg, "cycling", "Silicon", cfg.Cycles, result, summary)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.DataDir = dataDir

	req := lab.Request{
		AmbientTemperatureK: temp,
		BatteryType:         battery,
		Mode:                mode,
	}
	if cmd.Flags().Changed("rates") {
		req.CRates = rates
	}

	chemistry := battery
	if chemistry == "" {
		chemistry = "NMC"
	}

	cell := solver.NewCell()
	summary := metrics.Defaults()
	for _, m := range summary {
		cell.AddObserver(m)
	}
	l := lab.New(cell, cfg)

	var result series.Result
	if live {
		err = viz.Live(cmd.Context(), "rate sweep", func(o solver.Observer) error {
			cell.AddObserver(o)
			result = l.RateSweep(cmd.Context(), req)
			return result.Err
		})
	} else {
		fmt.Printf("running rate sweep (%s)...\n", chemistry)
		start := time.Now()
		result = l.RateSweep(cmd.Context(), req)
		if result.Err == nil {
			fmt.Printf("completed in %v\n", time.Since(start))
		}
		err = result.Err
	}
	if err != nil {
		return err
	}

	return report(cfg, "sweep", chemistry, 1, result, summary)
}

// report persists the run, prints the summary metrics, and draws the
// result charts.
func report(cfg *config.Config, kind, chemistry string, cycles int, result series.Result, summary []metrics.Metric) error {
	st := store.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(kind, chemistry, cycles, result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for _, m := range summary {
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}
	fmt.Println()
	fmt.Print(viz.RenderGroups(result.Groups))
	return nil
}

func listChemistries(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARAMETER SOURCE\tVMIN\tVMAX")
	for _, name := range params.List() {
		c, err := params.Lookup(name)
		if err != nil {
			return err
		}
		if c.Limits != nil {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\n", c.Name, c.ParameterSource, c.Limits.MinV, c.Limits.MaxV)
		} else {
			fmt.Fprintf(w, "%s\t%s\t-\t-\n", c.Name, c.ParameterSource)
		}
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tKIND\tCHEMISTRY\tCYCLES\tTIME\tGROUPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID,
			run.Kind,
			run.Chemistry,
			run.Cycles,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Groups,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	groups, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderGroups(groups))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	groups, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if svg {
		for _, g := range groups {
			fmt.Println(export.GroupToSVG(g, 800, 400))
		}
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}
