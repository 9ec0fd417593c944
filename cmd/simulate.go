package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/defectlens-cli/internal/config"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
	"github.com/KaramelBytes/defectlens-cli/internal/render"
)

var (
	simImport      importFlags
	simOutputPath  string
	simFormat      string
	simChartPath   string
	simSimulations int
	simScenarios   string
	simSeed        uint64
	simWorkers     int
	simQuiet       bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Monte Carlo simulation of total repair cost under defect-reduction scenarios",
	Example: `  defectlens simulate defects.csv
  defectlens simulate defects.csv --simulations 20000 --scenarios 0,10%,25%,50%
  defectlens simulate defects.csv --seed 42 --format json -o run.json --chart scenarios.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		simCfg, err := simulationConfig(cmd)
		if err != nil {
			return err
		}
		sim, err := montecarlo.New(simCfg)
		if err != nil {
			return err
		}
		ds, err := simImport.load(args[0])
		if err != nil {
			return err
		}
		costs := ds.Costs()
		run := sim.NewRunReport(ds.Name, costs)
		log := logrus.WithFields(logrus.Fields{"run_id": run.RunID, "file": ds.Name})
		sim.WithLogger(log)

		var onProgress montecarlo.ProgressFunc
		if !simQuiet {
			onProgress = progressPrinter(os.Stderr)
		}
		results, err := sim.Run(cmd.Context(), costs, onProgress)
		if err != nil {
			return err
		}
		run.Complete(results)
		log.WithField("duration_ms", run.DurationMS).Info("simulation finished")

		if simChartPath != "" {
			if err := writeChart(simChartPath, func(w io.Writer) error { return render.ScenarioPNG(w, results) }); err != nil {
				return err
			}
		}
		out, err := formatRun(run, simFormat)
		if err != nil {
			return err
		}
		return writeOutput(simOutputPath, out, "simulation")
	},
}

func simulationConfig(cmd *cobra.Command) (montecarlo.Config, error) {
	var c montecarlo.Config
	if cfg != nil {
		c = cfg.Simulation()
	}
	f := cmd.Flags()
	if f.Changed("simulations") {
		if simSimulations < 1 || simSimulations > montecarlo.MaxSimulations {
			return c, fmt.Errorf("--simulations must be between 1 and %d", montecarlo.MaxSimulations)
		}
		c.Simulations = simSimulations
	}
	if f.Changed("scenarios") {
		sc, err := cfgpkg.ParseScenarios(simScenarios)
		if err != nil {
			return c, err
		}
		c.Scenarios = sc
	}
	if f.Changed("seed") {
		c.Seed = simSeed
	}
	if f.Changed("workers") {
		c.Workers = simWorkers
	}
	return c, nil
}

// progressPrinter redraws a single percentage line on w and ends it at 100.
func progressPrinter(w io.Writer) montecarlo.ProgressFunc {
	return func(pct int) {
		fmt.Fprintf(w, "\r⚙ Simulating... %3d%%", pct)
		if pct == 100 {
			fmt.Fprintln(w)
		}
	}
}

func formatRun(run *montecarlo.RunReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text":
		var b strings.Builder
		fmt.Fprintf(&b, "Run ID: %s\n", run.RunID)
		fmt.Fprintf(&b, "Dataset: %s (%d records, total repair cost %.2f)\n", run.Dataset, run.Records, run.TotalCost)
		fmt.Fprintf(&b, "Simulations per scenario: %d\n\n", run.Simulations)
		b.WriteString(render.SimulationTable(run.Results, render.Text))
		b.WriteString("\n")
		return []byte(b.String()), nil
	case "markdown", "md":
		return []byte(render.SimulationDocument(run.Dataset, run.Results)), nil
	case "json":
		return jsonOutput(run)
	case "html":
		return render.HTML("Repair Cost Simulation: "+run.Dataset, render.SimulationDocument(run.Dataset, run.Results)), nil
	}
	return nil, fmt.Errorf("unsupported --format: %s (use text|markdown|json|html)", format)
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	f := simulateCmd.Flags()
	simImport.bind(f)
	f.StringVarP(&simOutputPath, "output", "o", "", "optional path to write the results")
	f.StringVarP(&simFormat, "format", "f", "text", "output format: text|markdown|json|html")
	f.StringVar(&simChartPath, "chart", "", "write a mean-cost-per-scenario PNG to this path")
	f.IntVarP(&simSimulations, "simulations", "n", montecarlo.DefaultSimulations, "resampled totals per scenario")
	f.StringVar(&simScenarios, "scenarios", "0,0.1,0.2,0.3", "comma-separated defect reductions, fractions or percents")
	f.Uint64Var(&simSeed, "seed", 0, "random seed for reproducible runs (0 = random)")
	f.IntVar(&simWorkers, "workers", 0, "scenarios simulated concurrently (0 = GOMAXPROCS)")
	f.BoolVarP(&simQuiet, "quiet", "q", false, "suppress progress output")
}
