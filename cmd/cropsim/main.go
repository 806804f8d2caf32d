package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/cropsim/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing crop.yaml and drivers.csv",
		)
		cropFile    = flag.String("crop", "", "Path to crop parameter YAML file")
		driversFile = flag.String("drivers", "", "Path to daily driver CSV file")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv")
		dbPath      = flag.String("db", "", "SQLite database for daily records (optional)")
		metricsFile = flag.String("metrics-file", "", "Write Prometheus metrics to this file (optional)")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ScenarioDir: *scenarioDir,
		CropFile:    *cropFile,
		DriversFile: *driversFile,
		OutputDir:   *outputDir,
		Format:      *format,
		DBPath:      *dbPath,
		MetricsFile: *metricsFile,
		Verbose:     *verbose,
		Help:        *help,
	}

	// Create and execute command
	cmd := commands.NewSimulateCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
