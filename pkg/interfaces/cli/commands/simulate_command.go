package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/cropsim/pkg/application/services/simulation"
	"github.com/vsinha/cropsim/pkg/domain/repositories"
	"github.com/vsinha/cropsim/pkg/infrastructure/config"
	"github.com/vsinha/cropsim/pkg/infrastructure/events"
	"github.com/vsinha/cropsim/pkg/infrastructure/metrics"
	"github.com/vsinha/cropsim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cropsim/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/cropsim/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/cropsim/pkg/interfaces/cli/output"
)

// Config holds configuration for the simulate command
type Config struct {
	ScenarioDir string
	CropFile    string
	DriversFile string
	OutputDir   string
	Format      string
	DBPath      string
	MetricsFile string
	Verbose     bool
	Help        bool
	// Stdout receives progress and results (default os.Stdout)
	Stdout io.Writer
}

// SimulateCommand loads a crop and its drivers and runs the simulation
type SimulateCommand struct {
	config Config
}

// NewSimulateCommand creates a new simulate command with the given configuration
func NewSimulateCommand(config Config) *SimulateCommand {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Format == "" {
		config.Format = "text"
	}
	return &SimulateCommand{
		config: config,
	}
}

// Execute runs the simulate command
func (c *SimulateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	// Validate inputs
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
		c.printf("📂 Loading crop and drivers...\n")
	}

	params, err := config.LoadCrop(files["Crop"])
	if err != nil {
		return fmt.Errorf("error loading crop: %w", err)
	}

	drivers, err := csv.NewLoader().LoadDrivers(files["Drivers"])
	if err != nil {
		return fmt.Errorf("error loading drivers: %w", err)
	}

	driverRepo := memory.NewDriverRepository()
	if err := driverRepo.LoadDrivers(drivers); err != nil {
		return fmt.Errorf("failed to load drivers into repository: %w", err)
	}
	drivers, err = driverRepo.GetDrivers()
	if err != nil {
		return fmt.Errorf("failed to read drivers from repository: %w", err)
	}

	if c.config.Verbose {
		c.printf("✅ Data loaded successfully:\n")
		c.printf("  Crop: %s (%d phases, %d organs)\n", params.CropType, len(params.Phases), len(params.Organs))
		c.printf("  Drivers: %d days from %s\n", len(drivers), drivers[0].Date.Format("2006-01-02"))
		c.printf("\n")
	}

	// Create repositories and collaborators
	var records repositories.RecordRepository = memory.NewRecordRepository()
	if c.config.DBPath != "" {
		store, err := sqlite.NewRecordRepository(c.config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open record database: %w", err)
		}
		defer store.Close()
		records = store
	}

	eventStore := events.NewInMemoryEventStore()
	if c.config.Verbose {
		progress := &events.HandlerFunc{
			Types: []string{events.PhaseChangedEvent, events.BiomassRemovedEvent},
			Fn:    c.printEvent,
		}
		if err := eventStore.Subscribe(progress.Types, progress); err != nil {
			return fmt.Errorf("failed to subscribe to events: %w", err)
		}
	}

	var recorder *metrics.PrometheusRecorder
	serviceConfig := simulation.ServiceConfig{
		EventStore:           eventStore,
		SurfaceOrganicMatter: memory.NewSurfaceOrganicMatterPool(),
		Records:              records,
	}
	if c.config.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder()
		serviceConfig.Recorder = recorder
	}

	if c.config.Verbose {
		c.printf("🔄 Simulating %s...\n", params.CropType)
	}

	startTime := time.Now()
	result, err := simulation.NewServiceWithConfig(serviceConfig).Run(ctx, params, drivers)
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running simulation: %w", err)
	}

	if c.config.Verbose {
		c.printf("✅ Simulated %d days in %v\n", result.DaysSimulated, runTime)
		if c.config.DBPath != "" {
			c.printf("💾 Daily records stored in %s as run %s\n", c.config.DBPath, result.RunID)
		}
		c.printf("\n")
	}

	if recorder != nil {
		if err := recorder.WriteToTextfile(c.config.MetricsFile); err != nil {
			return err
		}
		if c.config.Verbose {
			c.printf("📈 Metrics written to: %s\n", c.config.MetricsFile)
		}
	}

	// Generate output
	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		RunTime:   runTime,
		Stdout:    c.config.Stdout,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		c.printf("🏁 Simulation complete!\n")
	}

	return nil
}

func (c *SimulateCommand) printf(format string, args ...any) {
	fmt.Fprintf(c.config.Stdout, format, args...)
}

func (c *SimulateCommand) printEvent(event events.Event) error {
	switch data := event.Data().(type) {
	case events.PhaseChanged:
		c.printf("  📅 %s: %s → %s (stage %.2f)\n",
			data.Transition.Date.Format("2006-01-02"), data.Transition.From, data.Transition.To, data.Stage)
	case events.BiomassRemoved:
		c.printf("  🚜 %s: %s\n", event.Timestamp().Format("2006-01-02"), data.RemovalType)
	}
	return nil
}

// validateInputs validates the command configuration
func (c *SimulateCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && (c.config.CropFile == "" || c.config.DriversFile == "") {
		return fmt.Errorf("must specify either -scenario directory or both -crop and -drivers files")
	}
	switch c.config.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	if c.config.Format == "csv" && c.config.OutputDir == "" {
		return fmt.Errorf("-output directory required for csv format")
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use. Individual
// files override the scenario directory.
func (c *SimulateCommand) resolveInputFiles() (map[string]string, error) {
	files := map[string]string{
		"Crop":    c.config.CropFile,
		"Drivers": c.config.DriversFile,
	}
	if c.config.ScenarioDir != "" {
		if files["Crop"] == "" {
			files["Crop"] = filepath.Join(c.config.ScenarioDir, "crop.yaml")
		}
		if files["Drivers"] == "" {
			files["Drivers"] = filepath.Join(c.config.ScenarioDir, "drivers.csv")
		}
	}

	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *SimulateCommand) printHeader(files map[string]string) {
	c.printf("🚀 Crop Simulation CLI\n")
	c.printf("Input files:\n")
	c.printf("  Crop: %s\n", files["Crop"])
	c.printf("  Drivers: %s\n", files["Drivers"])
	c.printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		c.printf("Output directory: %s\n", c.config.OutputDir)
	}
	c.printf("\n")
}

// showHelp displays the help message
func (c *SimulateCommand) showHelp() {
	c.printf(`cropsim - Daily crop growth simulation

USAGE:
    cropsim -scenario <directory>            # Use scenario directory
    cropsim -crop <file> -drivers <file>     # Use individual files

OPTIONS:
    -scenario <dir>       Path to scenario directory containing crop.yaml and drivers.csv
    -crop <file>          Path to crop parameter YAML file
    -drivers <file>       Path to daily driver CSV file
    -output <dir>         Output directory for results (optional, required for csv)
    -format <fmt>         Output format: text, json, csv (default: text)
    -db <file>            Store daily records in a SQLite database
    -metrics-file <file>  Write Prometheus metrics in text format
    -verbose              Enable verbose output
    -help                 Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── crop.yaml       # Phases, organs, harvest and removal fractions
    └── drivers.csv     # One row per simulated day

drivers.csv:
    date,thermal_time,dm_fixation,n_uptake,other_above_ground_wt,dead_cohort_no,cohorts_initialised
    2024-05-01,10,5,0.05,0,0,true

crop.yaml:
    crop_type: wheat
    final_leaf_number: 10
    phases:
      - {name: Emerging, kind: ThermalTime, start: Sowing, end: Emergence, target: 50}
      - {name: Mature, kind: End, start: Emergence, end: Harvested}
    organs:
      - {name: Grain, kind: HIReproductive, hi_increment: 0.01, n_conc: 0.02}
    harvest: {at_phase: Mature, removal_type: Harvest}

EXAMPLES:
    # Run the wheat scenario
    cropsim -scenario examples/wheat -verbose

    # Write daily and transition CSV files
    cropsim -scenario examples/wheat -format csv -output results/

    # Keep daily records and metrics
    cropsim -scenario examples/wheat -db runs.db -metrics-file cropsim.prom
`)
}
