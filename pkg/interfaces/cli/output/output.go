package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cropsim/pkg/application/dto"
	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
	// Stdout receives console output (default os.Stdout)
	Stdout io.Writer
}

// Generate creates output in the specified format
func Generate(result *dto.SimulationResult, config Config) error {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// fixed renders v with the given number of decimal places
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.SimulationResult, config Config) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "🌾 Simulation Results Summary\n")
	fmt.Fprintf(&buf, "=============================\n\n")

	fmt.Fprintf(&buf, "Run: %s\n", result.RunID)
	fmt.Fprintf(&buf, "Crop: %s\n", result.CropType)
	fmt.Fprintf(&buf, "Days Simulated: %d\n", result.DaysSimulated)
	fmt.Fprintf(&buf, "Final Phase: %s (stage %s)\n", result.FinalPhase, fixed(result.FinalStage, 2))
	fmt.Fprintf(&buf, "Run Time: %v\n\n", config.RunTime)

	if len(result.Transitions) > 0 {
		fmt.Fprintf(&buf, "📅 Phase Transitions:\n")
		fmt.Fprintf(&buf, "%-12s %-15s %-15s\n", "Date", "From", "To")
		fmt.Fprintf(&buf, "%-12s %-15s %-15s\n", "------------", "---------------", "---------------")
		for _, transition := range result.Transitions {
			fmt.Fprintf(&buf, "%-12s %-15s %-15s\n",
				transition.Date.Format("2006-01-02"),
				transition.From,
				transition.To)
		}
		fmt.Fprintln(&buf)
	}

	if final := result.FinalRecord(); final != nil {
		fmt.Fprintf(&buf, "🌱 Organs on %s:\n", final.Date.Format("2006-01-02"))
		fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s %-10s\n", "Organ", "Live Wt", "Live N", "Dead Wt", "Dead N")
		fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s %-10s\n", "------------", "----------", "----------", "----------", "----------")
		for _, organ := range final.Organs {
			fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s %-10s\n",
				organ.Name,
				fixed(organ.Live.Wt(), 3),
				fixed(organ.Live.N(), 4),
				fixed(organ.Dead.Wt(), 3),
				fixed(organ.Dead.N(), 4))
		}
		fmt.Fprintln(&buf)
	}

	if result.Harvest != nil {
		fmt.Fprintf(&buf, "🚜 %s on %s:\n", result.Harvest.RemovalType, result.Harvest.Date.Format("2006-01-02"))
		fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s\n", "Organ", "Removed", "Removed N", "Detached")
		fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s\n", "------------", "----------", "----------", "----------")
		totalWt, totalN := decimal.Zero, decimal.Zero
		for _, name := range sortedNames(result.Harvest.Removed) {
			removed := result.Harvest.Removed[name]
			detached := result.Harvest.Detached[name]
			totalWt = totalWt.Add(decimal.NewFromFloat(removed.Wt()))
			totalN = totalN.Add(decimal.NewFromFloat(removed.N()))
			fmt.Fprintf(&buf, "%-12s %-10s %-10s %-10s\n",
				name,
				fixed(removed.Wt(), 3),
				fixed(removed.N(), 4),
				fixed(detached.Wt(), 3))
		}
		fmt.Fprintf(&buf, "%-12s %-10s %-10s\n", "Total", totalWt.StringFixed(3), totalN.StringFixed(4))
		fmt.Fprintln(&buf)
	}

	totals := result.Totals
	fmt.Fprintf(&buf, "⚖️  Resource Totals:\n")
	fmt.Fprintf(&buf, "  Dry matter supplied %s, allocated %s, unmet %s\n",
		fixed(totals.DMSupply, 3), fixed(totals.DMAllocated, 3), fixed(totals.DMUnmet, 3))
	fmt.Fprintf(&buf, "  Nitrogen supplied %s, allocated %s, unmet %s\n",
		fixed(totals.NSupply, 4), fixed(totals.NAllocated, 4), fixed(totals.NUnmet, 4))
	fmt.Fprintf(&buf, "  Respiration %s\n", fixed(totals.Respiration, 3))
	fmt.Fprintf(&buf, "  Residues %s kg/ha (%s N) in %d additions\n",
		fixed(totals.ResidueMass, 3), fixed(totals.ResidueN, 4), len(result.Residues))

	if _, err := config.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	// Save to file if output directory specified
	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := filepath.Join(config.OutputDir, "summary.txt")
		if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write text file: %w", err)
		}
		if config.Verbose {
			fmt.Fprintf(config.Stdout, "💾 Results saved to: %s\n", filename)
		}
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.SimulationResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.Stdout, string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "results.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Stdout, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput creates CSV output
func generateCSVOutput(result *dto.SimulationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dailyFile := filepath.Join(config.OutputDir, "daily.csv")
	if err := writeDailyCSV(result.Records, dailyFile); err != nil {
		return fmt.Errorf("failed to write daily CSV: %w", err)
	}

	transitionsFile := filepath.Join(config.OutputDir, "transitions.csv")
	if err := writeTransitionsCSV(result.Transitions, transitionsFile); err != nil {
		return fmt.Errorf("failed to write transitions CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Stdout, "💾 CSV results saved to:\n")
		fmt.Fprintf(config.Stdout, "  Daily: %s\n", dailyFile)
		fmt.Fprintf(config.Stdout, "  Transitions: %s\n", transitionsFile)
	}

	return nil
}

// DailyHeader is the header of daily.csv, one row per organ per day
var DailyHeader = []string{
	"day", "date", "phase", "stage", "alive", "organ",
	"live_wt", "live_n", "dead_wt", "dead_n", "dm_demand", "n_demand",
}

func writeDailyCSV(records []*entities.DailyRecord, filename string) error {
	rows := [][]string{DailyHeader}
	for _, record := range records {
		for _, organ := range record.Organs {
			rows = append(rows, []string{
				strconv.Itoa(record.Day),
				record.Date.Format("2006-01-02"),
				record.Phase,
				fixed(record.Stage, 4),
				strconv.FormatBool(record.Alive),
				organ.Name,
				fixed(organ.Live.Wt(), 4),
				fixed(organ.Live.N(), 5),
				fixed(organ.Dead.Wt(), 4),
				fixed(organ.Dead.N(), 5),
				fixed(organ.DMDemand.Total(), 4),
				fixed(organ.NDemand.Total(), 5),
			})
		}
	}
	return writeCSV(filename, rows)
}

func writeTransitionsCSV(transitions []entities.PhaseTransition, filename string) error {
	rows := [][]string{{"date", "from", "to"}}
	for _, transition := range transitions {
		rows = append(rows, []string{transition.Date.Format("2006-01-02"), transition.From, transition.To})
	}
	return writeCSV(filename, rows)
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func sortedNames(m map[string]entities.Biomass) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
