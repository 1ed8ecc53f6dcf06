// Command validate checks a written report directory for internal
// consistency: the seasonal report against the scoring invariants, the
// hotspot directory ordering and threshold, and the region stats against
// both.
//
// Usage:
//
//	go run ./cmd/validate -dir data/out
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	fileadapter "github.com/couchcryptid/hotspot-etl/internal/adapter/file"
	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/mattn/go-isatty"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) status(color bool) string {
	label, code := "PASS", "32"
	if !p.passed() {
		label, code = fmt.Sprintf("FAIL (%d errors)", len(p.errors)), "31"
	}
	if !color {
		return label
	}
	return "\033[" + code + "m" + label + "\033[0m"
}

func shouldColorize(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// report is the on-disk form of one run's output.
type report struct {
	seasonal domain.SeasonalReport
	hotspots []domain.HotspotSummary
	stats    domain.RegionStats
}

func main() {
	dir := flag.String("dir", "", "report directory written by cmd/hotspots")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Hotspot Report Validation ===")
	fmt.Println()

	r, err := loadReport(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSeasonal(r.seasonal),
		validateDirectory(r.hotspots),
		validateStats(r),
	}

	color := shouldColorize(os.Stdout)
	allPassed := true
	for _, p := range phases {
		if !p.passed() {
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, p.status(color))
	}

	fmt.Println()
	fmt.Printf("Entries: %d seasonal, %d directory, %d species, %d observations\n",
		r.seasonal.Len(), len(r.hotspots), r.stats.TotalSpecies, r.stats.TotalObservations)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadReport(dir string) (report, error) {
	var r report
	if err := loadJSON(filepath.Join(dir, fileadapter.SeasonalFile), &r.seasonal); err != nil {
		return report{}, err
	}
	if err := loadJSON(filepath.Join(dir, fileadapter.HotspotsFile), &r.hotspots); err != nil {
		return report{}, err
	}
	if err := loadJSON(filepath.Join(dir, fileadapter.StatsFile), &r.stats); err != nil {
		return report{}, err
	}
	return r, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ── Phases ──

func validateSeasonal(s domain.SeasonalReport) *phase {
	p := &phase{name: "Seasonal report invariants"}
	for _, problem := range domain.ValidateSeasonalReport(s) {
		p.errorf("%s", problem)
	}
	return p
}

func validateDirectory(hotspots []domain.HotspotSummary) *phase {
	p := &phase{name: "Hotspot directory ordering"}
	seen := make(map[string]bool, len(hotspots))
	for i, h := range hotspots {
		if h.ID == "" {
			p.errorf("hotspots[%d]: missing id", i)
		}
		if seen[h.ID] {
			p.errorf("hotspots[%d] %s: listed twice", i, h.ID)
		}
		seen[h.ID] = true
		if h.SpeciesCount <= domain.MinDirectorySpecies {
			p.errorf("hotspots[%d] %s: speciesCount %d not above %d", i, h.ID, h.SpeciesCount, domain.MinDirectorySpecies)
		}
		if i > 0 && h.SpeciesCount > hotspots[i-1].SpeciesCount {
			p.errorf("hotspots[%d] %s: speciesCount %d above previous %d", i, h.ID, h.SpeciesCount, hotspots[i-1].SpeciesCount)
		}
	}
	return p
}

func validateStats(r report) *phase {
	p := &phase{name: "Region stats consistency"}
	if r.stats.TotalSpecies < 0 || r.stats.TotalObservations < 0 {
		p.errorf("negative totals: species %d, observations %d", r.stats.TotalSpecies, r.stats.TotalObservations)
	}
	for _, h := range r.hotspots {
		if h.SpeciesCount > r.stats.TotalSpecies {
			p.errorf("hotspot %s: speciesCount %d exceeds region total %d", h.ID, h.SpeciesCount, r.stats.TotalSpecies)
		}
	}
	for _, season := range domain.Seasons {
		for _, e := range r.seasonal.Season(season) {
			if e.SeasonalSpeciesCount > r.stats.TotalSpecies {
				p.errorf("%s %s: %d notable species exceeds region total %d",
					season, e.HotspotID, e.SeasonalSpeciesCount, r.stats.TotalSpecies)
			}
		}
	}
	if r.seasonal.Len() > 0 && r.stats.TotalObservations == 0 {
		p.errorf("seasonal report has %d entries but no observations were counted", r.seasonal.Len())
	}
	return p
}
