// Command genmock generates a synthetic pair of EBD exports for local runs
// and manual testing. The region is a fixed set of hotspots, each with a
// resident community and one seasonal specialty, plus noise rows that the
// loader must reject (incomplete lists, personal locations, restricted
// sites, unidentified taxa, duplicate checklists).
//
// Usage:
//
//	go run ./cmd/genmock -out data -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/couchcryptid/hotspot-etl/internal/ebd"
	"github.com/jonboulle/clockwork"
)

type hotspotDef struct {
	id, name string
	lat, lon string
	// specialty is boosted above its regional rate in one season.
	specialty string
	season    domain.Season
}

var hotspots = []hotspotDef{
	{"L123456", "Ijams Nature Center", "35.9557", "-83.8668", "Cedar Waxwing", domain.Winter},
	{"L234567", "Seven Islands State Birding Park", "35.9530", "-83.6890", "Grasshopper Sparrow", domain.Summer},
	{"L345678", "Cove Lake State Park", "36.3070", "-84.2120", "Common Loon", domain.Fall},
	{"L456789", "Sharp's Ridge Memorial Park", "36.0020", "-83.9520", "Cape May Warbler", domain.Spring},
	{"L567890", "Forks of the River WMA", "35.9600", "-83.8430", "", domain.Spring},
	{"L678901", "Kingston Steam Plant", "", "", "Bonaparte's Gull", domain.Winter},
}

// species is the regional pool with per-checklist base rates.
var species = []struct {
	name string
	rate float64
}{
	{"Carolina Chickadee", 0.70},
	{"Northern Cardinal", 0.75},
	{"Tufted Titmouse", 0.55},
	{"American Crow", 0.50},
	{"Carolina Wren", 0.60},
	{"Blue Jay", 0.45},
	{"Red-bellied Woodpecker", 0.40},
	{"Downy Woodpecker", 0.30},
	{"Mourning Dove", 0.35},
	{"American Robin", 0.40},
	{"Eastern Bluebird", 0.25},
	{"Song Sparrow", 0.25},
	{"Cedar Waxwing", 0.05},
	{"Grasshopper Sparrow", 0.01},
	{"Common Loon", 0.008},
	{"Cape May Warbler", 0.02},
	{"Bonaparte's Gull", 0.006},
	{"American Pipit", 0.004},
}

// seasonMonth is a representative month for each season.
var seasonMonth = [domain.NumSeasons]time.Month{
	domain.Spring: time.April,
	domain.Summer: time.July,
	domain.Fall:   time.October,
	domain.Winter: time.January,
}

type config struct {
	outDir    string
	seed      uint64
	years     int
	lists     int
	specialty float64
	now       time.Time
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory for the generated exports")
	seed := flag.Uint64("seed", 42, "random seed")
	years := flag.Int("years", 5, "number of recent years to generate")
	lists := flag.Int("lists", 12, "checklists per hotspot, season and year")
	specialty := flag.Float64("specialty-rate", 0.85, "per-checklist rate of a hotspot's specialty in its season")
	now := flag.String("now", "", "reference date (YYYY-MM-DD) for the recency window; defaults to today")
	flag.Parse()

	cfg := config{outDir: *outDir, seed: *seed, years: *years, lists: *lists, specialty: *specialty, now: time.Now().UTC()}
	if *now != "" {
		t, err := time.Parse(time.DateOnly, *now)
		if err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
		cfg.now = t
	}
	if cfg.years < 1 || cfg.lists < 1 {
		return fmt.Errorf("-years and -lists must be positive")
	}

	// The recency window follows the domain clock.
	domain.SetClock(clockwork.NewFakeClockAt(cfg.now))
	defer domain.SetClock(nil)

	stats, err := generate(cfg)
	if err != nil {
		return err
	}
	log.Printf("wrote %d checklists (%d noise) and %d observations to %s",
		stats.checklists, stats.noise, stats.observations, cfg.outDir)
	return nil
}

type genStats struct {
	checklists   int
	noise        int
	observations int
}

// generator writes both exports in lockstep so every observation refers to a
// checklist already written.
type generator struct {
	rng   *rand.Rand
	sw    *ebd.SamplingWriter
	ow    *ebd.ObservationWriter
	next  int
	stats genStats
}

func generate(cfg config) (genStats, error) {
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return genStats{}, err
	}
	sf, err := os.Create(filepath.Join(cfg.outDir, "ebd_sampling.txt"))
	if err != nil {
		return genStats{}, err
	}
	defer sf.Close()
	of, err := os.Create(filepath.Join(cfg.outDir, "ebd_observations.txt"))
	if err != nil {
		return genStats{}, err
	}
	defer of.Close()

	g := &generator{rng: rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))}
	if g.sw, err = ebd.NewSamplingWriter(sf); err != nil {
		return genStats{}, err
	}
	if g.ow, err = ebd.NewObservationWriter(of); err != nil {
		return genStats{}, err
	}

	current := domain.CurrentYear()
	for y := current - cfg.years + 1; y <= current; y++ {
		for _, season := range domain.Seasons {
			for _, h := range hotspots {
				for range cfg.lists {
					if err := g.checklist(h, y, season, cfg.specialty); err != nil {
						return genStats{}, err
					}
				}
			}
		}
	}
	if err := g.noise(current); err != nil {
		return genStats{}, err
	}

	if err := g.sw.Flush(); err != nil {
		return genStats{}, err
	}
	if err := g.ow.Flush(); err != nil {
		return genStats{}, err
	}
	return g.stats, nil
}

func (g *generator) nextID() string {
	g.next++
	return fmt.Sprintf("S%09d", g.next)
}

func (g *generator) date(year int, season domain.Season) string {
	month := seasonMonth[season]
	day := 1 + g.rng.IntN(28)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

func (g *generator) checklist(h hotspotDef, year int, season domain.Season, specialtyRate float64) error {
	id := g.nextID()
	if err := g.sw.WriteRecord(domain.SamplingRecord{
		ChecklistID:        id,
		LocalityID:         h.id,
		Locality:           h.name,
		LocalityType:       "H",
		AllSpeciesReported: "1",
		ObservationDate:    g.date(year, season),
		Latitude:           h.lat,
		Longitude:          h.lon,
		StateCode:          "US-TN",
	}); err != nil {
		return err
	}
	g.stats.checklists++

	for _, sp := range species {
		rate := sp.rate
		if sp.name == h.specialty && season == h.season {
			rate = specialtyRate
		}
		if g.rng.Float64() >= rate {
			continue
		}
		if err := g.observe(id, sp.name); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) observe(checklistID string, names ...string) error {
	for _, name := range names {
		if err := g.ow.WriteRecord(domain.ObservationRecord{ChecklistID: checklistID, CommonName: name}); err != nil {
			return err
		}
		g.stats.observations++
	}
	return nil
}

// noise writes rows every loader filter must reject, each carrying
// observations that must not be counted.
func (g *generator) noise(year int) error {
	date := g.date(year, domain.Spring)
	rows := []domain.SamplingRecord{
		{Locality: "Ijams Nature Center", LocalityID: "L123456", LocalityType: "H", AllSpeciesReported: "0"},
		{Locality: "My Backyard", LocalityID: "L999001", LocalityType: "P", AllSpeciesReported: "1"},
		{Locality: "Oak Ridge Reservation (restricted access)", LocalityID: "L999002", LocalityType: "H", AllSpeciesReported: "1"},
		{Locality: "Ijams Nature Center", LocalityID: "L123456", LocalityType: "H", AllSpeciesReported: "1", ObservationDate: fmt.Sprintf("%d-05-01", year-30)},
	}
	for _, rec := range rows {
		rec.ChecklistID = g.nextID()
		if rec.ObservationDate == "" {
			rec.ObservationDate = date
		}
		rec.StateCode = "US-TN"
		if err := g.sw.WriteRecord(rec); err != nil {
			return err
		}
		if err := g.observe(rec.ChecklistID, "Painted Bunting"); err != nil {
			return err
		}
		g.stats.noise++
	}

	// A valid list whose unidentified taxa and repeated species are dropped,
	// followed by a duplicate of its sampling row.
	dup := domain.SamplingRecord{
		ChecklistID:        g.nextID(),
		LocalityID:         "L567890",
		Locality:           "Forks of the River WMA",
		LocalityType:       "H",
		AllSpeciesReported: "1",
		ObservationDate:    date,
		Latitude:           "35.9600",
		Longitude:          "-83.8430",
		StateCode:          "US-TN",
	}
	for range 2 {
		if err := g.sw.WriteRecord(dup); err != nil {
			return err
		}
	}
	g.stats.checklists++
	g.stats.noise++
	return g.observe(dup.ChecklistID, "Northern Cardinal", "Northern Cardinal", "duck sp.", "Downy/Hairy Woodpecker")
}
