package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// NotableSpecies is a species that recurs at a hotspot-season at a markedly
// higher rate than across the region.
type NotableSpecies struct {
	Name            string  `json:"name"`
	Score           float64 `json:"score"`
	Frequency       float64 `json:"frequency"`
	RegionFrequency float64 `json:"regionFrequency"`
	ObsCount        int     `json:"obsCount"`
	YearsPresent    int     `json:"yearsPresent"`
	YearsTotal      int     `json:"yearsTotal"`
}

// RareSpecies is a species seen on fewer than 1% of regional checklists.
type RareSpecies struct {
	Name         string  `json:"name"`
	ObsCount     int     `json:"obsCount"`
	LastSeenYear int     `json:"lastSeenYear"`
	Frequency    float64 `json:"frequency"`
}

// HotspotReport is one ranked hotspot entry for a season.
type HotspotReport struct {
	HotspotID            string           `json:"hotspotId"`
	HotspotName          string           `json:"hotspotName"`
	Latitude             float64          `json:"latitude"`
	Longitude            float64          `json:"longitude"`
	SeasonalSpeciesCount int              `json:"seasonalSpeciesCount"`
	NotableSpecies       []NotableSpecies `json:"notableSpecies"`
	RareSpecies          []RareSpecies    `json:"rareSpecies"`
}

// SeasonalReport holds up to MaxHotspotsPerSeason ranked hotspots per season.
// It serializes as an object keyed by season name.
type SeasonalReport [NumSeasons][]HotspotReport

// Season returns the ranked entries for s.
func (r *SeasonalReport) Season(s Season) []HotspotReport {
	return r[s]
}

// Len is the total number of hotspot entries across seasons.
func (r *SeasonalReport) Len() int {
	n := 0
	for _, entries := range r {
		n += len(entries)
	}
	return n
}

// MarshalJSON writes {"spring": [...], "summer": [...], "fall": [...], "winter": [...]}
// with empty seasons as [] rather than null.
func (r SeasonalReport) MarshalJSON() ([]byte, error) {
	out := struct {
		Spring []HotspotReport `json:"spring"`
		Summer []HotspotReport `json:"summer"`
		Fall   []HotspotReport `json:"fall"`
		Winter []HotspotReport `json:"winter"`
	}{
		Spring: nonNil(r[Spring]),
		Summer: nonNil(r[Summer]),
		Fall:   nonNil(r[Fall]),
		Winter: nonNil(r[Winter]),
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the season-keyed object form. Unknown keys are rejected.
func (r *SeasonalReport) UnmarshalJSON(data []byte) error {
	var raw map[string][]HotspotReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out SeasonalReport
	for name, entries := range raw {
		s, ok := ParseSeason(name)
		if !ok {
			return fmt.Errorf("unknown season %q", name)
		}
		out[s] = entries
	}
	*r = out
	return nil
}

func nonNil(entries []HotspotReport) []HotspotReport {
	if entries == nil {
		return []HotspotReport{}
	}
	return entries
}

// HotspotSummary is a directory entry for a hotspot with meaningful species data.
type HotspotSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	SpeciesCount int     `json:"speciesCount"`
}

// RegionStats summarizes the region as a whole.
type RegionStats struct {
	TotalSpecies      int `json:"totalSpecies"`
	TotalObservations int `json:"totalObservations"`
}

// Output bundles everything a run produces for the sinks.
type Output struct {
	Seasonal    SeasonalReport
	Hotspots    []HotspotSummary
	Stats       RegionStats
	GeneratedAt time.Time
	// RunID identifies the run that produced the output; set by the pipeline.
	RunID string
}

// MinDirectorySpecies is the all-time species count a hotspot must exceed to
// appear in the directory.
const MinDirectorySpecies = 10

// SummarizeHotspots lists hotspots with more than 10 all-time species, most
// species first.
func SummarizeHotspots(c *Census) []HotspotSummary {
	out := make([]HotspotSummary, 0)
	for _, h := range c.OrderedHotspots() {
		n := len(h.AllTimeSpecies)
		if n <= MinDirectorySpecies {
			continue
		}
		lat, lon := h.latLon()
		out = append(out, HotspotSummary{
			ID:           h.ID,
			Name:         h.Name,
			Latitude:     lat,
			Longitude:    lon,
			SpeciesCount: n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SpeciesCount > out[j].SpeciesCount })
	return out
}

// SummarizeRegion reports region-wide species and observation totals.
func SummarizeRegion(c *Census) RegionStats {
	return RegionStats{
		TotalSpecies:      len(c.Region.AllTimeSpecies),
		TotalObservations: c.Observations,
	}
}

// BuildOutput scores the census and assembles every report artifact.
func BuildOutput(c *Census) Output {
	return Output{
		Seasonal:    Score(c),
		Hotspots:    SummarizeHotspots(c),
		Stats:       SummarizeRegion(c),
		GeneratedAt: clock.Now().UTC(),
	}
}

func (h *Hotspot) latLon() (float64, float64) {
	if h.Coords == nil {
		return 0, 0
	}
	return h.Coords.Lat, h.Coords.Lon
}
