package domain

import (
	"math"
	"strconv"
	"strings"
)

// Filter constants for the checklist and observation passes.
const (
	RecentYears = 10

	completeChecklistFlag = "1"
	hotspotLocalityType   = "H"
)

// restrictedTerms mark hotspots the public cannot visit; matched as substrings
// of the lowercased locality name.
var restrictedTerms = []string{"no access", "restricted access", "private property"}

// SkipReason explains why a row was not aggregated. The empty value means the
// row was accepted.
type SkipReason string

const (
	Accepted         SkipReason = ""
	SkipIncomplete   SkipReason = "incomplete"
	SkipStale        SkipReason = "stale"
	SkipNotHotspot   SkipReason = "not_hotspot"
	SkipRestricted   SkipReason = "restricted"
	SkipDuplicate    SkipReason = "duplicate_checklist"
	SkipUnknownList  SkipReason = "unknown_checklist"
	SkipUnidentified SkipReason = "unidentified_taxon"
	SkipDuplicateObs SkipReason = "duplicate_observation"
)

// SamplingRecord holds the sampling-export columns the checklist pass needs.
type SamplingRecord struct {
	ChecklistID        string
	LocalityID         string
	Locality           string
	LocalityType       string
	AllSpeciesReported string
	ObservationDate    string
	Latitude           string
	Longitude          string
	StateCode          string
}

// ObservationRecord holds the observation-export columns the species pass needs.
type ObservationRecord struct {
	ChecklistID string
	CommonName  string
}

// Checklist routes observation rows to their hotspot, season and year.
type Checklist struct {
	ID        string
	HotspotID string
	Season    Season
	Year      int
}

// Geo is a WGS-84 latitude/longitude pair.
type Geo struct {
	Lat float64
	Lon float64
}

// SpeciesTally counts one species at one hotspot-season.
type SpeciesTally struct {
	Count int
	Years map[int]struct{}
}

// LastSeenYear is the most recent year in the tally's year set.
func (t *SpeciesTally) LastSeenYear() int {
	last := 0
	for y := range t.Years {
		if y > last {
			last = y
		}
	}
	return last
}

// HotspotSeason accumulates one hotspot's checklists and species for a season.
type HotspotSeason struct {
	Checklists int
	Years      map[int]struct{}
	Species    map[string]*SpeciesTally
}

// Hotspot is a public birding location seen in the sampling export.
type Hotspot struct {
	ID        string
	Name      string
	StateCode string
	Coords    *Geo

	Seasons        [NumSeasons]HotspotSeason
	AllTimeSpecies map[string]struct{}
}

func newHotspot(id, name string) *Hotspot {
	h := &Hotspot{
		ID:             id,
		Name:           name,
		AllTimeSpecies: make(map[string]struct{}),
	}
	for i := range h.Seasons {
		h.Seasons[i].Years = make(map[int]struct{})
		h.Seasons[i].Species = make(map[string]*SpeciesTally)
	}
	return h
}

// Region is the county-wide (whole export) aggregate.
type Region struct {
	Checklists     [NumSeasons]int
	SpeciesCounts  [NumSeasons]map[string]int
	AllTimeSpecies map[string]struct{}
}

// Frequency returns the fraction of the season's regional checklists that
// recorded species. ok is false when the season has no checklists.
func (r *Region) Frequency(season Season, species string) (freq float64, ok bool) {
	total := r.Checklists[season]
	if total == 0 {
		return 0, false
	}
	return float64(r.SpeciesCounts[season][species]) / float64(total), true
}

type observationKey struct {
	checklistID string
	species     string
}

// Census is the accumulated state threaded through the pipeline: the checklist
// pass fills hotspots and checklists, the observation pass adds species, and
// the scorer reads it. It is not safe for concurrent use.
type Census struct {
	Region       Region
	Hotspots     map[string]*Hotspot
	Checklists   map[string]Checklist
	Observations int

	// hotspotOrder keeps first-seen order so output is deterministic.
	hotspotOrder []string
	observed     map[observationKey]struct{}
	minYear      int
}

// NewCensus creates an empty census whose recency window ends at currentYear.
func NewCensus(currentYear int) *Census {
	c := &Census{
		Hotspots:   make(map[string]*Hotspot),
		Checklists: make(map[string]Checklist),
		observed:   make(map[observationKey]struct{}),
		minYear:    currentYear - RecentYears,
	}
	c.Region.AllTimeSpecies = make(map[string]struct{})
	for i := range c.Region.SpeciesCounts {
		c.Region.SpeciesCounts[i] = make(map[string]int)
	}
	return c
}

// OrderedHotspots returns hotspots in the order they were first seen.
func (c *Census) OrderedHotspots() []*Hotspot {
	out := make([]*Hotspot, 0, len(c.hotspotOrder))
	for _, id := range c.hotspotOrder {
		out = append(out, c.Hotspots[id])
	}
	return out
}

// AddChecklist applies the checklist filters to a sampling row and, when it
// qualifies, registers the checklist and updates hotspot and region totals.
func (c *Census) AddChecklist(rec SamplingRecord) SkipReason {
	if strings.TrimSpace(rec.AllSpeciesReported) != completeChecklistFlag {
		return SkipIncomplete
	}
	year, season := ParseObservationDate(rec.ObservationDate)
	if year < c.minYear {
		return SkipStale
	}
	if strings.TrimSpace(rec.LocalityType) != hotspotLocalityType {
		return SkipNotHotspot
	}
	if isRestricted(rec.Locality) {
		return SkipRestricted
	}
	if _, dup := c.Checklists[rec.ChecklistID]; dup {
		return SkipDuplicate
	}

	h, ok := c.Hotspots[rec.LocalityID]
	if !ok {
		h = newHotspot(rec.LocalityID, rec.Locality)
		h.Coords = parseCoords(rec.Latitude, rec.Longitude)
		h.StateCode = strings.TrimSpace(rec.StateCode)
		c.Hotspots[rec.LocalityID] = h
		c.hotspotOrder = append(c.hotspotOrder, rec.LocalityID)
	}

	c.Checklists[rec.ChecklistID] = Checklist{
		ID:        rec.ChecklistID,
		HotspotID: rec.LocalityID,
		Season:    season,
		Year:      year,
	}
	c.Region.Checklists[season]++
	hs := &h.Seasons[season]
	hs.Checklists++
	hs.Years[year] = struct{}{}
	return Accepted
}

// AddObservation joins an observation row to its checklist and counts the
// species once per checklist.
func (c *Census) AddObservation(rec ObservationRecord) SkipReason {
	cl, ok := c.Checklists[rec.ChecklistID]
	if !ok {
		return SkipUnknownList
	}
	name := rec.CommonName
	if !IsIdentifiedSpecies(name) {
		return SkipUnidentified
	}
	key := observationKey{checklistID: rec.ChecklistID, species: name}
	if _, dup := c.observed[key]; dup {
		return SkipDuplicateObs
	}
	c.observed[key] = struct{}{}

	h := c.Hotspots[cl.HotspotID]
	h.AllTimeSpecies[name] = struct{}{}
	c.Region.AllTimeSpecies[name] = struct{}{}
	c.Region.SpeciesCounts[cl.Season][name]++

	hs := &h.Seasons[cl.Season]
	tally, ok := hs.Species[name]
	if !ok {
		tally = &SpeciesTally{Years: make(map[int]struct{})}
		hs.Species[name] = tally
	}
	tally.Count++
	tally.Years[cl.Year] = struct{}{}
	c.Observations++
	return Accepted
}

// IsIdentifiedSpecies rejects empty names, "spuh" taxa ("duck sp.") and slash
// taxa ("Greater/Lesser Yellowlegs").
func IsIdentifiedSpecies(name string) bool {
	return name != "" && !strings.Contains(name, "sp.") && !strings.Contains(name, "/")
}

func isRestricted(locality string) bool {
	lower := strings.ToLower(locality)
	for _, term := range restrictedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// parseCoords returns nil unless both values parse as numbers.
func parseCoords(lat, lon string) *Geo {
	la, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lo, errLon := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if errLat != nil || errLon != nil || math.IsNaN(la) || math.IsNaN(lo) {
		return nil
	}
	return &Geo{Lat: la, Lon: lo}
}
