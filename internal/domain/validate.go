package domain

import (
	"fmt"
	"math"
)

// ValidateSeasonalReport checks a report against the scoring invariants and
// returns one message per violation. A nil result means the report is sound.
func ValidateSeasonalReport(r SeasonalReport) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, season := range Seasons {
		entries := r[season]
		if len(entries) > MaxHotspotsPerSeason {
			add("%s: %d hotspots exceeds limit of %d", season, len(entries), MaxHotspotsPerSeason)
		}
		seen := make(map[string]bool, len(entries))
		for i, e := range entries {
			where := fmt.Sprintf("%s[%d] %s", season, i, e.HotspotID)
			if e.HotspotID == "" {
				add("%s: missing hotspotId", where)
			}
			if seen[e.HotspotID] {
				add("%s: hotspot listed twice", where)
			}
			seen[e.HotspotID] = true

			if len(e.NotableSpecies) == 0 && len(e.RareSpecies) == 0 {
				add("%s: no notable or rare species", where)
			}
			if len(e.NotableSpecies) > MaxSpeciesPerList {
				add("%s: %d notable species exceeds %d", where, len(e.NotableSpecies), MaxSpeciesPerList)
			}
			if len(e.RareSpecies) > MaxSpeciesPerList {
				add("%s: %d rare species exceeds %d", where, len(e.RareSpecies), MaxSpeciesPerList)
			}
			if e.SeasonalSpeciesCount < len(e.NotableSpecies) {
				add("%s: seasonalSpeciesCount %d below listed notable species %d", where, e.SeasonalSpeciesCount, len(e.NotableSpecies))
			}
			validateNotable(add, where, e.NotableSpecies)
			validateRare(add, where, e)
		}
	}
	return problems
}

func validateNotable(add func(string, ...any), where string, species []NotableSpecies) {
	for i, n := range species {
		if n.YearsPresent < MinYearsPresentAbsolute {
			add("%s: notable %q present in %d years, need %d", where, n.Name, n.YearsPresent, MinYearsPresentAbsolute)
		}
		if n.YearsTotal <= 0 || float64(n.YearsPresent)/float64(n.YearsTotal) < MinYearsPresentRatio {
			add("%s: notable %q years ratio %d/%d below %.1f", where, n.Name, n.YearsPresent, n.YearsTotal, MinYearsPresentRatio)
		}
		if n.YearsPresent > n.YearsTotal {
			add("%s: notable %q years present %d exceeds years total %d", where, n.Name, n.YearsPresent, n.YearsTotal)
		}
		// Rounded to 2 dp, so a score of exactly 1.50 may come from 1.501.
		if n.Score < NotableScoreThreshold || n.Score > MaxSpeciesScore {
			add("%s: notable %q score %.2f outside (%.1f, %.0f]", where, n.Name, n.Score, NotableScoreThreshold, MaxSpeciesScore)
		}
		if n.Frequency < 0 || n.Frequency > 1 || n.RegionFrequency < 0 || n.RegionFrequency > 1 {
			add("%s: notable %q frequencies out of range", where, n.Name)
		}
		if i > 0 && n.Score > species[i-1].Score+1e-9 {
			add("%s: notable species not sorted by score at %q", where, n.Name)
		}
	}
}

func validateRare(add func(string, ...any), where string, e HotspotReport) {
	notable := make(map[string]bool, len(e.NotableSpecies))
	for _, n := range e.NotableSpecies {
		notable[n.Name] = true
	}
	for i, r := range e.RareSpecies {
		if notable[r.Name] {
			add("%s: %q listed as both notable and rare", where, r.Name)
		}
		if r.ObsCount < 1 {
			add("%s: rare %q has obsCount %d", where, r.Name, r.ObsCount)
		}
		if r.Frequency < 0 || r.Frequency > 1 || math.IsNaN(r.Frequency) {
			add("%s: rare %q frequency %g out of range", where, r.Name, r.Frequency)
		}
		if i > 0 && r.ObsCount > e.RareSpecies[i-1].ObsCount {
			add("%s: rare species not sorted by obsCount at %q", where, r.Name)
		}
	}
}
