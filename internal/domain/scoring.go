package domain

import (
	"math"
	"sort"
)

// Scoring thresholds.
const (
	MinChecklists           = 40   // hotspot-season sample size floor
	NotableScoreThreshold   = 1.5  // local frequency must exceed region frequency by this factor
	MaxSpeciesScore         = 15.0 // cap so one rarity cannot dominate a hotspot's rank
	MinYearsPresentRatio    = 0.3  // fraction of years with data the species must recur in
	MinYearsPresentAbsolute = 2    // excludes one-year wonders
	RarityRegionFrequency   = 0.01 // region frequency below which a species is rare
	MaxHotspotsPerSeason    = 15
	MaxSpeciesPerList       = 5
)

// rankedHotspot pairs an output record with its full-precision rank score and
// the hotspot's first-seen position for stable tie-breaking.
type rankedHotspot struct {
	report    HotspotReport
	rankScore float64
	order     int
}

// scoredNotable keeps the full-precision capped score alongside the rounded record.
type scoredNotable struct {
	NotableSpecies
	score float64
}

// Score ranks every eligible hotspot-season in the census. It does not mutate c.
func Score(c *Census) SeasonalReport {
	var ranked [NumSeasons][]rankedHotspot

	for order, h := range c.OrderedHotspots() {
		for _, season := range Seasons {
			entry, rank, ok := scoreHotspotSeason(&c.Region, h, season)
			if !ok {
				continue
			}
			ranked[season] = append(ranked[season], rankedHotspot{report: entry, rankScore: rank, order: order})
		}
	}

	var report SeasonalReport
	for _, season := range Seasons {
		entries := ranked[season]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].rankScore != entries[j].rankScore {
				return entries[i].rankScore > entries[j].rankScore
			}
			return entries[i].order < entries[j].order
		})
		if len(entries) > MaxHotspotsPerSeason {
			entries = entries[:MaxHotspotsPerSeason]
		}
		out := make([]HotspotReport, len(entries))
		for i := range entries {
			out[i] = entries[i].report
		}
		report[season] = out
	}
	return report
}

// scoreHotspotSeason evaluates one hotspot in one season. ok is false when the
// hotspot-season is ineligible or has nothing to report.
func scoreHotspotSeason(region *Region, h *Hotspot, season Season) (HotspotReport, float64, bool) {
	hs := &h.Seasons[season]
	if hs.Checklists < MinChecklists {
		return HotspotReport{}, 0, false
	}
	yearsTotal := len(hs.Years)
	if yearsTotal == 0 || len(hs.Species) == 0 {
		return HotspotReport{}, 0, false
	}

	var notable []scoredNotable
	var rare []RareSpecies

	for name, tally := range hs.Species {
		regionFreq, haveRegion := region.Frequency(season, name)
		localFreq := float64(tally.Count) / float64(hs.Checklists)
		yearsPresent := len(tally.Years)

		if score, ok := notableScore(localFreq, regionFreq, yearsPresent, yearsTotal); ok {
			notable = append(notable, scoredNotable{
				NotableSpecies: NotableSpecies{
					Name:            name,
					Score:           round(score, 2),
					Frequency:       round(localFreq, 3),
					RegionFrequency: round(regionFreq, 3),
					ObsCount:        tally.Count,
					YearsPresent:    yearsPresent,
					YearsTotal:      yearsTotal,
				},
				score: score,
			})
			continue
		}

		if haveRegion && regionFreq < RarityRegionFrequency {
			rare = append(rare, RareSpecies{
				Name:         name,
				ObsCount:     tally.Count,
				LastSeenYear: tally.LastSeenYear(),
				Frequency:    round(localFreq, 4),
			})
		}
	}

	if len(notable) == 0 && len(rare) == 0 {
		return HotspotReport{}, 0, false
	}

	sort.Slice(notable, func(i, j int) bool {
		if notable[i].score != notable[j].score {
			return notable[i].score > notable[j].score
		}
		return notable[i].Name < notable[j].Name
	})
	sort.Slice(rare, func(i, j int) bool {
		if rare[i].ObsCount != rare[j].ObsCount {
			return rare[i].ObsCount > rare[j].ObsCount
		}
		return rare[i].Name < rare[j].Name
	})

	var total float64
	for _, n := range notable {
		total += n.score
	}
	rank := total * math.Sqrt(float64(max(len(hs.Species), 1)))

	lat, lon := h.latLon()
	top := make([]NotableSpecies, 0, min(len(notable), MaxSpeciesPerList))
	for _, n := range notable[:min(len(notable), MaxSpeciesPerList)] {
		top = append(top, n.NotableSpecies)
	}
	topRare := make([]RareSpecies, 0, min(len(rare), MaxSpeciesPerList))
	topRare = append(topRare, rare[:min(len(rare), MaxSpeciesPerList)]...)

	return HotspotReport{
		HotspotID:            h.ID,
		HotspotName:          h.Name,
		Latitude:             lat,
		Longitude:            lon,
		SeasonalSpeciesCount: len(notable),
		NotableSpecies:       top,
		RareSpecies:          topRare,
	}, rank, true
}

// notableScore applies the consistency and frequency-ratio gates. Both the
// absolute year floor and the relative year ratio are checked independently;
// with two years of data the ratio is trivially met and the floor binds.
func notableScore(localFreq, regionFreq float64, yearsPresent, yearsTotal int) (float64, bool) {
	if yearsPresent < MinYearsPresentAbsolute {
		return 0, false
	}
	if float64(yearsPresent)/float64(yearsTotal) < MinYearsPresentRatio {
		return 0, false
	}
	if regionFreq <= 0 {
		return 0, false
	}
	score := localFreq / regionFreq
	if score <= NotableScoreThreshold {
		return 0, false
	}
	return math.Min(score, MaxSpeciesScore), true
}

// round rounds half away from zero to the given number of decimal places.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
