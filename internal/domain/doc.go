// Package domain models eBird Basic Dataset (EBD) checklists and the seasonal
// hotspot notability scoring built from them.
//
// # Data Source
//
// The EBD is downloaded per region from https://ebird.org/data/download as two
// tab-separated files: a sampling file (one row per checklist) and an
// observation file (one row per species reported on a checklist). Both start
// with a header row; column names are matched case-insensitively.
//
// # EBD Conventions
//
// Checklist completeness:
//
//	"ALL SPECIES REPORTED" is "1" when the observer reported every species
//	detected. Only complete checklists give meaningful frequencies, since an
//	absence on an incomplete list says nothing.
//
// Locality type:
//
//	"H" marks a public eBird hotspot; "P" is a personal location. Hotspots whose
//	name says "no access", "restricted access" or "private property" are dropped.
//
// Taxa:
//
//	"spuh" entries ("duck sp.") and slashes ("Greater/Lesser Yellowlegs") are not
//	identified to species and are ignored. A species can appear on several rows
//	of one checklist (subspecies, breeding codes); it counts once.
//
// Seasons:
//
//	Dec–Feb winter, Mar–May spring, Jun–Aug summer, Sep–Nov fall.
//
// # Scoring
//
// For each hotspot-season with at least [MinChecklists] checklists, a species
// is notable when its local frequency exceeds the regional frequency by more
// than [NotableScoreThreshold], and it recurs in at least
// [MinYearsPresentAbsolute] years covering at least [MinYearsPresentRatio] of
// the years with data. Ratios are capped at [MaxSpeciesScore]. Species seen on
// fewer than [RarityRegionFrequency] of regional checklists, and not notable,
// are listed as rare.
//
// A hotspot's rank is the sum of its capped notable scores times the square
// root of its seasonal species richness. Frequencies are raw ratios; there is
// no smoothing for small samples.
package domain
