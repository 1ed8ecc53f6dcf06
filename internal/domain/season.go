package domain

import (
	"strconv"
	"strings"
)

// Season is one of the four fixed meteorological seasons used to bucket checklists.
type Season int

const (
	Spring Season = iota
	Summer
	Fall
	Winter
)

// NumSeasons is the number of Season values; per-season arrays are sized by it.
const NumSeasons = 4

// Seasons lists every season in report order.
var Seasons = [NumSeasons]Season{Spring, Summer, Fall, Winter}

var seasonNames = [NumSeasons]string{"spring", "summer", "fall", "winter"}

func (s Season) String() string {
	if s < 0 || int(s) >= NumSeasons {
		return "unknown"
	}
	return seasonNames[s]
}

// ParseSeason maps a lowercase season name back to its Season.
func ParseSeason(name string) (Season, bool) {
	for i, n := range seasonNames {
		if strings.EqualFold(n, name) {
			return Season(i), true
		}
	}
	return 0, false
}

// SeasonForMonth buckets a calendar month: Mar–May spring, Jun–Aug summer,
// Sep–Nov fall, everything else (including unparseable months) winter.
func SeasonForMonth(month int) Season {
	switch {
	case month >= 3 && month <= 5:
		return Spring
	case month >= 6 && month <= 8:
		return Summer
	case month >= 9 && month <= 11:
		return Fall
	default:
		return Winter
	}
}

// ParseObservationDate extracts year and season from an EBD "YYYY-MM-DD" date.
// A missing or malformed year yields 0, which the recency window always rejects.
func ParseObservationDate(date string) (year int, season Season) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, Winter
	}
	parts := strings.Split(date, "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		year = 0
	}
	month := 0
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			month = m
		}
	}
	return year, SeasonForMonth(month)
}
