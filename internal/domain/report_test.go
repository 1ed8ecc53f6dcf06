package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonalReport_MarshalJSON(t *testing.T) {
	var r SeasonalReport
	r[Winter] = []HotspotReport{{
		HotspotID:            "L1",
		HotspotName:          "Cove Lake",
		Latitude:             36.3,
		Longitude:            -84.2,
		SeasonalSpeciesCount: 1,
		NotableSpecies:       []NotableSpecies{{Name: "Cedar Waxwing", Score: 15, Frequency: 0.889, RegionFrequency: 0.039, ObsCount: 120, YearsPresent: 3, YearsTotal: 3}},
		RareSpecies:          []RareSpecies{},
	}}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"spring": [], "summer": [], "fall": [],
		"winter": [{
			"hotspotId": "L1", "hotspotName": "Cove Lake",
			"latitude": 36.3, "longitude": -84.2,
			"seasonalSpeciesCount": 1,
			"notableSpecies": [{"name": "Cedar Waxwing", "score": 15, "frequency": 0.889,
				"regionFrequency": 0.039, "obsCount": 120, "yearsPresent": 3, "yearsTotal": 3}],
			"rareSpecies": []
		}]
	}`, string(data))

	// Season keys are written in a fixed order.
	assert.Regexp(t, `^\{"spring":.*"summer":.*"fall":.*"winter":`, string(data))
}

func TestSeasonalReport_UnmarshalJSON(t *testing.T) {
	var r SeasonalReport
	require.NoError(t, json.Unmarshal([]byte(`{"fall":[{"hotspotId":"L9"}],"winter":[]}`), &r))
	assert.Equal(t, "L9", r.Season(Fall)[0].HotspotID)
	assert.Equal(t, 1, r.Len())

	err := json.Unmarshal([]byte(`{"autumn":[]}`), &r)
	assert.ErrorContains(t, err, `unknown season "autumn"`)
}

func TestSummarizeHotspots(t *testing.T) {
	c := NewCensus(testCurrentYear)
	species := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("Species %02d", i)
		}
		return out
	}
	addLists(t, c, "small", "2024-05-01", 1, species(10)...)
	addLists(t, c, "medium", "2024-05-01", 1, species(11)...)
	addLists(t, c, "large", "2024-05-01", 1, species(25)...)
	addLists(t, c, "tie", "2024-05-01", 1, species(11)...)

	got := SummarizeHotspots(c)
	require.Len(t, got, 3)
	assert.Equal(t, "large", got[0].ID)
	assert.Equal(t, 25, got[0].SpeciesCount)
	// Equal counts keep first-seen order.
	assert.Equal(t, "medium", got[1].ID)
	assert.Equal(t, "tie", got[2].ID)
	assert.Equal(t, "Hotspot large", got[0].Name)
	assert.InDelta(t, 35.96, got[0].Latitude, 1e-9)
}

func TestSummarizeHotspots_EmptyIsNotNull(t *testing.T) {
	data, err := json.Marshal(SummarizeHotspots(NewCensus(testCurrentYear)))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestBuildOutput(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	c := waxwingCensus(t)
	out := BuildOutput(c)

	assert.Equal(t, fixed.UTC(), out.GeneratedAt)
	assert.Equal(t, RegionStats{TotalSpecies: 2, TotalObservations: c.Observations}, out.Stats)
	assert.Equal(t, 120+135+3000+2, out.Stats.TotalObservations)
	assert.Len(t, out.Seasonal[Winter], 1)
	assert.Empty(t, out.Hotspots, "neither hotspot has more than 10 species")
}

func TestCurrentYearFollowsClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, 2031, CurrentYear())
	assert.Equal(t, 2031, Now().Year())
}

func TestHotspotReportMissingCoordinates(t *testing.T) {
	h := newHotspot("L1", "Somewhere")
	lat, lon := h.latLon()
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}
