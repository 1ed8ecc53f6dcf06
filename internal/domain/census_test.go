package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCurrentYear = 2026

// addLists registers n complete hotspot checklists at locID on date, each
// reporting every species given. It returns the generated checklist IDs.
func addLists(t *testing.T, c *Census, locID, date string, n int, species ...string) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for range n {
		id := fmt.Sprintf("S%06d", len(c.Checklists)+1)
		reason := c.AddChecklist(SamplingRecord{
			ChecklistID:        id,
			LocalityID:         locID,
			Locality:           "Hotspot " + locID,
			LocalityType:       "H",
			AllSpeciesReported: "1",
			ObservationDate:    date,
			Latitude:           "35.96",
			Longitude:          "-83.92",
		})
		require.Equal(t, Accepted, reason)
		for _, sp := range species {
			require.Equal(t, Accepted, c.AddObservation(ObservationRecord{ChecklistID: id, CommonName: sp}))
		}
		ids = append(ids, id)
	}
	return ids
}

func validSampling(id string) SamplingRecord {
	return SamplingRecord{
		ChecklistID:        id,
		LocalityID:         "L123",
		Locality:           "Ijams Nature Center",
		LocalityType:       "H",
		AllSpeciesReported: "1",
		ObservationDate:    "2024-05-04",
		Latitude:           "35.9557",
		Longitude:          "-83.8668",
		StateCode:          "US-TN",
	}
}

func TestAddChecklist_Filters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SamplingRecord)
		want   SkipReason
	}{
		{"accepted", func(*SamplingRecord) {}, Accepted},
		{"incomplete", func(r *SamplingRecord) { r.AllSpeciesReported = "0" }, SkipIncomplete},
		{"empty completeness flag", func(r *SamplingRecord) { r.AllSpeciesReported = "" }, SkipIncomplete},
		{"older than window", func(r *SamplingRecord) { r.ObservationDate = "2015-06-01" }, SkipStale},
		{"window boundary year", func(r *SamplingRecord) { r.ObservationDate = "2016-06-01" }, Accepted},
		{"malformed date", func(r *SamplingRecord) { r.ObservationDate = "unknown" }, SkipStale},
		{"missing date", func(r *SamplingRecord) { r.ObservationDate = "" }, SkipStale},
		{"personal location", func(r *SamplingRecord) { r.LocalityType = "P" }, SkipNotHotspot},
		{"no access", func(r *SamplingRecord) { r.Locality = "Farm Pond (NO ACCESS)" }, SkipRestricted},
		{"restricted access", func(r *SamplingRecord) { r.Locality = "Plant--Restricted Access" }, SkipRestricted},
		{"private property substring", func(r *SamplingRecord) { r.Locality = "Smith private propertyline" }, SkipRestricted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCensus(testCurrentYear)
			rec := validSampling("S1")
			tc.mutate(&rec)
			assert.Equal(t, tc.want, c.AddChecklist(rec))
			if tc.want == Accepted {
				assert.Len(t, c.Checklists, 1)
			} else {
				assert.Empty(t, c.Checklists)
				assert.Empty(t, c.Hotspots)
			}
		})
	}
}

func TestAddChecklist_RegistersHotspotOnce(t *testing.T) {
	c := NewCensus(testCurrentYear)

	first := validSampling("S1")
	require.Equal(t, Accepted, c.AddChecklist(first))

	second := validSampling("S2")
	second.Locality = "Ijams Nature Center (renamed)"
	second.Latitude = "0"
	second.ObservationDate = "2025-12-20"
	require.Equal(t, Accepted, c.AddChecklist(second))

	h := c.Hotspots["L123"]
	require.NotNil(t, h)
	assert.Equal(t, "Ijams Nature Center", h.Name)
	assert.Equal(t, "US-TN", h.StateCode)
	require.NotNil(t, h.Coords)
	assert.InDelta(t, 35.9557, h.Coords.Lat, 1e-9)
	assert.InDelta(t, -83.8668, h.Coords.Lon, 1e-9)

	assert.Equal(t, 1, h.Seasons[Spring].Checklists)
	assert.Equal(t, 1, h.Seasons[Winter].Checklists)
	assert.Contains(t, h.Seasons[Spring].Years, 2024)
	assert.Contains(t, h.Seasons[Winter].Years, 2025)
	assert.Equal(t, 1, c.Region.Checklists[Spring])
	assert.Equal(t, 1, c.Region.Checklists[Winter])
	assert.Equal(t, Checklist{ID: "S2", HotspotID: "L123", Season: Winter, Year: 2025}, c.Checklists["S2"])
}

func TestAddChecklist_NonNumericCoordinates(t *testing.T) {
	c := NewCensus(testCurrentYear)
	rec := validSampling("S1")
	rec.Longitude = "n/a"
	require.Equal(t, Accepted, c.AddChecklist(rec))
	assert.Nil(t, c.Hotspots["L123"].Coords)

	rec = validSampling("S2")
	rec.LocalityID = "L999"
	rec.Latitude = "NaN"
	require.Equal(t, Accepted, c.AddChecklist(rec))
	assert.Nil(t, c.Hotspots["L999"].Coords)
}

func TestAddChecklist_DuplicateIdentifierCountedOnce(t *testing.T) {
	c := NewCensus(testCurrentYear)
	require.Equal(t, Accepted, c.AddChecklist(validSampling("S1")))
	assert.Equal(t, SkipDuplicate, c.AddChecklist(validSampling("S1")))

	assert.Equal(t, 1, c.Region.Checklists[Spring])
	assert.Equal(t, 1, c.Hotspots["L123"].Seasons[Spring].Checklists)
}

func TestAddObservation(t *testing.T) {
	c := NewCensus(testCurrentYear)
	require.Equal(t, Accepted, c.AddChecklist(validSampling("S1")))

	t.Run("unknown checklist", func(t *testing.T) {
		assert.Equal(t, SkipUnknownList, c.AddObservation(ObservationRecord{ChecklistID: "S404", CommonName: "Carolina Wren"}))
	})

	t.Run("unidentified taxa", func(t *testing.T) {
		for _, name := range []string{"", "duck sp.", "Accipiter sp.", "Greater/Lesser Yellowlegs"} {
			assert.Equal(t, SkipUnidentified, c.AddObservation(ObservationRecord{ChecklistID: "S1", CommonName: name}), name)
		}
	})

	t.Run("duplicate species on a checklist counts once", func(t *testing.T) {
		rec := ObservationRecord{ChecklistID: "S1", CommonName: "Cedar Waxwing"}
		assert.Equal(t, Accepted, c.AddObservation(rec))
		assert.Equal(t, SkipDuplicateObs, c.AddObservation(rec))

		tally := c.Hotspots["L123"].Seasons[Spring].Species["Cedar Waxwing"]
		require.NotNil(t, tally)
		assert.Equal(t, 1, tally.Count)
		assert.Equal(t, 1, c.Region.SpeciesCounts[Spring]["Cedar Waxwing"])
		assert.Equal(t, 1, c.Observations)
	})

	t.Run("updates all-time sets and year presence", func(t *testing.T) {
		assert.Contains(t, c.Hotspots["L123"].AllTimeSpecies, "Cedar Waxwing")
		assert.Contains(t, c.Region.AllTimeSpecies, "Cedar Waxwing")
		assert.Contains(t, c.Hotspots["L123"].Seasons[Spring].Species["Cedar Waxwing"].Years, 2024)
	})
}

func TestSpeciesYearsSubsetOfCoverage(t *testing.T) {
	c := NewCensus(testCurrentYear)
	addLists(t, c, "L1", "2022-07-01", 3, "Indigo Bunting")
	addLists(t, c, "L1", "2024-07-01", 2, "Indigo Bunting", "Blue Grosbeak")
	addLists(t, c, "L1", "2025-08-01", 1)

	hs := c.Hotspots["L1"].Seasons[Summer]
	for name, tally := range hs.Species {
		assert.GreaterOrEqual(t, tally.Count, len(tally.Years), name)
		for y := range tally.Years {
			assert.Contains(t, hs.Years, y, name)
		}
	}
	assert.Equal(t, 2024, hs.Species["Indigo Bunting"].LastSeenYear())
}

func TestRegionFrequency(t *testing.T) {
	c := NewCensus(testCurrentYear)

	freq, ok := c.Region.Frequency(Winter, "Cedar Waxwing")
	assert.False(t, ok)
	assert.Zero(t, freq)

	addLists(t, c, "L1", "2024-01-10", 3, "Cedar Waxwing")
	addLists(t, c, "L1", "2024-01-11", 1)

	freq, ok = c.Region.Frequency(Winter, "Cedar Waxwing")
	assert.True(t, ok)
	assert.InDelta(t, 0.75, freq, 1e-9)

	freq, ok = c.Region.Frequency(Winter, "Snowy Owl")
	assert.True(t, ok)
	assert.Zero(t, freq)
}

func TestOrderedHotspots_FirstSeenOrder(t *testing.T) {
	c := NewCensus(testCurrentYear)
	addLists(t, c, "L3", "2024-04-01", 1)
	addLists(t, c, "L1", "2024-04-01", 1)
	addLists(t, c, "L3", "2024-04-02", 1)
	addLists(t, c, "L2", "2024-04-01", 1)

	var ids []string
	for _, h := range c.OrderedHotspots() {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"L3", "L1", "L2"}, ids)
}
