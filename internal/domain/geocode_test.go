package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	results map[string]GeocodingResult
	err     error
	calls   []string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, state string) (GeocodingResult, error) {
	m.calls = append(m.calls, name+"|"+state)
	if m.err != nil {
		return GeocodingResult{}, m.err
	}
	return m.results[name], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func censusWithoutCoords(t *testing.T, names ...string) *Census {
	t.Helper()
	c := NewCensus(testCurrentYear)
	for i, name := range names {
		rec := validSampling("S" + name)
		rec.LocalityID = name
		rec.Locality = name
		rec.Latitude = ""
		rec.Longitude = ""
		if i == 0 {
			rec.StateCode = "US-TN"
		}
		require.Equal(t, Accepted, c.AddChecklist(rec))
	}
	return c
}

// --- tests ---

func TestBackfillCoordinates_NilGeocoder(t *testing.T) {
	c := censusWithoutCoords(t, "Seven Islands")

	res := BackfillCoordinates(context.Background(), c, nil, discardLogger())

	assert.Equal(t, BackfillResult{}, res)
	assert.Nil(t, c.Hotspots["Seven Islands"].Coords)
}

func TestBackfillCoordinates_ResolvesMissing(t *testing.T) {
	c := censusWithoutCoords(t, "Seven Islands")
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Seven Islands": {Lat: 35.9535, Lon: -83.6887, PlaceName: "Seven Islands State Birding Park", Confidence: 0.9},
	}}

	res := BackfillCoordinates(context.Background(), c, geo, discardLogger())

	assert.Equal(t, BackfillResult{Attempted: 1, Resolved: 1}, res)
	assert.Equal(t, []string{"Seven Islands|US-TN"}, geo.calls)
	require.NotNil(t, c.Hotspots["Seven Islands"].Coords)
	assert.Equal(t, Geo{Lat: 35.9535, Lon: -83.6887}, *c.Hotspots["Seven Islands"].Coords)
}

func TestBackfillCoordinates_SkipsHotspotsWithCoords(t *testing.T) {
	c := NewCensus(testCurrentYear)
	require.Equal(t, Accepted, c.AddChecklist(validSampling("S1")))
	geo := &mockGeocoder{}

	res := BackfillCoordinates(context.Background(), c, geo, discardLogger())

	assert.Zero(t, res.Attempted)
	assert.Empty(t, geo.calls)
	assert.InDelta(t, 35.9557, c.Hotspots["L123"].Coords.Lat, 1e-9)
}

func TestBackfillCoordinates_ErrorGracefulDegradation(t *testing.T) {
	c := censusWithoutCoords(t, "Seven Islands", "Forks of the River")
	geo := &mockGeocoder{err: errors.New("API timeout")}

	res := BackfillCoordinates(context.Background(), c, geo, discardLogger())

	assert.Equal(t, BackfillResult{Attempted: 2, Failed: 2}, res)
	assert.Nil(t, c.Hotspots["Seven Islands"].Coords)
	assert.Nil(t, c.Hotspots["Forks of the River"].Coords)
}

func TestBackfillCoordinates_EmptyResultLeavesUnresolved(t *testing.T) {
	c := censusWithoutCoords(t, "Nowhere Marsh")
	geo := &mockGeocoder{results: map[string]GeocodingResult{}}

	res := BackfillCoordinates(context.Background(), c, geo, discardLogger())

	assert.Equal(t, BackfillResult{Attempted: 1}, res)
	assert.Nil(t, c.Hotspots["Nowhere Marsh"].Coords)
}

func TestBackfillCoordinates_StopsOnCancelledContext(t *testing.T) {
	c := censusWithoutCoords(t, "Seven Islands", "Forks of the River")
	geo := &mockGeocoder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := BackfillCoordinates(ctx, c, geo, discardLogger())

	assert.Zero(t, res.Attempted)
	assert.Empty(t, geo.calls)
}
