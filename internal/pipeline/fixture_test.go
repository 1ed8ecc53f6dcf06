package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/couchcryptid/hotspot-etl/internal/ebd"
	"github.com/stretchr/testify/require"
)

// fixture builds a matching pair of sampling and observation exports in memory.
type fixture struct {
	t            *testing.T
	sampling     bytes.Buffer
	observations bytes.Buffer
	sw           *ebd.SamplingWriter
	ow           *ebd.ObservationWriter
	next         int
	noCoords     map[string]bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, noCoords: make(map[string]bool)}
	var err error
	f.sw, err = ebd.NewSamplingWriter(&f.sampling)
	require.NoError(t, err)
	f.ow, err = ebd.NewObservationWriter(&f.observations)
	require.NoError(t, err)
	return f
}

// checklist writes one sampling row and returns its identifier.
func (f *fixture) checklist(rec domain.SamplingRecord) string {
	f.t.Helper()
	if rec.ChecklistID == "" {
		f.next++
		rec.ChecklistID = fmt.Sprintf("S%07d", f.next)
	}
	require.NoError(f.t, f.sw.WriteRecord(rec))
	return rec.ChecklistID
}

func (f *fixture) observe(checklistID string, species ...string) {
	f.t.Helper()
	for _, sp := range species {
		require.NoError(f.t, f.ow.WriteRecord(domain.ObservationRecord{ChecklistID: checklistID, CommonName: sp}))
	}
}

// lists writes n complete hotspot checklists at locID on date, each reporting
// every species given.
func (f *fixture) lists(locID, date string, n int, species ...string) {
	f.t.Helper()
	lat, lon := "35.96", "-83.92"
	if f.noCoords[locID] {
		lat, lon = "", ""
	}
	for range n {
		id := f.checklist(domain.SamplingRecord{
			LocalityID:         locID,
			Locality:           "Hotspot " + locID,
			LocalityType:       "H",
			AllSpeciesReported: "1",
			ObservationDate:    date,
			Latitude:           lat,
			Longitude:          lon,
			StateCode:          "US-TN",
		})
		f.observe(id, species...)
	}
}

func (f *fixture) source() *memSource {
	f.t.Helper()
	require.NoError(f.t, f.sw.Flush())
	require.NoError(f.t, f.ow.Flush())
	return &memSource{sampling: f.sampling.Bytes(), observations: f.observations.Bytes()}
}

// waxwing writes the Cedar Waxwing winter scenario: 45 checklists per winter
// for three years at A with the waxwing on 40 of them, and 3000 lists at B with
// two waxwings.
func (f *fixture) waxwing() {
	for _, year := range []int{2022, 2023, 2024} {
		date := fmt.Sprintf("%d-01-15", year)
		f.lists("A", date, 40, "Cedar Waxwing", "Carolina Chickadee")
		f.lists("A", date, 5, "Carolina Chickadee")
		f.lists("B", fmt.Sprintf("%d-02-10", year), 1000, "Carolina Chickadee")
	}
	f.lists("B", "2024-12-20", 2, "Cedar Waxwing")
}

// --- mocks ---

type memSource struct {
	sampling        []byte
	observations    []byte
	samplingErr     error
	observationsErr error
}

func (m *memSource) OpenSampling(_ context.Context) (io.ReadCloser, error) {
	if m.samplingErr != nil {
		return nil, m.samplingErr
	}
	return io.NopCloser(bytes.NewReader(m.sampling)), nil
}

func (m *memSource) OpenObservations(_ context.Context) (io.ReadCloser, error) {
	if m.observationsErr != nil {
		return nil, m.observationsErr
	}
	return io.NopCloser(bytes.NewReader(m.observations)), nil
}

type mockLoader struct {
	outputs []domain.Output
	err     error
}

func (m *mockLoader) LoadReport(_ context.Context, out domain.Output) error {
	if m.err != nil {
		return m.err
	}
	m.outputs = append(m.outputs, out)
	return nil
}

type mockGeocoder struct {
	calls int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, _ string) (domain.GeocodingResult, error) {
	m.calls++
	if name == "Hotspot unknown" {
		return domain.GeocodingResult{}, errors.New("no such place")
	}
	return domain.GeocodingResult{Lat: 36.01, Lon: -83.77, PlaceName: name}, nil
}
