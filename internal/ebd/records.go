package ebd

import (
	"io"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
)

// SamplingColumns are required in a sampling export. STATE CODE is optional.
var SamplingColumns = []string{
	ColChecklistID,
	ColLocalityID,
	ColLocality,
	ColLocalityType,
	ColAllSpeciesReported,
	ColObservationDate,
	ColLatitude,
	ColLongitude,
}

// ObservationColumns are required in an observation export.
var ObservationColumns = []string{
	ColChecklistID,
	ColCommonName,
}

// SamplingReader yields one domain.SamplingRecord per checklist row.
type SamplingReader struct {
	*Reader
}

// NewSamplingReader validates the sampling header.
func NewSamplingReader(r io.Reader) (*SamplingReader, error) {
	rd, err := NewReader(r, SamplingColumns...)
	if err != nil {
		return nil, err
	}
	return &SamplingReader{Reader: rd}, nil
}

// Next returns the next checklist row, or io.EOF.
func (s *SamplingReader) Next() (domain.SamplingRecord, error) {
	row, err := s.Read()
	if err != nil {
		return domain.SamplingRecord{}, err
	}
	return domain.SamplingRecord{
		ChecklistID:        row.Get(ColChecklistID),
		LocalityID:         row.Get(ColLocalityID),
		Locality:           row.Get(ColLocality),
		LocalityType:       row.Get(ColLocalityType),
		AllSpeciesReported: row.Get(ColAllSpeciesReported),
		ObservationDate:    row.Get(ColObservationDate),
		Latitude:           row.Get(ColLatitude),
		Longitude:          row.Get(ColLongitude),
		StateCode:          row.Get(ColStateCode),
	}, nil
}

// ObservationReader yields one domain.ObservationRecord per species row.
type ObservationReader struct {
	*Reader
}

// NewObservationReader validates the observation header.
func NewObservationReader(r io.Reader) (*ObservationReader, error) {
	rd, err := NewReader(r, ObservationColumns...)
	if err != nil {
		return nil, err
	}
	return &ObservationReader{Reader: rd}, nil
}

// Next returns the next observation row, or io.EOF.
func (o *ObservationReader) Next() (domain.ObservationRecord, error) {
	row, err := o.Read()
	if err != nil {
		return domain.ObservationRecord{}, err
	}
	return domain.ObservationRecord{
		ChecklistID: row.Get(ColChecklistID),
		CommonName:  row.Get(ColCommonName),
	}, nil
}
