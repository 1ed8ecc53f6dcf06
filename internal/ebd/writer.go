package ebd

import (
	"bufio"
	"io"
	"strings"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
)

// SamplingHeader is the column order written by SamplingWriter.
var SamplingHeader = []string{
	ColStateCode,
	ColLocality,
	ColLocalityID,
	ColLocalityType,
	ColLatitude,
	ColLongitude,
	ColObservationDate,
	ColChecklistID,
	ColAllSpeciesReported,
}

// ObservationHeader is the column order written by ObservationWriter.
var ObservationHeader = []string{
	ColCommonName,
	ColChecklistID,
}

var fieldCleaner = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// Writer emits tab-separated rows in a fixed column order.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter writes the header row.
func NewWriter(w io.Writer, columns []string) (*Writer, error) {
	wr := &Writer{bw: bufio.NewWriter(w)}
	if err := wr.Write(columns...); err != nil {
		return nil, err
	}
	return wr, nil
}

// Write emits one row. Tabs and line breaks inside fields become spaces.
func (w *Writer) Write(fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.bw.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.bw.WriteString(fieldCleaner.Replace(f)); err != nil {
			return err
		}
	}
	return w.bw.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// SamplingWriter writes a sampling export.
type SamplingWriter struct {
	*Writer
}

// NewSamplingWriter writes the sampling header.
func NewSamplingWriter(w io.Writer) (*SamplingWriter, error) {
	wr, err := NewWriter(w, SamplingHeader)
	if err != nil {
		return nil, err
	}
	return &SamplingWriter{Writer: wr}, nil
}

// WriteRecord emits one checklist row.
func (s *SamplingWriter) WriteRecord(rec domain.SamplingRecord) error {
	return s.Write(
		rec.StateCode,
		rec.Locality,
		rec.LocalityID,
		rec.LocalityType,
		rec.Latitude,
		rec.Longitude,
		rec.ObservationDate,
		rec.ChecklistID,
		rec.AllSpeciesReported,
	)
}

// ObservationWriter writes an observation export.
type ObservationWriter struct {
	*Writer
}

// NewObservationWriter writes the observation header.
func NewObservationWriter(w io.Writer) (*ObservationWriter, error) {
	wr, err := NewWriter(w, ObservationHeader)
	if err != nil {
		return nil, err
	}
	return &ObservationWriter{Writer: wr}, nil
}

// WriteRecord emits one species row.
func (o *ObservationWriter) WriteRecord(rec domain.ObservationRecord) error {
	return o.Write(rec.CommonName, rec.ChecklistID)
}
