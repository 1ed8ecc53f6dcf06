// Package fileadapter reads EBD exports from disk and writes report JSON files.
package fileadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrSourceMissing is returned when an input export does not exist.
var ErrSourceMissing = errors.New("input file not found")

// Source opens the sampling and observation exports from the local filesystem.
type Source struct {
	samplingPath    string
	observationPath string
}

// NewSource creates a Source for the two export paths.
func NewSource(samplingPath, observationPath string) *Source {
	return &Source{samplingPath: samplingPath, observationPath: observationPath}
}

// OpenSampling opens the sampling export.
func (s *Source) OpenSampling(_ context.Context) (io.ReadCloser, error) {
	return open(s.samplingPath)
}

// OpenObservations opens the observation export.
func (s *Source) OpenObservations(_ context.Context) (io.ReadCloser, error) {
	return open(s.observationPath)
}

func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	return f, nil
}
