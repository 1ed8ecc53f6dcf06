// Package ebd reads eBird Basic Dataset exports.
//
// EBD files are tab-separated with a header row. Fields are never quoted, and
// a literal double quote inside a locality name is data, so the reader splits
// on tabs only.
package ebd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when a header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Column names used by the sampling and observation exports.
const (
	ColChecklistID        = "SAMPLING EVENT IDENTIFIER"
	ColLocalityID         = "LOCALITY ID"
	ColLocality           = "LOCALITY"
	ColLocalityType       = "LOCALITY TYPE"
	ColAllSpeciesReported = "ALL SPECIES REPORTED"
	ColObservationDate    = "OBSERVATION DATE"
	ColLatitude           = "LATITUDE"
	ColLongitude          = "LONGITUDE"
	ColStateCode          = "STATE CODE"
	ColCommonName         = "COMMON NAME"
)

const utf8BOM = "\ufeff"

// Reader splits a tab-separated export into rows addressed by column name.
type Reader struct {
	br    *bufio.Reader
	index map[string]int
	line  int
}

// NewReader consumes the header row and checks that every required column is
// present. Column names are matched case-insensitively.
func NewReader(r io.Reader, required ...string) (*Reader, error) {
	rd := &Reader{br: bufio.NewReaderSize(r, 1<<16)}

	header, err := rd.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = strings.TrimPrefix(header, utf8BOM)

	rd.index = make(map[string]int)
	for i, name := range strings.Split(header, "\t") {
		key := normalize(name)
		if _, dup := rd.index[key]; !dup {
			rd.index[key] = i
		}
	}

	var missing []string
	for _, col := range required {
		if !rd.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return rd, nil
}

// Has reports whether the header contains col.
func (r *Reader) Has(col string) bool {
	_, ok := r.index[normalize(col)]
	return ok
}

// Line is the 1-based line number of the most recently read row.
func (r *Reader) Line() int {
	return r.line
}

// Read returns the next non-blank row, or io.EOF when the input is exhausted.
func (r *Reader) Read() (Row, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return Row{}, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return Row{fields: strings.Split(line, "\t"), index: r.index}, nil
	}
}

// readLine returns one line without its terminator. A final line with no
// trailing newline is returned before io.EOF.
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	r.line++
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Row is one data line of an export.
type Row struct {
	fields []string
	index  map[string]int
}

// Get returns the trimmed field for col, or "" when the column is unknown or
// the row is short.
func (row Row) Get(col string) string {
	i, ok := row.index[normalize(col)]
	if !ok || i >= len(row.fields) {
		return ""
	}
	return strings.TrimSpace(row.fields[i])
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
