// Package dataset holds the numeric observation matrix the engine consumes:
// rows are observations, columns are named variables. Missing values are the
// caller's problem; construction rejects NaN and ±Inf outright.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/darwinlab/causal/internal/mat"
)

// UnknownColumnError reports a reference to a variable the dataset lacks.
type UnknownColumnError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("dataset: unknown column %q", e.Name)
}

// IsUnknownColumn returns true if err is (or wraps) an UnknownColumnError.
func IsUnknownColumn(err error) bool {
	var ue *UnknownColumnError
	return errors.As(err, &ue)
}

// Dataset is an immutable observation matrix with named columns.
type Dataset struct {
	names []string
	index map[string]int
	rows  [][]float64
}

// New builds a dataset from column names and row data. Every row must have
// one value per name; NaN and infinite values are rejected with the offending
// position.
func New(names []string, rows [][]float64) (*Dataset, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("dataset: need at least one column")
	}
	index := make(map[string]int, len(names))
	for j, n := range names {
		if n == "" {
			return nil, fmt.Errorf("dataset: column %d has an empty name", j)
		}
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("dataset: duplicate column name %q", n)
		}
		index[n] = j
	}
	copied := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != len(names) {
			return nil, fmt.Errorf("dataset: row %d has %d values, want %d", i, len(r), len(names))
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("dataset: row %d column %q is %v; impute or drop before loading", i, names[j], v)
			}
		}
		copied[i] = append([]float64(nil), r...)
	}
	ns := append([]string(nil), names...)
	return &Dataset{names: ns, index: index, rows: copied}, nil
}

// FromCSV reads a dataset from CSV with a header row of variable names.
func FromCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading CSV header: %w", err)
	}
	var rows [][]float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading CSV line %d: %w", line, err)
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: CSV line %d column %q: %w", line, header[j], err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return New(header, rows)
}

// N returns the observation count.
func (d *Dataset) N() int { return len(d.rows) }

// Names returns a copy of the column names in order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.names...)
}

// HasColumn reports whether name is a column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, &UnknownColumnError{Name: name}
	}
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Columns returns copies of several named columns.
func (d *Dataset) Columns(names ...string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for k, n := range names {
		col, err := d.Column(n)
		if err != nil {
			return nil, err
		}
		out[k] = col
	}
	return out, nil
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []float64 {
	return append([]float64(nil), d.rows[i]...)
}

// Matrix returns the data as a dense matrix (copied).
func (d *Dataset) Matrix() *mat.Dense {
	m := mat.NewDense(len(d.rows), len(d.names))
	for i, r := range d.rows {
		for j, v := range r {
			m.Set(i, j, v)
		}
	}
	return m
}

// Subset returns a new dataset holding the given row indices (with
// repetition allowed, so bootstrap resamples work).
func (d *Dataset) Subset(indices []int) *Dataset {
	rows := make([][]float64, len(indices))
	for k, i := range indices {
		rows[k] = append([]float64(nil), d.rows[i]...)
	}
	return &Dataset{names: d.names, index: d.index, rows: rows}
}

// WithColumn returns a new dataset with an extra column appended.
func (d *Dataset) WithColumn(name string, col []float64) (*Dataset, error) {
	if len(col) != len(d.rows) {
		return nil, fmt.Errorf("dataset: new column %q has %d values, want %d", name, len(col), len(d.rows))
	}
	names := append(d.Names(), name)
	rows := make([][]float64, len(d.rows))
	for i, r := range d.rows {
		rows[i] = append(append([]float64(nil), r...), col[i])
	}
	return New(names, rows)
}

// WithReplacedColumn returns a new dataset with one column's values swapped,
// used by placebo refuters.
func (d *Dataset) WithReplacedColumn(name string, col []float64) (*Dataset, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, &UnknownColumnError{Name: name}
	}
	if len(col) != len(d.rows) {
		return nil, fmt.Errorf("dataset: replacement for %q has %d values, want %d", name, len(col), len(d.rows))
	}
	rows := make([][]float64, len(d.rows))
	for i, r := range d.rows {
		rows[i] = append([]float64(nil), r...)
		rows[i][j] = col[i]
	}
	return New(d.names, rows)
}
