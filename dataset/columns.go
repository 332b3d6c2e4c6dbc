package dataset

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/hclust/blobstore"
	"github.com/hupe1980/hclust/distance"
)

var (
	// ErrFormat is returned for malformed input files.
	ErrFormat = errors.New("dataset: malformed input")
	// ErrUnknownColumn is returned when a selected column is not in the header.
	ErrUnknownColumn = errors.New("dataset: unknown column")
)

type columnOptions struct {
	indexColumn bool
	columns     []string
	periods     map[string]float64
}

// ColumnOption configures ReadColumns.
type ColumnOption func(*columnOptions)

// WithIndexColumn drops the first column, typically a frame number.
func WithIndexColumn() ColumnOption {
	return func(o *columnOptions) { o.indexColumn = true }
}

// WithColumns keeps only the named columns, in the given order.
func WithColumns(names ...string) ColumnOption {
	return func(o *columnOptions) { o.columns = names }
}

// WithPeriod marks the named column as periodic, e.g. 360 for dihedrals.
func WithPeriod(name string, period float64) ColumnOption {
	return func(o *columnOptions) {
		if o.periods == nil {
			o.periods = make(map[string]float64)
		}
		o.periods[name] = period
	}
}

// ReadColumns reads whitespace separated numeric columns, one item per line.
// Lines starting with '#' are comments; the first comment line before any
// data names the columns. Unnamed columns are called col1, col2 and so on.
func ReadColumns(r io.Reader, opts ...ColumnOption) ([]distance.Series, error) {
	var o columnOptions
	for _, opt := range opts {
		opt(&o)
	}

	var header []string
	var cols [][]float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if header == nil && cols == nil {
				header = strings.Fields(strings.TrimPrefix(text, "#"))
			}
			continue
		}

		fields := strings.Fields(text)
		if cols == nil {
			cols = make([][]float64, len(fields))
		}
		if len(fields) != len(cols) {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrFormat, line, len(fields), len(cols))
		}
		for c, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrFormat, line, c+1, err)
			}
			cols[c] = append(cols[c], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	for c := range names {
		if len(header) == len(cols) {
			names[c] = header[c]
		} else {
			names[c] = "col" + strconv.Itoa(c+1)
		}
	}

	series := make([]distance.Series, 0, len(cols))
	for c := range cols {
		if o.indexColumn && c == 0 {
			continue
		}
		series = append(series, distance.Series{Name: names[c], Values: cols[c], Period: o.periods[names[c]]})
	}

	if len(o.columns) == 0 {
		return series, nil
	}
	out := make([]distance.Series, 0, len(o.columns))
	for _, name := range o.columns {
		i := slices.IndexFunc(series, func(s distance.Series) bool { return s.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		out = append(out, series[i])
	}
	return out, nil
}

// LoadColumns reads a column file from a blob store.
func LoadColumns(ctx context.Context, store blobstore.BlobStore, name string, opts ...ColumnOption) ([]distance.Series, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return ReadColumns(bytes.NewReader(data), opts...)
}
