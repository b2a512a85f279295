package net

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// LoadCSV loads samples from a CSV file.
// labelCols specifies the indices of columns used as targets, in order;
// all other columns are features. hasHeader skips the first line.
func LoadCSV(filename string, labelCols []int, hasHeader bool) ([]Sample, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}
	if len(records) <= startRow {
		return nil, errors.New("csv file has no data rows")
	}

	numCols := len(records[0])
	isLabelCol := make(map[int]bool, len(labelCols))
	for _, col := range labelCols {
		if col < 0 || col >= numCols {
			return nil, errors.Errorf("label column %d out of range [0,%d)", col, numCols)
		}
		isLabelCol[col] = true
	}

	samples := make([]Sample, 0, len(records)-startRow)
	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, errors.Errorf("inconsistent number of columns at row %d", i)
		}

		values := make([]float64, numCols)
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse value at row %d, col %d", i, j)
			}
			values[j] = v
		}

		s := Sample{
			X: make([]float64, 0, numCols-len(labelCols)),
			Y: make([]float64, 0, len(labelCols)),
		}
		for j, v := range values {
			if !isLabelCol[j] {
				s.X = append(s.X, v)
			}
		}
		// Targets keep the order given by labelCols.
		for _, col := range labelCols {
			s.Y = append(s.Y, values[col])
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// Normalize performs per-feature min-max normalization of sample inputs
// in place. Constant features become 0.
func Normalize(samples []Sample) {
	if len(samples) == 0 {
		return
	}

	column := make([]float64, len(samples))
	for f := range samples[0].X {
		for i, s := range samples {
			column[i] = s.X[f]
		}
		lo, hi := floats.Min(column), floats.Max(column)
		span := hi - lo
		for _, s := range samples {
			if span != 0 {
				s.X[f] = (s.X[f] - lo) / span
			} else {
				s.X[f] = 0
			}
		}
	}
}

// Split divides samples at ratio (0.0 to 1.0) into train and test sets.
// Both results share storage with samples.
func Split(samples []Sample, ratio float64) (train, test []Sample) {
	if ratio <= 0 {
		return nil, samples
	}
	if ratio >= 1 {
		return samples, nil
	}
	idx := int(float64(len(samples)) * ratio)
	return samples[:idx], samples[idx:]
}
