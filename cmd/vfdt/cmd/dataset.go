package cmd

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/vfdt/core/model"
	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/observer"
)

// csvOptions はCSVの解釈方法
type csvOptions struct {
	header bool

	// labelColumn は列番号。負の値は末尾から数える
	labelColumn int

	// nominal はラベル列を除いた特徴量インデックス
	nominal []int
}

// dataset はCSVから読み込んだレコード列
// 名義特徴量とクラスラベルは出現順に 0, 1, 2, ... へ符号化される
type dataset struct {
	records       []model.Record
	classNames    []string
	featureNames  []string
	nominal       map[int]bool
	nominalValues map[int][]string
}

func readDataset(r io.Reader, opts csvOptions) (*dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV")
	}

	var header []string
	if opts.header && len(rows) > 0 {
		header, rows = rows[0], rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.ErrEmptyData
	}

	width := len(rows[0])
	if width < 2 {
		return nil, errors.NewValueError("readDataset", "at least one feature column and one label column are required")
	}
	label := opts.labelColumn
	if label < 0 {
		label += width
	}
	if label < 0 || label >= width {
		return nil, errors.NewValidationError("label-column", "outside the CSV columns", opts.labelColumn)
	}

	numFeatures := width - 1
	nominal := make(map[int]bool, len(opts.nominal))
	for _, f := range opts.nominal {
		if f < 0 || f >= numFeatures {
			return nil, errors.NewValidationError("nominal", "feature index out of range", f)
		}
		nominal[f] = true
	}

	ds := &dataset{
		records:       make([]model.Record, 0, len(rows)),
		featureNames:  make([]string, 0, numFeatures),
		nominal:       nominal,
		nominalValues: make(map[int][]string, len(nominal)),
	}
	for j := 0; j < width; j++ {
		if j == label {
			continue
		}
		name := "f" + strconv.Itoa(len(ds.featureNames))
		if header != nil && strings.TrimSpace(header[j]) != "" {
			name = strings.TrimSpace(header[j])
		}
		ds.featureNames = append(ds.featureNames, name)
	}

	classes := make(map[string]int)
	codes := make(map[int]map[string]int, len(nominal))
	line := 1
	if opts.header {
		line++
	}
	for i, row := range rows {
		features := make([]float64, 0, numFeatures)
		for j, cell := range row {
			if j == label {
				continue
			}
			f := len(features)
			cell = strings.TrimSpace(cell)
			switch {
			case cell == "" || cell == "?":
				features = append(features, math.NaN())
			case nominal[f]:
				if codes[f] == nil {
					codes[f] = make(map[string]int)
				}
				code, ok := codes[f][cell]
				if !ok {
					code = len(codes[f])
					codes[f][cell] = code
					ds.nominalValues[f] = append(ds.nominalValues[f], cell)
				}
				features = append(features, float64(code))
			default:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d, column %d", line+i, j+1)
				}
				features = append(features, v)
			}
		}

		name := strings.TrimSpace(row[label])
		if name == "" || name == "?" {
			return nil, errors.Newf("line %d: missing class label", line+i)
		}
		class, ok := classes[name]
		if !ok {
			class = len(ds.classNames)
			classes[name] = class
			ds.classNames = append(ds.classNames, name)
		}
		ds.records = append(ds.records, model.NewExample(features, class, 1))
	}
	return ds, nil
}

// NumFeatures returns the number of feature columns.
func (d *dataset) NumFeatures() int { return len(d.featureNames) }

// Classes returns 0..k-1 for the k class labels seen in the file.
func (d *dataset) Classes() []int {
	classes := make([]int, len(d.classNames))
	for i := range classes {
		classes[i] = i
	}
	return classes
}

func (d *dataset) featureSpecs(numBins int) []observer.FeatureSpec {
	specs := make([]observer.FeatureSpec, d.NumFeatures())
	for i := range specs {
		if d.nominal[i] {
			specs[i] = observer.FeatureSpec{Type: observer.Nominal, NumValues: len(d.nominalValues[i])}
			continue
		}
		specs[i] = observer.FeatureSpec{Type: observer.Numeric, NumBins: numBins}
	}
	return specs
}
