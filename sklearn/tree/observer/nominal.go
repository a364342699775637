package observer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// MaxNominalValues bounds the value rows of an observer created without an
// explicit limit.
const MaxNominalValues = 1 << 16

// NominalObserver counts weight per (value, class) in a dense matrix that
// grows as new values appear. Values at or above the limit count as missing.
type NominalObserver struct {
	counts     *mat.Dense // rows: value, cols: class
	missing    []float64
	numClasses int
	limit      int
}

// NewNominalObserver creates an observer sized for numValues values that
// grows up to MaxNominalValues.
func NewNominalObserver(numClasses, numValues int) *NominalObserver {
	return newNominalObserver(numClasses, numValues, MaxNominalValues)
}

// NewBoundedNominalObserver creates an observer for the values
// [0, numValues). Other values count as missing.
func NewBoundedNominalObserver(numClasses, numValues int) *NominalObserver {
	return newNominalObserver(numClasses, numValues, numValues)
}

func newNominalObserver(numClasses, numValues, limit int) *NominalObserver {
	if limit < 1 || limit > MaxNominalValues {
		limit = MaxNominalValues
	}
	if numValues < 1 {
		numValues = 1
	}
	if numValues > limit {
		numValues = limit
	}
	return &NominalObserver{
		counts:     mat.NewDense(numValues, numClasses, nil),
		missing:    make([]float64, numClasses),
		numClasses: numClasses,
		limit:      limit,
	}
}

// ObserveClass implements Observer.
func (o *NominalObserver) ObserveClass(classIndex int, value, weight float64) {
	if classIndex < 0 || classIndex >= o.numClasses || weight <= 0 {
		return
	}
	if math.IsNaN(value) || value < 0 || value >= float64(o.limit) || value != math.Trunc(value) {
		o.missing[classIndex] += weight
		return
	}
	v := int(value)
	o.grow(v + 1)
	o.counts.Set(v, classIndex, o.counts.At(v, classIndex)+weight)
}

func (o *NominalObserver) grow(rows int) {
	r, c := o.counts.Dims()
	if rows <= r {
		return
	}
	next := mat.NewDense(rows, c, nil)
	next.Slice(0, r, 0, c).(*mat.Dense).Copy(o.counts)
	o.counts = next
}

// Limit returns the first value that is counted as missing.
func (o *NominalObserver) Limit() int { return o.limit }

// NumValues returns the number of value rows tracked.
func (o *NominalObserver) NumValues() int {
	r, _ := o.counts.Dims()
	return r
}

// TotalWeight implements Observer.
func (o *NominalObserver) TotalWeight() float64 {
	return mat.Sum(o.counts)
}

// MissingWeight returns the per-class weight of missing values.
func (o *NominalObserver) MissingWeight() []float64 {
	out := make([]float64, len(o.missing))
	copy(out, o.missing)
	return out
}

// ProbabilityOfValueGivenClass returns a Laplace-smoothed estimate.
func (o *NominalObserver) ProbabilityOfValueGivenClass(value float64, classIndex int) float64 {
	if classIndex < 0 || classIndex >= o.numClasses {
		return 0
	}
	rows := o.NumValues()
	classTotal := mat.Sum(o.counts.ColView(classIndex))
	count := 0.0
	if !math.IsNaN(value) && value >= 0 && value == math.Trunc(value) && int(value) < rows {
		count = o.counts.At(int(value), classIndex)
	}
	return (count + 1) / (classTotal + float64(rows))
}

// BestSplit implements Observer.
func (o *NominalObserver) BestSplit(criterion split.Criterion, preSplit []float64, featureIndex int, binaryOnly bool) *split.Suggestion {
	rows := o.NumValues()
	observed := make([]int, 0, rows)
	for v := 0; v < rows; v++ {
		if floats.Sum(o.counts.RawRowView(v)) > 0 {
			observed = append(observed, v)
		}
	}
	if len(observed) < 2 {
		return nil
	}

	var best *split.Suggestion
	consider := func(s *split.Suggestion) {
		if best == nil || s.Merit > best.Merit {
			best = s
		}
	}

	if !binaryOnly {
		post := make([][]float64, len(observed))
		for i, v := range observed {
			post[i] = o.row(v)
		}
		consider(&split.Suggestion{
			Test:                        &split.NominalMultiwayTest{FeatureIndex: featureIndex, Values: observed},
			ResultingClassDistributions: post,
			Merit:                       criterion.Merit(preSplit, post),
		})
	}

	total := make([]float64, o.numClasses)
	for _, v := range observed {
		floats.Add(total, o.counts.RawRowView(v))
	}
	for _, v := range observed {
		equal := o.row(v)
		rest := make([]float64, o.numClasses)
		floats.SubTo(rest, total, equal)
		post := [][]float64{equal, rest}
		consider(&split.Suggestion{
			Test:                        &split.NominalBinaryTest{FeatureIndex: featureIndex, Value: v},
			ResultingClassDistributions: post,
			Merit:                       criterion.Merit(preSplit, post),
		})
	}
	return best
}

func (o *NominalObserver) row(v int) []float64 {
	out := make([]float64, o.numClasses)
	copy(out, o.counts.RawRowView(v))
	return out
}

// Merge implements Observer. Both modes add the other's counts.
func (o *NominalObserver) Merge(other Observer, _ bool) error {
	on, ok := other.(*NominalObserver)
	if !ok {
		return errors.NewStructuralMismatchError("observer.Merge", "observer kinds differ",
			"NominalObserver", kindOf(other), -1)
	}
	if on.numClasses != o.numClasses {
		return errors.NewDimensionError("observer.Merge", o.numClasses, on.numClasses, 1)
	}
	r, c := on.counts.Dims()
	keep := min(r, o.limit)
	o.grow(keep)
	view := o.counts.Slice(0, keep, 0, c).(*mat.Dense)
	view.Add(view, on.counts.Slice(0, keep, 0, c))
	// 上限を超える値は欠損値として扱う
	for v := keep; v < r; v++ {
		floats.Add(o.missing, on.counts.RawRowView(v))
	}
	floats.Add(o.missing, on.missing)
	return nil
}

// Clone implements Observer.
func (o *NominalObserver) Clone() Observer {
	return &NominalObserver{
		counts:     mat.DenseCopyOf(o.counts),
		missing:    append([]float64(nil), o.missing...),
		numClasses: o.numClasses,
		limit:      o.limit,
	}
}
