package observer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/sklearn/tree/split"
)

// gaussianEstimator は重み付きのオンライン平均・分散推定器（Welford法）
type gaussianEstimator struct {
	weight float64
	mean   float64
	m2     float64
}

func (g *gaussianEstimator) add(value, weight float64) {
	total := g.weight + weight
	delta := value - g.mean
	g.mean += delta * weight / total
	g.m2 += weight * delta * (value - g.mean)
	g.weight = total
}

// merge は Chan らの並列アルゴリズムで2つの推定器を結合する
func (g *gaussianEstimator) merge(other gaussianEstimator) {
	if other.weight == 0 {
		return
	}
	if g.weight == 0 {
		*g = other
		return
	}
	total := g.weight + other.weight
	delta := other.mean - g.mean
	g.mean += delta * other.weight / total
	g.m2 += other.m2 + delta*delta*g.weight*other.weight/total
	g.weight = total
}

func (g *gaussianEstimator) stdDev() float64 {
	if g.weight <= 1 {
		return 0
	}
	return math.Sqrt(g.m2 / (g.weight - 1))
}

func (g *gaussianEstimator) density(value float64) float64 {
	if g.weight == 0 {
		return 0
	}
	sd := g.stdDev()
	if sd > 0 {
		return distuv.Normal{Mu: g.mean, Sigma: sd}.Prob(value)
	}
	if value == g.mean {
		return 1
	}
	return 0
}

// weightBelow returns the estimated weight of values <= threshold.
func (g *gaussianEstimator) weightBelow(threshold float64) float64 {
	sd := g.stdDev()
	if sd > 0 {
		return g.weight * distuv.Normal{Mu: g.mean, Sigma: sd}.CDF(threshold)
	}
	if g.mean <= threshold {
		return g.weight
	}
	return 0
}

// GaussianObserver models a numeric feature with one Gaussian per class.
type GaussianObserver struct {
	estimators []gaussianEstimator
	minValue   []float64
	maxValue   []float64
	missing    []float64
	numBins    int
}

// NewGaussianObserver creates an observer proposing numBins thresholds.
func NewGaussianObserver(numClasses, numBins int) *GaussianObserver {
	o := &GaussianObserver{
		estimators: make([]gaussianEstimator, numClasses),
		minValue:   make([]float64, numClasses),
		maxValue:   make([]float64, numClasses),
		missing:    make([]float64, numClasses),
		numBins:    numBins,
	}
	for c := range o.minValue {
		o.minValue[c] = math.Inf(1)
		o.maxValue[c] = math.Inf(-1)
	}
	return o
}

// ObserveClass implements Observer.
func (o *GaussianObserver) ObserveClass(classIndex int, value, weight float64) {
	if classIndex < 0 || classIndex >= len(o.estimators) || weight <= 0 {
		return
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		o.missing[classIndex] += weight
		return
	}
	o.estimators[classIndex].add(value, weight)
	o.minValue[classIndex] = math.Min(o.minValue[classIndex], value)
	o.maxValue[classIndex] = math.Max(o.maxValue[classIndex], value)
}

// TotalWeight implements Observer.
func (o *GaussianObserver) TotalWeight() float64 {
	total := 0.0
	for _, e := range o.estimators {
		total += e.weight
	}
	return total
}

// Mean returns the estimated mean of the feature for a class.
func (o *GaussianObserver) Mean(classIndex int) float64 {
	return o.estimators[classIndex].mean
}

// StdDev returns the estimated standard deviation for a class.
func (o *GaussianObserver) StdDev(classIndex int) float64 {
	return o.estimators[classIndex].stdDev()
}

// ProbabilityOfValueGivenClass implements Observer with the class density.
func (o *GaussianObserver) ProbabilityOfValueGivenClass(value float64, classIndex int) float64 {
	if classIndex < 0 || classIndex >= len(o.estimators) {
		return 0
	}
	return o.estimators[classIndex].density(value)
}

// BestSplit evaluates numBins thresholds spread evenly between the smallest
// and largest value observed for any class.
func (o *GaussianObserver) BestSplit(criterion split.Criterion, preSplit []float64, featureIndex int, _ bool) *split.Suggestion {
	if len(o.estimators) == 0 {
		return nil
	}
	lo, hi := floats.Min(o.minValue), floats.Max(o.maxValue)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return nil
	}

	var best *split.Suggestion
	for i := 1; i <= o.numBins; i++ {
		threshold := lo + (hi-lo)*float64(i)/float64(o.numBins+1)
		post := o.distributionsAt(threshold)
		merit := criterion.Merit(preSplit, post)
		if best == nil || merit > best.Merit {
			best = &split.Suggestion{
				Test:                        &split.NumericBinaryTest{FeatureIndex: featureIndex, Threshold: threshold},
				ResultingClassDistributions: post,
				Merit:                       merit,
			}
		}
	}
	return best
}

func (o *GaussianObserver) distributionsAt(threshold float64) [][]float64 {
	lhs := make([]float64, len(o.estimators))
	rhs := make([]float64, len(o.estimators))
	for c := range o.estimators {
		e := &o.estimators[c]
		if e.weight == 0 {
			continue
		}
		switch {
		case threshold < o.minValue[c]:
			rhs[c] = e.weight
		case threshold >= o.maxValue[c]:
			lhs[c] = e.weight
		default:
			lhs[c] = e.weightBelow(threshold)
			rhs[c] = e.weight - lhs[c]
		}
	}
	return [][]float64{lhs, rhs}
}

// Merge implements Observer. Both modes add the other's estimators.
func (o *GaussianObserver) Merge(other Observer, _ bool) error {
	og, ok := other.(*GaussianObserver)
	if !ok {
		return errors.NewStructuralMismatchError("observer.Merge", "observer kinds differ",
			"GaussianObserver", kindOf(other), -1)
	}
	if len(og.estimators) != len(o.estimators) {
		return errors.NewDimensionError("observer.Merge", len(o.estimators), len(og.estimators), 1)
	}
	for c := range o.estimators {
		o.estimators[c].merge(og.estimators[c])
		o.minValue[c] = math.Min(o.minValue[c], og.minValue[c])
		o.maxValue[c] = math.Max(o.maxValue[c], og.maxValue[c])
	}
	floats.Add(o.missing, og.missing)
	return nil
}

// Clone implements Observer.
func (o *GaussianObserver) Clone() Observer {
	return &GaussianObserver{
		estimators: append([]gaussianEstimator(nil), o.estimators...),
		minValue:   append([]float64(nil), o.minValue...),
		maxValue:   append([]float64(nil), o.maxValue...),
		missing:    append([]float64(nil), o.missing...),
		numBins:    o.numBins,
	}
}

func kindOf(o Observer) string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", o)
}
