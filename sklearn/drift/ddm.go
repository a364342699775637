// Package drift provides concept drift detection for prequential
// (test-then-train) evaluation of streaming classifiers.
package drift

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
)

// Detector は予測結果の正誤からドリフトを検出する
type Detector interface {
	// UpdateWeighted は重み付きの予測結果で検出器を更新する
	UpdateWeighted(correct bool, weight float64) *DriftDetectionResult

	// Reset は検出器を初期状態に戻す
	Reset()
}

// DDM (Drift Detection Method) is a concept drift detection method
// Proposed in J. Gama, P. Medas, G. Castillo, P. Rodrigues (2004)
// "Learning with Drift Detection"
//
// Outcomes carry a weight so that weighted records count proportionally.
type DDM struct {
	// Hyperparameters
	minNumInstances float64 // Minimum observed weight before detecting
	warningLevel    float64 // Warning level
	outControlLevel float64 // Out of control level

	// Statistics
	numInstances float64 // Observed weight
	numErrors    float64 // Weight of wrong predictions
	errorRate    float64 // Error rate
	stdDev       float64 // Standard deviation

	// Reference values (minimum values from learning start)
	minErrorRate float64 // Minimum error rate
	minStdDev    float64 // Minimum standard deviation

	// State
	warningDetected bool // Warning detection flag
	driftDetected   bool // Drift detection flag
	numDrifts       int

	mu sync.RWMutex
}

// DriftDetectionResult represents the result of drift detection
type DriftDetectionResult struct {
	WarningDetected bool    // Whether warning was detected
	DriftDetected   bool    // Whether drift was detected
	ErrorRate       float64 // Current error rate
	ConfidenceLevel float64 // Confidence level
}

// NewDDM creates a new DDM instance
func NewDDM(options ...DDMOption) *DDM {
	ddm := &DDM{
		minNumInstances: 30,
		warningLevel:    2.0, // μ + 2σ
		outControlLevel: 3.0, // μ + 3σ
		minErrorRate:    math.Inf(1),
		minStdDev:       math.Inf(1),
	}

	for _, opt := range options {
		opt(ddm)
	}

	return ddm
}

// DDMOption is a DDM configuration option
type DDMOption func(*DDM)

// WithDDMMinNumInstances sets the minimum observed weight
func WithDDMMinNumInstances(n float64) DDMOption {
	return func(ddm *DDM) {
		ddm.minNumInstances = n
	}
}

// WithDDMWarningLevel sets the warning level
func WithDDMWarningLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.warningLevel = level
	}
}

// WithDDMOutControlLevel sets the out-of-control level
func WithDDMOutControlLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.outControlLevel = level
	}
}

// Update is UpdateWeighted with weight 1.
func (ddm *DDM) Update(correct bool) *DriftDetectionResult {
	return ddm.UpdateWeighted(correct, 1)
}

// UpdateWeighted updates the detector with one weighted prediction outcome.
// A detected drift raises a ModelDriftWarning and restarts the statistics.
func (ddm *DDM) UpdateWeighted(correct bool, weight float64) *DriftDetectionResult {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()

	if weight <= 0 {
		return &DriftDetectionResult{ErrorRate: ddm.errorRate}
	}

	ddm.numInstances += weight
	if !correct {
		ddm.numErrors += weight
	}

	// Do not detect if minimum sample size is not reached
	if ddm.numInstances < ddm.minNumInstances {
		return &DriftDetectionResult{}
	}

	ddm.errorRate = ddm.numErrors / ddm.numInstances
	ddm.stdDev = math.Sqrt(ddm.errorRate * (1.0 - ddm.errorRate) / ddm.numInstances)

	result := &DriftDetectionResult{
		ErrorRate: ddm.errorRate,
	}

	// 基準値の更新（最小エラー率とその時の標準偏差）
	currentLevel := ddm.errorRate + ddm.stdDev
	if currentLevel < (ddm.minErrorRate + ddm.minStdDev) {
		ddm.minErrorRate = ddm.errorRate
		ddm.minStdDev = ddm.stdDev
	}

	// 信頼度の計算
	if ref := ddm.minErrorRate + ddm.minStdDev; ref > 0 {
		result.ConfidenceLevel = currentLevel / ref
	} else {
		result.ConfidenceLevel = 1.0
	}

	// 警告レベルの検出
	warningThreshold := ddm.minErrorRate + ddm.warningLevel*ddm.minStdDev
	ddm.warningDetected = currentLevel > warningThreshold
	result.WarningDetected = ddm.warningDetected

	// ドリフトレベルの検出
	driftThreshold := ddm.minErrorRate + ddm.outControlLevel*ddm.minStdDev
	if currentLevel > driftThreshold {
		result.DriftDetected = true
		ddm.numDrifts++
		errors.Warn(errors.NewModelDriftWarning("DDM", currentLevel, driftThreshold, "reset"))
		// ドリフト検出時はリセット
		ddm.reset()
		ddm.driftDetected = true
	} else {
		ddm.driftDetected = false
	}

	return result
}

// Reset はドリフト検出器をリセット
func (ddm *DDM) Reset() {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()
	ddm.reset()
	ddm.numDrifts = 0
}

func (ddm *DDM) reset() {
	ddm.numInstances = 0
	ddm.numErrors = 0
	ddm.errorRate = 0
	ddm.stdDev = 0
	ddm.minErrorRate = math.Inf(1)
	ddm.minStdDev = math.Inf(1)
	ddm.warningDetected = false
	ddm.driftDetected = false
}

// GetStatistics は現在の統計情報を返す
func (ddm *DDM) GetStatistics() DDMStatistics {
	ddm.mu.RLock()
	defer ddm.mu.RUnlock()

	return DDMStatistics{
		NumInstances:    ddm.numInstances,
		NumErrors:       ddm.numErrors,
		ErrorRate:       ddm.errorRate,
		StdDev:          ddm.stdDev,
		MinErrorRate:    ddm.minErrorRate,
		MinStdDev:       ddm.minStdDev,
		WarningDetected: ddm.warningDetected,
		DriftDetected:   ddm.driftDetected,
		NumDrifts:       ddm.numDrifts,
	}
}

// DDMStatistics はDDMの統計情報
type DDMStatistics struct {
	NumInstances    float64 // 観測した重み
	NumErrors       float64 // 誤りの重み
	ErrorRate       float64 // エラー率
	StdDev          float64 // 標準偏差
	MinErrorRate    float64 // 最小エラー率
	MinStdDev       float64 // 最小標準偏差
	WarningDetected bool    // 警告検出フラグ
	DriftDetected   bool    // ドリフト検出フラグ
	NumDrifts       int     // 検出したドリフトの回数
}
