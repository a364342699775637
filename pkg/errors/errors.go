// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 木構造のマージやノードの付け替えで発生する構造的な不整合を、
// スタックトレース付きの型付きエラーとして呼び出し側に返します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("vfdt-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UnroutableRecordsWarning is raised when records could not be routed below a
// branch node and were absorbed at the branch level instead.
type UnroutableRecordsWarning struct {
	Count  int
	Weight float64
	Depth  int
}

func (w *UnroutableRecordsWarning) Error() string {
	return fmt.Sprintf("%d records (weight %.4g) could not be routed below a branch at depth %d and were absorbed there",
		w.Count, w.Weight, w.Depth)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnroutableRecordsWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("count", w.Count).
		Float64("weight", w.Weight).
		Int("depth", w.Depth).
		Str("type", "UnroutableRecordsWarning")
}

// NewUnroutableRecordsWarning は新しいUnroutableRecordsWarningを作成します。
func NewUnroutableRecordsWarning(count int, weight float64, depth int) *UnroutableRecordsWarning {
	return &UnroutableRecordsWarning{Count: count, Weight: weight, Depth: depth}
}

// ModelDriftWarning はモデルドリフトが検出された場合の警告です。
type ModelDriftWarning struct {
	DriftScore float64 // ドリフトスコア（検出器により異なる）
	Threshold  float64 // 閾値
	Detector   string  // 使用したドリフト検出器（例: "DDM"）
	Action     string  // 推奨アクション（"reset", "alert", "retrain"）
	Timestamp  int64   // ドリフト検出時のタイムスタンプ（Unix時間）
}

func (w *ModelDriftWarning) Error() string {
	return fmt.Sprintf("model drift detected by %s: score=%.4f (threshold=%.4f). Recommended action: %s",
		w.Detector, w.DriftScore, w.Threshold, w.Action)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ModelDriftWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("detector", w.Detector).
		Float64("score", w.DriftScore).
		Float64("threshold", w.Threshold).
		Str("action", w.Action).
		Int64("timestamp", w.Timestamp).
		Str("type", "ModelDriftWarning")
}

// NewModelDriftWarning は新しいModelDriftWarningを作成します。
// Timestamp は検出時に呼び出し側が設定します。
func NewModelDriftWarning(detector string, score, threshold float64, action string) *ModelDriftWarning {
	return &ModelDriftWarning{
		Detector:   detector,
		DriftScore: score,
		Threshold:  threshold,
		Action:     action,
	}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("vfdt: %s: this model is not fitted yet. Call PartialFit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("vfdt: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vfdt: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("vfdt: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vfdt: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("vfdt: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// StructuralMismatchError は形の異なる2つの木（ノード）をマージしようとした場合のエラーです。
// レプリカ間でトポロジーが分岐したことを示すため、黙って切り詰めずに呼び出し側へ返します。
type StructuralMismatchError struct {
	Op     string
	Reason string
	Left   string // マージ先ノードの種類
	Right  string // マージ元ノードの種類
	Depth  int
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("vfdt: %s: structural mismatch at depth %d: %s (%s <- %s)",
		e.Op, e.Depth, e.Reason, e.Left, e.Right)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StructuralMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("left", e.Left).
		Str("right", e.Right).
		Int("depth", e.Depth).
		Str("type", "StructuralMismatchError")
}

// NewStructuralMismatchError は新しいStructuralMismatchErrorを作成し、スタックトレースを付与します。
func NewStructuralMismatchError(op, reason, left, right string, depth int) error {
	err := &StructuralMismatchError{Op: op, Reason: reason, Left: left, Right: right, Depth: depth}
	return errors.WithStack(err)
}

// MisroutedGraftError is returned when a subtree is grafted at an index past
// the end of a branch node's children.
type MisroutedGraftError struct {
	Index int
	Len   int
}

func (e *MisroutedGraftError) Error() string {
	return fmt.Sprintf("vfdt: SetChild: index %d is beyond the child frontier (len=%d)", e.Index, e.Len)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MisroutedGraftError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("index", e.Index).
		Int("len", e.Len).
		Str("type", "MisroutedGraftError")
}

// NewMisroutedGraftError は新しいMisroutedGraftErrorを作成し、スタックトレースを付与します。
func NewMisroutedGraftError(index, length int) error {
	err := &MisroutedGraftError{Index: index, Len: length}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "class_votes", "merit"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("vfdt: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrUnknownClass はクラス数の範囲外のラベルを受け取った場合のエラーです。
	ErrUnknownClass = New("label outside the configured class range")
)
