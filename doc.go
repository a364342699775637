// Package vfdt provides an incremental Hoeffding tree (Very Fast Decision
// Tree) classifier for Go, designed for streaming and micro-batch learning.
//
// Each micro-batch is split into partitions that are learned in parallel on
// block-local copies of the tree. The copies are then folded into one
// canonical tree with a two-mode merge, and leaves that accumulated enough
// new weight are offered for splitting.
//
// # Installation
//
//	go get github.com/YuminosukeSato/vfdt
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/vfdt/sklearn/tree"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    ht := tree.NewHoeffdingTreeClassifier(
//	        tree.WithGracePeriod(100),
//	        tree.WithPartitions(4),
//	    )
//
//	    // Learn one micro-batch at a time
//	    X := mat.NewDense(4, 1, []float64{0.1, 0.2, 2.1, 2.2})
//	    y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
//	    if err := ht.PartialFit(X, y, []int{0, 1}); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    proba, err := ht.PredictProba(mat.NewDense(1, 1, []float64{2.0}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(proba))
//	}
//
// # Packages
//
//   - sklearn/tree: node hierarchy, two-mode merge and the HoeffdingTreeClassifier driver
//   - sklearn/tree/observer: per-feature class statistics (Gaussian and nominal)
//   - sklearn/tree/split: split criteria, conditional tests and split suggestions
//   - sklearn/naive_bayes: naive-Bayes scoring for NB leaves
//   - sklearn/drift: DDM concept drift detection
//   - metrics: accuracy and prequential accuracy
//   - core/model: records, batches and estimator interfaces
//   - core/parallel: partitioning and parallel prediction helpers
//   - pkg/errors, pkg/log: typed errors, warnings and structured logging
//   - cmd/vfdt: command line tool for training on CSV streams
//
// # Merge modes
//
// Merge(other, false) folds block-local statistics that have not been merged
// before; Merge(other, true) folds already reconciled statistics of a replica
// with the same topology:
//
//	canonical.Merge(blockCopy, false)   // after each parallel learning phase
//	replicaA.MergeModel(replicaB)       // trySplit=true
package vfdt
