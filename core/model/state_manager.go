// Package model provides state management for machine learning models.
package model

import (
	"sync"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
type StateManager struct {
	mu sync.RWMutex

	fitted    bool
	nFeatures int
	nClasses  int
	nSamples  float64
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has absorbed at least one batch.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nClasses = 0
	s.nSamples = 0
}

// SetDimensions fixes the number of features and classes. Both are global to
// a model and never change after the first batch.
func (s *StateManager) SetDimensions(nFeatures, nClasses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nClasses = nClasses
}

// GetDimensions returns the number of features and classes.
func (s *StateManager) GetDimensions() (nFeatures, nClasses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nClasses
}

// AddSamples accumulates the weight of absorbed records.
func (s *StateManager) AddSamples(weight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nSamples += weight
}

// SamplesSeen returns the total absorbed weight.
func (s *StateManager) SamplesSeen() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// RequireFitted returns a NotFittedError if the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
