// Package estimator implements the value and policy estimators of an
// actor-critic agent on top of swappable regression backends.
//
// A value estimator predicts the discounted return of taking an action
// in a state. A policy estimator proposes an action for a state. Both
// are fitted with squared error on rows of replay memory and are saved
// to and loaded from independent checkpoint files.
package estimator

import (
	"encoding/gob"

	"gonum.org/v1/gonum/mat"
)

// Regressor is a multi-output regression model
type Regressor interface {
	// Predict returns the Outputs() predictions for a single input
	// vector of Inputs() features
	Predict(x []float64) ([]float64, error)

	// Fit fits the model to rows of x and targets in rows of y with
	// squared error, performing epochs passes over the data in
	// mini-batches of size batchSize
	Fit(x, y *mat.Dense, epochs, batchSize int) error

	Inputs() int
	Outputs() int

	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer saves and loads estimator weights
type Checkpointer interface {
	// Save writes the estimator's weights to path, overwriting any
	// existing file
	Save(path string) error

	// Load replaces the estimator's weights with those stored at path
	Load(path string) error
}

// ValueEstimator predicts the return of taking an action in a state
type ValueEstimator interface {
	Checkpointer
	Estimate(state, action mat.Vector) (float64, error)
	Train(stateActions, returns *mat.Dense, epochs, batchSize int) error
}

// PolicyEstimator proposes actions for states
type PolicyEstimator interface {
	Checkpointer
	Propose(state mat.Vector) (*mat.VecDense, error)
	Train(states, actions *mat.Dense, epochs, batchSize int) error
}
