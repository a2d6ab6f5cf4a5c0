package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Policy implements a PolicyEstimator with a Regressor mapping states
// to actions
type Policy struct {
	r        Regressor
	features int
	actions  int
}

// NewPolicy returns a new Policy estimator for states of features
// features and actions of actions dimensions
func NewPolicy(r Regressor, features, actions int) (*Policy, error) {
	if err := checkRegressor("newPolicy", r, features, actions); err != nil {
		return nil, err
	}
	return &Policy{r: r, features: features, actions: actions}, nil
}

// Propose returns the action the policy proposes in state
func (p *Policy) Propose(state mat.Vector) (*mat.VecDense, error) {
	if state.Len() != p.features {
		return nil, &EstimatorError{
			Op: "propose",
			Err: fmt.Errorf("%w: state (%v) want (%v)", ErrShapeMismatch,
				state.Len(), p.features),
		}
	}

	x := make([]float64, state.Len())
	for i := range x {
		x[i] = state.AtVec(i)
	}
	pred, err := p.r.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("propose: %w", err)
	}
	return mat.NewVecDense(p.actions, pred), nil
}

// Train fits the estimator to predict rows of actions from rows of
// states
func (p *Policy) Train(states, actions *mat.Dense, epochs,
	batchSize int) error {
	if err := checkRows("train", states, actions, p.features,
		p.actions); err != nil {
		return err
	}
	if err := p.r.Fit(states, actions, epochs, batchSize); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

// Save writes the estimator's weights to path
func (p *Policy) Save(path string) error {
	return save(path, p.r)
}

// Load replaces the estimator's weights with those stored at path. The
// weights are unchanged if the checkpoint cannot be used.
func (p *Policy) Load(path string) error {
	return load(path, p.r, p.features, p.actions)
}

// Regressor returns the regression backend of the estimator
func (p *Policy) Regressor() Regressor {
	return p.r
}
