package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/robotac/utils/matutils"
)

// Value implements a ValueEstimator with a Regressor mapping
// state-action pairs to a single predicted return
type Value struct {
	r        Regressor
	features int
	actions  int
}

// NewValue returns a new Value estimator for states of features
// features and actions of actions dimensions
func NewValue(r Regressor, features, actions int) (*Value, error) {
	if err := checkRegressor("newValue", r, features+actions, 1); err != nil {
		return nil, err
	}
	return &Value{r: r, features: features, actions: actions}, nil
}

// Estimate returns the predicted return of taking action in state
func (v *Value) Estimate(state, action mat.Vector) (float64, error) {
	if state.Len() != v.features || action.Len() != v.actions {
		return 0, &EstimatorError{
			Op: "estimate",
			Err: fmt.Errorf("%w: state (%v) and action (%v) want (%v) and "+
				"(%v)", ErrShapeMismatch, state.Len(), action.Len(),
				v.features, v.actions),
		}
	}

	x := matutils.Concat(state, action)
	pred, err := v.r.Predict(x.RawVector().Data)
	if err != nil {
		return 0, fmt.Errorf("estimate: %w", err)
	}
	return pred[0], nil
}

// Train fits the estimator to predict returns from rows of
// stateActions
func (v *Value) Train(stateActions, returns *mat.Dense, epochs,
	batchSize int) error {
	if err := checkRows("train", stateActions, returns, v.features+v.actions,
		1); err != nil {
		return err
	}
	if err := v.r.Fit(stateActions, returns, epochs, batchSize); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

// Save writes the estimator's weights to path
func (v *Value) Save(path string) error {
	return save(path, v.r)
}

// Load replaces the estimator's weights with those stored at path. The
// weights are unchanged if the checkpoint cannot be used.
func (v *Value) Load(path string) error {
	return load(path, v.r, v.features+v.actions, 1)
}

// Regressor returns the regression backend of the estimator
func (v *Value) Regressor() Regressor {
	return v.r
}
