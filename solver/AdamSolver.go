package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig configures the Adam solver used to train the estimators'
// networks
type AdamConfig struct {
	StepSize float64
	Epsilon  float64
	Beta1    float64
	Beta2    float64

	// Batch divides gradients before each step. Estimator losses are
	// already averaged over their mini-batch, so they use 1.
	Batch int
}

// NewDefaultAdam returns a new Adam Solver with epsilon 1e-8 and decay
// rates 0.9 and 0.999
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	return NewAdam(stepSize, 1e-8, 0.9, 0.999, batchSize)
}

// NewAdam returns a new Adam Solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64,
	batchSize int) (*Solver, error) {
	return newSolver(Adam, AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	})
}

// Validate returns an error if the decay rates are outside [0, 1) or
// the step size, epsilon, or batch are not positive
func (a AdamConfig) Validate() error {
	if err := validateStep(a.StepSize, a.Batch); err != nil {
		return err
	}
	if a.Epsilon <= 0 {
		return fmt.Errorf("validate: epsilon must be positive")
	}
	for _, beta := range []float64{a.Beta1, a.Beta2} {
		if beta < 0 || beta >= 1 {
			return fmt.Errorf("validate: decay rate %v not in [0, 1)", beta)
		}
	}
	return nil
}

// Create returns a new Gorgonia Adam Solver
func (a AdamConfig) Create() G.Solver {
	return G.NewAdamSolver(
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	)
}

// ValidType implements the Config interface
func (a AdamConfig) ValidType(t Type) bool {
	return t == Adam
}
