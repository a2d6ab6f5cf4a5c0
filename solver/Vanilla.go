package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// VanillaConfig configures plain gradient descent. Gradients are
// clipped to [-Clip, Clip] when Clip is positive.
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64
}

// NewVanilla returns a new gradient descent Solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	return newSolver(Vanilla, VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	})
}

// Validate returns an error if the step size or batch are not positive
func (v VanillaConfig) Validate() error {
	return validateStep(v.StepSize, v.Batch)
}

// Create returns a new Gorgonia Vanilla Solver
func (v VanillaConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	}
	if v.Clip > 0 {
		opts = append(opts, G.WithClip(v.Clip))
	}
	return G.NewVanillaSolver(opts...)
}

// ValidType implements the Config interface
func (v VanillaConfig) ValidType(t Type) bool {
	return t == Vanilla
}

// validateStep checks the hyperparameters shared by every solver
func validateStep(stepSize float64, batch int) error {
	if stepSize <= 0 {
		return fmt.Errorf("validate: step size must be positive, got %v",
			stepSize)
	}
	if batch < 1 {
		return fmt.Errorf("validate: batch must be >= 1, got %v", batch)
	}
	return nil
}
