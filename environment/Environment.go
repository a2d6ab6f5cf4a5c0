// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	ts "github.com/samuelfneumann/robotac/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should be ended. If End returns true,
// the TimeStep's StepType is set to timestep.Last.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Environment implements a simulated environment that an agent acts in.
//
// Step returns the next TimeStep, whose Reward is the reward for taking
// action, along with whether the episode is done.
type Environment interface {
	Reset() ts.TimeStep
	Step(action *mat.VecDense) (ts.TimeStep, bool)
	RandomAction() *mat.VecDense
	ObservationSpec() Spec
	ActionSpec() Spec
}
