// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment.
//
// Reward is the reward for the action that led to this TimeStep and is
// zero on the first TimeStep of an episode. Number counts the actions
// taken so far in the episode.
type TimeStep struct {
	StepType
	Reward      float64
	Observation *mat.VecDense
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, o, n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Number)
}

// Transition is a single (state, action, reward) triple produced by one
// environment step. Reward is the reward received for taking Action in
// State.
type Transition struct {
	State  *mat.VecDense
	Action *mat.VecDense
	Reward float64
}

// NewTransition returns the Transition of taking action in the state
// observed at step and landing in next.
func NewTransition(step TimeStep, action *mat.VecDense,
	next TimeStep) Transition {
	return Transition{
		State:  step.Observation,
		Action: action,
		Reward: next.Reward,
	}
}
