// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/robotac/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns from recorded
// episodes, and a Policy which chooses actions in each state. The Policy
// chooses which actions are taken, and the Learner uses these actions to
// update the estimators that the Policy consults.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how estimators
// are updated.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode. Episodes
	// that did not reach a terminal timestep are discarded.
	EndEpisode(done bool) error

	// Step performs a single update to the learner
	Step() error
}

// Policy represents a policy that an agent can have.
//
// The Policy and Learner of an Agent should share the same estimators
// so that any changes the Learner makes are reflected in the actions
// the Policy chooses.
type Policy interface {
	SelectAction(t timestep.TimeStep) (*mat.VecDense, error)
}

// Checkpointer is an Agent whose learned weights can be saved to and
// restored from disk
type Checkpointer interface {
	Agent

	// Save writes the agent's weights to disk
	Save() error

	// Load restores the agent's weights from disk. Missing files are
	// not an error and leave the weights untouched.
	Load() error
}
