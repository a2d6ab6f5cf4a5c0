// Package expreplay implements per-episode experience buffers and an
// episode-aligned, bounded replay memory.
//
// An Episode records the transitions of a single episode. Once the
// episode ends, Finalize replaces each immediate reward with the
// discounted return from that step onwards, after which the Episode is
// flushed to a Memory and discarded.
package expreplay

import (
	"fmt"

	ts "github.com/samuelfneumann/robotac/timestep"
)

// Episode buffers the transitions of a single episode. Rows are stored
// flattened in insertion order.
type Episode struct {
	featureSize int
	actionSize  int

	stateActions []float64
	states       []float64
	actions      []float64
	returns      []float64

	finalized bool
}

// NewEpisode returns a new, empty Episode for states with featureSize
// features and actions with actionSize dimensions
func NewEpisode(featureSize, actionSize int) *Episode {
	return &Episode{
		featureSize: featureSize,
		actionSize:  actionSize,
	}
}

// Add appends a transition to the episode. Until the episode is
// finalized, the return of the transition is its immediate reward.
func (e *Episode) Add(t ts.Transition) error {
	if e.finalized {
		return &ExpReplayError{Op: "add", Err: errFinalized}
	}
	if t.State.Len() != e.featureSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("%w: state size want(%v) have(%v)", errShape,
				e.featureSize, t.State.Len()),
		}
	}
	if t.Action.Len() != e.actionSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("%w: action size want(%v) have(%v)", errShape,
				e.actionSize, t.Action.Len()),
		}
	}

	for i := 0; i < e.featureSize; i++ {
		e.states = append(e.states, t.State.AtVec(i))
	}
	for i := 0; i < e.actionSize; i++ {
		e.actions = append(e.actions, t.Action.AtVec(i))
	}
	e.stateActions = append(e.stateActions,
		e.states[len(e.states)-e.featureSize:]...)
	e.stateActions = append(e.stateActions,
		e.actions[len(e.actions)-e.actionSize:]...)
	e.returns = append(e.returns, t.Reward)

	return nil
}

// Finalize computes the discounted return of each transition with a
// single backward pass over the episode:
//
//	return[last] = reward[last]
//	return[t]    = reward[t] + discount * return[t+1]
//
// An episode can only be finalized once.
func (e *Episode) Finalize(discount float64) error {
	if e.finalized {
		return &ExpReplayError{Op: "finalize", Err: errFinalized}
	}
	if len(e.returns) == 0 {
		return &ExpReplayError{Op: "finalize", Err: errEmptyEpisode}
	}
	if discount <= 0 || discount >= 1 {
		return fmt.Errorf("finalize: discount must be in (0, 1), got %v",
			discount)
	}

	for t := len(e.returns) - 2; t >= 0; t-- {
		e.returns[t] += discount * e.returns[t+1]
	}
	e.finalized = true

	return nil
}

// Finalized returns whether or not the episode has been finalized
func (e *Episode) Finalized() bool {
	return e.finalized
}

// Len returns the number of transitions in the episode
func (e *Episode) Len() int {
	return len(e.returns)
}

// Returns returns a copy of the returns of each transition. Before the
// episode is finalized, these are the immediate rewards.
func (e *Episode) Returns() []float64 {
	returns := make([]float64, len(e.returns))
	copy(returns, e.returns)
	return returns
}

// String implements the fmt.Stringer interface
func (e *Episode) String() string {
	return fmt.Sprintf("Episode | length: %v  |  finalized: %v", e.Len(),
		e.finalized)
}
