package environment

import ts "github.com/samuelfneumann/robotac/timestep"

// StepLimit is an Ender which ends an episode once it has taken a
// fixed number of actions. The arm counts such episodes as done, unlike
// episodes cut short by the training driver's own step cap.
//
// A StepLimit of zero or less never ends an episode.
type StepLimit int

// NewStepLimit returns a StepLimit ending episodes after steps actions
func NewStepLimit(steps int) StepLimit {
	return StepLimit(steps)
}

// End marks t as the last step of its episode and returns true if the
// episode has reached the limit
func (s StepLimit) End(t *ts.TimeStep) bool {
	if s <= 0 || t.Number < int(s) {
		return false
	}
	t.StepType = ts.Last
	return true
}

// Steps returns the number of actions after which episodes end
func (s StepLimit) Steps() int {
	return int(s)
}
