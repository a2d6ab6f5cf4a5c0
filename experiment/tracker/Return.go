package tracker

import ts "github.com/samuelfneumann/robotac/timestep"

// Return tracks and saves the episodic return in an experiment. When an
// environment returns a TimeStep, this Tracker will extract the reward
// and accumulate the return for each episode in the experiment.
//
// An episode must finish for this Tracker to record its return. The
// partial return of an episode cut off before its last timestep is
// discarded when the next episode starts.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track tracks the reward seen on a timestep
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0
		return
	}

	r.currentReturn += step.Reward
	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0
	}
}

// Data returns the tracked episodic returns
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	return save(r.filename, r.episodeReturns)
}
