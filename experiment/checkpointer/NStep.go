package checkpointer

import "fmt"

// nStep implements checkpointing every N episodes once a number of
// episodes has elapsed
type nStep struct {
	interval int
	after    int
	object   Saver
}

// NewNStep returns a checkpointer that saves object after an episode
// whose index is at least after and a multiple of n.
//
// For example, NewNStep(20, 50, agent) saves agent after episodes 60,
// 80, 100, and so on.
func NewNStep(n, after int, object Saver) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNStep: interval must be positive, got %v",
			n)
	}
	return &nStep{
		interval: n,
		after:    after,
		object:   object,
	}, nil
}

// Checkpoint saves the tracked object if episode falls on the
// checkpointing cadence
func (n *nStep) Checkpoint(episode int) error {
	if episode >= n.after && episode%n.interval == 0 {
		return n.object.Save()
	}
	return nil
}
