// Package checkpointer implements periodic actions over the episodes of
// an experiment, such as saving or retraining an agent
package checkpointer

// Saver is an object that can be saved
type Saver interface {
	Save() error
}

// Checkpointer checkpoints objects based on the index of an episode
// that has just finished
type Checkpointer interface {
	Checkpoint(episode int) error
}

// Func adapts a function to the Saver interface
type Func func() error

// Save calls f
func (f Func) Save() error {
	return f()
}
