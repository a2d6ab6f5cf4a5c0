package expreplay

import "errors"

// ExpReplayError implements errors unique to episode buffers and
// replay memory.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

var errFinalized = errors.New("episode already finalized")

var errNotFinalized = errors.New("episode not finalized")

var errEmptyEpisode = errors.New("episode has no transitions")

var errEmptyMemory = errors.New("memory empty")

var errShape = errors.New("invalid shape")

// IsFinalized returns whether or not an error reports that an episode
// buffer was used after it was finalized.
func IsFinalized(err error) bool {
	return errors.Is(err, errFinalized)
}

// IsNotFinalized returns whether or not an error reports that an
// episode buffer was flushed to memory before it was finalized.
func IsNotFinalized(err error) bool {
	return errors.Is(err, errNotFinalized)
}

// IsEmptyEpisode returns whether or not an error reports that an
// episode buffer holds no transitions.
func IsEmptyEpisode(err error) bool {
	return errors.Is(err, errEmptyEpisode)
}

// IsEmptyMemory returns whether or not an error reports that replay
// memory is empty.
func IsEmptyMemory(err error) bool {
	return errors.Is(err, errEmptyMemory)
}

// IsShape returns whether or not an error reports a transition or
// episode of the wrong shape.
func IsShape(err error) bool {
	return errors.Is(err, errShape)
}
