package estimator

import "errors"

// EstimatorError implements errors returned by estimators
type EstimatorError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *EstimatorError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *EstimatorError) Unwrap() error {
	return e.Err
}

// ErrShapeMismatch reports inputs or checkpoints whose dimensions do not
// match the estimator
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrCheckpointMissing reports a checkpoint file that does not exist
var ErrCheckpointMissing = errors.New("checkpoint missing")

// ErrCheckpointWriteFailure reports a checkpoint that could not be
// written
var ErrCheckpointWriteFailure = errors.New("checkpoint write failure")

// IsShapeMismatch returns whether or not an error reports a shape
// mismatch
func IsShapeMismatch(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}

// IsCheckpointMissing returns whether or not an error reports a missing
// checkpoint
func IsCheckpointMissing(err error) bool {
	return errors.Is(err, ErrCheckpointMissing)
}

// IsCheckpointWriteFailure returns whether or not an error reports a
// checkpoint that could not be written
func IsCheckpointWriteFailure(err error) bool {
	return errors.Is(err, ErrCheckpointWriteFailure)
}
