package estimator

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// save gob encodes r to path, overwriting any existing file
func save(path string, r Regressor) error {
	file, err := os.Create(path)
	if err != nil {
		return &EstimatorError{
			Op:  "save",
			Err: fmt.Errorf("%w: %v", ErrCheckpointWriteFailure, err),
		}
	}

	if err := gob.NewEncoder(file).Encode(r); err != nil {
		file.Close()
		return &EstimatorError{
			Op:  "save",
			Err: fmt.Errorf("%w: %v", ErrCheckpointWriteFailure, err),
		}
	}

	if err := file.Close(); err != nil {
		return &EstimatorError{
			Op:  "save",
			Err: fmt.Errorf("%w: %v", ErrCheckpointWriteFailure, err),
		}
	}
	return nil
}

// load gob decodes the file at path into r. If the file cannot be
// decoded or holds a regressor which does not map inputs features to
// outputs values, r is left unchanged.
func load(path string, r Regressor, inputs, outputs int) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &EstimatorError{
			Op:  "load",
			Err: fmt.Errorf("%w: %v", ErrCheckpointMissing, path),
		}
	} else if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer file.Close()

	prev, err := r.GobEncode()
	if err != nil {
		return fmt.Errorf("load: could not snapshot weights: %w", err)
	}

	err = gob.NewDecoder(file).Decode(r)
	if err != nil {
		err = fmt.Errorf("load: could not decode %v: %w", path, err)
	} else {
		err = checkRegressor("load", r, inputs, outputs)
	}
	if err != nil {
		if restoreErr := r.GobDecode(prev); restoreErr != nil {
			return fmt.Errorf("load: could not restore weights: %v: %w",
				restoreErr, err)
		}
		return err
	}
	return nil
}
