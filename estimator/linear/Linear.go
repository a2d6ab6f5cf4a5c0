// Package linear implements an affine regression backend, y = xW + b,
// fitted with mini-batch gradient descent on squared error.
package linear

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/robotac/utils/intutils"
	"github.com/samuelfneumann/robotac/utils/matutils"
)

// Config configures a linear Regressor
type Config struct {
	StepSize float64
	Seed     uint64
}

// DefaultConfig returns the default linear Regressor configuration
func DefaultConfig() Config {
	return Config{StepSize: 1e-4, Seed: 0}
}

// Regressor implements an affine regression model. Weights start at
// zero, so that fitting is deterministic given the seed used to shuffle
// rows.
type Regressor struct {
	inputs   int
	outputs  int
	stepSize float64

	weights *mat.Dense // inputs x outputs
	bias    *mat.VecDense
	rng     *rand.Rand
}

// New returns a new linear Regressor
func New(inputs, outputs int, c Config) (*Regressor, error) {
	if inputs <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("new: inputs (%v) and outputs (%v) must be "+
			"positive", inputs, outputs)
	}
	if c.StepSize <= 0 {
		return nil, fmt.Errorf("new: step size must be positive")
	}

	return &Regressor{
		inputs:   inputs,
		outputs:  outputs,
		stepSize: c.StepSize,
		weights:  mat.NewDense(inputs, outputs, nil),
		bias:     mat.NewVecDense(outputs, nil),
		rng:      rand.New(rand.NewSource(c.Seed)),
	}, nil
}

// Inputs returns the number of input features
func (r *Regressor) Inputs() int {
	return r.inputs
}

// Outputs returns the number of predicted values
func (r *Regressor) Outputs() int {
	return r.outputs
}

// Predict returns the prediction for a single input vector
func (r *Regressor) Predict(x []float64) ([]float64, error) {
	if len(x) != r.inputs {
		return nil, fmt.Errorf("predict: input has %v features, want %v",
			len(x), r.inputs)
	}

	pred := mat.NewVecDense(r.outputs, nil)
	pred.MulVec(r.weights.T(), mat.NewVecDense(r.inputs, x))
	pred.AddVec(pred, r.bias)
	return pred.RawVector().Data, nil
}

// Fit fits the Regressor to rows of x and y. Rows are shuffled each
// epoch and the final partial mini-batch is also used.
func (r *Regressor) Fit(x, y *mat.Dense, epochs, batchSize int) error {
	rows, xc := x.Dims()
	yr, yc := y.Dims()
	if rows != yr || xc != r.inputs || yc != r.outputs {
		return fmt.Errorf("fit: got inputs (%v, %v) targets (%v, %v), "+
			"want (n, %v) and (n, %v)", rows, xc, yr, yc, r.inputs, r.outputs)
	}
	if epochs <= 0 || batchSize <= 0 {
		return fmt.Errorf("fit: epochs (%v) and batch size (%v) must be "+
			"positive", epochs, batchSize)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		perm := r.rng.Perm(rows)
		for start := 0; start < rows; start += batchSize {
			end := intutils.Min(start+batchSize, rows)
			r.step(matutils.RowsOf(x, perm[start:end]),
				matutils.RowsOf(y, perm[start:end]))
		}
	}
	return nil
}

// step takes a single gradient descent step on the mean squared error
// of the batch
func (r *Regressor) step(x, y *mat.Dense) {
	n, _ := x.Dims()

	// residual = xW + b - y
	var residual mat.Dense
	residual.Mul(x, r.weights)
	for i := 0; i < n; i++ {
		row := residual.RawRowView(i)
		floats.Add(row, r.bias.RawVector().Data)
		floats.Sub(row, y.RawRowView(i))
	}

	scale := 2 * r.stepSize / float64(n)

	var gradW mat.Dense
	gradW.Mul(x.T(), &residual)
	gradW.Scale(scale, &gradW)
	r.weights.Sub(r.weights, &gradW)

	gradB := make([]float64, r.outputs)
	for i := 0; i < n; i++ {
		floats.Add(gradB, residual.RawRowView(i))
	}
	floats.AddScaled(r.bias.RawVector().Data, -scale, gradB)
}

type codec struct {
	Inputs   int
	Outputs  int
	StepSize float64
	Weights  []float64
	Bias     []float64
}

// GobEncode implements the gob.GobEncoder interface
func (r *Regressor) GobEncode() ([]byte, error) {
	c := codec{
		Inputs:   r.inputs,
		Outputs:  r.outputs,
		StepSize: r.stepSize,
		Weights:  r.weights.RawMatrix().Data,
		Bias:     r.bias.RawVector().Data,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("gobencode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The shuffling
// source of the Regressor is kept.
func (r *Regressor) GobDecode(in []byte) error {
	var c codec
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&c); err != nil {
		return fmt.Errorf("gobdecode: %w", err)
	}
	if len(c.Weights) != c.Inputs*c.Outputs || len(c.Bias) != c.Outputs {
		return fmt.Errorf("gobdecode: malformed weights")
	}

	r.inputs, r.outputs, r.stepSize = c.Inputs, c.Outputs, c.StepSize
	r.weights = mat.NewDense(c.Inputs, c.Outputs, c.Weights)
	r.bias = mat.NewVecDense(c.Outputs, c.Bias)
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(0))
	}
	return nil
}
