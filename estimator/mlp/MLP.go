// Package mlp implements a neural network regression backend using
// Gorgonia.
package mlp

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/robotac/initwfn"
	"github.com/samuelfneumann/robotac/network"
	"github.com/samuelfneumann/robotac/solver"
	"github.com/samuelfneumann/robotac/utils/intutils"
	"github.com/samuelfneumann/robotac/utils/matutils"
)

// Config configures an MLP Regressor
type Config struct {
	HiddenSizes []int
	Activations []*network.Activation
	Init        *initwfn.InitWFn
	Solver      *solver.Solver

	// Seed seeds the weight initializer and the per-epoch shuffling of
	// rows
	Seed uint64
}

// DefaultValueConfig returns the default configuration of the value
// estimator's network: one hidden layer of 4096 tanh units trained with
// Adam at a learning rate of 0.01.
func DefaultValueConfig(seed uint64) Config {
	return defaultConfig(0.01, seed)
}

// DefaultPolicyConfig returns the default configuration of the policy
// estimator's network: one hidden layer of 4096 tanh units trained with
// Adam at a learning rate of 0.008.
func DefaultPolicyConfig(seed uint64) Config {
	return defaultConfig(0.008, seed)
}

func defaultConfig(stepSize float64, seed uint64) Config {
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}

	// The loss is averaged over each mini-batch, so the solver's batch
	// size is 1
	adam, err := solver.NewDefaultAdam(stepSize, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}

	return Config{
		HiddenSizes: []int{4096},
		Activations: []*network.Activation{network.TanH()},
		Init:        init,
		Solver:      adam,
		Seed:        seed,
	}
}

// Validate returns an error if the Config cannot create a Regressor
func (c Config) Validate() error {
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: %v hidden layers but %v activations",
			len(c.HiddenSizes), len(c.Activations))
	}
	if c.Init == nil {
		return fmt.Errorf("validate: no weight initializer")
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver")
	}
	return nil
}

// trainer holds a copy of the network with a fixed batch size and the
// squared error loss used to train it
type trainer struct {
	net    *network.MLP
	target *G.Node
	vm     G.VM
}

// Regressor implements a regression model as a multi-layered
// perceptron. The final layer is linear, and the network is trained
// with mean squared error.
//
// Predictions use a network with batch size 1, which is synchronized
// with the training networks after each call to Fit.
type Regressor struct {
	inputs, outputs int

	pred   *network.MLP
	predVM G.VM

	// full trains on complete mini-batches and partial on the final
	// smaller mini-batch of an epoch
	full, partial *trainer

	// latest is the network holding the most recent weights
	latest *network.MLP

	solver       G.Solver
	solverConfig *solver.Solver
	rng          *rand.Rand
}

// New returns a new MLP Regressor. Weights are initialized with the
// configured initializer and biases with zeroes.
func New(inputs, outputs int, c Config) (*Regressor, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	zeroes := G.Zeroes()
	pred, err := network.NewMLP(inputs, 1, outputs, G.NewGraph(),
		c.HiddenSizes, c.Activations, c.Init.InitWFn(c.Seed), zeroes)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	r := &Regressor{
		inputs:       inputs,
		outputs:      outputs,
		solver:       c.Solver.Fresh(),
		solverConfig: c.Solver,
		rng:          rand.New(rand.NewSource(c.Seed)),
	}
	r.setPredictor(pred)

	return r, nil
}

// setPredictor sets the prediction network, discarding any trainers
func (r *Regressor) setPredictor(pred *network.MLP) {
	r.close()
	r.pred = pred
	r.predVM = G.NewTapeMachine(pred.Graph())
	r.latest = pred
	r.inputs = pred.Features()
	r.outputs = pred.Outputs()
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

	input := append([]float64(nil), x...)
	if err := r.pred.SetInput(input); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if err := r.predVM.RunAll(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	defer r.predVM.Reset()

	out := r.pred.Output().Data().([]float64)
	return append([]float64(nil), out...), nil
}

// Fit fits the Regressor to rows of x and y. Rows are shuffled each
// epoch and the solver takes one step per mini-batch, including the
// final partial mini-batch.
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
	if r.solver == nil {
		return fmt.Errorf("fit: regressor has no solver")
	}

	for epoch := 0; epoch < epochs; epoch++ {
		perm := r.rng.Perm(rows)
		for start := 0; start < rows; start += batchSize {
			end := intutils.Min(start+batchSize, rows)
			indices := perm[start:end]

			tr, err := r.trainer(len(indices), batchSize)
			if err != nil {
				return fmt.Errorf("fit: %w", err)
			}
			err = r.step(tr, matutils.RowsOf(x, indices),
				matutils.RowsOf(y, indices))
			if err != nil {
				return fmt.Errorf("fit: epoch %v: %w", epoch, err)
			}
		}
	}

	if r.latest != r.pred {
		if err := r.pred.Set(r.latest); err != nil {
			return fmt.Errorf("fit: could not synchronize predictor: %w", err)
		}
		r.latest = r.pred
	}
	return nil
}

// trainer returns the trainer for mini-batches of size n, constructing
// it if needed
func (r *Regressor) trainer(n, batchSize int) (*trainer, error) {
	slot := &r.partial
	if n == batchSize {
		slot = &r.full
	}

	if *slot != nil && (*slot).net.BatchSize() == n {
		return *slot, nil
	}
	if *slot != nil {
		(*slot).vm.Close()
	}

	tr, err := r.newTrainer(n)
	if err != nil {
		return nil, err
	}
	*slot = tr
	return tr, nil
}

// newTrainer constructs a new trainer for mini-batches of size batch
func (r *Regressor) newTrainer(batch int) (*trainer, error) {
	net, err := r.latest.CloneWithBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %w", err)
	}
	g := net.Graph()

	target := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, r.outputs),
		G.WithName("target"),
		G.WithInit(G.Zeroes()),
	)

	// Mean squared error
	diff := G.Must(G.Sub(net.Prediction(), target))
	loss := G.Must(G.Mean(G.Must(G.Square(diff))))

	if _, err := G.Grad(loss, net.Learnables()...); err != nil {
		return nil, fmt.Errorf("newTrainer: could not compute gradient: %w",
			err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))
	return &trainer{net: net, target: target, vm: vm}, nil
}

// step takes a single solver step on the batch x, y
func (r *Regressor) step(tr *trainer, x, y *mat.Dense) error {
	if tr.net != r.latest {
		if err := tr.net.Set(r.latest); err != nil {
			return err
		}
	}

	if err := tr.net.SetInput(x.RawMatrix().Data); err != nil {
		return err
	}
	targets := tensor.New(
		tensor.WithShape(tr.target.Shape()...),
		tensor.WithBacking(y.RawMatrix().Data),
	)
	if err := G.Let(tr.target, targets); err != nil {
		return err
	}

	if err := tr.vm.RunAll(); err != nil {
		return err
	}
	defer tr.vm.Reset()

	if err := r.solver.Step(tr.net.Model()); err != nil {
		return err
	}
	r.latest = tr.net
	return nil
}

// close releases the Regressor's machines
func (r *Regressor) close() {
	if r.predVM != nil {
		r.predVM.Close()
	}
	for _, tr := range []*trainer{r.full, r.partial} {
		if tr != nil {
			tr.vm.Close()
		}
	}
	r.full, r.partial = nil, nil
}

// GobEncode implements the gob.GobEncoder interface. The architecture
// and weights of the network are stored; solver state is not.
func (r *Regressor) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r.pred); err != nil {
		return nil, fmt.Errorf("gobencode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The Regressor
// takes on the architecture and weights stored in the encoding, restarts
// its solver, and keeps its shuffling source.
func (r *Regressor) GobDecode(in []byte) error {
	var net network.MLP
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&net); err != nil {
		return fmt.Errorf("gobdecode: %w", err)
	}
	if net.BatchSize() != 1 {
		return fmt.Errorf("gobdecode: predictor must have batch size 1, "+
			"got %v", net.BatchSize())
	}

	r.setPredictor(&net)
	if r.solverConfig != nil {
		r.solver = r.solverConfig.Fresh()
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(0))
	}
	return nil
}
