// Package network implements multi-layered perceptrons as Gorgonia
// computational graphs.
package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. The MLP has
// len(hiddenSizes) + 1 fully connected layers, each with a bias unit.
// The final layer maps to the outputs with no activation.
type MLP struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for gobbing and cloning
	hiddenSizes []int
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node

	// predVal is a pointer so that copies of an MLP share the value
	// read from the prediction node
	predVal *G.Value
}

// NewMLP creates and returns a new multi-layered perceptron taking
// batch inputs of features features and predicting outputs values for
// each. The graph parameter g is populated with the MLP.
//
// For index i, hiddenSizes[i] is the number of nodes in hidden layer i
// and activations[i] is the activation function for hidden layer i.
// The weightInit and biasInit parameters determine the initial weights
// and biases of each layer.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, activations []*Activation, weightInit,
	biasInit G.InitWFn) (*MLP, error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if features <= 0 || outputs <= 0 || batch <= 0 {
		return nil, fmt.Errorf("newMLP: features (%v), outputs (%v) and "+
			"batch (%v) must be positive", features, outputs, batch)
	}
	for i, size := range hiddenSizes {
		if size <= 0 {
			return nil, fmt.Errorf("newMLP: hidden layer %v must have "+
				"positive size", i)
		}
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	layers := make([]*fcLayer, 0, len(hiddenSizes)+1)
	in := features
	for i, size := range hiddenSizes {
		layers = append(layers, newFCLayer(g, in, size, i, activations[i],
			weightInit, biasInit))
		in = size
	}
	layers = append(layers, newFCLayer(g, in, outputs, len(hiddenSizes),
		Identity(), weightInit, biasInit))

	net := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: append([]int(nil), hiddenSizes...),
		activations: append([]*Activation(nil), activations...),
	}

	if err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %w",
			err)
	}
	return net, nil
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd(input *G.Node) error {
	pred := input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of layer "+
				"%v: %w", i, err)
		}
	}

	m.prediction = pred
	m.predVal = new(G.Value)
	G.Read(m.prediction, m.predVal)
	return nil
}

// CloneWithBatch returns a copy of the MLP with a new input batch size
// on a new computational graph. The copy starts with the same weights.
func (m *MLP) CloneWithBatch(batch int) (*MLP, error) {
	zeroes := G.Zeroes()
	net, err := NewMLP(m.numInputs, batch, m.numOutputs, G.NewGraph(),
		m.hiddenSizes, m.activations, zeroes, zeroes)
	if err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %w", err)
	}

	if err := net.Set(m); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %w", err)
	}
	return net, nil
}

// Graph returns the computational graph of the MLP.
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// BatchSize returns the batch size of inputs to the MLP
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single input vector
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs predicted for each input vector
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// HiddenSizes returns the number of nodes in each hidden layer
func (m *MLP) HiddenSizes() []int {
	return append([]int(nil), m.hiddenSizes...)
}

// SetInput sets the value of the input node before running the forward
// pass. The input holds BatchSize() rows of Features() values each.
func (m *MLP) SetInput(input []float64) error {
	if len(input) != m.numInputs*m.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", m.numInputs*m.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.input.Shape()...),
	)
	return G.Let(m.input, inputTensor)
}

// Set sets the weights of the MLP to be equal to the weights of source
func (m *MLP) Set(source *MLP) error {
	sourceNodes := source.Learnables()
	nodes := m.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: source has %v learnables, want %v",
			len(sourceNodes), len(nodes))
	}

	for i, dest := range nodes {
		if !dest.Shape().Eq(sourceNodes[i].Shape()) {
			return fmt.Errorf("set: learnable %v has shape %v, want %v", i,
				sourceNodes[i].Shape(), dest.Shape())
		}
		weights := sourceNodes[i].Value().(*tensor.Dense).Clone()
		if err := G.Let(dest, weights.(*tensor.Dense)); err != nil {
			return fmt.Errorf("set: %w", err)
		}
	}
	return nil
}

// Learnables returns the learnable nodes in the MLP, weights then
// bias for each layer
func (m *MLP) Learnables() G.Nodes {
	if m.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.weights, l.bias)
		}
		m.learnables = learnables
	}
	return m.learnables
}

// Model returns the learnables nodes with their gradients.
func (m *MLP) Model() []G.ValueGrad {
	if m.model == nil {
		model := make([]G.ValueGrad, 0, len(m.Learnables()))
		for _, node := range m.Learnables() {
			model = append(model, node)
		}
		m.model = model
	}
	return m.model
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// Output returns the output of the MLP after the graph has been run
func (m *MLP) Output() G.Value {
	return *m.predVal
}

// Weights returns a copy of the values of each learnable node
func (m *MLP) Weights() [][]float64 {
	learnables := m.Learnables()
	weights := make([][]float64, len(learnables))
	for i, node := range learnables {
		data := node.Value().Data().([]float64)
		weights[i] = append([]float64(nil), data...)
	}
	return weights
}

// SetWeights sets the value of each learnable node
func (m *MLP) SetWeights(weights [][]float64) error {
	learnables := m.Learnables()
	if len(weights) != len(learnables) {
		return fmt.Errorf("setWeights: got %v weight slices, want %v",
			len(weights), len(learnables))
	}

	for i, node := range learnables {
		if len(weights[i]) != node.Shape().TotalSize() {
			return fmt.Errorf("setWeights: learnable %v has %v weights, "+
				"want %v", i, len(weights[i]), node.Shape().TotalSize())
		}
		t := tensor.New(
			tensor.WithShape(node.Shape().Clone()...),
			tensor.WithBacking(append([]float64(nil), weights[i]...)),
		)
		if err := G.Let(node, t); err != nil {
			return fmt.Errorf("setWeights: %w", err)
		}
	}
	return nil
}

// mlpCodec holds the data needed to reconstruct an MLP
type mlpCodec struct {
	Inputs      int
	Outputs     int
	Batch       int
	HiddenSizes []int
	Activations []*Activation
	Weights     [][]float64
}

// GobEncode implements the gob.GobEncoder interface. The architecture
// of the MLP is stored along with its weights.
func (m *MLP) GobEncode() ([]byte, error) {
	codec := mlpCodec{
		Inputs:      m.numInputs,
		Outputs:     m.numOutputs,
		Batch:       m.batchSize,
		HiddenSizes: m.hiddenSizes,
		Activations: m.activations,
		Weights:     m.Weights(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(codec); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode MLP: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded MLP is
// constructed on a new computational graph.
func (m *MLP) GobDecode(in []byte) error {
	var codec mlpCodec
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&codec); err != nil {
		return fmt.Errorf("gobdecode: could not decode MLP: %w", err)
	}

	zeroes := G.Zeroes()
	net, err := NewMLP(codec.Inputs, codec.Batch, codec.Outputs,
		G.NewGraph(), codec.HiddenSizes, codec.Activations, zeroes, zeroes)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct MLP: %w", err)
	}
	if err := net.SetWeights(codec.Weights); err != nil {
		return fmt.Errorf("gobdecode: %w", err)
	}

	*m = *net
	return nil
}
