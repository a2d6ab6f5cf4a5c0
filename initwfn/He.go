package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// HeUConfig implements a configuration of the He uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from U(-a, a) with
// a = gain * sqrt(3 / fanIn).
func (h HeUConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s...)
		limit := h.Gain * math.Sqrt(3/in)
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
		return fill(dt, s, dist.Rand)
	}
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from N(0, σ²) with σ = gain / sqrt(fanIn).
func (h HeNConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s...)
		dist := distuv.Normal{Mu: 0, Sigma: h.Gain / math.Sqrt(in), Src: src}
		return fill(dt, s, dist.Rand)
	}
}
