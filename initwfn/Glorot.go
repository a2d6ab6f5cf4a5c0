package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from U(-a, a) with
// a = gain * sqrt(6 / (fanIn + fanOut)).
func (g GlorotUConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s...)
		limit := g.Gain * math.Sqrt(6/(in+out))
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
		return fill(dt, s, dist.Rand)
	}
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from N(0, σ²) with
// σ = gain * sqrt(2 / (fanIn + fanOut)).
func (g GlorotNConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s...)
		sigma := g.Gain * math.Sqrt(2/(in+out))
		dist := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
		return fill(dt, s, dist.Rand)
	}
}
