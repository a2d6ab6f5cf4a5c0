package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ZeroesConfig implements a configuration of a zero weight initializer
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight intializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns the type of the weight initializer created using this
// config
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (z ZeroesConfig) Create(rand.Source) G.InitWFn {
	return constant(0)
}

// OnesConfig implements a configuration of a weight initializer that
// initializes all weights to 1.
type OnesConfig struct{}

// NewOnes returns a new ones weight intializer
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

// Type returns the type of the weight initializer created using this
// config
func (o OnesConfig) Type() Type {
	return Ones
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (o OnesConfig) Create(rand.Source) G.InitWFn {
	return constant(1)
}

// ConstantConfig implements a configuration of a weight initializer
// that initializes all weights to a constant value.
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight intializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{value})
}

// Type returns the type of the weight initializer created using this
// config
func (c ConstantConfig) Type() Type {
	return Constant
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (c ConstantConfig) Create(rand.Source) G.InitWFn {
	return constant(c.Value)
}

func constant(value float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		return fill(dt, s, func() float64 { return value })
	}
}

// UniformConfig implements a configuration of a weight initializer that
// draws weights from a uniform distribution
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	if low >= high {
		return nil, fmt.Errorf("newUniform: low (%v) must be less than "+
			"high (%v)", low, high)
	}
	return newInitWFn(UniformConfig{Low: low, High: high})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (u UniformConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		dist := distuv.Uniform{Min: u.Low, Max: u.High, Src: src}
		return fill(dt, s, dist.Rand)
	}
}

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a gaussian distribution
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a new gaussian weight initializer
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	if stddev <= 0 {
		return nil, fmt.Errorf("newGaussian: standard deviation must be " +
			"positive")
	}
	return newInitWFn(GaussianConfig{Mean: mean, StdDev: stddev})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GaussianConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		dist := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: src}
		return fill(dt, s, dist.Rand)
	}
}
