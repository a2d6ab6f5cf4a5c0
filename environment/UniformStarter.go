package environment

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples starting states uniformly from a box
type UniformStarter struct {
	features int
	seed     uint64
	rand     *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter which samples feature i
// uniformly from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	source := rand.NewSource(seed)
	rand := distmv.NewUniform(bounds, source)

	return UniformStarter{len(bounds), seed, rand}
}

// Start returns a starting state vector
func (u UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.features, u.rand.Rand(nil))
}

// FixedStarter always starts in the same state
type FixedStarter struct {
	state *mat.VecDense
}

// NewFixedStarter returns a FixedStarter which always starts in state
func NewFixedStarter(state mat.Vector) FixedStarter {
	return FixedStarter{mat.VecDenseCopyOf(state)}
}

// Start returns a copy of the starting state
func (f FixedStarter) Start() *mat.VecDense {
	return mat.VecDenseCopyOf(f.state)
}
