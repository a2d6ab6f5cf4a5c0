package actorcritic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// constSource always returns the same value, so that uniform draws are
// either 0 (v == 0) or just below 1 (v == math.MaxUint64)
type constSource uint64

func (c constSource) Uint64() uint64 { return uint64(c) }
func (c constSource) Seed(uint64)    {}

// queueSampler returns its actions in order, cycling
type queueSampler struct {
	actions [][]float64
	i       int
	calls   int
}

func (q *queueSampler) RandomAction() *mat.VecDense {
	a := q.actions[q.i%len(q.actions)]
	q.i++
	q.calls++
	return mat.NewVecDense(len(a), append([]float64(nil), a...))
}

// firstValue scores an action by its first element
type firstValue struct {
	calls int
}

func (f *firstValue) Estimate(state, action mat.Vector) (float64, error) {
	f.calls++
	return action.AtVec(0), nil
}

func (f *firstValue) Train(sa, r *mat.Dense, epochs, batch int) error {
	return nil
}

func (f *firstValue) Save(string) error { return nil }
func (f *firstValue) Load(string) error { return nil }

// fixedPolicy always proposes the same action
type fixedPolicy struct {
	action []float64
	calls  int
}

func (f *fixedPolicy) Propose(state mat.Vector) (*mat.VecDense, error) {
	f.calls++
	return mat.NewVecDense(len(f.action), append([]float64(nil),
		f.action...)), nil
}

func (f *fixedPolicy) Train(s, a *mat.Dense, epochs, batch int) error {
	return nil
}

func (f *fixedPolicy) Save(string) error { return nil }
func (f *fixedPolicy) Load(string) error { return nil }

var state = mat.NewVecDense(2, []float64{0, 0})

func TestSelectorWarmup(t *testing.T) {
	value := &firstValue{}
	policy := &fixedPolicy{action: []float64{100, 0}}
	sampler := &queueSampler{actions: [][]float64{{1, 0}, {2, 0}}}

	s, err := NewSelector(value, policy, sampler, 5, 0.2, 3, 10,
		constSource(math.MaxUint64))
	require.NoError(t, err)

	for episode := 0; episode < 5; episode++ {
		action, branch, err := s.Select(state, episode)
		require.NoError(t, err)
		assert.Equal(t, Warmup, branch)
		assert.Equal(t, 2, action.Len())
	}
	assert.Equal(t, 5, sampler.calls)
	assert.Zero(t, value.calls)
	assert.Zero(t, policy.calls)
}

func TestSelectorExplore(t *testing.T) {
	value := &firstValue{}
	policy := &fixedPolicy{action: []float64{100, 0}}
	sampler := &queueSampler{actions: [][]float64{{7, 0}}}

	s, err := NewSelector(value, policy, sampler, 0, 0.2, 3, 10,
		constSource(0))
	require.NoError(t, err)

	action, branch, err := s.Select(state, 0)
	require.NoError(t, err)
	assert.Equal(t, Explore, branch)
	assert.Equal(t, 7.0, action.AtVec(0))
	assert.Zero(t, value.calls)

	// The exploration probability is negative past the final episode,
	// so even a draw of zero exploits
	_, branch, err = s.Select(state, 11)
	require.NoError(t, err)
	assert.Equal(t, Proposed, branch)
}

func TestExploreProbDecay(t *testing.T) {
	s, err := NewSelector(&firstValue{}, &fixedPolicy{}, &queueSampler{},
		0, 0.2, 1, 100, constSource(0))
	require.NoError(t, err)

	assert.InDelta(t, 0.2, s.ExploreProb(0), 1e-12)
	assert.InDelta(t, 0.1, s.ExploreProb(50), 1e-12)
	assert.InDelta(t, 0.0, s.ExploreProb(100), 1e-12)

	prev := s.ExploreProb(0)
	for episode := 1; episode <= 100; episode++ {
		p := s.ExploreProb(episode)
		assert.InDelta(t, 0.002, prev-p, 1e-12)
		prev = p
	}
}

func TestSelectorFirstArgMax(t *testing.T) {
	value := &firstValue{}
	sampler := &queueSampler{actions: [][]float64{
		{1, 0}, {3, 1}, {3, 2}, {2, 3},
	}}

	// The proposal ties with the best candidate, and ties favour the
	// sampled candidate
	policy := &fixedPolicy{action: []float64{3, 9}}

	s, err := NewSelector(value, policy, sampler, 0, 0.2, 4, 10,
		constSource(math.MaxUint64))
	require.NoError(t, err)

	action, branch, err := s.Select(state, 1)
	require.NoError(t, err)
	assert.Equal(t, Sampled, branch)
	assert.Equal(t, []float64{3, 1}, action.RawVector().Data)
	assert.Equal(t, 5, value.calls)
	assert.Equal(t, 1, policy.calls)
}

func TestSelectorProposal(t *testing.T) {
	sampler := &queueSampler{actions: [][]float64{{1, 0}, {2, 0}}}
	policy := &fixedPolicy{action: []float64{2.5, 9}}

	s, err := NewSelector(&firstValue{}, policy, sampler, 0, 0.2, 2, 10,
		constSource(math.MaxUint64))
	require.NoError(t, err)

	action, branch, err := s.Select(state, 3)
	require.NoError(t, err)
	assert.Equal(t, Proposed, branch)
	assert.Equal(t, []float64{2.5, 9}, action.RawVector().Data)

	policy.action = []float64{-1, 9}
	action, branch, err = s.Select(state, 3)
	require.NoError(t, err)
	assert.Equal(t, Sampled, branch)
	assert.Equal(t, []float64{2, 0}, action.RawVector().Data)
}

func TestSelectorSeeded(t *testing.T) {
	// The same source yields the same sequence of branches
	branches := func() []Branch {
		sampler := &queueSampler{actions: [][]float64{{1, 0}, {2, 0}}}
		s, err := NewSelector(&firstValue{}, &fixedPolicy{action: []float64{
			1.5, 0}}, sampler, 0, 0.9, 2, 1000, rand.NewSource(42))
		require.NoError(t, err)

		var out []Branch
		for i := 0; i < 50; i++ {
			_, b, err := s.Select(state, i)
			require.NoError(t, err)
			out = append(out, b)
		}
		return out
	}
	assert.Equal(t, branches(), branches())
}

func TestNewSelectorInvalid(t *testing.T) {
	v, p, q := &firstValue{}, &fixedPolicy{}, &queueSampler{}

	_, err := NewSelector(v, p, q, -1, 0.2, 1, 10, constSource(0))
	assert.Error(t, err)
	_, err = NewSelector(v, p, q, 0, 1.2, 1, 10, constSource(0))
	assert.Error(t, err)
	_, err = NewSelector(v, p, q, 0, 0.2, 0, 10, constSource(0))
	assert.Error(t, err)
	_, err = NewSelector(v, p, q, 0, 0.2, 1, 0, constSource(0))
	assert.Error(t, err)
}

func TestBranchString(t *testing.T) {
	assert.Equal(t, "Warmup", Warmup.String())
	assert.Equal(t, "Proposed", Proposed.String())
	assert.Equal(t, "Branch(7)", Branch(7).String())
}
