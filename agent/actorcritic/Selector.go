package actorcritic

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/robotac/estimator"
	"github.com/samuelfneumann/robotac/utils/floatutils"
)

// Branch describes how an action was selected
type Branch int

const (
	// Warmup actions are random actions taken before the estimators
	// are consulted
	Warmup Branch = iota

	// Explore actions are random actions taken with the exploration
	// probability
	Explore

	// Sampled actions are the best scoring random candidates
	Sampled

	// Proposed actions are proposals of the policy estimator which
	// scored strictly higher than every random candidate
	Proposed
)

func (b Branch) String() string {
	switch b {
	case Warmup:
		return "Warmup"
	case Explore:
		return "Explore"
	case Sampled:
		return "Sampled"
	case Proposed:
		return "Proposed"
	}
	return fmt.Sprintf("Branch(%d)", int(b))
}

// Sampler samples random actions
type Sampler interface {
	RandomAction() *mat.VecDense
}

// Selector selects actions by blending random exploration, the best of
// several random candidates as scored by a value estimator, and the
// proposal of a policy estimator.
//
// For the first Warmup episodes, actions are always random. Afterwards,
// a random action is taken with a probability that decays linearly from
// its starting value to zero over all episodes. Otherwise, K random
// candidates are scored and the first highest scoring one is kept. The
// policy's proposal replaces it only if its score is strictly greater.
type Selector struct {
	value   estimator.ValueEstimator
	policy  estimator.PolicyEstimator
	sampler Sampler
	u       distuv.Uniform

	warmup      int
	exploreProb float64
	candidates  int
	episodes    int
}

// NewSelector returns a new Selector. The episodes argument is the total
// number of episodes over which the exploration probability decays.
// Exploration draws use src.
func NewSelector(value estimator.ValueEstimator,
	policy estimator.PolicyEstimator, sampler Sampler, warmup int,
	exploreProb float64, candidates, episodes int,
	src rand.Source) (*Selector, error) {
	if warmup < 0 {
		return nil, fmt.Errorf("newSelector: warmup must be non-negative")
	}
	if exploreProb < 0 || exploreProb > 1 {
		return nil, fmt.Errorf("newSelector: explore probability %v not "+
			"in [0, 1]", exploreProb)
	}
	if candidates < 1 {
		return nil, fmt.Errorf("newSelector: need at least one candidate")
	}
	if episodes < 1 {
		return nil, fmt.Errorf("newSelector: need at least one episode")
	}

	return &Selector{
		value:       value,
		policy:      policy,
		sampler:     sampler,
		u:           distuv.Uniform{Min: 0, Max: 1, Src: src},
		warmup:      warmup,
		exploreProb: exploreProb,
		candidates:  candidates,
		episodes:    episodes,
	}, nil
}

// ExploreProb returns the probability of a random action at episode.
// It is negative past the final episode, so that no random actions are
// taken.
func (s *Selector) ExploreProb(episode int) float64 {
	return s.exploreProb - (s.exploreProb/float64(s.episodes))*float64(episode)
}

// Select returns the action to take in state during episode and the
// branch that chose it
func (s *Selector) Select(state mat.Vector, episode int) (*mat.VecDense,
	Branch, error) {
	if episode < s.warmup {
		return s.sampler.RandomAction(), Warmup, nil
	}

	if s.u.Rand() < s.ExploreProb(episode) {
		return s.sampler.RandomAction(), Explore, nil
	}

	candidates := make([]*mat.VecDense, s.candidates)
	scores := make([]float64, s.candidates)
	for i := range candidates {
		candidates[i] = s.sampler.RandomAction()
		score, err := s.value.Estimate(state, candidates[i])
		if err != nil {
			return nil, Sampled, fmt.Errorf("select: %w", err)
		}
		scores[i] = score
	}
	best := floatutils.ArgMax(scores)

	proposal, err := s.policy.Propose(state)
	if err != nil {
		return nil, Sampled, fmt.Errorf("select: %w", err)
	}
	score, err := s.value.Estimate(state, proposal)
	if err != nil {
		return nil, Sampled, fmt.Errorf("select: %w", err)
	}

	if score > scores[best] {
		return proposal, Proposed, nil
	}
	return candidates[best], Sampled, nil
}
