// Package actorcritic implements an actor-critic agent with Monte-Carlo
// returns and experience replay.
//
// The critic is a value estimator mapping state-action pairs to
// discounted returns. The actor is a policy estimator mapping states to
// actions, trained to reproduce the actions stored in the replay
// memory. Actions are chosen by a Selector consulting both.
package actorcritic

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/robotac/agent"
	env "github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/estimator"
	"github.com/samuelfneumann/robotac/expreplay"
	ts "github.com/samuelfneumann/robotac/timestep"
)

// Agent implements an actor-critic agent. The Agent owns its replay
// memory and both estimators.
type Agent struct {
	logger logrus.FieldLogger
	config Config

	selector *Selector
	value    estimator.ValueEstimator
	policy   estimator.PolicyEstimator

	memory *expreplay.Memory
	buffer *expreplay.Episode

	features, actions int
	prevStep          ts.TimeStep
	episode           int
	branch            Branch
}

var _ agent.Checkpointer = &Agent{}

// Seeds is the number of consecutive seeds used by an Agent created
// with New: the value estimator is seeded with seed, the policy
// estimator with seed+1, and the action selector with seed+2.
const Seeds = 3

// New creates a new actor-critic Agent acting in e for a run of
// episodes episodes. Estimators are constructed from the Config and
// seeded as described by Seeds.
func New(e env.Environment, c Config, episodes int, seed uint64,
	logger logrus.FieldLogger) (*Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	features := e.ObservationSpec().Len()
	actions := e.ActionSpec().Len()

	valueRegressor, err := c.Value.Create(features+actions, 1, seed)
	if err != nil {
		return nil, fmt.Errorf("new: value estimator: %w", err)
	}
	value, err := estimator.NewValue(valueRegressor, features, actions)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	policyRegressor, err := c.Policy.Create(features, actions, seed+1)
	if err != nil {
		return nil, fmt.Errorf("new: policy estimator: %w", err)
	}
	policy, err := estimator.NewPolicy(policyRegressor, features, actions)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return NewWithEstimators(e, value, policy, c, episodes, seed+2, logger)
}

// NewWithEstimators creates a new actor-critic Agent using the argument
// estimators. The estimator configurations in c are ignored and seed
// only seeds the action selector.
func NewWithEstimators(e env.Environment, value estimator.ValueEstimator,
	policy estimator.PolicyEstimator, c Config, episodes int, seed uint64,
	logger logrus.FieldLogger) (*Agent, error) {
	if err := c.validateLearning(); err != nil {
		return nil, fmt.Errorf("newWithEstimators: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	features := e.ObservationSpec().Len()
	actions := e.ActionSpec().Len()

	memory, err := expreplay.NewMemory(features, actions, c.MaxMemoryLen)
	if err != nil {
		return nil, fmt.Errorf("newWithEstimators: %w", err)
	}

	selector, err := NewSelector(value, policy, e, c.Warmup, c.ExploreProb,
		c.Candidates, episodes, rand.NewSource(seed))
	if err != nil {
		return nil, fmt.Errorf("newWithEstimators: %w", err)
	}

	return &Agent{
		logger:   logger,
		config:   c,
		selector: selector,
		value:    value,
		policy:   policy,
		memory:   memory,
		features: features,
		actions:  actions,
	}, nil
}

// ObserveFirst starts recording a new episode at the first timestep t
func (a *Agent) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %v is not the first in "+
			"an episode", t.Number)
	}
	a.buffer = expreplay.NewEpisode(a.features, a.actions)
	a.prevStep = t
	return nil
}

// SelectAction returns the action to take at timestep t
func (a *Agent) SelectAction(t ts.TimeStep) (*mat.VecDense, error) {
	action, branch, err := a.selector.Select(t.Observation, a.episode)
	if err != nil {
		return nil, fmt.Errorf("selectAction: %w", err)
	}
	a.branch = branch

	a.logger.WithFields(logrus.Fields{
		"episode": a.episode,
		"steps":   t.Number,
		"branch":  branch,
	}).Debug("selected action")
	return action, nil
}

// Observe records that action, taken at the previous timestep, lead to
// next
func (a *Agent) Observe(action mat.Vector, next ts.TimeStep) error {
	if a.buffer == nil {
		return fmt.Errorf("observe: no episode started")
	}

	transition := ts.NewTransition(a.prevStep, mat.VecDenseCopyOf(action),
		next)
	if err := a.buffer.Add(transition); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	a.prevStep = next
	return nil
}

// EndEpisode ends the current episode. If done, the returns of the
// episode are computed and the episode is flushed to the replay
// memory. Otherwise the episode is discarded.
func (a *Agent) EndEpisode(done bool) error {
	defer func() {
		a.buffer = nil
		a.episode++
	}()

	if !done || a.buffer == nil {
		return nil
	}
	if err := a.buffer.Finalize(a.config.Discount); err != nil {
		return fmt.Errorf("endEpisode: %w", err)
	}
	if err := a.memory.Flush(a.buffer); err != nil {
		return fmt.Errorf("endEpisode: %w", err)
	}
	return nil
}

// Step retrains both estimators on the entire replay memory
func (a *Agent) Step() error {
	stateActions, states, actions, returns, err := a.memory.Data()
	if expreplay.IsEmptyMemory(err) {
		a.logger.Warn("replay memory is empty, skipping retraining")
		return nil
	} else if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"episode": a.lastEpisode(),
		"memory":  a.memory.Len(),
	}).Info("retraining estimators")

	err = a.value.Train(stateActions, returns, a.config.Epochs,
		a.config.BatchSize)
	if err != nil {
		return fmt.Errorf("step: value estimator: %w", err)
	}
	err = a.policy.Train(states, actions, a.config.Epochs,
		a.config.BatchSize)
	if err != nil {
		return fmt.Errorf("step: policy estimator: %w", err)
	}
	return nil
}

// Save writes the weights of both estimators to their checkpoint files
func (a *Agent) Save() error {
	a.logger.WithFields(logrus.Fields{
		"episode": a.lastEpisode(),
		"value":   a.config.ValueFile,
		"policy":  a.config.PolicyFile,
	}).Info("saving estimators")

	if err := a.value.Save(a.config.ValueFile); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := a.policy.Save(a.config.PolicyFile); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load restores both estimators from their checkpoint files. An
// estimator whose file is missing keeps its fresh weights.
func (a *Agent) Load() error {
	files := []string{a.config.ValueFile, a.config.PolicyFile}
	for i, est := range []estimator.Checkpointer{a.value, a.policy} {
		err := est.Load(files[i])
		if estimator.IsCheckpointMissing(err) {
			a.logger.WithField("file", files[i]).Warn(
				"checkpoint missing, using fresh weights")
		} else if err != nil {
			return fmt.Errorf("load: %w", err)
		} else {
			a.logger.WithField("file", files[i]).Info("loaded checkpoint")
		}
	}
	return nil
}

// Episode returns the index of the current episode
func (a *Agent) Episode() int {
	return a.episode
}

// lastEpisode returns the index of the most recently ended episode, or
// -1 if no episode has ended
func (a *Agent) lastEpisode() int {
	return a.episode - 1
}

// LastBranch returns how the most recent action was selected
func (a *Agent) LastBranch() Branch {
	return a.branch
}

// Memory returns the Agent's replay memory
func (a *Agent) Memory() *expreplay.Memory {
	return a.memory
}

// Selector returns the Agent's action selector
func (a *Agent) Selector() *Selector {
	return a.selector
}
