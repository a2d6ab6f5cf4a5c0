// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/robotac/agent"
	"github.com/samuelfneumann/robotac/agent/actorcritic"
	env "github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/environment/envconfig"
	"github.com/samuelfneumann/robotac/experiment/checkpointer"
	"github.com/samuelfneumann/robotac/experiment/plot"
	"github.com/samuelfneumann/robotac/experiment/tracker"
	"github.com/samuelfneumann/robotac/expreplay"
	ts "github.com/samuelfneumann/robotac/timestep"
	"github.com/samuelfneumann/robotac/utils/progressbar"
)

// Phase is a phase of training, determined by the episode index only
type Phase string

const (
	// Warmup episodes take random actions and do not train
	Warmup Phase = "Warmup"

	// ExploreOrExploit episodes blend exploration with the estimators
	ExploreOrExploit Phase = "ExploreOrExploit"
)

// PhaseOf returns the phase of episode given the number of warmup
// episodes
func PhaseOf(episode, warmup int) Phase {
	if episode < warmup {
		return Warmup
	}
	return ExploreOrExploit
}

// Episodic runs an agent on an environment for a fixed number of
// episodes. Episodes that finish are used to retrain the agent every
// few episodes after warmup, and the agent is checkpointed periodically
// and at the end of the run.
type Episodic struct {
	environment env.Environment
	agent       agent.Checkpointer
	config      Config
	logger      logrus.FieldLogger

	retrain    checkpointer.Checkpointer
	checkpoint checkpointer.Checkpointer

	lengths  *tracker.EpisodeLength
	returns  *tracker.Return
	trackers []tracker.Tracker

	bar *progressbar.ManualProgressBar
}

// New creates a new Episodic experiment from a Config, constructing its
// environment and actor-critic agent
func New(c Config, logger logrus.FieldLogger) (*Episodic, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	e, _, err := c.Env.Create(c.Seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create environment: %w", err)
	}

	a, err := actorcritic.New(e, c.Agent, c.Episodes, c.Seed+envconfig.Seeds,
		logger)
	if err != nil {
		return nil, fmt.Errorf("new: could not create agent: %w", err)
	}

	return NewWithAgent(e, a, c, logger)
}

// NewWithAgent creates a new Episodic experiment running a on e. Only
// the driver and agent cadence settings of c are used.
func NewWithAgent(e env.Environment, a agent.Checkpointer, c Config,
	logger logrus.FieldLogger) (*Episodic, error) {
	if c.Episodes < 1 || c.MaxEpisodeSteps < 1 {
		return nil, fmt.Errorf("newWithAgent: episodes (%v) and maximum "+
			"episode steps (%v) must be positive", c.Episodes,
			c.MaxEpisodeSteps)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	retrain, err := checkpointer.NewNStep(c.Agent.RetrainEvery,
		c.Agent.Warmup, checkpointer.Func(a.Step))
	if err != nil {
		return nil, fmt.Errorf("newWithAgent: %w", err)
	}
	checkpoint, err := checkpointer.NewNStep(c.Agent.CheckpointEvery,
		c.Agent.Warmup, a)
	if err != nil {
		return nil, fmt.Errorf("newWithAgent: %w", err)
	}

	lengths := tracker.NewEpisodeLength(c.Diagnostics.LengthsFile)
	returns := tracker.NewReturn(c.Diagnostics.ReturnsFile)

	return &Episodic{
		environment: e,
		agent:       a,
		config:      c,
		logger:      logger,
		retrain:     retrain,
		checkpoint:  checkpoint,
		lengths:     lengths,
		returns:     returns,
		trackers:    []tracker.Tracker{lengths, returns},
	}, nil
}

// Register registers a new Tracker with the experiment so that data
// generated during the experiment is tracked
func (e *Episodic) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// ShowProgress displays a progress bar over episodes on out
func (e *Episodic) ShowProgress(out io.Writer) {
	e.bar = progressbar.NewManualProgressBar(out, 50, e.config.Episodes)
}

// Run runs all episodes of the experiment. The run stops early, between
// episodes, when ctx is done. If weights are saved, they are saved
// after the final episode regardless of the checkpointing cadence.
func (e *Episodic) Run(ctx context.Context) error {
	if e.config.LoadPreviousWeights {
		if err := e.agent.Load(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	if e.config.ObserveAndTrain {
		if err := e.runEpisodes(ctx); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	if e.config.SaveWeights {
		if err := e.agent.Save(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	return nil
}

func (e *Episodic) runEpisodes(ctx context.Context) error {
	if e.bar != nil {
		defer e.bar.Close()
	}

	for episode := 0; episode < e.config.Episodes; episode++ {
		select {
		case <-ctx.Done():
			e.logger.WithField("episode", episode).Warn(
				"run stopped before final episode")
			return nil
		default:
		}

		done, err := e.RunEpisode(episode)
		if err != nil {
			return err
		}

		if done && episode >= e.config.Agent.Warmup {
			if err := e.retrain.Checkpoint(episode); err != nil {
				return err
			}
			if e.config.SaveWeights {
				if err := e.checkpoint.Checkpoint(episode); err != nil {
					return err
				}
			}
		}

		if e.bar != nil {
			e.bar.Increment()
			e.bar.Display()
		}
	}
	return nil
}

// RunEpisode runs a single episode of the experiment and returns
// whether the episode reached a terminal step before the step cap
func (e *Episodic) RunEpisode(episode int) (bool, error) {
	step := e.environment.Reset()
	if err := e.agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}
	e.track(step)

	var total float64
	done := false
	for i := 0; i < e.config.MaxEpisodeSteps && !done; i++ {
		action, err := e.agent.SelectAction(step)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		step, done = e.environment.Step(action)
		e.track(step)
		if err := e.agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		total += step.Reward
	}

	if err := e.agent.EndEpisode(done); err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}

	// steps is the zero-based index of the last step, as recorded by the
	// episode length tracker
	fields := logrus.Fields{
		"episode": episode,
		"phase":   PhaseOf(episode, e.config.Agent.Warmup),
		"steps":   step.Number - 1,
		"reward":  step.Reward,
		"score":   total,
	}
	if m, ok := e.agent.(interface{ Memory() *expreplay.Memory }); ok {
		fields["memory"] = m.Memory().Len()
	}
	entry := e.logger.WithFields(fields)
	if done {
		entry.Info("episode finished")
	} else {
		entry.Warn("episode reached step cap")
	}
	return done, nil
}

// track sends the timestep to each Tracker
func (e *Episodic) track(t ts.TimeStep) {
	for _, tr := range e.trackers {
		tr.Track(t)
	}
}

// Lengths returns the lengths of finished episodes
func (e *Episodic) Lengths() []float64 {
	return e.lengths.Data()
}

// Returns returns the returns of finished episodes
func (e *Episodic) Returns() []float64 {
	return e.returns.Data()
}

// Save saves the tracked data and renders the diagnostics configured
func (e *Episodic) Save() error {
	d := e.config.Diagnostics
	if d.LengthsFile != "" {
		if err := e.lengths.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	if d.ReturnsFile != "" {
		if err := e.returns.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	for _, t := range e.trackers[2:] {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	if d.Kind != plot.None && d.Plot != "" {
		mean, std := plot.Summary(e.lengths.Data())
		e.logger.WithFields(logrus.Fields{
			"plot": d.Plot,
			"mean": mean,
			"std":  std,
		}).Info("rendering episode lengths")

		if err := plot.EpisodeLengths(d.Kind, d.Plot,
			e.lengths.Data()); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}
