package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/robotac/agent/actorcritic"
	env "github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/estimator/linear"
	"github.com/samuelfneumann/robotac/experiment/plot"
	ts "github.com/samuelfneumann/robotac/timestep"
)

// stubEnv ends each episode after length steps with a reward of 1 per
// step
type stubEnv struct {
	length int
	steps  int
}

func (s *stubEnv) Reset() ts.TimeStep {
	s.steps = 0
	return ts.New(ts.First, 0, mat.NewVecDense(2, nil), 0)
}

func (s *stubEnv) Step(action *mat.VecDense) (ts.TimeStep, bool) {
	s.steps++
	obs := mat.NewVecDense(2, []float64{float64(s.steps), 1})
	if s.steps >= s.length {
		return ts.New(ts.Last, 1, obs, s.steps), true
	}
	return ts.New(ts.Mid, 1, obs, s.steps), false
}

func (s *stubEnv) RandomAction() *mat.VecDense {
	return mat.NewVecDense(1, []float64{0.25})
}

func (s *stubEnv) ObservationSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(2, nil), env.Observation,
		mat.NewVecDense(2, []float64{-10, -10}),
		mat.NewVecDense(2, []float64{10, 10}), env.Continuous)
}

func (s *stubEnv) ActionSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Action,
		mat.NewVecDense(1, []float64{-1}),
		mat.NewVecDense(1, []float64{1}), env.Continuous)
}

// countingAgent acts randomly and counts calls to its learning and
// checkpointing methods
type countingAgent struct {
	e         env.Environment
	retrained []int
	saves     int
	loads     int
	flushed   int
	discarded int
	episode   int
}

func (c *countingAgent) ObserveFirst(ts.TimeStep) error { return nil }

func (c *countingAgent) Observe(mat.Vector, ts.TimeStep) error { return nil }

func (c *countingAgent) EndEpisode(done bool) error {
	if done {
		c.flushed++
	} else {
		c.discarded++
	}
	c.episode++
	return nil
}

func (c *countingAgent) Step() error {
	c.retrained = append(c.retrained, c.episode-1)
	return nil
}

func (c *countingAgent) SelectAction(ts.TimeStep) (*mat.VecDense, error) {
	return c.e.RandomAction(), nil
}

func (c *countingAgent) Save() error {
	c.saves++
	return nil
}

func (c *countingAgent) Load() error {
	c.loads++
	return nil
}

func testConfig(t *testing.T, episodes int) Config {
	t.Helper()
	dir := t.TempDir()

	c := DefaultConfig()
	c.Episodes = episodes
	c.Agent.Warmup = 2
	c.Agent.ValueFile = filepath.Join(dir, "value.gob")
	c.Agent.PolicyFile = filepath.Join(dir, "policy.gob")
	l := linear.DefaultConfig()
	c.Agent.Value = actorcritic.EstimatorConfig{Type: actorcritic.Linear,
		Linear: &l}
	c.Agent.Policy = actorcritic.EstimatorConfig{Type: actorcritic.Linear,
		Linear: &l}
	c.Diagnostics = Diagnostics{
		Kind:        plot.PNG,
		Plot:        filepath.Join(dir, "lengths.png"),
		LengthsFile: filepath.Join(dir, "lengths.bin"),
		ReturnsFile: filepath.Join(dir, "returns.bin"),
	}
	return c
}

func TestStubReturns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := &stubEnv{length: 3}
	c := testConfig(t, 1)

	a, err := actorcritic.New(e, c.Agent, c.Episodes, c.Seed, logger)
	require.NoError(t, err)
	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)

	require.NoError(t, exp.Run(context.Background()))

	_, _, _, returns, err := a.Memory().Data()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.5725, 1.85, 1.0},
		mat.Col(nil, 0, returns), 1e-9)

	assert.Equal(t, []float64{2}, exp.Lengths())
	assert.Equal(t, []float64{3}, exp.Returns())
	assert.FileExists(t, c.Agent.ValueFile)

	var finished *logrus.Entry
	for i := range hook.Entries {
		if hook.Entries[i].Message == "episode finished" {
			finished = &hook.Entries[i]
		}
	}
	require.NotNil(t, finished)
	assert.Equal(t, 2, finished.Data["steps"])
	assert.Equal(t, 3.0, finished.Data["score"])
	assert.FileExists(t, c.Agent.PolicyFile)
}

func TestCadence(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 41)

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.Equal(t, []int{5, 10, 15, 20, 25, 30, 35, 40}, a.retrained)

	// Episodes 20 and 40, then the final save
	assert.Equal(t, 3, a.saves)
	assert.Zero(t, a.loads)
	assert.Equal(t, 41, a.flushed)
	assert.Len(t, exp.Lengths(), 41)
}

func TestCadenceAfterWarmup(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 41)
	c.Agent.Warmup = 25

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.Equal(t, []int{25, 30, 35, 40}, a.retrained)
	assert.Equal(t, 2, a.saves)
}

func TestStepCap(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := &stubEnv{length: 100}
	a := &countingAgent{e: e}
	c := testConfig(t, 30)
	c.MaxEpisodeSteps = 5

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.Empty(t, a.retrained)
	assert.Zero(t, a.flushed)
	assert.Equal(t, 30, a.discarded)
	assert.Equal(t, 1, a.saves)
	assert.Empty(t, exp.Lengths())
	assert.Equal(t, "episode reached step cap", hook.LastEntry().Message)
}

func TestNoSaveWeights(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 41)
	c.SaveWeights = false
	c.LoadPreviousWeights = true

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.Zero(t, a.saves)
	assert.Equal(t, 1, a.loads)
	assert.Len(t, a.retrained, 8)
}

func TestRunStopped(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(ctx))

	assert.Zero(t, a.episode)
	assert.Equal(t, 1, a.saves)
}

func TestObserveOnly(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 10)
	c.ObserveAndTrain = false

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.Zero(t, a.episode)
	assert.Equal(t, 1, a.saves)
}

func TestSaveDiagnostics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := &stubEnv{length: 3}
	a := &countingAgent{e: e}
	c := testConfig(t, 4)

	exp, err := NewWithAgent(e, a, c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))
	require.NoError(t, exp.Save())

	for _, path := range []string{c.Diagnostics.Plot,
		c.Diagnostics.LengthsFile, c.Diagnostics.ReturnsFile} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPhaseOf(t *testing.T) {
	assert.Equal(t, Warmup, PhaseOf(0, 50))
	assert.Equal(t, Warmup, PhaseOf(49, 50))
	assert.Equal(t, ExploreOrExploit, PhaseOf(50, 50))
	assert.Equal(t, ExploreOrExploit, PhaseOf(0, 0))
}

func TestNew(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := testConfig(t, 2)
	c.MaxEpisodeSteps = 3

	exp, err := New(c, logger)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	c.Episodes = 0
	_, err = New(c, logger)
	assert.Error(t, err)
}

func TestConfigSaveLoad(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	c.Episodes = 123
	c.Agent.Candidates = 4
	c.Diagnostics.Kind = plot.HTML

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, c.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, 123, loaded.Episodes)
	assert.Equal(t, 4, loaded.Agent.Candidates)
	assert.Equal(t, plot.HTML, loaded.Diagnostics.Kind)
	assert.Equal(t, c.Env, loaded.Env)
	assert.Equal(t, c.Agent.Value.MLP.HiddenSizes,
		loaded.Agent.Value.MLP.HiddenSizes)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	c.LogLevel = "loud"
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Diagnostics.Kind = "svg"
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.MaxEpisodeSteps = 0
	assert.Error(t, c.Validate())
}
