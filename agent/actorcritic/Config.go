package actorcritic

import (
	"fmt"

	"github.com/samuelfneumann/robotac/estimator"
	"github.com/samuelfneumann/robotac/estimator/linear"
	"github.com/samuelfneumann/robotac/estimator/mlp"
)

// EstimatorType describes the regression backend of an estimator
type EstimatorType string

// Available estimator backends
const (
	MLP    EstimatorType = "MLP"
	Linear EstimatorType = "Linear"
)

// EstimatorConfig configures the regression backend of an estimator.
// Only the configuration named by Type is used.
type EstimatorConfig struct {
	Type   EstimatorType
	MLP    *mlp.Config    `json:",omitempty"`
	Linear *linear.Config `json:",omitempty"`
}

// Validate returns an error if the EstimatorConfig cannot create a
// Regressor
func (e EstimatorConfig) Validate() error {
	switch e.Type {
	case MLP:
		if e.MLP == nil {
			return fmt.Errorf("validate: no MLP configuration")
		}
		return e.MLP.Validate()
	case Linear:
		if e.Linear == nil {
			return fmt.Errorf("validate: no Linear configuration")
		}
		if e.Linear.StepSize <= 0 {
			return fmt.Errorf("validate: step size must be positive")
		}
		return nil
	}
	return fmt.Errorf("validate: unknown estimator type %q", e.Type)
}

// Create returns a Regressor mapping inputs to outputs. The seed of the
// backend configuration is replaced by seed.
func (e EstimatorConfig) Create(inputs, outputs int,
	seed uint64) (estimator.Regressor, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	var r estimator.Regressor
	var err error
	switch e.Type {
	case MLP:
		c := *e.MLP
		c.Seed = seed
		r, err = mlp.New(inputs, outputs, c)
	default:
		c := *e.Linear
		c.Seed = seed
		r, err = linear.New(inputs, outputs, c)
	}
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return r, nil
}

// Config configures an actor-critic Agent
type Config struct {
	// Warmup is the number of episodes during which all actions are
	// random and the estimators are neither trained nor saved
	Warmup int

	// ExploreProb is the probability of a random action on the first
	// episode after warmup, decaying linearly to zero over the run
	ExploreProb float64

	// Candidates is the number of random actions scored per step
	Candidates int

	Discount     float64
	MaxMemoryLen int

	// Epochs and BatchSize configure retraining on the replay memory
	Epochs    int
	BatchSize int

	// RetrainEvery and CheckpointEvery are episode cadences measured
	// after warmup
	RetrainEvery    int
	CheckpointEvery int

	Value  EstimatorConfig
	Policy EstimatorConfig

	ValueFile  string
	PolicyFile string
}

// DefaultConfig returns the configuration of the reference run
func DefaultConfig(seed uint64) Config {
	value := mlp.DefaultValueConfig(seed)
	policy := mlp.DefaultPolicyConfig(seed + 1)

	return Config{
		Warmup:          50,
		ExploreProb:     0.20,
		Candidates:      9,
		Discount:        0.85,
		MaxMemoryLen:    5000,
		Epochs:          4,
		BatchSize:       256,
		RetrainEvery:    5,
		CheckpointEvery: 20,
		Value:           EstimatorConfig{Type: MLP, MLP: &value},
		Policy:          EstimatorConfig{Type: MLP, MLP: &policy},
		ValueFile:       "obstacle-avoidance-v1-weights.gob",
		PolicyFile:      "obstacle-avoidance-v1-weights-ap.gob",
	}
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if err := c.validateLearning(); err != nil {
		return err
	}
	if err := c.Value.Validate(); err != nil {
		return fmt.Errorf("validate: value estimator: %w", err)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("validate: policy estimator: %w", err)
	}
	return nil
}

// validateLearning validates all but the estimator configurations
func (c Config) validateLearning() error {
	if c.Warmup < 0 {
		return fmt.Errorf("validate: warmup must be non-negative")
	}
	if c.ExploreProb < 0 || c.ExploreProb > 1 {
		return fmt.Errorf("validate: explore probability %v not in [0, 1]",
			c.ExploreProb)
	}
	if c.Candidates < 1 {
		return fmt.Errorf("validate: need at least one candidate")
	}
	if c.Discount <= 0 || c.Discount >= 1 {
		return fmt.Errorf("validate: discount %v not in (0, 1)", c.Discount)
	}
	if c.MaxMemoryLen < 1 {
		return fmt.Errorf("validate: memory length must be positive")
	}
	if c.Epochs < 1 || c.BatchSize < 1 {
		return fmt.Errorf("validate: epochs (%v) and batch size (%v) must "+
			"be positive", c.Epochs, c.BatchSize)
	}
	if c.RetrainEvery < 1 || c.CheckpointEvery < 1 {
		return fmt.Errorf("validate: cadences must be positive")
	}
	return nil
}
