package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/robotac/agent/actorcritic"
	"github.com/samuelfneumann/robotac/environment/envconfig"
	"github.com/samuelfneumann/robotac/experiment/plot"
)

// Diagnostics configures the data saved at the end of a run. Empty
// file names disable the corresponding output.
type Diagnostics struct {
	// Kind and Plot configure the rendering of episode lengths
	Kind plot.Kind
	Plot string

	// LengthsFile and ReturnsFile store the raw per-episode data
	LengthsFile string
	ReturnsFile string
}

// Config represents a configuration of an experiment
type Config struct {
	Env   envconfig.Config
	Agent actorcritic.Config

	Episodes        int
	MaxEpisodeSteps int

	// ObserveAndTrain runs the episode loop. If false, weights are
	// only loaded and saved.
	ObserveAndTrain     bool
	SaveWeights         bool
	LoadPreviousWeights bool

	LogLevel    string
	ProgressBar bool
	Diagnostics Diagnostics

	Seed uint64
}

// DefaultConfig returns the configuration of the reference run
func DefaultConfig() Config {
	return Config{
		Env:                 envconfig.Default(),
		Agent:               actorcritic.DefaultConfig(0),
		Episodes:            20000,
		MaxEpisodeSteps:     5000,
		ObserveAndTrain:     true,
		SaveWeights:         true,
		LoadPreviousWeights: false,
		LogLevel:            logrus.InfoLevel.String(),
		Diagnostics: Diagnostics{
			Kind:        plot.PNG,
			Plot:        "episode-lengths.png",
			LengthsFile: "episode-lengths.bin",
			ReturnsFile: "episode-returns.bin",
		},
		Seed: 0,
	}
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("validate: need at least one episode")
	}
	if c.MaxEpisodeSteps < 1 {
		return fmt.Errorf("validate: need at least one step per episode")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := plot.ParseKind(string(c.Diagnostics.Kind)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Env.Validate(); err != nil {
		return fmt.Errorf("validate: environment: %w", err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	return nil
}

// LoadConfig reads a JSON Config from filename. Fields missing from the
// file keep their default values.
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	c := DefaultConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %w",
			filename, err)
	}
	return c, nil
}

// Save writes the Config to filename as indented JSON
func (c Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
