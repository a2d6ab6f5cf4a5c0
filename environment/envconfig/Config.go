// Package envconfig provides configuration structs for configuring the
// obstacle avoidance environment with default scene parameters.
// Environment configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	env "github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/environment/obstacle"
	"github.com/samuelfneumann/robotac/kinematics"
	ts "github.com/samuelfneumann/robotac/timestep"
)

// BoxConfig configures a single box obstacle. Position is the corner of
// the box with the smallest coordinates.
type BoxConfig struct {
	Size     [3]float64
	Position [3]float64
}

// PoseConfig configures a pose of the arm's tool flange. Euler holds the
// alpha, beta, and gamma Euler angles of the pose's orientation.
type PoseConfig struct {
	Position [3]float64
	Euler    [3]float64
	Flip     bool
}

// Config implements a specific configuration of the obstacle avoidance
// environment
type Config struct {
	Obstacles    []BoxConfig
	Initial      PoseConfig
	Target       PoseConfig
	Radius       float64
	CutOff       float64
	MaxJointStep float64

	// StartJitter perturbs each coordinate of the starting position of
	// the tool flange uniformly in [-StartJitter, StartJitter]. No
	// perturbation is applied if zero.
	StartJitter float64

	// EpisodeCutoff ends episodes after this many steps, if non-zero.
	// Episodes ended this way are done, in contrast to the training
	// driver's own step cap.
	EpisodeCutoff uint
}

// Default returns the reference scene: a single 10x10x40 box with the
// arm moving from [-10, 25, 10] to [10, 25, 10].
func Default() Config {
	return Config{
		Obstacles: []BoxConfig{{
			Size:     [3]float64{10, 10, 40},
			Position: [3]float64{-5, 25, 0},
		}},
		Initial:      PoseConfig{Position: [3]float64{-10, 25, 10}, Flip: true},
		Target:       PoseConfig{Position: [3]float64{10, 25, 10}, Flip: true},
		Radius:       2.0,
		CutOff:       4,
		MaxJointStep: obstacle.DefaultMaxJointStep,
	}
}

// Pose returns the kinematics pose described by the config
func (p PoseConfig) Pose() kinematics.Pose3D {
	pose := kinematics.NewPose3D(vec(p.Position), p.Flip)
	pose.SetEuler(p.Euler[0], p.Euler[1], p.Euler[2])
	return pose
}

// Scene returns the scene described by the config
func (c Config) Scene() (obstacle.Scene, error) {
	boxes := make([]obstacle.Box, len(c.Obstacles))
	for i, b := range c.Obstacles {
		box, err := obstacle.NewBox(vec(b.Size), vec(b.Position))
		if err != nil {
			return obstacle.Scene{}, fmt.Errorf("scene: obstacle %d: %w", i,
				err)
		}
		boxes[i] = box
	}

	scene := obstacle.Scene{
		Obstacles:    boxes,
		Initial:      c.Initial.Pose(),
		Target:       c.Target.Pose(),
		Radius:       c.Radius,
		CutOff:       c.CutOff,
		MaxJointStep: c.MaxJointStep,
	}
	return scene, scene.Validate()
}

// Validate returns an error if the config describes an environment
// which cannot be created
func (c Config) Validate() error {
	if c.StartJitter < 0 {
		return fmt.Errorf("validate: start jitter must be non-negative")
	}
	_, err := c.Scene()
	return err
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment. The environment uses Seeds
// seeds starting at seed.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	scene, err := c.Scene()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	var starter env.Starter
	if c.StartJitter > 0 {
		bounds := make([]r1.Interval, 3)
		for i, p := range c.Initial.Position {
			bounds[i] = r1.Interval{
				Min: p - c.StartJitter,
				Max: p + c.StartJitter,
			}
		}
		starter = env.NewUniformStarter(bounds, seed+1)
	}

	var ender env.Ender
	if c.EpisodeCutoff > 0 {
		ender = env.NewStepLimit(int(c.EpisodeCutoff))
	}

	arm, first, err := obstacle.New(scene, starter, ender, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}
	return arm, first, nil
}

// Seeds is the number of consecutive seeds, starting at the seed passed
// to Create, used by the environment. Random actions are drawn with the
// first and start positions with the second.
const Seeds = 2

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
