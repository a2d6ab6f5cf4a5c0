// Package obstacle implements an obstacle avoidance environment for a
// 6-axis arm. The end effector of the arm starts at an initial pose and
// must be moved to within some cut-off distance of a target pose
// without any part of the arm touching the box obstacles in the scene.
package obstacle

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/kinematics"
	ts "github.com/samuelfneumann/robotac/timestep"
	"github.com/samuelfneumann/robotac/utils/matutils"
)

const (
	ObservationDims int = 30
	ActionDims      int = 5

	DefaultMaxJointStep float64 = 0.1
	GoalReward          float64 = 10.0
	CollisionReward     float64 = -10.0
	StepPenalty         float64 = 0.01

	// Points sampled along each arm segment for collision checks
	segmentSamples int = 8
)

// JointBound bounds each joint angle to [-JointBound, JointBound]
const JointBound float64 = 2 * math.Pi

// Reach is the farthest any joint of the arm can be from the base
const Reach float64 = kinematics.D1 + kinematics.A2 + kinematics.D4 +
	kinematics.D6

// Scene describes the obstacles, start, and goal of the environment
type Scene struct {
	Obstacles []Box
	Initial   kinematics.Pose3D
	Target    kinematics.Pose3D

	// Radius is the thickness of the arm, the arm collides with an
	// obstacle when any point sampled along it is within Radius of the
	// obstacle
	Radius float64

	// CutOff is the distance to the target at which the episode ends
	CutOff float64

	// MaxJointStep is the largest change in any joint angle per step
	MaxJointStep float64
}

// Validate returns an error if the scene cannot be simulated
func (s Scene) Validate() error {
	if len(s.Obstacles) == 0 {
		return fmt.Errorf("validate: scene must have at least one obstacle")
	}
	if s.Radius < 0 {
		return fmt.Errorf("validate: radius must be non-negative")
	}
	if s.CutOff <= 0 {
		return fmt.Errorf("validate: cut-off must be positive")
	}
	if s.MaxJointStep <= 0 {
		return fmt.Errorf("validate: max joint step must be positive")
	}
	if s.Initial.Orientation == nil || s.Target.Orientation == nil {
		return fmt.Errorf("validate: poses must have an orientation")
	}
	if _, err := kinematics.InverseKinematics(s.Initial); err != nil {
		return fmt.Errorf("validate: initial pose: %w", err)
	}
	if _, err := kinematics.InverseKinematics(s.Target); err != nil {
		return fmt.Errorf("validate: target pose: %w", err)
	}
	return nil
}

// Arm implements the obstacle avoidance environment.
//
// State is the five joint angles q1 through q5 of the arm. Actions are
// increments to each joint angle, clipped to [-MaxJointStep,
// MaxJointStep]. After each action forward kinematics gives the
// positions of the shoulder (p1), elbow (p2), wrist centre (p4) and
// tool flange (p6).
//
// Observations are 30-dimensional and hold, in order: the joint angles
// (5), p1, p2, p4, p6 (12), the target position (3), the vector from the
// tool flange to the target (3), the centre (3) and half-extents (3) of
// the obstacle nearest the arm, and the clearance between the arm and
// that obstacle (1).
//
// Rewards are the decrease in distance between the tool flange and the
// target, plus GoalReward when the tool is within CutOff of the target.
// A collision ends the episode with reward CollisionReward. Every other
// step is penalized by StepPenalty.
//
// Arm implements the environment.Environment interface
type Arm struct {
	scene   Scene
	starter environment.Starter
	ender   environment.Ender

	joints       *mat.VecDense
	jointBounds  []r1.Interval
	actionBounds []r1.Interval
	rand         *distmv.Uniform

	lastStep ts.TimeStep
	distance float64
}

// New returns a new Arm environment and its first TimeStep.
//
// The starter samples the starting position of the tool flange, the
// orientation and flip of the starting pose are taken from the scene.
// If starter is nil, every episode starts at the scene's initial pose.
// The ender may be nil, in which case episodes end only on reaching the
// target or on collision.
func New(scene Scene, starter environment.Starter, ender environment.Ender,
	seed uint64) (*Arm, ts.TimeStep, error) {
	if err := scene.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	if starter == nil {
		pos := scene.Initial.Position
		starter = environment.NewFixedStarter(
			mat.NewVecDense(3, []float64{pos.X, pos.Y, pos.Z}),
		)
	}

	jointBounds := make([]r1.Interval, ActionDims)
	actionBounds := make([]r1.Interval, ActionDims)
	for i := range jointBounds {
		jointBounds[i] = r1.Interval{Min: -JointBound, Max: JointBound}
		actionBounds[i] = r1.Interval{
			Min: -scene.MaxJointStep,
			Max: scene.MaxJointStep,
		}
	}

	source := rand.NewSource(seed)
	a := &Arm{
		scene:        scene,
		starter:      starter,
		ender:        ender,
		jointBounds:  jointBounds,
		actionBounds: actionBounds,
		rand:         distmv.NewUniform(actionBounds, source),
	}

	return a, a.Reset(), nil
}

// Reset resets the environment and returns the first TimeStep of the
// next episode. If the sampled starting position cannot be reached,
// the scene's initial pose is used.
func (a *Arm) Reset() ts.TimeStep {
	start := a.starter.Start()
	pose := a.scene.Initial
	pose.Position = r3.Vec{X: start.AtVec(0), Y: start.AtVec(1),
		Z: start.AtVec(2)}

	angles, err := kinematics.InverseKinematics(pose)
	if err != nil {
		angles, _ = kinematics.InverseKinematics(a.scene.Initial)
	}
	a.joints = mat.NewVecDense(ActionDims, angles.Joints())

	obs, p6, _ := a.observe()
	a.distance = r3.Norm(r3.Sub(a.scene.Target.Position, p6))

	a.lastStep = ts.New(ts.First, 0, obs, 0)
	return a.lastStep
}

// Step takes one environmental step given some action and returns the
// next TimeStep and whether or not the episode is done. Step panics if
// the action does not have ActionDims elements.
func (a *Arm) Step(action *mat.VecDense) (ts.TimeStep, bool) {
	if action.Len() != ActionDims {
		panic(fmt.Sprintf("step: action must have %v dimensions, got %v",
			ActionDims, action.Len()))
	}

	clipped := matutils.VecClipInterval(action, a.actionBounds)
	a.joints.AddVec(a.joints, clipped)
	a.joints = matutils.VecClipInterval(a.joints, a.jointBounds)

	obs, p6, clearance := a.observe()
	distance := r3.Norm(r3.Sub(a.scene.Target.Position, p6))

	var reward float64
	done := true
	switch {
	case clearance < 0:
		reward = CollisionReward
	case distance < a.scene.CutOff:
		reward = a.distance - distance + GoalReward
	default:
		reward = a.distance - distance - StepPenalty
		done = false
	}
	a.distance = distance

	stepType := ts.Mid
	if done {
		stepType = ts.Last
	}
	step := ts.New(stepType, reward, obs, a.lastStep.Number+1)
	if !done && a.ender != nil {
		done = a.ender.End(&step)
	}

	a.lastStep = step
	return step, done
}

// observe returns the observation of the current joint angles, the
// position of the tool flange, and the clearance between the arm and
// the nearest obstacle
func (a *Arm) observe() (*mat.VecDense, r3.Vec, float64) {
	angles := kinematics.AnglesFromJoints(a.joints.RawVector().Data)
	chain := kinematics.Chain(angles)
	p6 := chain[len(chain)-1]

	nearest, clearance := a.nearest(chain)
	target := a.scene.Target.Position

	obs := make([]float64, 0, ObservationDims)
	obs = append(obs, a.joints.RawVector().Data...)
	for _, p := range chain[1:] {
		obs = appendVec(obs, p)
	}
	obs = appendVec(obs, target)
	obs = appendVec(obs, r3.Sub(target, p6))
	obs = appendVec(obs, nearest.Centre())
	obs = appendVec(obs, nearest.HalfExtents())
	obs = append(obs, clearance)

	return mat.NewVecDense(ObservationDims, obs), p6, clearance
}

// nearest returns the obstacle nearest to the arm described by chain and
// the clearance between them
func (a *Arm) nearest(chain []r3.Vec) (Box, float64) {
	index := 0
	min := math.Inf(1)
	for s := 0; s < len(chain)-1; s++ {
		from, to := chain[s], chain[s+1]
		segment := r3.Sub(to, from)

		for k := 0; k <= segmentSamples; k++ {
			u := float64(k) / float64(segmentSamples)
			point := r3.Add(from, r3.Scale(u, segment))

			for i, box := range a.scene.Obstacles {
				if d := box.Distance(point); d < min {
					min = d
					index = i
				}
			}
		}
	}
	return a.scene.Obstacles[index], min - a.scene.Radius
}

func appendVec(data []float64, v r3.Vec) []float64 {
	return append(data, v.X, v.Y, v.Z)
}

// RandomAction returns an action sampled uniformly from the action
// bounds
func (a *Arm) RandomAction() *mat.VecDense {
	return mat.NewVecDense(ActionDims, a.rand.Rand(nil))
}

// Joints returns a copy of the current joint angles q1 through q5
func (a *Arm) Joints() *mat.VecDense {
	return mat.VecDenseCopyOf(a.joints)
}

// Scene returns the scene being simulated
func (a *Arm) Scene() Scene {
	return a.scene
}

// LastTimeStep returns the last TimeStep that occurred in the
// environment
func (a *Arm) LastTimeStep() ts.TimeStep {
	return a.lastStep
}

// ActionSpec returns the action specification of the environment
func (a *Arm) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, nil)
	upperBound := mat.NewVecDense(ActionDims, nil)
	for i, bound := range a.actionBounds {
		lowerBound.SetVec(i, bound.Min)
		upperBound.SetVec(i, bound.Max)
	}

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (a *Arm) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)
	lower := make([]float64, ObservationDims)
	upper := make([]float64, ObservationDims)

	i := 0
	set := func(n int, min, max float64) {
		for j := 0; j < n; j++ {
			lower[i], upper[i] = min, max
			i++
		}
	}
	set(ActionDims, -JointBound, JointBound)
	set(15, -Reach, Reach)
	set(3, -2*Reach, 2*Reach)
	set(6, math.Inf(-1), math.Inf(1))
	set(1, -a.scene.Radius, math.Inf(1))

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(ObservationDims, lower),
		mat.NewVecDense(ObservationDims, upper), environment.Continuous)
}

// String implements the fmt.Stringer interface
func (a *Arm) String() string {
	str := "Arm  |  joints: %v  |  distance to target: %.3f"
	return fmt.Sprintf(str, matutils.Format(a.joints.T()), a.distance)
}
