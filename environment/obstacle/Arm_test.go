package obstacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/robotac/environment"
	"github.com/samuelfneumann/robotac/kinematics"
)

func referenceScene() Scene {
	return Scene{
		Obstacles: []Box{{
			Size:     r3.Vec{X: 10, Y: 10, Z: 40},
			Position: r3.Vec{X: -5, Y: 25, Z: 0},
		}},
		Initial:      kinematics.NewPose3D(r3.Vec{X: -10, Y: 25, Z: 10}, true),
		Target:       kinematics.NewPose3D(r3.Vec{X: 10, Y: 25, Z: 10}, true),
		Radius:       2.0,
		CutOff:       4,
		MaxJointStep: DefaultMaxJointStep,
	}
}

func TestBoxDistance(t *testing.T) {
	box, err := NewBox(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, box.Distance(r3.Vec{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, 3.0, box.Distance(r3.Vec{X: 5, Y: 1, Z: 1}))
	assert.InDelta(t, 5.0, box.Distance(r3.Vec{X: -3, Y: -4, Z: 1}), 1e-12)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, box.Centre())

	_, err = NewBox(r3.Vec{X: 0, Y: 1, Z: 1}, r3.Vec{})
	assert.Error(t, err)
}

func TestNewFirstStep(t *testing.T) {
	arm, first, err := New(referenceScene(), nil, nil, 1)
	require.NoError(t, err)

	assert.True(t, first.First())
	assert.Equal(t, 0, first.Number)
	require.Equal(t, ObservationDims, first.Observation.Len())
	assert.Equal(t, ObservationDims, arm.ObservationSpec().Len())
	assert.Equal(t, ActionDims, arm.ActionSpec().Len())

	obs := first.Observation.RawVector().Data

	// Tool flange starts at the initial position
	assert.InDelta(t, -10.0, obs[14], 1e-6)
	assert.InDelta(t, 25.0, obs[15], 1e-6)
	assert.InDelta(t, 10.0, obs[16], 1e-6)

	// Target and tool-to-target vector
	assert.Equal(t, []float64{10, 25, 10}, obs[17:20])
	assert.InDelta(t, 20.0, obs[20], 1e-6)
	assert.InDelta(t, 0.0, obs[21], 1e-6)

	// Nearest obstacle and clearance
	assert.Equal(t, []float64{0, 30, 20}, obs[23:26])
	assert.Equal(t, []float64{5, 5, 20}, obs[26:29])
	assert.InDelta(t, 3.0, obs[29], 1e-6)
}

func TestStepZeroAction(t *testing.T) {
	arm, first, err := New(referenceScene(), nil, nil, 1)
	require.NoError(t, err)

	step, done := arm.Step(mat.NewVecDense(ActionDims, nil))
	assert.False(t, done)
	assert.True(t, step.Mid())
	assert.Equal(t, 1, step.Number)
	assert.InDelta(t, -StepPenalty, step.Reward, 1e-9)
	assert.True(t, mat.EqualApprox(first.Observation, step.Observation,
		1e-12))
}

func TestStepClipsAction(t *testing.T) {
	arm, _, err := New(referenceScene(), nil, nil, 1)
	require.NoError(t, err)

	before := arm.Joints()
	action := mat.NewVecDense(ActionDims, []float64{1, -1, 0.05, 0, 0})
	arm.Step(action)
	after := arm.Joints()

	want := []float64{0.1, -0.1, 0.05, 0, 0}
	for i := range want {
		assert.InDelta(t, want[i], after.AtVec(i)-before.AtVec(i), 1e-12)
	}
}

func TestStepReachesTarget(t *testing.T) {
	scene := referenceScene()
	scene.Initial = kinematics.NewPose3D(r3.Vec{X: 8, Y: 25, Z: 10}, true)

	arm, _, err := New(scene, nil, nil, 1)
	require.NoError(t, err)

	step, done := arm.Step(mat.NewVecDense(ActionDims, nil))
	assert.True(t, done)
	assert.True(t, step.Last())
	assert.InDelta(t, GoalReward, step.Reward, 1e-9)
}

func TestStepCollides(t *testing.T) {
	scene := referenceScene()
	scene.Obstacles = append(scene.Obstacles, Box{
		Size:     r3.Vec{X: 4, Y: 4, Z: 4},
		Position: r3.Vec{X: -12, Y: 23, Z: 8},
	})

	arm, first, err := New(scene, nil, nil, 1)
	require.NoError(t, err)
	assert.Less(t, first.Observation.AtVec(29), 0.0)

	step, done := arm.Step(mat.NewVecDense(ActionDims, nil))
	assert.True(t, done)
	assert.True(t, step.Last())
	assert.Equal(t, CollisionReward, step.Reward)
}

func TestStepLimitEnder(t *testing.T) {
	arm, _, err := New(referenceScene(), nil, environment.NewStepLimit(2), 1)
	require.NoError(t, err)

	_, done := arm.Step(mat.NewVecDense(ActionDims, nil))
	assert.False(t, done)

	step, done := arm.Step(mat.NewVecDense(ActionDims, nil))
	assert.True(t, done)
	assert.True(t, step.Last())

	first := arm.Reset()
	assert.True(t, first.First())
	assert.Equal(t, 0, first.Number)
}

func TestRandomAction(t *testing.T) {
	a, _, err := New(referenceScene(), nil, nil, 11)
	require.NoError(t, err)
	b, _, err := New(referenceScene(), nil, nil, 11)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		action := a.RandomAction()
		require.Equal(t, ActionDims, action.Len())
		for j := 0; j < ActionDims; j++ {
			assert.LessOrEqual(t, action.AtVec(j), DefaultMaxJointStep)
			assert.GreaterOrEqual(t, action.AtVec(j), -DefaultMaxJointStep)
		}
		assert.True(t, mat.Equal(action, b.RandomAction()))
	}
}

func TestSceneValidate(t *testing.T) {
	scene := referenceScene()
	scene.Obstacles = nil
	_, _, err := New(scene, nil, nil, 1)
	assert.Error(t, err)

	scene = referenceScene()
	scene.Target = kinematics.NewPose3D(r3.Vec{X: 100, Y: 100, Z: 100}, true)
	_, _, err = New(scene, nil, nil, 1)
	assert.ErrorIs(t, err, kinematics.ErrUnreachable)
}
