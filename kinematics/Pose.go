// Package kinematics implements closed-form forward and inverse position
// kinematics for a 6-axis manipulator arm with a spherical wrist.
//
// The arm has a shoulder offset D1 above the base, an upper arm of length
// A2, a forearm of length D4 and a tool flange D6 from the wrist centre.
// Joint angles are stored in an Angles array where index i holds joint
// qi; index 0 is unused so that indices match joint numbers.
package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Link dimensions of the arm
const (
	D1 float64 = 12.5
	D6 float64 = 12.0
	A2 float64 = 15.0
	D4 float64 = 19.2
)

// Pose3D is a position and orientation of the arm's tool flange.
//
// The third column of Orientation is the approach direction of the tool.
// Flip selects which of the two wrist solutions inverse kinematics
// returns.
type Pose3D struct {
	Position    r3.Vec
	Orientation *mat.Dense
	Flip        bool
}

// NewPose3D returns a new pose at position with the orientation given by
// EulerMatrix(0, 0, 0)
func NewPose3D(position r3.Vec, flip bool) Pose3D {
	return Pose3D{
		Position:    position,
		Orientation: EulerMatrix(0, 0, 0),
		Flip:        flip,
	}
}

// SetEuler sets the orientation of the pose from Euler angles
func (p *Pose3D) SetEuler(alpha, beta, gamma float64) {
	p.Orientation = EulerMatrix(alpha, beta, gamma)
}

// Approach returns the approach direction of the tool
func (p Pose3D) Approach() r3.Vec {
	return r3.Vec{
		X: p.Orientation.At(0, 2),
		Y: p.Orientation.At(1, 2),
		Z: p.Orientation.At(2, 2),
	}
}

// String implements the fmt.Stringer interface
func (p Pose3D) String() string {
	return fmt.Sprintf("Pose3D | position: (%.3f, %.3f, %.3f)  |  flip: %v",
		p.Position.X, p.Position.Y, p.Position.Z, p.Flip)
}

// EulerMatrix returns the 3x3 orientation matrix for Euler angles
// alpha, beta and gamma.
func EulerMatrix(alpha, beta, gamma float64) *mat.Dense {
	ca, cb, cy := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	sa, sb, sy := math.Sin(alpha), math.Sin(beta), math.Sin(gamma)

	o := mat.NewDense(3, 3, nil)
	o.Set(0, 0, ca*sb*cy+sa*sy)
	o.Set(1, 0, sa*sb*cy-ca*sy)
	o.Set(2, 0, cb*cy)

	o.Set(0, 1, ca*cb)
	o.Set(1, 1, sa*cb)
	o.Set(2, 1, -sb)

	o.Set(0, 2, ca*sb*sy-sa*cy)
	o.Set(1, 2, sa*sb*sy+ca*cy)
	o.Set(2, 2, cb*sy)

	return o
}
