package kinematics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnreachable is returned when a pose lies outside the arm's
// workspace. The angles returned alongside it contain NaN values.
var ErrUnreachable = errors.New("pose is outside the workspace")

// Angles holds the joint angles q1 through q6 at indices 1 through 6.
// Index 0 is unused.
type Angles [7]float64

// Joints returns the joint angles q1 through q5, which fully determine
// the positions returned by ForwardPosKinematics.
func (a Angles) Joints() []float64 {
	return []float64{a[1], a[2], a[3], a[4], a[5]}
}

// AnglesFromJoints returns the Angles holding joints q1 through q5 with
// q6 set to zero.
func AnglesFromJoints(q []float64) Angles {
	var a Angles
	copy(a[1:6], q)
	return a
}

// InverseKinematics returns the joint angles that place the tool flange
// at pose. The wrist centre is found by backing off D6 along the tool
// approach direction; the first three joints position the wrist centre
// and the last three orient the tool. If the pose is unreachable, the
// returned angles contain NaN values and ErrUnreachable is returned.
func InverseKinematics(pose Pose3D) (Angles, error) {
	t := pose.Orientation
	var angles Angles

	xc := pose.Position.X - D6*t.At(0, 2)
	yc := pose.Position.Y - D6*t.At(1, 2)
	zc := pose.Position.Z - D6*t.At(2, 2)

	angles[1] = math.Atan2(yc, xc)

	d := (xc*xc + yc*yc + (zc-D1)*(zc-D1) - A2*A2 - D4*D4) / (2 * A2 * D4)
	angles[3] = math.Atan2(-math.Sqrt(1-d*d), d)

	k1 := A2 + D4*math.Cos(angles[3])
	k2 := D4 * math.Sin(angles[3])
	angles[2] = math.Atan2(zc-D1, math.Sqrt(xc*xc+yc*yc)) -
		math.Atan2(k2, k1)

	angles[3] += math.Pi / 2

	q1, q23 := angles[1], angles[2]+angles[3]
	c1, s1 := math.Cos(q1), math.Sin(q1)
	c23, s23 := math.Cos(q23), math.Sin(q23)

	r11, r12, r13 := t.At(0, 0), t.At(0, 1), t.At(0, 2)
	r21, r22, r23 := t.At(1, 0), t.At(1, 1), t.At(1, 2)
	r31, r32, r33 := t.At(2, 0), t.At(2, 1), t.At(2, 2)

	ax := r13*c1*c23 + r23*c23*s1 + r33*s23
	ay := -r23*c1 + r13*s1
	az := -r33*c23 + r13*c1*s23 + r23*s1*s23
	sz := -r32*c23 + r12*c1*s23 + r22*s1*s23
	nz := -r31*c23 + r11*c1*s23 + r21*s1*s23

	if pose.Flip {
		angles[4] = math.Atan2(-ay, -ax)
		angles[5] = math.Atan2(-math.Sqrt(ax*ax+ay*ay), az)
		angles[6] = math.Atan2(-sz, nz)
	} else {
		angles[4] = math.Atan2(ay, ax)
		angles[5] = math.Atan2(math.Sqrt(ax*ax+ay*ay), az)
		angles[6] = math.Atan2(sz, -nz)
	}

	if math.Abs(d) > 1 {
		return angles, ErrUnreachable
	}
	return angles, nil
}

// ForwardPosKinematics returns the positions of the shoulder (p1), the
// elbow (p2), the wrist centre (p4) and the tool flange (p6) for the
// joint angles q1 through q5.
func ForwardPosKinematics(angles Angles) (p1, p2, p4, p6 r3.Vec) {
	q1, q2, q3, q4, q5 := angles[1], angles[2], angles[3], angles[4],
		angles[5]
	c1, s1 := math.Cos(q1), math.Sin(q1)
	c2, s2 := math.Cos(q2), math.Sin(q2)
	c3, s3 := math.Cos(q3), math.Sin(q3)
	c4, s4 := math.Cos(q4), math.Sin(q4)
	c5, s5 := math.Cos(q5), math.Sin(q5)
	c23, s23 := math.Cos(q2+q3), math.Sin(q2+q3)

	p1 = r3.Vec{X: 0, Y: 0, Z: D1}

	p2 = r3.Vec{
		X: A2 * c1 * c2,
		Y: A2 * c2 * s1,
		Z: D1 + A2*s2,
	}

	p4 = r3.Vec{
		X: c1 * (A2*c2 + D4*s23),
		Y: s1 * (A2*c2 + D4*s23),
		Z: D1 - D4*c23 + A2*s2,
	}

	p6 = r3.Vec{
		X: D6*s1*s4*s5 + c1*(A2*c2+(D4+D6*c5)*s23+D6*c23*c4*s5),
		Y: c3*(D4+D6*c5)*s1*s2 - D6*(c4*s1*s2*s3+c1*s4)*s5 +
			c2*s1*(A2+(D4+D6*c5)*s3+D6*c3*c4*s5),
		Z: D1 - c23*(D4+D6*c5) + A2*s2 + D6*c4*s23*s5,
	}

	return p1, p2, p4, p6
}

// Chain returns the polyline of the arm from the base through p1, p2, p4
// and p6.
func Chain(angles Angles) []r3.Vec {
	p1, p2, p4, p6 := ForwardPosKinematics(angles)
	return []r3.Vec{{}, p1, p2, p4, p6}
}
