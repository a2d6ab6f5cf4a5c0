package obstacle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned box obstacle. Position is the corner of the box
// with the smallest coordinates; the box spans Position to
// Position+Size.
type Box struct {
	Size     r3.Vec
	Position r3.Vec
}

// NewBox returns a new Box, or an error if any side of the box is not
// positive
func NewBox(size, position r3.Vec) (Box, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return Box{}, fmt.Errorf("newBox: box sides must be positive, "+
			"got %v", size)
	}
	return Box{Size: size, Position: position}, nil
}

// Min returns the corner of the box with the smallest coordinates
func (b Box) Min() r3.Vec {
	return b.Position
}

// Max returns the corner of the box with the largest coordinates
func (b Box) Max() r3.Vec {
	return r3.Add(b.Position, b.Size)
}

// Centre returns the centre of the box
func (b Box) Centre() r3.Vec {
	return r3.Add(b.Position, b.HalfExtents())
}

// HalfExtents returns half the size of the box along each axis
func (b Box) HalfExtents() r3.Vec {
	return r3.Scale(0.5, b.Size)
}

// Distance returns the Euclidean distance from p to the box. Points
// inside the box are at distance zero.
func (b Box) Distance(p r3.Vec) float64 {
	min, max := b.Min(), b.Max()
	d := r3.Vec{
		X: axisDistance(p.X, min.X, max.X),
		Y: axisDistance(p.Y, min.Y, max.Y),
		Z: axisDistance(p.Z, min.Z, max.Z),
	}
	return r3.Norm(d)
}

func axisDistance(v, min, max float64) float64 {
	return math.Max(0, math.Max(min-v, v-max))
}

// String implements the fmt.Stringer interface
func (b Box) String() string {
	return fmt.Sprintf("Box | size: (%.2f, %.2f, %.2f)  |  position: "+
		"(%.2f, %.2f, %.2f)", b.Size.X, b.Size.Y, b.Size.Z, b.Position.X,
		b.Position.Y, b.Position.Z)
}
