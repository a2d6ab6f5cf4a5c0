// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// ArgMax returns the index of the first maximum value in values. NaN
// values are never selected unless every value is NaN, in which case
// 0 is returned. ArgMax panics if values is empty.
func ArgMax(values []float64) int {
	if len(values) == 0 {
		panic("argmax: no values")
	}

	idx := 0
	max := math.Inf(-1)
	for i, value := range values {
		if value > max {
			max = value
			idx = i
		}
	}
	return idx
}
