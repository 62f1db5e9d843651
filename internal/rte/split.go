// Package rte encodes double-precision world coordinates as high/low
// float32 pairs so that positions can be computed relative to the eye on
// the GPU without float32 jitter at large magnitudes.
package rte

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Split returns the nearest float32 to v and the float32 residual.
// Non-finite input propagates (NaN/Inf high, NaN low); it never panics.
func Split(v float64) (high, low float32) {
	high = float32(v)
	low = float32(v - float64(high))
	return high, low
}

// Recompose sums a split pair back in double precision, high first.
func Recompose(high, low float32) float64 {
	return float64(high) + float64(low)
}

// SplitVec3 splits each component of v.
func SplitVec3(v mgl64.Vec3) (high, low mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		high[i], low[i] = Split(v[i])
	}
	return high, low
}

// RecomposeVec3 reverses SplitVec3.
func RecomposeVec3(high, low mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		Recompose(high[0], low[0]),
		Recompose(high[1], low[1]),
		Recompose(high[2], low[2]),
	}
}

// SplitPositions splits a flat position array into the two vertex
// attributes uploaded to the GPU.
func SplitPositions(positions []float64) (high, low []float32) {
	high = make([]float32, len(positions))
	low = make([]float32, len(positions))
	for i, v := range positions {
		high[i], low[i] = Split(v)
	}
	return high, low
}

// RelativeToEye evaluates the vertex-shader position in float32 exactly as
// the GPU does: (posHigh - eyeHigh) + (posLow - eyeLow).
func RelativeToEye(posHigh, posLow, eyeHigh, eyeLow mgl32.Vec3) mgl32.Vec3 {
	highDiff := posHigh.Sub(eyeHigh)
	lowDiff := posLow.Sub(eyeLow)
	return highDiff.Add(lowDiff)
}
