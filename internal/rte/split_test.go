package rte

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestSplitRecomposeSmall(t *testing.T) {
	values := []float64{0, 1, -1, 0.1, 123.456, -9876.54321, 1234567.891, 9999999.5}
	for _, v := range values {
		high, low := Split(v)
		assert.Equal(t, float32(v), high, "high is the nearest float32 of %v", v)
		got := Recompose(high, low)
		// float32 precision, relative
		tol := math.Max(math.Abs(v)*1e-7, 1e-7)
		assert.InDelta(t, v, got, tol, "%v", v)
	}
}

func TestSplitLowIsResidual(t *testing.T) {
	v := 6378137.123456789
	high, low := Split(v)
	assert.Less(t, math.Abs(float64(low)), math.Abs(float64(high))*1e-6)
	assert.InDelta(t, v, Recompose(high, low), 1e-6)
}

func TestCameraRelativeLargeCoordinates(t *testing.T) {
	cases := []struct {
		v, offset float64
	}{
		{12345678.123, 5.5},
		{-40075016.686, -12.25},
		{987654321.5, 0.75},
		{1e7, 100},
	}
	for _, c := range cases {
		eye := c.v - c.offset
		vh, vl := Split(c.v)
		eh, el := Split(eye)

		rel := (vh - eh) + (vl - el)
		assert.InDelta(t, c.offset, float64(rel), 1e-3, "rte v=%v", c.v)

		// Naively cast coordinates lose the offset.
		naive := float32(c.v) - float32(eye)
		if c.v >= 1e8 || c.v <= -1e7 {
			assert.Greater(t, math.Abs(float64(naive)-c.offset), 1e-3, "naive v=%v", c.v)
		}
	}
}

func TestRelativeToEyeVec3(t *testing.T) {
	pos := mgl64.Vec3{3.0e7 + 0.125, -2.5e7 + 0.5, 1.0e3}
	eye := mgl64.Vec3{3.0e7, -2.5e7, 990}

	ph, pl := SplitVec3(pos)
	eh, el := SplitVec3(eye)
	rel := RelativeToEye(ph, pl, eh, el)

	want := pos.Sub(eye)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], float64(rel[i]), 1e-3)
	}
	assert.InDelta(t, pos[0], RecomposeVec3(ph, pl)[0], 1e-6)
}

func TestSplitNonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		h, l := Split(math.NaN())
		assert.True(t, math.IsNaN(float64(h)))
		assert.True(t, math.IsNaN(float64(l)))

		h, l = Split(math.Inf(1))
		assert.True(t, math.IsInf(float64(h), 1))
		assert.True(t, math.IsNaN(float64(l)))
	})
}

func TestSplitPositions(t *testing.T) {
	high, low := SplitPositions([]float64{1e8 + 0.5, 2, -3})
	assert.Len(t, high, 3)
	assert.Len(t, low, 3)
	assert.Equal(t, float32(2), high[1])
	assert.Equal(t, float32(0), low[1])
	assert.InDelta(t, 1e8+0.5, Recompose(high[0], low[0]), 1e-6)
}

func TestEncoderDirtyTracking(t *testing.T) {
	e := NewEncoder()
	eye := mgl64.Vec3{1e7 + 0.5, 2, 3}

	assert.True(t, e.Update(eye), "first frame uploads")
	assert.Equal(t, mgl32.Vec3{float32(1e7 + 0.5), 2, 3}, e.Uniforms().High)
	e.MarkClean()

	assert.False(t, e.Update(eye), "unchanged eye keeps pass clean")
	assert.True(t, e.Update(eye.Add(mgl64.Vec3{0.001, 0, 0})), "moving the eye dirties the pass")
	e.MarkClean()

	e.Invalidate()
	assert.True(t, e.Dirty())
	assert.True(t, e.Update(e.Eye()))
}

func BenchmarkSplitPositions(b *testing.B) {
	pos := make([]float64, 3*4096)
	for i := range pos {
		pos[i] = 6378137 + float64(i)*0.001
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SplitPositions(pos)
	}
}
