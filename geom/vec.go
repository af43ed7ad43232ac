package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	Right   = mgl32.Vec3{1, 0, 0}
	Up      = mgl32.Vec3{0, 1, 0}
	Forward = mgl32.Vec3{0, 0, 1}

	// WorldAxes lists the unit axes in X, Y, Z order.
	WorldAxes = [3]mgl32.Vec3{Right, Up, Forward}
)

func Abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func Sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func MinVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func MaxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// AbsVec3 returns the componentwise absolute value of v.
func AbsVec3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{Abs(v[0]), Abs(v[1]), Abs(v[2])}
}

// Reciprocal returns 1/v componentwise. Zero components map to +/-Inf.
func Reciprocal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}

// SafeNormalize normalizes v, reporting false (and a zero vector) when v is
// too short to carry a direction. mgl32's Normalize yields NaN in that case.
func SafeNormalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l2 := v.Dot(v)
	if l2 < 1e-12 {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / Sqrt(l2)), true
}
