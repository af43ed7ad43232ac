package collide

import (
	"math"

	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxVsTriangleOverlap is the static 13-axis SAT test. On overlap it returns
// the axis of least penetration, oriented to push the box out of the
// triangle, and the penetration depth along it.
func BoxVsTriangleOverlap(box geom.Box, tri geom.Triangle) (bool, mgl32.Vec3, float32) {
	axes := triangleAxes(tri)

	best := float32(math.MaxFloat32)
	var bestAxis mgl32.Vec3
	for _, a := range axes.list() {
		c := box.Center.Dot(a)
		r := box.ProjectedRadius(a)
		lo, hi := c-r, c+r
		triLo, triHi := projectTriangle(tri, a)

		if hi < triLo || lo > triHi {
			return false, mgl32.Vec3{}, 0
		}

		// Push along -a (box below) or +a (box above), whichever is shorter.
		down := hi - triLo
		up := triHi - lo
		depth, dir := up, a
		if down < up {
			depth, dir = down, a.Mul(-1)
		}
		if depth < best {
			best = depth
			bestAxis = dir
		}
	}
	if axes.n == 0 {
		return false, mgl32.Vec3{}, 0
	}
	return true, bestAxis, best
}

// SphereVsTriangleOverlap reports whether the sphere penetrates the triangle.
// The normal points from the triangle toward the sphere center.
func SphereVsTriangleOverlap(center mgl32.Vec3, radius float32, tri geom.Triangle) (bool, mgl32.Vec3, float32) {
	q := ClosestPointOnTriangle(tri, center)
	v := center.Sub(q)
	d2 := v.Dot(v)
	if d2 >= radius*radius {
		return false, mgl32.Vec3{}, 0
	}
	dist := geom.Sqrt(d2)
	if n, ok := geom.SafeNormalize(v); ok {
		return true, n, radius - dist
	}
	return true, faceNormalToward(tri, center), radius - dist
}

// ClosestPointOnTriangle returns the point of tri nearest to p, classifying p
// against the triangle's vertex, edge and face Voronoi regions.
func ClosestPointOnTriangle(tri geom.Triangle, p mgl32.Vec3) mgl32.Vec3 {
	a, b, c := tri.V0, tri.V1, tri.V2
	ab := b.Sub(a)
	ac := c.Sub(a)

	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := va + vb + vc
	if geom.Abs(denom) < 1e-20 {
		// Degenerate triangle that slipped past the region tests.
		return a
	}
	inv := 1 / denom
	v := vb * inv
	w := vc * inv
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
