// Package collide holds the numeric collision kernels: slab and
// Möller–Trumbore ray tests, continuous separating-axis tests for boxes and
// spheres swept against triangles, and static overlap tests. None of them
// fail; degenerate input is reported as "no intersection".
package collide

import (
	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	slabEpsilon = 1e-8
	mtEpsilon   = 1e-6
)

// RayVsAABB is the slab test. It narrows [ray.TMin, ray.TMax] against each
// axis slab and reports the exit distance of the surviving window.
func RayVsAABB(ray geom.Ray, box geom.AABB) (bool, float32) {
	tMin := ray.TMin
	tMax := ray.TMax

	for i := 0; i < 3; i++ {
		if geom.Abs(ray.Dir[i]) < slabEpsilon {
			// Parallel to the slab: only a hit if we already sit inside it.
			if ray.Start[i] < box.Min[i] || ray.Start[i] > box.Max[i] {
				return false, tMax
			}
			continue
		}

		t1 := (box.Min[i] - ray.Start[i]) * ray.InvDir[i]
		t2 := (box.Max[i] - ray.Start[i]) * ray.InvDir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false, tMax
		}
	}
	return true, tMax
}

// RayEntry is RayVsAABB that also returns the entry distance.
func RayEntry(ray geom.Ray, box geom.AABB) (bool, float32) {
	ok, tExit := RayVsAABB(ray, box)
	if !ok {
		return false, 0
	}
	tEnter := ray.TMin
	for i := 0; i < 3; i++ {
		if geom.Abs(ray.Dir[i]) < slabEpsilon {
			continue
		}
		t1 := (box.Min[i] - ray.Start[i]) * ray.InvDir[i]
		t2 := (box.Max[i] - ray.Start[i]) * ray.InvDir[i]
		tEnter = max(tEnter, min(t1, t2))
	}
	return tEnter <= tExit, tEnter
}

// TriangleVsRay is the Möller–Trumbore test. tHit is the caller's running
// best distance: only hits with ray.TMin <= t < tHit are reported. The
// returned normal is the unit face normal following the triangle winding.
func TriangleVsRay(tri geom.Triangle, ray geom.Ray, tHit float32) (bool, float32, mgl32.Vec3) {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)
	p := ray.Dir.Cross(e2)
	det := e1.Dot(p)

	if geom.Abs(det) < mtEpsilon {
		return false, tHit, mgl32.Vec3{}
	}
	invDet := 1 / det

	s := ray.Start.Sub(tri.V0)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return false, tHit, mgl32.Vec3{}
	}

	q := s.Cross(e1)
	v := ray.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return false, tHit, mgl32.Vec3{}
	}

	t := e2.Dot(q) * invDet
	if t < ray.TMin {
		// Hits on the origin plane can land a hair below TMin.
		if t < ray.TMin-mtEpsilon {
			return false, tHit, mgl32.Vec3{}
		}
		t = ray.TMin
	}
	if t >= tHit {
		return false, tHit, mgl32.Vec3{}
	}

	n, ok := geom.SafeNormalize(e1.Cross(e2))
	if !ok {
		return false, tHit, mgl32.Vec3{}
	}
	return true, t, n
}
