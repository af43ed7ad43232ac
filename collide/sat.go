package collide

import (
	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	axisEpsilon     = 1e-8
	edgeEpsilon     = 1e-10
	velocityEpsilon = 1e-8
)

// satAxes collects candidate separating axes for an axis-aligned shape
// against a triangle: the face normal, the three world axes and each triangle
// edge crossed with each world axis. Degenerate axes are dropped, so the set
// holds at most 13 unit vectors.
type satAxes struct {
	axes [19]mgl32.Vec3
	n    int
}

func (s *satAxes) add(a mgl32.Vec3) {
	if n, ok := geom.SafeNormalize(a); ok && n.Dot(n) > axisEpsilon {
		s.axes[s.n] = n
		s.n++
	}
}

func (s *satAxes) list() []mgl32.Vec3 {
	return s.axes[:s.n]
}

func triangleAxes(tri geom.Triangle) satAxes {
	var s satAxes
	s.add(tri.V1.Sub(tri.V0).Cross(tri.V2.Sub(tri.V0)))
	for _, w := range geom.WorldAxes {
		s.add(w)
	}
	for _, e := range tri.Edges() {
		if e.Dot(e) < edgeEpsilon {
			continue
		}
		for _, w := range geom.WorldAxes {
			s.add(e.Cross(w))
		}
	}
	return s
}

func projectTriangle(tri geom.Triangle, a mgl32.Vec3) (float32, float32) {
	p0 := tri.V0.Dot(a)
	p1 := tri.V1.Dot(a)
	p2 := tri.V2.Dot(a)
	return min(p0, p1, p2), max(p0, p1, p2)
}

// sweepWindow intersects per-axis entry/exit intervals of a moving convex
// shape against a static one. Times are fractions of the motion in [0,1].
type sweepWindow struct {
	tEnter float32
	tExit  float32
	normal mgl32.Vec3
	// set once an axis has pushed tEnter forward
	advanced bool
}

func newSweepWindow() sweepWindow {
	return sweepWindow{tEnter: 0, tExit: 1}
}

// clip folds one axis into the window. lo/hi is the moving shape's static
// projection, triLo/triHi the triangle's, vRel the projected motion. It
// returns false as soon as the axis proves the shapes never meet.
func (w *sweepWindow) clip(a mgl32.Vec3, lo, hi, triLo, triHi, vRel float32) bool {
	if geom.Abs(vRel) < velocityEpsilon {
		// No motion along this axis: separated now means separated always.
		return !(hi < triLo || lo > triHi)
	}

	t0 := (triLo - hi) / vRel
	t1 := (triHi - lo) / vRel
	if t0 > t1 {
		t0, t1 = t1, t0
	}

	if t0 > w.tEnter {
		w.tEnter = t0
		if vRel > 0 {
			w.normal = a.Mul(-1)
		} else {
			w.normal = a
		}
		w.advanced = true
	}
	w.tExit = min(w.tExit, t1)

	if w.tEnter > w.tExit || w.tExit < 0 || w.tEnter > 1 {
		return false
	}
	return true
}

// contactNormal returns the normal of the axis that last delayed contact, or
// the face normal turned toward center when the shapes touched from the start.
func (w *sweepWindow) contactNormal(tri geom.Triangle, center mgl32.Vec3) mgl32.Vec3 {
	if w.advanced {
		if n, ok := geom.SafeNormalize(w.normal); ok {
			return n
		}
	}
	return faceNormalToward(tri, center)
}

func faceNormalToward(tri geom.Triangle, p mgl32.Vec3) mgl32.Vec3 {
	n, ok := tri.Normal()
	if !ok {
		// Degenerate triangle: push straight away from its centroid.
		if d, ok := geom.SafeNormalize(p.Sub(tri.Centroid())); ok {
			return d
		}
		return geom.Up
	}
	if p.Sub(tri.V0).Dot(n) < 0 {
		return n.Mul(-1)
	}
	return n
}

// SweptAabbVsTriSAT sweeps box by delta against tri using the separating-axis
// theorem in its continuous form. On a hit it returns the time of impact as a
// fraction of delta in [0,1] and the contact normal, pointing from the
// triangle toward the box.
func SweptAabbVsTriSAT(box geom.Box, delta mgl32.Vec3, tri geom.Triangle) (bool, float32, mgl32.Vec3) {
	axes := triangleAxes(tri)
	w := newSweepWindow()

	for _, a := range axes.list() {
		c := box.Center.Dot(a)
		r := box.ProjectedRadius(a)
		triLo, triHi := projectTriangle(tri, a)
		if !w.clip(a, c-r, c+r, triLo, triHi, delta.Dot(a)) {
			return false, 0, mgl32.Vec3{}
		}
	}

	toi := max(0, w.tEnter)
	return true, toi, w.contactNormal(tri, box.Center.Add(delta.Mul(toi)))
}

// SweptSphereVsTriSAT is the sphere counterpart of SweptAabbVsTriSAT. It uses
// the same 13 axes with the radius as projected extent, plus vertex and edge
// Voronoi axes measured from the start position, which tighten the result
// near triangle corners.
func SweptSphereVsTriSAT(center mgl32.Vec3, radius float32, delta mgl32.Vec3, tri geom.Triangle) (bool, float32, mgl32.Vec3) {
	axes := triangleAxes(tri)

	verts := tri.Vertices()
	for _, v := range verts {
		axes.add(v.Sub(center))
	}
	for i, e := range tri.Edges() {
		l2 := e.Dot(e)
		if l2 < edgeEpsilon {
			continue
		}
		s := center.Sub(verts[i]).Dot(e) / l2
		if s < 0 || s > 1 {
			continue
		}
		axes.add(center.Sub(verts[i].Add(e.Mul(s))))
	}

	w := newSweepWindow()
	for _, a := range axes.list() {
		c := center.Dot(a)
		triLo, triHi := projectTriangle(tri, a)
		if !w.clip(a, c-radius, c+radius, triLo, triHi, delta.Dot(a)) {
			return false, 0, mgl32.Vec3{}
		}
	}

	toi := max(0, w.tEnter)
	atImpact := center.Add(delta.Mul(toi))
	n := w.contactNormal(tri, atImpact)

	// Keep the normal on the sphere's side of the triangle.
	if n.Dot(tri.Centroid().Sub(atImpact)) > 0 {
		n = n.Mul(-1)
	}
	// Snap near-face contacts to the face normal so sliding stays smooth.
	if face, ok := tri.Normal(); ok {
		if d := n.Dot(face); geom.Abs(d) > 0.8 {
			if d > 0 {
				n = face
			} else {
				n = face.Mul(-1)
			}
		}
	}
	return true, toi, n
}
