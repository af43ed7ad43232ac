package uphysics

import (
	"github.com/gekko3d/uphysics/bvh"
	"github.com/gekko3d/uphysics/collide"
	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// shapeCast is what castBVH needs from a swept shape. Implementations are
// small value types so each instantiation is dispatched statically.
type shapeCast interface {
	// expandNode grows a node's bounds by the shape's extent so the node can
	// be tested against the shape's center path as a ray.
	expandNode(b geom.AABB) geom.AABB
	// testTriangle sweeps the shape along dir*length. toi is in [0,1].
	testTriangle(tri geom.Triangle, dir mgl32.Vec3, length float32) (hit bool, toi float32, normal mgl32.Vec3)
	// overlapAt tests the shape moved by offset for static penetration.
	overlapAt(tri geom.Triangle, offset mgl32.Vec3) (hit bool, depth float32, normal mgl32.Vec3)
	// contactPoint maps the shape's origin at impact to a point on its
	// surface, given the contact normal.
	contactPoint(origin, normal mgl32.Vec3) mgl32.Vec3
}

type rayCast struct {
	start mgl32.Vec3
	tMin  float32
}

func (c rayCast) expandNode(b geom.AABB) geom.AABB {
	return b
}

func (c rayCast) testTriangle(tri geom.Triangle, dir mgl32.Vec3, length float32) (bool, float32, mgl32.Vec3) {
	ray := geom.NewRay(c.start, dir, c.tMin, length)
	ok, t, n := collide.TriangleVsRay(tri, ray, length)
	if !ok {
		return false, 0, mgl32.Vec3{}
	}
	if n.Dot(dir) > 0 {
		n = n.Mul(-1)
	}
	return true, t / length, n
}

// A ray has no volume to penetrate with.
func (c rayCast) overlapAt(geom.Triangle, mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	return false, 0, mgl32.Vec3{}
}

func (c rayCast) contactPoint(origin, _ mgl32.Vec3) mgl32.Vec3 {
	return origin
}

type boxCast struct {
	box geom.Box
}

func (c boxCast) expandNode(b geom.AABB) geom.AABB {
	return b.Grow(c.box.Half)
}

func (c boxCast) testTriangle(tri geom.Triangle, dir mgl32.Vec3, length float32) (bool, float32, mgl32.Vec3) {
	return collide.SweptAabbVsTriSAT(c.box, dir.Mul(length), tri)
}

func (c boxCast) overlapAt(tri geom.Triangle, offset mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	ok, axis, depth := collide.BoxVsTriangleOverlap(c.box.Translate(offset), tri)
	return ok, depth, axis
}

func (c boxCast) contactPoint(origin, normal mgl32.Vec3) mgl32.Vec3 {
	return origin.Sub(normal.Mul(c.box.ProjectedRadius(normal)))
}

type sphereCast struct {
	center mgl32.Vec3
	radius float32
	margin float32
}

func (c sphereCast) expandNode(b geom.AABB) geom.AABB {
	r := c.radius + c.margin
	return b.Grow(mgl32.Vec3{r, r, r})
}

func (c sphereCast) testTriangle(tri geom.Triangle, dir mgl32.Vec3, length float32) (bool, float32, mgl32.Vec3) {
	return collide.SweptSphereVsTriSAT(c.center, c.radius, dir.Mul(length), tri)
}

func (c sphereCast) overlapAt(tri geom.Triangle, offset mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	ok, normal, depth := collide.SphereVsTriangleOverlap(c.center.Add(offset), c.radius, tri)
	return ok, depth, normal
}

func (c sphereCast) contactPoint(origin, normal mgl32.Vec3) mgl32.Vec3 {
	return origin.Sub(normal.Mul(c.radius))
}

type castBest struct {
	toi    float32
	normal mgl32.Vec3
	mesh   *registeredBVH
	local  uint32
}

// castBVH sweeps shape from start along dir for length and returns the
// earliest contact over every registered mesh.
//
// Broad phase tests each mesh's expanded root against the whole cast. Narrow
// phase walks the surviving trees depth first, clipping every node test to
// the best time of impact found so far.
func castBVH[S shapeCast](e *Engine, shape S, start, dir mgl32.Vec3, length float32) (Hit, bool) {
	if !(length > 0) {
		return Hit{}, false
	}
	dir, ok := geom.SafeNormalize(dir)
	if !ok {
		return Hit{}, false
	}

	sweep := geom.NewRay(start, dir, 0, length)
	best := castBest{toi: 1}
	found := false

	var stack bvh.Stack
	for _, m := range e.meshes {
		if hit, _ := collide.RayVsAABB(sweep, shape.expandNode(m.tree.Bounds())); !hit {
			continue
		}

		stack.Reset()
		stack.Push(0)
		for stack.Len() > 0 {
			ni, _ := stack.Pop()
			node := m.tree.Nodes[ni]

			clipped := sweep
			clipped.TMax = best.toi * length
			if hit, _ := collide.RayVsAABB(clipped, shape.expandNode(node.Bounds)); !hit {
				continue
			}

			if !node.IsLeaf() {
				stack.Push(node.LeftFirst)
				stack.Push(node.RightFirst)
				continue
			}

			for _, local := range m.tree.Leaf(node) {
				tri := e.triangles[m.triStart+local]
				hit, toi, n := shape.testTriangle(tri, dir, length)
				if hit && toi < best.toi {
					best = castBest{toi: toi, normal: n, mesh: m, local: local}
					found = true
				}
			}
		}
	}

	if !found {
		return Hit{}, false
	}

	t := best.toi * length
	h := Hit{
		T:             t,
		Pos:           start.Add(dir.Mul(t)),
		Normal:        best.normal,
		TriIndex:      best.mesh.triStart + best.local,
		LocalTriIndex: best.local,
		Handle:        best.mesh.handle,
		Owner:         best.mesh.owner,
	}

	if best.toi == 0 {
		tri := e.triangles[h.TriIndex]
		if solid, depth, _ := shape.overlapAt(tri, mgl32.Vec3{}); solid {
			h.StartSolid = true
			h.Depth = depth
			h.AllSolid, _, _ = shape.overlapAt(tri, dir.Mul(length))
		}
	}
	h.Point = shape.contactPoint(h.Pos, h.Normal)
	return h, true
}
