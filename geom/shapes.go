package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is a world-space triangle. Once handed to a tree it is treated as
// immutable.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
}

func NewTriangle(v0, v1, v2 mgl32.Vec3) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2}
}

func (t Triangle) Bounds() AABB {
	return AABBFromPoints(t.V0, t.V1, t.V2)
}

func (t Triangle) Centroid() mgl32.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Edges returns v1-v0, v2-v1 and v0-v2.
func (t Triangle) Edges() [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{t.V1.Sub(t.V0), t.V2.Sub(t.V1), t.V0.Sub(t.V2)}
}

func (t Triangle) Vertices() [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{t.V0, t.V1, t.V2}
}

// Normal is the unit face normal following the v0,v1,v2 winding. Degenerate
// triangles report false and a zero vector.
func (t Triangle) Normal() (mgl32.Vec3, bool) {
	return SafeNormalize(t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)))
}

// Box is an axis-aligned box given by its center and half-extents.
type Box struct {
	Center mgl32.Vec3
	Half   mgl32.Vec3
}

func (b Box) Bounds() AABB {
	return AABB{Min: b.Center.Sub(b.Half), Max: b.Center.Add(b.Half)}
}

// Translate returns the box moved by d.
func (b Box) Translate(d mgl32.Vec3) Box {
	return Box{Center: b.Center.Add(d), Half: b.Half}
}

// ProjectedRadius is the box's half-width along axis a.
func (b Box) ProjectedRadius(a mgl32.Vec3) float32 {
	return Abs(a[0])*b.Half[0] + Abs(a[1])*b.Half[1] + Abs(a[2])*b.Half[2]
}

// Ray is a parametric segment start + dir*t for t in [TMin, TMax]. InvDir must
// track Dir; construct with NewRay and change direction through SetDir.
type Ray struct {
	Start  mgl32.Vec3
	Dir    mgl32.Vec3
	InvDir mgl32.Vec3
	TMin   float32
	TMax   float32
}

func NewRay(start, dir mgl32.Vec3, tMin, tMax float32) Ray {
	return Ray{
		Start:  start,
		Dir:    dir,
		InvDir: Reciprocal(dir),
		TMin:   tMin,
		TMax:   tMax,
	}
}

func (r *Ray) SetDir(dir mgl32.Vec3) {
	r.Dir = dir
	r.InvDir = Reciprocal(dir)
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Start.Add(r.Dir.Mul(t))
}
