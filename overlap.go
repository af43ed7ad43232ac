package uphysics

import (
	"github.com/gekko3d/uphysics/bvh"
	"github.com/gekko3d/uphysics/collide"
	"github.com/gekko3d/uphysics/geom"
)

// BoxOverlap returns the deepest triangle penetration of box, if any. The
// normal is the direction that pushes the box out along the shortest path.
func (e *Engine) BoxOverlap(box geom.Box) (Hit, bool) {
	hits := e.BoxOverlapAll(box, 0)
	if len(hits) == 0 {
		return Hit{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Depth > best.Depth {
			best = h
		}
	}
	return best, true
}

// BoxOverlapAll returns up to maxHits triangles that box penetrates, in
// registration order. maxHits <= 0 means no limit.
func (e *Engine) BoxOverlapAll(box geom.Box, maxHits int) []Hit {
	bounds := box.Bounds()

	candidates := make(map[uint32]struct{})
	for _, slot := range e.grid.QueryAABB(bounds) {
		candidates[slot] = struct{}{}
	}

	var hits []Hit
	var stack bvh.Stack
	for _, m := range e.meshes {
		if _, ok := candidates[m.handle.slot()]; !ok {
			continue
		}
		if !m.tree.Bounds().Overlaps(bounds) {
			continue
		}

		stack.Reset()
		stack.Push(0)
		for stack.Len() > 0 {
			ni, _ := stack.Pop()
			node := m.tree.Nodes[ni]
			if !node.Bounds.Overlaps(bounds) {
				continue
			}
			if !node.IsLeaf() {
				stack.Push(node.LeftFirst)
				stack.Push(node.RightFirst)
				continue
			}

			for _, local := range m.tree.Leaf(node) {
				tri := e.triangles[m.triStart+local]
				ok, axis, depth := collide.BoxVsTriangleOverlap(box, tri)
				if !ok {
					continue
				}
				hits = append(hits, Hit{
					Depth:         depth,
					Pos:           box.Center,
					Point:         box.Center.Sub(axis.Mul(box.ProjectedRadius(axis))),
					Normal:        axis,
					TriIndex:      m.triStart + local,
					LocalTriIndex: local,
					Handle:        m.handle,
					Owner:         m.owner,
					StartSolid:    true,
				})
				if maxHits > 0 && len(hits) >= maxHits {
					return hits
				}
			}
		}
	}
	return hits
}
