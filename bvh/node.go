// Package bvh builds flat bounding volume hierarchies over triangle lists
// using a binned surface area heuristic, and provides the fixed-capacity
// stack used to walk them.
package bvh

import (
	"github.com/gekko3d/uphysics/geom"
)

// FlatNode is one node of a flattened binary tree.
//
// A leaf has PrimCount > 0 and LeftFirst is the offset of its first entry in
// Tree.TriIndices. An internal node has PrimCount == 0 and LeftFirst and
// RightFirst are child node indices. PrimCount is the only discriminator.
type FlatNode struct {
	Bounds     geom.AABB
	LeftFirst  uint32
	RightFirst uint32
	PrimCount  uint32
}

func (n FlatNode) IsLeaf() bool {
	return n.PrimCount > 0
}

// Tree is the output of a build. Nodes[0] is the root. TriIndices holds the
// reordered triangle indices, local to the slice passed to Build.
type Tree struct {
	Nodes      []FlatNode
	TriIndices []uint32
}

func (t Tree) Empty() bool {
	return len(t.Nodes) == 0
}

// Bounds returns the root bounds, or an empty box for an empty tree.
func (t Tree) Bounds() geom.AABB {
	if t.Empty() {
		return geom.EmptyAABB()
	}
	return t.Nodes[0].Bounds
}

// Leaf returns the local triangle indices referenced by a leaf node.
func (t Tree) Leaf(n FlatNode) []uint32 {
	return t.TriIndices[n.LeftFirst : n.LeftFirst+n.PrimCount]
}
