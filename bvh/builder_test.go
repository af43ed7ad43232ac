package bvh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTriangles(rng *rand.Rand, n int, spread float32) []geom.Triangle {
	tris := make([]geom.Triangle, n)
	rv := func() mgl32.Vec3 {
		return mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
	}
	for i := range tris {
		c := rv().Mul(spread)
		tris[i] = geom.NewTriangle(c.Add(rv()), c.Add(rv()), c.Add(rv()))
	}
	return tris
}

// checkTree walks the whole tree with a traversal stack and asserts that
// every triangle index lands in exactly one leaf and every node bounds its
// subtree. It returns the number of leaves visited.
func checkTree(t *testing.T, tree Tree, tris []geom.Triangle) int {
	t.Helper()
	require.False(t, tree.Empty())
	require.Len(t, tree.TriIndices, len(tris))

	// subtree bounds check: each leaf's triangles against every ancestor
	parents := make([]int, len(tree.Nodes))
	parents[0] = -1

	seen := make([]int, len(tris))
	leaves := 0

	var stack Stack
	stack.Push(0)
	for stack.Len() > 0 {
		ni, _ := stack.Pop()
		node := tree.Nodes[ni]
		if !node.IsLeaf() {
			parents[node.LeftFirst] = int(ni)
			parents[node.RightFirst] = int(ni)
			stack.Push(node.LeftFirst)
			stack.Push(node.RightFirst)
			continue
		}

		leaves++
		for _, ti := range tree.Leaf(node) {
			seen[ti]++
			for _, v := range tris[ti].Vertices() {
				for p := int(ni); p >= 0; p = parents[p] {
					if !tree.Nodes[p].Bounds.ContainsWithin(v, 1e-4) {
						t.Errorf("node %d bounds %+v do not contain vertex %v of triangle %d", p, tree.Nodes[p].Bounds, v, ti)
					}
				}
			}
		}
	}

	for i, n := range seen {
		if n != 1 {
			t.Errorf("triangle %d referenced by %d leaves, want 1", i, n)
		}
	}
	return leaves
}

func TestTwoObjectsSplit(t *testing.T) {
	tris := []geom.Triangle{
		geom.NewTriangle(mgl32.Vec3{-100, -1, -1}, mgl32.Vec3{-98, 1, -1}, mgl32.Vec3{-98, -1, 1}),
		geom.NewTriangle(mgl32.Vec3{100, -1, -1}, mgl32.Vec3{102, 1, -1}, mgl32.Vec3{102, -1, 1}),
	}

	tree, stats := NewBuilder(Options{LeafSize: 1}).Build(tris)

	require.Len(t, tree.Nodes, 3, "root plus two leaves")
	root := tree.Nodes[0]
	assert.False(t, root.IsLeaf())
	assert.LessOrEqual(t, root.Bounds.Min.X(), float32(-100))
	assert.GreaterOrEqual(t, root.Bounds.Max.X(), float32(102))
	assert.NotEqual(t, root.LeftFirst, root.RightFirst)

	left := tree.Nodes[root.LeftFirst]
	right := tree.Nodes[root.RightFirst]
	assert.True(t, left.IsLeaf())
	assert.True(t, right.IsLeaf())
	assert.Equal(t, uint32(1), left.PrimCount)
	assert.Equal(t, uint32(1), right.PrimCount)

	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 2, stats.Leaves)
	assert.Equal(t, 1, stats.MaxDepth)
	checkTree(t, tree, tris)
}

func TestSingleObject(t *testing.T) {
	tris := []geom.Triangle{
		geom.NewTriangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 1}),
	}

	tree, _ := NewBuilder(DefaultOptions()).Build(tris)

	require.Len(t, tree.Nodes, 1)
	root := tree.Nodes[0]
	assert.True(t, root.IsLeaf())
	assert.Equal(t, uint32(0), root.LeftFirst)
	assert.Equal(t, uint32(1), root.PrimCount)
	assert.Equal(t, tris[0].Bounds(), tree.Bounds())
}

func TestEmptyBVH(t *testing.T) {
	tree, stats := NewBuilder(DefaultOptions()).Build(nil)

	assert.True(t, tree.Empty())
	assert.Empty(t, tree.TriIndices)
	assert.True(t, tree.Bounds().IsEmpty())
	assert.Equal(t, 0, stats.Nodes)
}

func TestBuild_RandomTrianglesCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{2, 5, 17, 100, 1000} {
		tris := randomTriangles(rng, n, 50)
		tree, stats := NewBuilder(DefaultOptions()).Build(tris)

		leaves := checkTree(t, tree, tris)
		assert.Equal(t, stats.Leaves, leaves)
		assert.Equal(t, len(tree.Nodes), stats.Nodes)
		assert.LessOrEqual(t, stats.MaxLeafSize, DefaultLeafSize)
		assert.GreaterOrEqual(t, leaves*DefaultLeafSize, n)
		// full binary tree
		assert.Equal(t, 2*leaves-1, len(tree.Nodes))
	}
}

func TestBuild_IdenticalCentroids(t *testing.T) {
	tri := geom.NewTriangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	tris := make([]geom.Triangle, 100)
	for i := range tris {
		tris[i] = tri
	}

	tree, stats := NewBuilder(DefaultOptions()).Build(tris)

	checkTree(t, tree, tris)
	assert.LessOrEqual(t, stats.MaxLeafSize, DefaultLeafSize)
	assert.Less(t, stats.MaxDepth, StackCapacity)
}

func TestBuild_DepthCap(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tris := randomTriangles(rng, 100, 10)

	tree, stats := NewBuilder(Options{LeafSize: 1, MaxDepth: 3}).Build(tris)

	checkTree(t, tree, tris)
	assert.Equal(t, 3, stats.MaxDepth)
	assert.Greater(t, stats.MaxLeafSize, 1, "capped leaves hold more than LeafSize")
}

func TestBuild_SkewedInputStaysWithinStack(t *testing.T) {
	// Exponentially spaced triangles push SAH toward one-sided splits.
	tris := make([]geom.Triangle, 100)
	for i := range tris {
		x := float32(math.Pow(1.5, float64(i)))
		tris[i] = geom.NewTriangle(mgl32.Vec3{x, 0, 0}, mgl32.Vec3{x, 1, 0}, mgl32.Vec3{x, 0, 1})
	}

	tree, stats := NewBuilder(Options{LeafSize: 1}).Build(tris)

	assert.Less(t, stats.MaxDepth, StackCapacity)
	assert.NotPanics(t, func() { checkTree(t, tree, tris) })
}

func TestBuilder_ReuseKeepsEarlierTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	b := NewBuilder(DefaultOptions())

	first := randomTriangles(rng, 64, 20)
	tree1, _ := b.Build(first)
	snapshot := append([]uint32(nil), tree1.TriIndices...)

	second := randomTriangles(rng, 200, 20)
	tree2, _ := b.Build(second)

	assert.Equal(t, snapshot, tree1.TriIndices)
	checkTree(t, tree1, first)
	checkTree(t, tree2, second)
}

func TestOptions_Sanitized(t *testing.T) {
	b := NewBuilder(Options{LeafSize: -1, Buckets: 1, MaxDepth: 1000})
	assert.Equal(t, DefaultOptions(), b.Options())
}

func TestStack(t *testing.T) {
	var s Stack
	_, ok := s.Pop()
	assert.False(t, ok)

	for i := 0; i < StackCapacity; i++ {
		s.Push(uint32(i))
	}
	assert.Equal(t, StackCapacity, s.Len())
	assert.Panics(t, func() { s.Push(99) })

	top, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(StackCapacity-1), top)

	s.Reset()
	assert.Equal(t, 0, s.Len())
}
