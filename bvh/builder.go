package bvh

import (
	"sort"
	"time"

	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultLeafSize = 4
	DefaultBuckets  = 12

	// traversalCost is the SAH constant charged for visiting an internal node.
	traversalCost = 0.125
	// minCentroidSpread below which SAH binning cannot separate anything.
	minCentroidSpread = 1e-5
)

type Options struct {
	// LeafSize is the largest triangle count emitted as a leaf without trying
	// to split.
	LeafSize int
	// Buckets is the SAH histogram resolution.
	Buckets int
	// MaxDepth forces a leaf at this depth. It never exceeds StackCapacity-1.
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{
		LeafSize: DefaultLeafSize,
		Buckets:  DefaultBuckets,
		MaxDepth: StackCapacity - 1,
	}
}

func (o Options) sanitized() Options {
	if o.LeafSize < 1 {
		o.LeafSize = DefaultLeafSize
	}
	if o.Buckets < 2 {
		o.Buckets = DefaultBuckets
	}
	if o.MaxDepth <= 0 || o.MaxDepth > StackCapacity-1 {
		o.MaxDepth = StackCapacity - 1
	}
	return o
}

// Stats describes the shape of the last tree a Builder produced.
type Stats struct {
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
	Duration    time.Duration
}

type triInfo struct {
	bounds   geom.AABB
	centroid mgl32.Vec3
}

type bucket struct {
	count  int
	bounds geom.AABB
}

// Builder turns triangle lists into flat SAH trees. Its scratch buffers are
// reused across builds, so one Builder must not run two builds at once;
// separate Builders are independent.
type Builder struct {
	opts    Options
	info    []triInfo
	indices []uint32
	buckets []bucket
	// suffix sweep scratch, one entry per bucket
	rightArea  []float32
	rightCount []int
	stats      Stats
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.sanitized()}
}

func (b *Builder) Options() Options {
	return b.opts
}

// Build returns a tree over tris. The returned slices are freshly allocated
// and stay valid after later builds. An empty input gives an empty tree.
func (b *Builder) Build(tris []geom.Triangle) (Tree, Stats) {
	started := time.Now()
	b.stats = Stats{}

	if len(tris) == 0 {
		b.stats.Duration = time.Since(started)
		return Tree{}, b.stats
	}

	b.info = b.info[:0]
	b.indices = b.indices[:0]
	for i, tri := range tris {
		b.info = append(b.info, triInfo{bounds: tri.Bounds(), centroid: tri.Centroid()})
		b.indices = append(b.indices, uint32(i))
	}
	if cap(b.buckets) < b.opts.Buckets {
		b.buckets = make([]bucket, b.opts.Buckets)
	}
	b.buckets = b.buckets[:b.opts.Buckets]
	b.rightArea = make([]float32, b.opts.Buckets)
	b.rightCount = make([]int, b.opts.Buckets)

	nodes := make([]FlatNode, 0, 2*len(tris)/b.opts.LeafSize+1)
	nodes = b.recursiveBuild(nodes, 0, len(tris), 0)

	tree := Tree{
		Nodes:      nodes,
		TriIndices: append([]uint32(nil), b.indices...),
	}
	b.stats.Nodes = len(nodes)
	b.stats.Duration = time.Since(started)
	return tree, b.stats
}

func (b *Builder) recursiveBuild(nodes []FlatNode, start, end, depth int) []FlatNode {
	idx := len(nodes)

	bounds := geom.EmptyAABB()
	centroids := geom.EmptyAABB()
	for _, ti := range b.indices[start:end] {
		bounds = bounds.Union(b.info[ti].bounds)
		centroids = centroids.Expand(b.info[ti].centroid)
	}
	nodes = append(nodes, FlatNode{Bounds: bounds})
	b.stats.MaxDepth = max(b.stats.MaxDepth, depth)

	count := end - start
	if count <= b.opts.LeafSize || depth >= b.opts.MaxDepth {
		nodes[idx].LeftFirst = uint32(start)
		nodes[idx].PrimCount = uint32(count)
		b.stats.Leaves++
		b.stats.MaxLeafSize = max(b.stats.MaxLeafSize, count)
		return nodes
	}

	axis := centroids.LongestAxis()
	mid, ok := b.sahSplit(start, end, axis, centroids)
	if !ok {
		mid = b.medianSplit(start, end, axis)
	}

	left := len(nodes)
	nodes = b.recursiveBuild(nodes, start, mid, depth+1)
	right := len(nodes)
	nodes = b.recursiveBuild(nodes, mid, end, depth+1)

	nodes[idx].LeftFirst = uint32(left)
	nodes[idx].RightFirst = uint32(right)
	nodes[idx].PrimCount = 0
	return nodes
}

// sahSplit bins centroids along axis, picks the cheapest bucket boundary and
// partitions [start,end) around it. It reports false when no boundary leaves
// both sides populated.
func (b *Builder) sahSplit(start, end, axis int, centroids geom.AABB) (int, bool) {
	lo := centroids.Min[axis]
	spread := centroids.Max[axis] - lo
	if spread <= minCentroidSpread {
		return 0, false
	}

	n := len(b.buckets)
	for i := range b.buckets {
		b.buckets[i] = bucket{bounds: geom.EmptyAABB()}
	}
	scale := float32(n) / spread
	bucketOf := func(c mgl32.Vec3) int {
		bi := int((c[axis] - lo) * scale)
		return min(max(bi, 0), n-1)
	}
	for _, ti := range b.indices[start:end] {
		bk := &b.buckets[bucketOf(b.info[ti].centroid)]
		bk.count++
		bk.bounds = bk.bounds.Union(b.info[ti].bounds)
	}

	// Suffix sweep first, then a prefix sweep that evaluates each boundary.
	rightArea, rightCount := b.rightArea, b.rightCount
	acc := geom.EmptyAABB()
	cnt := 0
	for i := n - 1; i > 0; i-- {
		acc = acc.Union(b.buckets[i].bounds)
		cnt += b.buckets[i].count
		rightArea[i] = acc.SurfaceArea()
		rightCount[i] = cnt
	}

	best := -1
	bestCost := float32(0)
	acc = geom.EmptyAABB()
	cnt = 0
	for i := 0; i < n-1; i++ {
		acc = acc.Union(b.buckets[i].bounds)
		cnt += b.buckets[i].count
		if cnt == 0 || rightCount[i+1] == 0 {
			continue
		}
		cost := traversalCost + acc.SurfaceArea()*float32(cnt) + rightArea[i+1]*float32(rightCount[i+1])
		if best < 0 || cost < bestCost {
			best, bestCost = i, cost
		}
	}
	if best < 0 {
		return 0, false
	}

	// Buckets 0..best go left; same as centroid < lo + (best+1)/scale.
	i, j := start, end-1
	for i <= j {
		if bucketOf(b.info[b.indices[i]].centroid) <= best {
			i++
			continue
		}
		b.indices[i], b.indices[j] = b.indices[j], b.indices[i]
		j--
	}
	if i == start || i == end {
		return 0, false
	}
	return i, true
}

func (b *Builder) medianSplit(start, end, axis int) int {
	sub := b.indices[start:end]
	sort.Slice(sub, func(i, j int) bool {
		return b.info[sub[i]].centroid[axis] < b.info[sub[j]].centroid[axis]
	})
	return (start + end) / 2
}
