package uphysics

import (
	"testing"

	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSpatialHashGrid_InsertionAndQuery(t *testing.T) {
	grid := NewSpatialHashGrid(2.0, 64)

	box1 := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	box2 := geom.AABB{Min: mgl32.Vec3{3, 3, 3}, Max: mgl32.Vec3{4, 4, 4}}
	grid.Insert(1, box1)
	grid.Insert(2, box2)

	assert.Equal(t, []uint32{1}, grid.QueryAABB(box1))
	assert.Equal(t, []uint32{2}, grid.QueryAABB(box2))

	// Cell size 2: box1 sits in cell 0, box2 spans cells 1..2 on every axis,
	// and [1,3] covers cells 0..1, so both come back.
	mid := geom.AABB{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{3, 3, 3}}
	assert.ElementsMatch(t, []uint32{1, 2}, grid.QueryAABB(mid))

	far := geom.AABB{Min: mgl32.Vec3{-10, -10, -10}, Max: mgl32.Vec3{-9, -9, -9}}
	assert.Empty(t, grid.QueryAABB(far))
}

func TestSpatialHashGrid_NegativeCoordinates(t *testing.T) {
	grid := NewSpatialHashGrid(1.0, 64)
	grid.Insert(3, geom.AABB{Min: mgl32.Vec3{-2.5, -0.5, -2.5}, Max: mgl32.Vec3{-1.5, 0.5, -1.5}})

	assert.Equal(t, []uint32{3}, grid.QueryAABB(geom.AABB{Min: mgl32.Vec3{-2, 0, -2}, Max: mgl32.Vec3{-2, 0, -2}}))
	assert.Empty(t, grid.QueryAABB(geom.AABB{Min: mgl32.Vec3{2, 0, 2}, Max: mgl32.Vec3{2, 0, 2}}))

	// Sign-mirrored cells stay apart.
	grid.Insert(4, geom.AABB{Min: mgl32.Vec3{2.2, 0.2, 2.2}, Max: mgl32.Vec3{2.8, 0.8, 2.8}})
	assert.Equal(t, []uint32{4}, grid.QueryAABB(geom.AABB{Min: mgl32.Vec3{2.5, 0.5, 2.5}, Max: mgl32.Vec3{2.5, 0.5, 2.5}}))
	assert.Equal(t, []uint32{3}, grid.QueryAABB(geom.AABB{Min: mgl32.Vec3{-2.5, 0.5, -2.5}, Max: mgl32.Vec3{-2.5, 0.5, -2.5}}))
}

func TestSpatialHashGrid_Remove(t *testing.T) {
	grid := NewSpatialHashGrid(2.0, 64)
	box := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{3, 1, 1}}
	grid.Insert(1, box)
	grid.Insert(2, box)
	assert.Equal(t, 2, grid.Cells())

	grid.Remove(1, box)
	assert.Equal(t, []uint32{2}, grid.QueryAABB(box))

	grid.Remove(2, box)
	assert.Empty(t, grid.QueryAABB(box))
	assert.Equal(t, 0, grid.Cells())
}

func TestSpatialHashGrid_Oversize(t *testing.T) {
	grid := NewSpatialHashGrid(1.0, 8)
	huge := geom.AABB{Min: mgl32.Vec3{-100, -100, -100}, Max: mgl32.Vec3{100, 100, 100}}
	small := geom.AABB{Min: mgl32.Vec3{50, 50, 50}, Max: mgl32.Vec3{50.5, 50.5, 50.5}}
	grid.Insert(1, huge)
	grid.Insert(2, small)

	assert.Equal(t, 1, grid.Oversize())
	assert.Equal(t, 1, grid.Cells())

	// Oversize entries come back from any query.
	anywhere := geom.AABB{Min: mgl32.Vec3{-3, -3, -3}, Max: mgl32.Vec3{-3, -3, -3}}
	assert.Equal(t, []uint32{1}, grid.QueryAABB(anywhere))

	// A query too large to walk returns everything.
	assert.ElementsMatch(t, []uint32{1, 2}, grid.QueryAABB(huge))

	grid.Remove(1, huge)
	assert.Equal(t, 0, grid.Oversize())

	grid.Clear()
	assert.Empty(t, grid.QueryAABB(small))
}

func TestSpatialHashGrid_EmptyBounds(t *testing.T) {
	grid := NewSpatialHashGrid(1.0, 8)
	grid.Insert(1, geom.EmptyAABB())
	assert.Equal(t, 0, grid.Cells())
	assert.Empty(t, grid.QueryAABB(geom.EmptyAABB()))
}
