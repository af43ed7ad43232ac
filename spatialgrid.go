package uphysics

import (
	"math"

	"github.com/gekko3d/uphysics/geom"
	"github.com/samber/lo"
)

// SpatialHashGrid is a uniform hash grid over registration slots. It is the
// broad phase for overlap queries. Entries whose bounds span more than
// maxCells cells are kept in a separate list that every query returns.
type SpatialHashGrid struct {
	cellSize float32
	maxCells int
	// Map from cell coordinate to the slots touching that cell
	cells    map[cellKey][]uint32
	oversize []uint32
}

func NewSpatialHashGrid(cellSize float32, maxCells int) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		maxCells: maxCells,
		cells:    make(map[cellKey][]uint32),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
	grid.oversize = grid.oversize[:0]
}

type cellKey [3]int

type cellRange struct {
	minX, minY, minZ int
	maxX, maxY, maxZ int
}

func (grid *SpatialHashGrid) cellRange(b geom.AABB) cellRange {
	return cellRange{
		minX: grid.getCellIndex(b.Min.X()), maxX: grid.getCellIndex(b.Max.X()),
		minY: grid.getCellIndex(b.Min.Y()), maxY: grid.getCellIndex(b.Max.Y()),
		minZ: grid.getCellIndex(b.Min.Z()), maxZ: grid.getCellIndex(b.Max.Z()),
	}
}

// count saturates at limit+1 so huge boxes never overflow.
func (r cellRange) count(limit int) int {
	n := 1
	for _, span := range [3]int{r.maxX - r.minX + 1, r.maxY - r.minY + 1, r.maxZ - r.minZ + 1} {
		if span <= 0 || span > limit {
			return limit + 1
		}
		n *= span
		if n > limit {
			return limit + 1
		}
	}
	return n
}

func (r cellRange) each(fn func(x, y, z int)) {
	for x := r.minX; x <= r.maxX; x++ {
		for y := r.minY; y <= r.maxY; y++ {
			for z := r.minZ; z <= r.maxZ; z++ {
				fn(x, y, z)
			}
		}
	}
}

func (grid *SpatialHashGrid) Insert(slot uint32, b geom.AABB) {
	if b.IsEmpty() {
		return
	}
	r := grid.cellRange(b)
	if r.count(grid.maxCells) > grid.maxCells {
		grid.oversize = append(grid.oversize, slot)
		return
	}
	r.each(func(x, y, z int) {
		key := cellKey{x, y, z}
		grid.cells[key] = append(grid.cells[key], slot)
	})
}

// Remove drops slot from every cell b covers. b must be the box it was
// inserted with.
func (grid *SpatialHashGrid) Remove(slot uint32, b geom.AABB) {
	if b.IsEmpty() {
		return
	}
	r := grid.cellRange(b)
	if r.count(grid.maxCells) > grid.maxCells {
		grid.oversize = lo.Without(grid.oversize, slot)
		return
	}
	r.each(func(x, y, z int) {
		key := cellKey{x, y, z}
		rest := lo.Without(grid.cells[key], slot)
		if len(rest) == 0 {
			delete(grid.cells, key)
			return
		}
		grid.cells[key] = rest
	})
}

// QueryAABB returns candidate slots whose cells touch b, oversize entries
// included. Candidates are unique but not filtered by exact bounds.
func (grid *SpatialHashGrid) QueryAABB(b geom.AABB) []uint32 {
	if b.IsEmpty() {
		return nil
	}
	results := append([]uint32(nil), grid.oversize...)

	r := grid.cellRange(b)
	if r.count(grid.maxCells) > grid.maxCells {
		// Query spans too many cells to walk; fall back to everything stored.
		for _, slots := range grid.cells {
			results = append(results, slots...)
		}
		return lo.Uniq(results)
	}
	r.each(func(x, y, z int) {
		results = append(results, grid.cells[cellKey{x, y, z}]...)
	})
	return lo.Uniq(results)
}

// Cells is the number of occupied cells.
func (grid *SpatialHashGrid) Cells() int {
	return len(grid.cells)
}

func (grid *SpatialHashGrid) Oversize() int {
	return len(grid.oversize)
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}
