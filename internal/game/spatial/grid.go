// Package spatial provides a uniform grid partition for broad-phase
// collision candidate queries.
//
// Unlike a per-tick rebuild grid, this one tracks entities persistently:
// the engine inserts a zombie on spawn, updates it as it moves, and removes
// it before the zombie leaves the registry. Candidate queries may return
// entities outside the requested radius; callers perform the precise
// distance check (narrow phase).
package spatial

import "math"

// Cell identifies a grid bucket on the XZ plane.
type Cell struct {
	X, Z int
}

// Grid is a map-keyed uniform grid over unbounded world space.
// Cell key = (floor(x/cellSize), floor(z/cellSize)).
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cells       map[Cell][]uint64
	scratch     []uint64 // reusable buffer for query results
	count       int
}

// NewGrid creates a grid with the given cell size. Cell size should be at
// least the largest query radius so a radius-1 neighborhood covers it.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[Cell][]uint64),
		scratch:     make([]uint64, 0, 64),
	}
}

// CellOf returns the cell containing the position (x, z).
func (g *Grid) CellOf(x, z float64) Cell {
	return Cell{
		X: int(math.Floor(x * g.invCellSize)),
		Z: int(math.Floor(z * g.invCellSize)),
	}
}

// Insert adds an entity ID at position (x, z).
func (g *Grid) Insert(id uint64, x, z float64) {
	key := g.CellOf(x, z)
	g.cells[key] = append(g.cells[key], id)
	g.count++
}

// Remove deletes an entity ID from the cell containing (x, z).
// The position must be the one the entity was last inserted/updated at.
func (g *Grid) Remove(id uint64, x, z float64) {
	key := g.CellOf(x, z)
	bucket := g.cells[key]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			g.count--
			if len(bucket) == 0 {
				delete(g.cells, key)
			} else {
				g.cells[key] = bucket
			}
			return
		}
	}
}

// Update moves an entity between cells. No-op when both positions fall in
// the same cell, which is the common case for slow movers.
func (g *Grid) Update(id uint64, oldX, oldZ, newX, newZ float64) {
	if g.CellOf(oldX, oldZ) == g.CellOf(newX, newZ) {
		return
	}
	g.Remove(id, oldX, oldZ)
	g.Insert(id, newX, newZ)
}

// QueryNeighbors returns all entity IDs in the (2r+1)² cell block centered
// on the cell containing (x, z).
//
// IMPORTANT: the returned slice is reused on subsequent calls. Copy the
// results if you need to persist them.
func (g *Grid) QueryNeighbors(x, z float64, cellRadius int) []uint64 {
	g.scratch = g.scratch[:0]
	if cellRadius < 0 {
		cellRadius = 0
	}

	center := g.CellOf(x, z)
	for cz := center.Z - cellRadius; cz <= center.Z+cellRadius; cz++ {
		for cx := center.X - cellRadius; cx <= center.X+cellRadius; cx++ {
			if bucket, ok := g.cells[Cell{X: cx, Z: cz}]; ok {
				g.scratch = append(g.scratch, bucket...)
			}
		}
	}

	return g.scratch
}

// Len returns the number of tracked entities.
func (g *Grid) Len() int {
	return g.count
}

// CellSize returns the configured cell size.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Stats returns grid occupancy statistics for debugging/profiling.
func (g *Grid) Stats() GridStats {
	var maxInCell int
	for _, bucket := range g.cells {
		if len(bucket) > maxInCell {
			maxInCell = len(bucket)
		}
	}

	avg := 0.0
	if len(g.cells) > 0 {
		avg = float64(g.count) / float64(len(g.cells))
	}

	return GridStats{
		NonEmptyCells:  len(g.cells),
		TotalEntities:  g.count,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avg,
	}
}

// GridStats contains grid occupancy statistics.
type GridStats struct {
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}
