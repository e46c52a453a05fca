// Package spatial implements the broad phase: a uniform 3D hash grid rebuilt
// from scratch every tick.
package spatial

import (
	"math"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

// DefaultCellSize is close to the typical particle radius.
const DefaultCellSize = 0.2

// Cell is a quantised grid coordinate.
type Cell struct {
	X, Y, Z int
}

// Grid buckets particle indices by cell. Indices refer to the slice passed to
// the last Rebuild and are invalid once that slice is compacted.
type Grid struct {
	cellSize float64
	cells    map[Cell][]int
	count    int
}

func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) {
		cellSize = DefaultCellSize
	}
	return &Grid{cellSize: cellSize, cells: make(map[Cell][]int)}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// CellOf returns the cell containing p.
func (g *Grid) CellOf(p dynamo.Vec3) Cell {
	return Cell{X: quantize(p[0], g.cellSize), Y: quantize(p[1], g.cellSize), Z: quantize(p[2], g.cellSize)}
}

func quantize(v, size float64) int {
	f := math.Floor(v / size)
	if math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// Rebuild clears every bucket (keeping allocated capacity) and reinserts all
// particles.
func (g *Grid) Rebuild(ps []particle.Particle) {
	// Drop stale keys once the map is much larger than the live population.
	if len(g.cells) > 4*len(ps)+64 {
		g.cells = make(map[Cell][]int, len(ps))
	} else {
		for k, v := range g.cells {
			g.cells[k] = v[:0]
		}
	}
	for i := range ps {
		c := g.CellOf(ps[i].Position)
		g.cells[c] = append(g.cells[c], i)
	}
	g.count = len(ps)
}

// Neighbors appends to buf the indices of every particle in the 3x3x3 block of
// cells around particle i, excluding i itself, and returns the extended slice.
func (g *Grid) Neighbors(ps []particle.Particle, i int, buf []int) []int {
	c := g.CellOf(ps[i].Position)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, j := range g.cells[Cell{c.X + dx, c.Y + dy, c.Z + dz}] {
					if j != i {
						buf = append(buf, j)
					}
				}
			}
		}
	}
	return buf
}

// Len is the number of particles indexed by the last Rebuild.
func (g *Grid) Len() int { return g.count }

// Cells counts occupied buckets.
func (g *Grid) Cells() int {
	n := 0
	for _, v := range g.cells {
		if len(v) > 0 {
			n++
		}
	}
	return n
}

// Reset discards every bucket and its capacity.
func (g *Grid) Reset() {
	g.cells = make(map[Cell][]int)
	g.count = 0
}
